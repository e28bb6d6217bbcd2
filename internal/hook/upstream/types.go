package upstream

import (
	"context"
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	ProgressStore interface {
		Load(ctx context.Context, topic string) (uint64, bool, error)
		Save(ctx context.Context, topic string, height uint64) error
	}
	Metrics interface {
		ObservePublish(err error, started time.Time)
		ObserveEvent(source model.EventSource)
		ObserveStreamError()
	}
)
