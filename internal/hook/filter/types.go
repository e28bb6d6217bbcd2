package filter

import (
	"context"
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Registry interface {
		ListAll(ctx context.Context) ([]model.Subscription, error)
	}
	Source interface {
		PublishFilter(ctx context.Context, descriptors []string) (string, error)
		Start(ctx context.Context, handle string) error
		Stop()
	}
	Metrics interface {
		ObserveSync(err error, descriptors int, started time.Time)
		ObservePause()
		ObserveSkip()
	}
)
