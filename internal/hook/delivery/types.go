package delivery

import (
	"context"
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Journal interface {
		Save(ctx context.Context, task model.DeliveryTask) error
		Pending(ctx context.Context) ([]model.DeliveryTask, error)
	}
	Auditor interface {
		Record(ctx context.Context, event model.DeliveryEvent) error
	}
	Metrics interface {
		ObserveAttempt(channel string, err error, started time.Time)
		ObserveOutcome(channel string, state model.DeliveryState)
		ObserveInFlight(delta int)
	}
)
