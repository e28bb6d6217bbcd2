package matcher

import (
	"context"
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Fetcher interface {
		Fetch(ctx context.Context, url string) ([]byte, error)
	}
	Decoder interface {
		Decode(raw []byte) (model.Transaction, error)
	}
	DescriptorStrategy interface {
		Descriptors(tx model.Transaction) []string
	}
	Registry interface {
		FindByDescriptor(ctx context.Context, descriptor string) ([]model.Subscription, error)
	}
	Dispatcher interface {
		Dispatch(tasks []model.DeliveryTask)
	}
	Metrics interface {
		ObserveMatch(source model.EventSource, err error, matches int, started time.Time)
		ObserveFetch(err error, started time.Time)
		ObserveLookupError()
	}
)
