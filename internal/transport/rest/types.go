package rest

import (
	"context"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/registry"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Service interface {
		AddSubscriptions(ctx context.Context, descriptors []string, channel string) ([]registry.InsertResult, error)
		Remove(ctx context.Context, id string) (int64, error)
		List(ctx context.Context) ([]model.Subscription, error)
		Expired(ctx context.Context, limit int) ([]model.DeliveryTask, error)
		ActiveFilter() *model.ActiveFilter
	}
)
