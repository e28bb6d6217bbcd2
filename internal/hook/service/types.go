package service

import (
	"context"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/registry"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Registry interface {
		InsertMany(ctx context.Context, descriptors []string, channel string) []registry.InsertResult
		Delete(ctx context.Context, id string) (int64, error)
		ListAll(ctx context.Context) ([]model.Subscription, error)
	}
	Synchronizer interface {
		Trigger()
		Active() *model.ActiveFilter
	}
	ExpiredLister interface {
		Expired(ctx context.Context, limit int) ([]model.DeliveryTask, error)
	}
)
