package repository

import (
	"context"

	"secondhand/internal/domain/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, buyerID string, key string) (model.Order, bool, error)
	// purchase_dateの新しい順
	ListByBuyer(ctx context.Context, buyerID string) ([]model.Order, error)
}
