package repository

import (
	"context"

	"secondhand/internal/domain/model"
)

type CartItemRepository interface {
	ListByBuyer(ctx context.Context, buyerID string) ([]model.CartItem, error)
	// Tx内で使う。読んだ行はコミットまで他から更新・削除されない
	ListByBuyerForUpdate(ctx context.Context, buyerID string) ([]model.CartItem, error)
	FindByBuyerAndProduct(ctx context.Context, buyerID string, productID string) (model.CartItem, error)
	// 同一商品はプラス（ストア側で原子的に加算）
	Upsert(ctx context.Context, item model.CartItem) (model.CartItem, error)
	SetQuantity(ctx context.Context, buyerID string, productID string, qty int64) (model.CartItem, error)
	DeleteByBuyerAndProduct(ctx context.Context, buyerID string, productID string) (model.CartItem, error)
	DeleteAllByBuyer(ctx context.Context, buyerID string) (int64, error)
	// 指定した明細だけ消す（削除件数を返す）
	DeleteByIDs(ctx context.Context, buyerID string, ids []string) (int64, error)
}
