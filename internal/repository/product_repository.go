package repository

import (
	"context"

	"secondhand/internal/domain/model"
)

// 一覧の絞り込み
type ProductListQuery struct {
	SellerID string
	OnSale   *bool
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id string) (model.Product, error)
	// 削除済みも含めて取得（販売履歴の表示用）
	FindByIDUnscoped(ctx context.Context, id string) (model.Product, error)
	// 新しい順
	List(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
}
