package repository

import (
	"context"

	"secondhand/internal/domain/model"
	repo "secondhand/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

// buyerのカート明細を一覧取得（追加順）
func (r *CartItemGormRepository) ListByBuyer(ctx context.Context, buyerID string) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at asc").
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}
	return items, nil
}

// 注文確定用。行ロック付きで一覧取得する（sqliteでは FOR UPDATE は付かない）
func (r *CartItemGormRepository) ListByBuyerForUpdate(ctx context.Context, buyerID string) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("buyer_id = ?", buyerID).
		Order("created_at asc").
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}
	return items, nil
}

func (r *CartItemGormRepository) FindByBuyerAndProduct(ctx context.Context, buyerID string, productID string) (model.CartItem, error) {
	var item model.CartItem

	err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		First(&item).Error
	if err != nil {
		return model.CartItem{}, mapErr(err)
	}
	return item, nil
}

// 同一商品は数量加算
// (buyer_id, product_id)のユニーク制約に対して INSERT ... ON CONFLICT DO UPDATE で1文にする
func (r *CartItemGormRepository) Upsert(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "buyer_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": item.UpdatedAt,
			}),
		}).
		Create(&item).Error
	if err != nil {
		return model.CartItem{}, mapErr(err)
	}

	//加算後の値を読み直す
	return r.FindByBuyerAndProduct(ctx, item.BuyerID, item.ProductID)
}

// 明細の数量を上書き
func (r *CartItemGormRepository) SetQuantity(ctx context.Context, buyerID string, productID string, qty int64) (model.CartItem, error) {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		Update("quantity", qty)
	if res.Error != nil {
		return model.CartItem{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.CartItem{}, repo.ErrNotFound
	}
	return r.FindByBuyerAndProduct(ctx, buyerID, productID)
}

// 明細を削除して、削除した行を返す
func (r *CartItemGormRepository) DeleteByBuyerAndProduct(ctx context.Context, buyerID string, productID string) (model.CartItem, error) {
	item, err := r.FindByBuyerAndProduct(ctx, buyerID, productID)
	if err != nil {
		return model.CartItem{}, err
	}

	res := r.db.WithContext(ctx).Where("id = ?", item.ID).Delete(&model.CartItem{})
	if res.Error != nil {
		return model.CartItem{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.CartItem{}, repo.ErrNotFound
	}
	return item, nil
}

// buyerの明細を全削除
func (r *CartItemGormRepository) DeleteAllByBuyer(ctx context.Context, buyerID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("buyer_id = ?", buyerID).Delete(&model.CartItem{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// 読んだ明細だけ消す。あとから入った明細は残る
func (r *CartItemGormRepository) DeleteByIDs(ctx context.Context, buyerID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("buyer_id = ? AND id IN ?", buyerID, ids).
		Delete(&model.CartItem{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
