package repository

import (
	"context"

	"secondhand/internal/domain/model"
	repo "secondhand/internal/repository"

	"gorm.io/gorm"
)

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

func (r *OrderItemGormRepository) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
		items[i].Position = i
	}
	return mapErr(r.db.WithContext(ctx).Create(&items).Error)
}

func (r *OrderItemGormRepository) ListByOrderIDs(ctx context.Context, orderIDs []string) (map[string][]model.OrderItem, error) {
	out := make(map[string][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	var items []model.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Order("order_id asc").
		Order("position asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, nil
}

// seller_idが一致する明細を注文と結合して返す（購入日の新しい順）
func (r *OrderItemGormRepository) ListBySeller(ctx context.Context, sellerID string) ([]repo.SellerOrderLine, error) {
	var rows []repo.SellerOrderLine
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.order_id, orders.buyer_id, orders.purchase_date, order_items.product_id, order_items.quantity").
		Joins("join orders on orders.id = order_items.order_id").
		Where("order_items.seller_id = ?", sellerID).
		Order("orders.purchase_date desc").
		Order("order_items.order_id asc").
		Order("order_items.position asc").
		Scan(&rows).Error
	if err != nil {
		return []repo.SellerOrderLine{}, err
	}
	return rows, nil
}
