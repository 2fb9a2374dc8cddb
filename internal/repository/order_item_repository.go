package repository

import (
	"context"
	"time"

	"secondhand/internal/domain/model"
)

// 販売明細（venderごとの1明細=1行）
type SellerOrderLine struct {
	OrderID      string
	BuyerID      string
	PurchaseDate time.Time
	ProductID    string
	Quantity     int64
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error
	// order_idごとにPosition順
	ListByOrderIDs(ctx context.Context, orderIDs []string) (map[string][]model.OrderItem, error)
	ListBySeller(ctx context.Context, sellerID string) ([]SellerOrderLine, error)
}
