package model

import "time"

// カートの明細
// (buyer_id, product_id)で1行。同じ商品は数量を加算する。
type CartItem struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	BuyerID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_items_buyer_product" json:"buyerId"`
	ProductID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_items_buyer_product" json:"productId"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}
