package model

import "time"

// 注文は作成後に変更しない
type Order struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	BuyerID      string    `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_orders_buyer_idem" json:"buyerId"`
	PurchaseDate time.Time `gorm:"not null;index" json:"purchaseDate"`
	// 二重送信防止キー（任意）。NULLはユニーク制約の対象外
	IdempotencyKey *string   `gorm:"type:varchar(255);uniqueIndex:idx_orders_buyer_idem" json:"-"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
}
