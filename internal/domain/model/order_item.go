package model

// 注文明細のスナップショット
// SellerIDは注文時点の商品から写す（後で商品が変わっても履歴は変わらない）
type OrderItem struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"-"`
	OrderID   string `gorm:"type:varchar(36);not null;index" json:"-"`
	Position  int    `gorm:"not null" json:"-"`
	ProductID string `gorm:"type:varchar(36);not null;index" json:"productId"`
	SellerID  string `gorm:"type:varchar(36);not null;index" json:"sellerId"`
	Quantity  int64  `gorm:"not null" json:"quantity"`
}
