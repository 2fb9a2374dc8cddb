package model

import (
	"time"

	"gorm.io/gorm"
)

// 出品（SellerIDは出品したvenderのID）
type Product struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	SellerID    string         `gorm:"type:varchar(36);not null;index" json:"sellerId"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Price       float64        `gorm:"not null" json:"price"`
	ImagePath   string         `gorm:"type:varchar(512);not null" json:"imagePath"`
	Description string         `gorm:"type:text;not null" json:"description"`
	IsOnSale    bool           `gorm:"not null" json:"isOnSale"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
