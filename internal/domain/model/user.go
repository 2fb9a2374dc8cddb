package model

import "time"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleVender Role = "vender"
	RoleAdmin  Role = "admin"
)

// 定義済みのロールかどうか
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleVender, RoleAdmin:
		return true
	default:
		return false
	}
}

// emailは小文字に正規化して保存する（大文字小文字を区別しないユニーク）
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(255);not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;index" json:"type"`
	Address      string    `gorm:"type:text;not null" json:"address"`
	IsAvailable  bool      `gorm:"not null" json:"isAvailable"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"updatedAt"`
}
