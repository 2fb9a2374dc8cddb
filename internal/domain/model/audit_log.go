package model

import "time"

// ユーザー停止、商品削除など。
type AuditAction string

const (
	AuditActionDisableUser   AuditAction = "DISABLE_USER"
	AuditActionEnableUser    AuditAction = "ENABLE_USER"
	AuditActionDeleteUser    AuditAction = "DELETE_USER"
	AuditActionDeleteProduct AuditAction = "DELETE_PRODUCT"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceUser    AuditResourceType = "user"
	AuditResourceProduct AuditResourceType = "product"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID           string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	ActorUserID  string            `gorm:"type:varchar(36);not null;index" json:"actorUserId"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resourceType"`
	ResourceID   string            `gorm:"type:varchar(36);not null;index" json:"resourceId"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before"`
	AfterJSON  string `gorm:"type:text" json:"after"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}
