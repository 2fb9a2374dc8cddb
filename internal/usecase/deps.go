package usecase

import (
	"context"
	"io"
	"time"

	"secondhand/internal/domain/model"
)

// AccountGuardを通ったリクエストの呼び出し元
type Actor struct {
	UserID string
	Role   model.Role
}

func (a Actor) Is(role model.Role) bool { return a.Role == role }

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 平文パスワードからハッシュへ。照合も。
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain string, hashed string) bool
}

// JWTを発行する約束
type TokenIssuer interface {
	Issue(userID string, role model.Role, now time.Time) (token string, expiresAt time.Time, err error)
}

// 画像を保存して公開パスを返す
type ImageStore interface {
	Save(ctx context.Context, filename string, contentType string, body io.Reader) (string, error)
}

// ドメインイベントの送信（失敗してもリクエストは失敗させない）
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}

const (
	TopicProducts = "product_events"
	TopicOrders   = "order_events"
)
