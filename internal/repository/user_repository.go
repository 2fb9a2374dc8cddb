package repository

import (
	"context"

	"secondhand/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（email重複はErrDuplicate）
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID string) (*model.User, error)
	//メールからユーザーを一件取得する（大文字小文字は区別しない）
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//全件（新しい順）
	List(ctx context.Context) ([]model.User, error)
	// username/addressの更新
	Update(ctx context.Context, user *model.User) error
	//isAvailableの切り替え
	SetAvailability(ctx context.Context, userID string, isAvailable bool) error
	Delete(ctx context.Context, userID string) error
}
