package repository

import "errors"

// 見つかりませんを統一
var ErrNotFound = errors.New("not found")

// ユニーク制約違反（email重複など）
var ErrDuplicate = errors.New("duplicate key")
