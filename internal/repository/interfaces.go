// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/postboard/internal/model"
)

// ErrDuplicate は一意制約違反により作成できなかったことを表す。
// 同時登録の競合時に返され、呼び出し側は既存レコードを再取得する。
var ErrDuplicate = errors.New("duplicate record")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByField は指定フィールドが完全一致するユーザーを取得する。
	// 複数一致した場合は作成日時が最も古いものを返す。見つからない場合はnilを返す。
	FindByField(ctx context.Context, field model.UserField, value string) (*model.User, error)

	// Create はユーザーを作成し、IDとタイムスタンプを採番した結果を返す。
	// 一意制約違反の場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するposts、sessionsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// List は投稿を(created_at, id)の降順で取得する。
	// afterがゼロ値の場合は先頭から、それ以外はafterより後ろの投稿を返す。
	List(ctx context.Context, after model.PostCursor, limit int) ([]*model.Post, error)

	// Create は投稿を作成する。
	Create(ctx context.Context, post *model.Post) error

	// Update は投稿本文を更新する。
	Update(ctx context.Context, post *model.Post) error

	// Delete は指定IDの投稿を削除する。
	Delete(ctx context.Context, id string) error

	// DeleteByUserID はユーザーの全投稿を削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}
