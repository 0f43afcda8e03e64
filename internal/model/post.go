// Package model はドメインモデルを定義する。
package model

import "time"

// Post はユーザーが投稿したコンテンツを表す。
type Post struct {
	ID        string
	UserID    string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOwnedBy は指定ユーザーが投稿者かどうかを返す。
func (p *Post) IsOwnedBy(userID string) bool {
	return userID != "" && p.UserID == userID
}

// PostCursor は一覧のキーセットページネーション位置。
// 同一created_atの投稿はIDの降順で並ぶ。
type PostCursor struct {
	CreatedAt time.Time
	ID        string
}

// IsZero は先頭ページを表すかどうかを返す。
func (c PostCursor) IsZero() bool {
	return c.CreatedAt.IsZero() && c.ID == ""
}
