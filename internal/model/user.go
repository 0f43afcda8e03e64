// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// IDはストアへの永続化時に採番され、未永続化のインスタンスでのみ空になる。
// FacebookID、GoogleIDは連携していない場合は空文字列。
type User struct {
	ID           string
	Username     string
	PasswordHash string
	FacebookID   string
	GoogleID     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasCredential はユーザーが少なくとも1つの認証手段を持つかを返す。
// パスワード、Facebook連携、Google連携のいずれかが設定されていれば有効なアカウントとみなす。
func (u *User) HasCredential() bool {
	return u.PasswordHash != "" || u.FacebookID != "" || u.GoogleID != ""
}

// UserField はユーザー検索に使用できるフィールドを表す。
// リポジトリ層で許可リストのカラム名にマッピングされる。
type UserField string

const (
	UserFieldUsername   UserField = "username"
	UserFieldFacebookID UserField = "facebook_id"
	UserFieldGoogleID   UserField = "google_id"
)

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
