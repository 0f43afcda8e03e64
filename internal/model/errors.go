// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, post, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is はエラーコードが一致する場合にtrueを返す。
// errors.Is(err, model.ErrInvalidCredentials) のようにコード単位で判定できる。
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound          = "USER_NOT_FOUND"
	ErrCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	ErrCodeUnsupportedCredential = "UNSUPPORTED_CREDENTIAL"
	ErrCodeUsernameTaken         = "USERNAME_TAKEN"
	ErrCodeInvalidUsername       = "INVALID_USERNAME"
	ErrCodeInvalidPassword       = "INVALID_PASSWORD"
	ErrCodeUnknownProvider       = "UNKNOWN_PROVIDER"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodePostNotFound          = "POST_NOT_FOUND"
	ErrCodePostForbidden         = "POST_FORBIDDEN"
	ErrCodeInvalidPostContent    = "INVALID_POST_CONTENT"
	ErrCodeInvalidCursor         = "INVALID_CURSOR"
)

// errors.Is での比較用のエラー値。
var (
	ErrUserNotFound          = &APIError{Code: ErrCodeUserNotFound}
	ErrInvalidCredentials    = &APIError{Code: ErrCodeInvalidCredentials}
	ErrUnsupportedCredential = &APIError{Code: ErrCodeUnsupportedCredential}
	ErrUsernameTaken         = &APIError{Code: ErrCodeUsernameTaken}
	ErrPostNotFound          = &APIError{Code: ErrCodePostNotFound}
	ErrPostForbidden         = &APIError{Code: ErrCodePostForbidden}
)

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ユーザー名を確認するか、新規登録してください。",
	}
}

// NewInvalidCredentialsError はパスワード不一致のエラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewUnsupportedCredentialError は処理できない認証情報の種類が渡された場合のエラーを生成する。
func NewUnsupportedCredentialError(kind string) *APIError {
	return &APIError{
		Code:     ErrCodeUnsupportedCredential,
		Message:  fmt.Sprintf("サポートされていない認証情報の種類です: %s", kind),
		Category: "auth",
		Action:   "別の方法でログインしてください。",
	}
}

// NewUsernameTakenError はユーザー名が他のアカウントで使用済みの場合のエラーを生成する。
func NewUsernameTakenError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  fmt.Sprintf("ユーザー名は既に使用されています: %s", username),
		Category: "auth",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewInvalidUsernameError はユーザー名の形式が不正な場合のエラーを生成する。
func NewInvalidUsernameError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidUsername,
		Message:  "ユーザー名の形式が正しくありません。",
		Category: "validation",
		Action:   "ユーザー名は英数字と _ . - を使用し、1〜32文字で指定してください。",
	}
}

// NewInvalidPasswordError はパスワードが要件を満たさない場合のエラーを生成する。
func NewInvalidPasswordError(minLength int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPassword,
		Message:  "パスワードが短すぎます。",
		Category: "validation",
		Action:   fmt.Sprintf("パスワードは%d文字以上で指定してください。", minLength),
	}
}

// NewUnknownProviderError は未対応または無効化されたIdPが指定された場合のエラーを生成する。
func NewUnknownProviderError(provider string) *APIError {
	return &APIError{
		Code:     ErrCodeUnknownProvider,
		Message:  fmt.Sprintf("認証プロバイダーが利用できません: %s", provider),
		Category: "auth",
		Action:   "ユーザー名とパスワードでログインしてください。",
	}
}

// NewUnauthorizedError は認証が必要な場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewPostNotFoundError は投稿が見つからない場合のエラーを生成する。
func NewPostNotFoundError(postID string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("指定された投稿が見つかりません: %s", postID),
		Category: "post",
		Action:   "投稿IDを確認してください。",
	}
}

// NewPostForbiddenError は投稿者以外が投稿を変更しようとした場合のエラーを生成する。
func NewPostForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodePostForbidden,
		Message:  "この投稿を変更する権限がありません。",
		Category: "post",
		Action:   "自分の投稿のみ編集・削除できます。",
	}
}

// NewInvalidPostContentError は投稿本文が不正な場合のエラーを生成する。
func NewInvalidPostContentError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPostContent,
		Message:  fmt.Sprintf("投稿本文が不正です: %s", reason),
		Category: "validation",
		Action:   "本文を入力し、上限文字数以内で投稿してください。",
	}
}

// NewInvalidCursorError はページネーションカーソルが不正な場合のエラーを生成する。
func NewInvalidCursorError(cursor string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCursor,
		Message:  fmt.Sprintf("無効なカーソル値です: %s", cursor),
		Category: "validation",
		Action:   "前回のレスポンスのnext_cursorを指定してください。",
	}
}
