package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/postboard/internal/middleware"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Withdraw はユーザーの退会処理を実行する。
	// posts、sessions、userの順に削除する。
	Withdraw(ctx context.Context, userID string) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
	auth    AuthHandlerConfig
}

// NewUserHandler はUserHandlerを生成する。
// authConfigは退会後のセッションCookie削除に使用する。
func NewUserHandler(service UserServiceInterface, authConfig AuthHandlerConfig) *UserHandler {
	return &UserHandler{
		service: service,
		auth:    authConfig,
	}
}

// Withdraw はユーザーの退会処理を実行する。
// DELETE /api/users/me
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Withdraw(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	if middleware.AuthMethodFromContext(r.Context()) == middleware.AuthMethodCookie {
		clearSessionCookie(w, h.auth)
	}
	w.WriteHeader(http.StatusNoContent)
}
