// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/postboard/internal/model"
)

// SessionCookieName はセッションIDを保持するCookieの名前。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
	userIDContextKey = contextKey("user_id")
	// authMethodContextKey は認証方式を格納するためのキー。
	authMethodContextKey = contextKey("auth_method")
)

// AuthMethod はリクエストの認証方式。
type AuthMethod string

const (
	// AuthMethodCookie はセッションCookieによる認証。
	AuthMethodCookie AuthMethod = "cookie"
	// AuthMethodBearer はAuthorizationヘッダーのアクセストークンによる認証。
	AuthMethodBearer AuthMethod = "bearer"
)

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// TokenVerifier はアクセストークンを検証し、現存するユーザーのIDを返す。
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// NewSessionMiddleware はリクエストの認証情報を検証するミドルウェアを返す。
// Authorization: Bearer ヘッダーがあればアクセストークンを、
// なければHTTP Only CookieのセッションIDを検証する。
// tokensがnilの場合、Bearer認証は受け付けない。
// 認証済みユーザーIDと認証方式をリクエストコンテキストに注入する。
func NewSessionMiddleware(sessionFinder SessionFinder, tokens TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if tokens == nil {
					WriteUnauthorized(w)
					return
				}
				userID, err := tokens.VerifyToken(r.Context(), token)
				if err != nil {
					slog.Warn("access token rejected",
						slog.String("error", err.Error()),
					)
					WriteUnauthorized(w)
					return
				}
				ctx := withAuth(r.Context(), userID, AuthMethodBearer)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				WriteUnauthorized(w)
				return
			}

			session, err := sessionFinder.FindByID(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to find session",
					slog.String("error", err.Error()),
				)
				WriteUnauthorized(w)
				return
			}
			if session == nil {
				WriteUnauthorized(w)
				return
			}

			ctx := withAuth(r.Context(), session.UserID, AuthMethodCookie)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
// ヘッダーがない場合はokがfalseになる。
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(token), true
}

func withAuth(ctx context.Context, userID string, method AuthMethod) context.Context {
	reportUserID(ctx, userID)
	ctx = context.WithValue(ctx, userIDContextKey, userID)
	return context.WithValue(ctx, authMethodContextKey, method)
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// AuthMethodFromContext はリクエストの認証方式を返す。未認証の場合は空文字列。
func AuthMethodFromContext(ctx context.Context) AuthMethod {
	method, _ := ctx.Value(authMethodContextKey).(AuthMethod)
	return method
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return withAuth(ctx, userID, AuthMethodCookie)
}
