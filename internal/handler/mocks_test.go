package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/postboard/internal/auth"
	"github.com/hitoshi/postboard/internal/middleware"
	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/post"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn      func(ctx context.Context, username, password string) (*auth.LoginResult, error)
	loginFn         func(ctx context.Context, username, password string) (*auth.LoginResult, error)
	loginURLFn      func(provider, state string) (string, error)
	oauthCallbackFn func(ctx context.Context, provider, code string) (*auth.LoginResult, error)
	issueTokenFn    func(ctx context.Context, sessionID string) (string, time.Time, error)
	logoutFn        func(ctx context.Context, sessionID string) error
	getUserFn       func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) RegisterWithPassword(ctx context.Context, username, password string) (*auth.LoginResult, error) {
	return m.registerFn(ctx, username, password)
}

func (m *mockAuthService) LoginWithPassword(ctx context.Context, username, password string) (*auth.LoginResult, error) {
	return m.loginFn(ctx, username, password)
}

func (m *mockAuthService) LoginURL(provider, state string) (string, error) {
	return m.loginURLFn(provider, state)
}

func (m *mockAuthService) HandleOAuthCallback(ctx context.Context, provider, code string) (*auth.LoginResult, error) {
	return m.oauthCallbackFn(ctx, provider, code)
}

func (m *mockAuthService) IssueToken(ctx context.Context, sessionID string) (string, time.Time, error) {
	return m.issueTokenFn(ctx, sessionID)
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return m.getUserFn(ctx, userID)
}

type mockPostService struct {
	listFn   func(ctx context.Context, cursor string, limit int) (*post.ListResult, error)
	getFn    func(ctx context.Context, postID string) (*model.Post, error)
	createFn func(ctx context.Context, userID, content string) (*model.Post, error)
	updateFn func(ctx context.Context, userID, postID, content string) (*model.Post, error)
	deleteFn func(ctx context.Context, userID, postID string) error
}

func (m *mockPostService) List(ctx context.Context, cursor string, limit int) (*post.ListResult, error) {
	return m.listFn(ctx, cursor, limit)
}

func (m *mockPostService) Get(ctx context.Context, postID string) (*model.Post, error) {
	return m.getFn(ctx, postID)
}

func (m *mockPostService) Create(ctx context.Context, userID, content string) (*model.Post, error) {
	return m.createFn(ctx, userID, content)
}

func (m *mockPostService) Update(ctx context.Context, userID, postID, content string) (*model.Post, error) {
	return m.updateFn(ctx, userID, postID, content)
}

func (m *mockPostService) Delete(ctx context.Context, userID, postID string) error {
	return m.deleteFn(ctx, userID, postID)
}

type mockUserService struct {
	withdrawFn func(ctx context.Context, userID string) error
}

func (m *mockUserService) Withdraw(ctx context.Context, userID string) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

// --- ヘルパー ---

var testUser = &model.User{
	ID:           "user-1",
	Username:     "alice",
	PasswordHash: "$2a$10$hash",
	GoogleID:     "g-1",
	CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
}

func loginResult(created bool) *auth.LoginResult {
	return &auth.LoginResult{
		User:    testUser,
		Session: &model.Session{ID: "session-1", UserID: testUser.ID},
		Created: created,
	}
}

// withUserID はリクエストコンテキストにユーザーIDを注入する。
func withUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.ContextWithUserID(r.Context(), userID))
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
