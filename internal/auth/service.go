// Package auth はクレデンシャル認証、OAuth認証フロー、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/hitoshi/postboard/internal/metrics"
	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/repository"
)

const (
	// DefaultMinPasswordLength はパスワードの最小文字数のデフォルト値。
	DefaultMinPasswordLength = 8
	// bcryptは72バイトを超える入力を扱えない
	maxPasswordBytes = 72
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,32}$`)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge     int // セッション有効期間（秒）
	MinPasswordLength int
}

// LoginResult はログイン・登録処理の結果。
type LoginResult struct {
	User    *model.User
	Session *model.Session
	// Created は登録処理で新規ユーザーを作成した場合にtrue。
	Created bool
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	authenticator *Authenticator
	sessionRepo   repository.SessionRepository
	tokens        *TokenIssuer
	providers     map[string]OAuthProvider
	metrics       metrics.MetricsCollector
	config        ServiceConfig
}

// NewService はServiceを生成する。providersは設定済みのOAuthプロバイダーのみを渡す。
func NewService(
	authenticator *Authenticator,
	sessionRepo repository.SessionRepository,
	tokens *TokenIssuer,
	collector metrics.MetricsCollector,
	config ServiceConfig,
	providers ...OAuthProvider,
) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	if config.MinPasswordLength <= 0 {
		config.MinPasswordLength = DefaultMinPasswordLength
	}

	byName := make(map[string]OAuthProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}

	return &Service{
		authenticator: authenticator,
		sessionRepo:   sessionRepo,
		tokens:        tokens,
		providers:     byName,
		metrics:       collector,
		config:        config,
	}
}

// RegisterWithPassword はユーザー名とパスワードでユーザーを登録し、セッションを発行する。
// 同じユーザー名のユーザーが既に存在する場合は、パスワードが一致すればそのユーザーでログインする。
func (s *Service) RegisterWithPassword(ctx context.Context, username, password string) (*LoginResult, error) {
	if !usernamePattern.MatchString(username) {
		return nil, model.NewInvalidUsernameError()
	}
	if utf8.RuneCountInString(password) < s.config.MinPasswordLength || len(password) > maxPasswordBytes {
		return nil, model.NewInvalidPasswordError(s.config.MinPasswordLength)
	}

	cred := UsernamePassword{Username: username, Password: password}
	user, created, err := s.authenticator.FindOrCreate(ctx, cred)
	if err != nil {
		return nil, err
	}

	// 既存ユーザーの場合はパスワードが一致したときのみログインさせる
	if !created {
		if _, err := s.authenticator.Authenticate(ctx, cred); err != nil {
			if errors.Is(err, model.ErrInvalidCredentials) {
				return nil, model.NewUsernameTakenError(username)
			}
			return nil, err
		}
	}
	s.metrics.RecordRegistration(cred.Kind(), created)

	return s.startSession(ctx, user, created)
}

// LoginWithPassword はユーザー名とパスワードで認証し、セッションを発行する。
func (s *Service) LoginWithPassword(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.authenticate(ctx, UsernamePassword{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user, false)
}

// HasProvider はプロバイダーが設定済みかを返す。
func (s *Service) HasProvider(provider string) bool {
	_, ok := s.providers[provider]
	return ok
}

// LoginURL は指定プロバイダーのOAuth認証URLを生成する。
func (s *Service) LoginURL(provider, state string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", model.NewUnknownProviderError(provider)
	}
	return p.GetLoginURL(state), nil
}

// HandleOAuthCallback はOAuthコールバックを処理し、セッションを発行する。
// 未登録のアカウントの場合はユーザーを自動作成する。
func (s *Service) HandleOAuthCallback(ctx context.Context, provider, code string) (*LoginResult, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, model.NewUnknownProviderError(provider)
	}

	userInfo, err := p.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	cred, err := credentialForProvider(provider, userInfo.ProviderUserID)
	if err != nil {
		return nil, err
	}

	user, created, err := s.authenticator.FindOrCreate(ctx, cred)
	if err != nil {
		s.metrics.RecordLogin(cred.Kind(), metrics.ResultError)
		return nil, err
	}
	s.metrics.RecordRegistration(cred.Kind(), created)
	s.metrics.RecordLogin(cred.Kind(), metrics.ResultSuccess)

	slog.Info("oauth login",
		slog.String("user_id", user.ID),
		slog.String("provider", provider),
		slog.Bool("created", created),
	)

	return s.startSession(ctx, user, created)
}

// IssueToken はセッションに紐づくユーザーのアクセストークンを発行する。
func (s *Service) IssueToken(ctx context.Context, sessionID string) (string, time.Time, error) {
	user, err := s.GetCurrentUser(ctx, sessionID)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.tokens.Issue(user)
}

// VerifyToken はアクセストークンを検証し、ユーザーIDを返す。
// 署名が有効でも対象ユーザーが退会済みの場合はUNAUTHORIZEDを返す。
func (s *Service) VerifyToken(ctx context.Context, token string) (string, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}

	user, err := s.GetUser(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return "", model.NewUnauthorizedError()
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve token subject: %w", err)
	}
	return user.ID, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, model.NewUnauthorizedError()
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, model.NewUnauthorizedError()
	}

	return s.GetUser(ctx, session.UserID)
}

// GetUser はユーザーIDからユーザーを取得する。
func (s *Service) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.authenticator.Authenticate(ctx, Identifier{ID: userID})
}

// authenticate は認証を行い、結果をメトリクスに記録する。
func (s *Service) authenticate(ctx context.Context, cred Credential) (*model.User, error) {
	start := time.Now()
	user, err := s.authenticator.Authenticate(ctx, cred)
	s.metrics.RecordAuthLatency(time.Since(start))

	switch {
	case err == nil:
		s.metrics.RecordLogin(cred.Kind(), metrics.ResultSuccess)
	case errors.Is(err, model.ErrUserNotFound):
		s.metrics.RecordLogin(cred.Kind(), metrics.ResultNotFound)
	case errors.Is(err, model.ErrInvalidCredentials):
		s.metrics.RecordLogin(cred.Kind(), metrics.ResultInvalid)
	default:
		s.metrics.RecordLogin(cred.Kind(), metrics.ResultError)
	}
	return user, err
}

// startSession はセッションを発行してLoginResultを組み立てる。
func (s *Service) startSession(ctx context.Context, user *model.User, created bool) (*LoginResult, error) {
	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &LoginResult{User: user, Session: session, Created: created}, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// credentialForProvider はプロバイダー名と外部IDからクレデンシャルを組み立てる。
func credentialForProvider(provider, uniqueID string) (Credential, error) {
	switch provider {
	case ProviderFacebook:
		return FacebookAccount{UniqueID: uniqueID}, nil
	case ProviderGoogle:
		return GoogleAccount{UniqueID: uniqueID}, nil
	default:
		return nil, model.NewUnknownProviderError(provider)
	}
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
