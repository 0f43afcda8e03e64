package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/repository"
)

// 外部アカウントから自動生成するユーザー名の接頭辞。
const (
	FacebookUsernamePrefix = "fb"
	GoogleUsernamePrefix   = "goog"
)

// Authenticator はクレデンシャルからユーザーを特定・登録する。
type Authenticator struct {
	users  repository.UserRepository
	hasher PasswordHasher
}

// NewAuthenticator はAuthenticatorを生成する。
func NewAuthenticator(users repository.UserRepository, hasher PasswordHasher) *Authenticator {
	return &Authenticator{users: users, hasher: hasher}
}

// Authenticate はクレデンシャルに対応するユーザーを返す。ストアへの書き込みは行わない。
//
//   - ユーザーが存在しない場合は USER_NOT_FOUND
//   - パスワード不一致は INVALID_CREDENTIALS
//   - 未対応のクレデンシャルは UNSUPPORTED_CREDENTIAL
func (a *Authenticator) Authenticate(ctx context.Context, cred Credential) (*model.User, error) {
	var (
		user *model.User
		err  error
	)

	switch c := cred.(type) {
	case Identifier:
		if c.ID == "" {
			return nil, model.NewUserNotFoundError()
		}
		user, err = a.users.FindByID(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to find user by id: %w", err)
		}
	case UsernamePassword:
		user, err = a.findByField(ctx, model.UserFieldUsername, c.Username)
		if err != nil {
			return nil, err
		}
		if user != nil && !a.hasher.Verify(c.Password, user.PasswordHash) {
			return nil, model.NewInvalidCredentialsError()
		}
	case FacebookAccount:
		user, err = a.findByField(ctx, model.UserFieldFacebookID, c.UniqueID)
		if err != nil {
			return nil, err
		}
	case GoogleAccount:
		user, err = a.findByField(ctx, model.UserFieldGoogleID, c.UniqueID)
		if err != nil {
			return nil, err
		}
	default:
		return nil, model.NewUnsupportedCredentialError(kindOf(cred))
	}

	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// Register はクレデンシャルに対応するユーザーを返し、存在しなければ作成する。
func (a *Authenticator) Register(ctx context.Context, cred Credential) (*model.User, error) {
	user, _, err := a.FindOrCreate(ctx, cred)
	return user, err
}

// FindOrCreate はRegisterと同じ処理を行い、新規作成したかどうかも返す。
// 既存ユーザーはそのまま返し、パスワードの再ハッシュも行わない。
// ストアへの書き込みは1回まで。
func (a *Authenticator) FindOrCreate(ctx context.Context, cred Credential) (*model.User, bool, error) {
	var (
		field model.UserField
		key   string
		build func() (*model.User, error)
	)

	switch c := cred.(type) {
	case UsernamePassword:
		field, key = model.UserFieldUsername, c.Username
		build = func() (*model.User, error) {
			hash, err := a.hasher.Hash(c.Password)
			if err != nil {
				return nil, err
			}
			return &model.User{Username: c.Username, PasswordHash: hash}, nil
		}
	case FacebookAccount:
		field, key = model.UserFieldFacebookID, c.UniqueID
		build = func() (*model.User, error) {
			return &model.User{Username: FacebookUsernamePrefix + c.UniqueID, FacebookID: c.UniqueID}, nil
		}
	case GoogleAccount:
		field, key = model.UserFieldGoogleID, c.UniqueID
		build = func() (*model.User, error) {
			return &model.User{Username: GoogleUsernamePrefix + c.UniqueID, GoogleID: c.UniqueID}, nil
		}
	default:
		return nil, false, model.NewUnsupportedCredentialError(kindOf(cred))
	}

	// 空キーは「未連携」を意味するため登録できない
	if key == "" {
		return nil, false, model.NewInvalidCredentialsError()
	}

	existing, err := a.findByField(ctx, field, key)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	newUser, err := build()
	if err != nil {
		return nil, false, err
	}

	created, err := a.users.Create(ctx, newUser)
	if errors.Is(err, repository.ErrDuplicate) {
		// 同時登録で先を越された場合は同じキーで一度だけ再取得する
		existing, ferr := a.findByField(ctx, field, key)
		if ferr != nil {
			return nil, false, ferr
		}
		if existing != nil {
			slog.Info("registration resolved to concurrently created user",
				slog.String("user_id", existing.ID),
				slog.String("kind", cred.Kind()),
			)
			return existing, false, nil
		}
		return nil, false, model.NewUsernameTakenError(newUser.Username)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user created",
		slog.String("user_id", created.ID),
		slog.String("kind", cred.Kind()),
	)
	return created, true, nil
}

// findByField は空キーの場合に問い合わせを行わずnilを返す。
func (a *Authenticator) findByField(ctx context.Context, field model.UserField, value string) (*model.User, error) {
	if value == "" {
		return nil, nil
	}
	user, err := a.users.FindByField(ctx, field, value)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by %s: %w", field, err)
	}
	return user, nil
}
