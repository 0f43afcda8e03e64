package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/repository"
)

// --- テスト用フェイク ---

// memoryUserStore はユニーク制約を持つインメモリのUserRepository。
type memoryUserStore struct {
	mu     sync.Mutex
	users  []*model.User
	seq    int
	writes int
	reads  int

	// createHook はCreateの直前に呼ばれる。同時登録の再現に使用する。
	createHook func()
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{}
}

func (s *memoryUserStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	for _, u := range s.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memoryUserStore) FindByField(_ context.Context, field model.UserField, value string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	for _, u := range s.users {
		if fieldValue(u, field) == value {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memoryUserStore) Create(_ context.Context, user *model.User) (*model.User, error) {
	if s.createHook != nil {
		s.createHook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username ||
			(user.FacebookID != "" && u.FacebookID == user.FacebookID) ||
			(user.GoogleID != "" && u.GoogleID == user.GoogleID) {
			return nil, fmt.Errorf("insert user: %w", repository.ErrDuplicate)
		}
	}

	s.seq++
	s.writes++
	created := *user
	created.ID = fmt.Sprintf("user-%d", s.seq)
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	s.users = append(s.users, &created)

	result := created
	return &result, nil
}

func (s *memoryUserStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			s.writes++
			return nil
		}
	}
	return fmt.Errorf("user not found: %s", id)
}

// insert はCreateを経由せずにユーザーを直接追加する。書き込み回数には数えない。
func (s *memoryUserStore) insert(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.users = append(s.users, &copied)
}

func (s *memoryUserStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *memoryUserStore) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func fieldValue(u *model.User, field model.UserField) string {
	switch field {
	case model.UserFieldUsername:
		return u.Username
	case model.UserFieldFacebookID:
		return u.FacebookID
	case model.UserFieldGoogleID:
		return u.GoogleID
	}
	return ""
}

// countingHasher は呼び出し回数を数える可逆ではない簡易ハッシャー。
type countingHasher struct {
	hashCalls   int
	verifyCalls int
	hashErr     error
}

func (h *countingHasher) Hash(plaintext string) (string, error) {
	h.hashCalls++
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + plaintext, nil
}

func (h *countingHasher) Verify(plaintext, hash string) bool {
	h.verifyCalls++
	return hash != "" && hash == "hashed:"+plaintext
}

// mockUserRepo は関数フィールドで振る舞いを差し替えるUserRepository。
type mockUserRepo struct {
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByFieldFn func(ctx context.Context, field model.UserField, value string) (*model.User, error)
	createFn      func(ctx context.Context, user *model.User) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByField(ctx context.Context, field model.UserField, value string) (*model.User, error) {
	if m.findByFieldFn != nil {
		return m.findByFieldFn(ctx, field, value)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	created := *user
	created.ID = "created-id"
	return &created, nil
}

func (m *mockUserRepo) DeleteByID(_ context.Context, _ string) error {
	return nil
}

type mockSessionRepo struct {
	createFn     func(ctx context.Context, session *model.Session) error
	findByIDFn   func(ctx context.Context, id string) (*model.Session, error)
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

func (m *mockSessionRepo) DeleteByUserID(_ context.Context, _ string) error {
	return nil
}

func (m *mockSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

var (
	_ repository.UserRepository    = (*memoryUserStore)(nil)
	_ repository.UserRepository    = (*mockUserRepo)(nil)
	_ repository.SessionRepository = (*mockSessionRepo)(nil)
	_ PasswordHasher               = (*countingHasher)(nil)
)
