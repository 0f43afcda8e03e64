// Package post は投稿管理のドメインロジックを提供する。
package post

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/repository"
	"github.com/hitoshi/postboard/internal/security"
)

const (
	// DefaultMaxContentLength は投稿本文の最大文字数のデフォルト値。
	DefaultMaxContentLength = 10000
	// DefaultPageSize は一覧取得のデフォルト件数。
	DefaultPageSize = 20
	// MaxPageSize は一覧取得の最大件数。
	MaxPageSize = 100
)

// ListResult は投稿一覧の取得結果。
type ListResult struct {
	Posts      []*model.Post
	NextCursor string
	HasMore    bool
}

// Service は投稿管理のサービス層。
type Service struct {
	postRepo         repository.PostRepository
	sanitizer        security.ContentSanitizerService
	maxContentLength int
	now              func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	postRepo repository.PostRepository,
	sanitizer security.ContentSanitizerService,
	maxContentLength int,
) *Service {
	if maxContentLength <= 0 {
		maxContentLength = DefaultMaxContentLength
	}
	return &Service{
		postRepo:         postRepo,
		sanitizer:        sanitizer,
		maxContentLength: maxContentLength,
		now:              time.Now,
	}
}

// List は投稿を新しい順に返す。
// cursorには前回結果のNextCursorを指定する。
// limit+1件を取得してHasMoreを判定する。
func (s *Service) List(ctx context.Context, cursorStr string, limit int) (*ListResult, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	var cursor model.PostCursor
	if cursorStr != "" {
		var ok bool
		if cursor, ok = parseCursor(cursorStr); !ok {
			return nil, model.NewInvalidCursorError(cursorStr)
		}
	}

	posts, err := s.postRepo.List(ctx, cursor, limit+1)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	var nextCursor string
	if hasMore && len(posts) > 0 {
		nextCursor = formatCursor(posts[len(posts)-1])
	}

	return &ListResult{
		Posts:      posts,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// Get は指定IDの投稿を返す。
func (s *Service) Get(ctx context.Context, postID string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}
	return post, nil
}

// Create は投稿を作成する。本文はサニタイズ後に検証される。
func (s *Service) Create(ctx context.Context, userID, content string) (*model.Post, error) {
	cleaned, err := s.cleanContent(content)
	if err != nil {
		return nil, err
	}

	now := s.now()
	post := &model.Post{
		ID:        uuid.New().String(),
		UserID:    userID,
		Content:   cleaned,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("投稿の作成に失敗しました: %w", err)
	}

	slog.Info("post created",
		slog.String("post_id", post.ID),
		slog.String("user_id", userID),
	)
	return post, nil
}

// Update は投稿本文を更新する。投稿者以外はPOST_FORBIDDENになる。
func (s *Service) Update(ctx context.Context, userID, postID, content string) (*model.Post, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsOwnedBy(userID) {
		return nil, model.NewPostForbiddenError()
	}

	cleaned, err := s.cleanContent(content)
	if err != nil {
		return nil, err
	}

	post.Content = cleaned
	post.UpdatedAt = s.now()
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("投稿の更新に失敗しました: %w", err)
	}
	return post, nil
}

// Delete は投稿を削除する。投稿者以外はPOST_FORBIDDENになる。
func (s *Service) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if !post.IsOwnedBy(userID) {
		return model.NewPostForbiddenError()
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return fmt.Errorf("投稿の削除に失敗しました: %w", err)
	}

	slog.Info("post deleted",
		slog.String("post_id", postID),
		slog.String("user_id", userID),
	)
	return nil
}

// cleanContent はサニタイズと前後空白の除去を行い、空・上限超過を拒否する。
func (s *Service) cleanContent(content string) (string, error) {
	cleaned := strings.TrimSpace(s.sanitizer.Sanitize(content))
	if cleaned == "" {
		return "", model.NewInvalidPostContentError("本文が空です")
	}
	if utf8.RuneCountInString(cleaned) > s.maxContentLength {
		return "", model.NewInvalidPostContentError(fmt.Sprintf("%d文字を超えています", s.maxContentLength))
	}
	return cleaned, nil
}

// cursorSeparator はカーソル内のcreated_atとIDの区切り。RFC3339にもUUIDにも現れない。
const cursorSeparator = "_"

// formatCursor は投稿の並び位置を "<created_at(UTC, RFC3339Nano)>_<id>" で表す。
// UTCに揃えてクエリ文字列中で"+"が空白に化けないようにする。
func formatCursor(p *model.Post) string {
	return p.CreatedAt.UTC().Format(time.RFC3339Nano) + cursorSeparator + p.ID
}

func parseCursor(s string) (model.PostCursor, bool) {
	ts, id, found := strings.Cut(s, cursorSeparator)
	if !found {
		return model.PostCursor{}, false
	}
	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return model.PostCursor{}, false
	}
	if len(id) != 36 || uuid.Validate(id) != nil {
		return model.PostCursor{}, false
	}
	return model.PostCursor{CreatedAt: createdAt, ID: id}, true
}
