package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/postboard/internal/model"
)

// uniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolation = "23505"

// userColumns はmodel.UserFieldから検索対象カラムへの許可リスト。
var userColumns = map[model.UserField]string{
	model.UserFieldUsername:   "username",
	model.UserFieldFacebookID: "facebook_id",
	model.UserFieldGoogleID:   "google_id",
}

const selectUserColumns = `SELECT id, username, password_hash, COALESCE(facebook_id, ''), COALESCE(google_id, ''), created_at, updated_at FROM users`

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
// UUIDとして不正なIDは問い合わせずにnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if !isUUID(id) {
		return nil, nil
	}
	user, err := scanUser(r.db.QueryRowContext(ctx, selectUserColumns+` WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByField は指定フィールドが完全一致するユーザーを取得する。見つからない場合はnilを返す。
// facebook_id、google_idは未連携時にNULLで保存されるため、空文字列の検索は常にnilとなる。
func (r *PostgresUserRepo) FindByField(ctx context.Context, field model.UserField, value string) (*model.User, error) {
	column, ok := userColumns[field]
	if !ok {
		return nil, fmt.Errorf("unsupported user field: %q", field)
	}

	query := selectUserColumns + ` WHERE ` + column + ` = $1 ORDER BY created_at LIMIT 1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by %s: %w", column, err)
	}
	return user, nil
}

// Create はユーザーを作成する。
// IDが未設定の場合はUUIDを採番する。未連携のfacebook_id、google_idはNULLで保存する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	created := *user
	if created.ID == "" {
		created.ID = uuid.New().String()
	}
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, facebook_id, google_id, created_at, updated_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)`,
		created.ID, created.Username, created.PasswordHash, created.FacebookID, created.GoogleID,
		created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to insert user %q: %w", created.Username, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &created, nil
}

// DeleteByID は指定IDのユーザーを削除する。
// 関連するposts、sessionsはCASCADE削除される。
func (r *PostgresUserRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// scanUser は1行をmodel.Userに読み込む。行がない場合はnilを返す。
// isUUID はidがハイフン区切り36文字のUUID表記かを返す。
// 不正な文字列を渡すとPostgreSQLが22P02を返すため、未検出として扱う。
func isUUID(id string) bool {
	return len(id) == 36 && uuid.Validate(id) == nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash,
		&user.FacebookID, &user.GoogleID,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// isUniqueViolation はエラーがPostgreSQLの一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
