package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/ivanvallejoss/hr-system/internal/core/user"
	pgdb "github.com/ivanvallejoss/hr-system/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `id, email, name, status, tier, created_at, updated_at`

// UserRepository は PostgreSQL を利用したユーザー永続化の実装です。
type UserRepository struct {
	pool pgdb.Queryer
}

// NewUserRepository は UserRepository を生成します。
func NewUserRepository(pool pgdb.Queryer) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create はユーザーを新規作成します。
func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO users (email, name, status, tier, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+userColumns,
		u.Email, string(u.Status), string(u.Tier), u.CreatedAt, u.UpdatedAt)

	created, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return created, nil
}

// Update はユーザー情報を更新します。
func (r *UserRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE users
           SET name = $1,
               status = $2,
               tier = $3,
               updated_at = $4
         WHERE id = $5
        RETURNING `+userColumns,
		u.Name, string(u.Status), string(u.Tier), u.UpdatedAt, u.ID)

	updated, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return updated, nil
}

// Delete はユーザーを削除します。
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translateUserPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// FindByID はIDでユーザーを取得します。
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return found, nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE email = $1
         LIMIT 1
    `, email)

	found, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return found, nil
}

// List はユーザーの一覧を取得します。
func (r *UserRepository) List(ctx context.Context, filter user.ListUsersFilter) ([]*user.User, string, error) {
	if filter.Limit <= 0 {
		return nil, "", user.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", user.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 4)
	conditions := make([]string, 0, 2)

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, "status = "+placeholder(args))
	}
	if filter.Tier != nil {
		args = append(args, string(*filter.Tier))
		conditions = append(conditions, "tier = "+placeholder(args))
	}

	args = append(args, limitWithBuffer)
	limitPlaceholder := placeholder(args)
	args = append(args, filter.Offset)
	offsetPlaceholder := placeholder(args)

	users, err := r.queryUsers(ctx, `
        SELECT `+userColumns+`
          FROM users`+whereClause(conditions)+`
         ORDER BY created_at DESC, id DESC
         LIMIT `+limitPlaceholder+`
        OFFSET `+offsetPlaceholder+`
    `, args...)
	if err != nil {
		return nil, "", err
	}

	var nextToken string
	if len(users) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		users = users[:filter.Limit]
	}

	return users, nextToken, nil
}

// Count は全ユーザー数を返します。
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var count int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, translateUserPgError(err)
	}
	return count, nil
}

// CountByTier は区分ごとのユーザー数を返します。
func (r *UserRepository) CountByTier(ctx context.Context) (map[user.Tier]int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT tier, COUNT(*)
          FROM users
         GROUP BY tier
    `)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	defer rows.Close()

	counts := make(map[user.Tier]int)
	for rows.Next() {
		var (
			tier  string
			count int
		)
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, err
		}
		counts[user.Tier(tier)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, translateUserPgError(err)
	}
	return counts, nil
}

// ListWithoutEmployee は社員プロファイルのないユーザーを返します。
func (r *UserRepository) ListWithoutEmployee(ctx context.Context, limit int) ([]*user.User, error) {
	return r.queryUsers(ctx, `
        SELECT u.id, u.email, u.name, u.status, u.tier, u.created_at, u.updated_at
          FROM users u
         WHERE NOT EXISTS (SELECT 1 FROM employees e WHERE e.user_id = u.id)
         ORDER BY u.created_at DESC, u.id DESC
         LIMIT $1
    `, limit)
}

// ListCreatedSince は since 以降に作成されたユーザーを新しい順に返します。
func (r *UserRepository) ListCreatedSince(ctx context.Context, since time.Time, limit int) ([]*user.User, error) {
	return r.queryUsers(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE created_at >= $1
         ORDER BY created_at DESC, id DESC
         LIMIT $2
    `, since, limit)
}

// SyncTeamLeadTiers は部下の有無に合わせて employee と team_lead を付け替えます。
func (r *UserRepository) SyncTeamLeadTiers(ctx context.Context, updatedAt time.Time) (user.SyncResult, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	promoted, err := exec.Exec(ctx, `
        UPDATE users u
           SET tier = 'team_lead',
               updated_at = $1
          FROM employees e
         WHERE e.user_id = u.id
           AND u.tier = 'employee'
           AND EXISTS (SELECT 1 FROM employees sub WHERE sub.manager_id = e.id)
    `, updatedAt)
	if err != nil {
		return user.SyncResult{}, translateUserPgError(err)
	}

	demoted, err := exec.Exec(ctx, `
        UPDATE users u
           SET tier = 'employee',
               updated_at = $1
         WHERE u.tier = 'team_lead'
           AND NOT EXISTS (
               SELECT 1
                 FROM employees e
                 JOIN employees sub ON sub.manager_id = e.id
                WHERE e.user_id = u.id
           )
    `, updatedAt)
	if err != nil {
		return user.SyncResult{}, translateUserPgError(err)
	}

	return user.SyncResult{
		Promoted: int(promoted.RowsAffected()),
		Demoted:  int(demoted.RowsAffected()),
	}, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, translateUserPgError(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, translateUserPgError(err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		id                   string
		email                string
		name                 string
		status               string
		tier                 string
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &email, &name, &status, &tier, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	return &user.User{
		ID:        id,
		Email:     email,
		Name:      name,
		Status:    user.Status(status),
		Tier:      user.Tier(tier),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func translateUserPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return user.ErrEmailAlreadyExists
		case foreignKeyViolationCode:
			if pgErr.ConstraintName == "employees_user_id_fkey" {
				return user.ErrUserHasEmployee
			}
		case checkViolationCode:
			switch pgErr.ConstraintName {
			case "users_tier_check":
				return user.ErrInvalidTier
			case "users_status_check":
				return user.ErrInvalidStatus
			}
		}
	}
	return err
}
