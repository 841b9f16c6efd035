package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"go-message-board/internal/model"
	"go-message-board/internal/util"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DBTX is the subset of *pgxpool.Pool the repositories need.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UserRepository stores users in Postgres. Email uniqueness is enforced by the
// users_email_lower_key index, never by a read-before-write.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at
		 FROM users WHERE lower(email) = $1`, util.NormalizeEmail(email)).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by email: %w", err)
	}

	return r.withRoles(ctx, u)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at
		 FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}

	return r.withRoles(ctx, u)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = $1)`,
		util.NormalizeEmail(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

// Create inserts the user and its default role in one transaction.
func (r *UserRepository) Create(ctx context.Context, email string, passwordHash string) (model.User, error) {
	u := model.User{
		ID:           uuid.NewString(),
		Email:        util.NormalizeEmail(email),
		PasswordHash: passwordHash,
		Roles:        []model.Role{model.DefaultRole},
		CreatedAt:    time.Now().UTC(),
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.User{}, fmt.Errorf("begin create user: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return model.User{}, model.ErrDuplicateEmail
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO user_roles (user_id, type) VALUES ($1, $2)`,
		u.ID, string(model.DefaultRole))
	if err != nil {
		return model.User{}, fmt.Errorf("create default role: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.User{}, fmt.Errorf("commit create user: %w", err)
	}

	return u, nil
}

func (r *UserRepository) AddRole(ctx context.Context, userID string, role model.Role) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_roles (user_id, type) VALUES ($1, $2)
		 ON CONFLICT (user_id, type) DO NOTHING`,
		userID, string(role))
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return model.ErrUserNotFound
		}
		return fmt.Errorf("add role: %w", err)
	}
	return nil
}

func (r *UserRepository) withRoles(ctx context.Context, u model.User) (model.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT type FROM user_roles WHERE user_id = $1 ORDER BY type DESC`, u.ID)
	if err != nil {
		return model.User{}, fmt.Errorf("load roles: %w", err)
	}
	defer rows.Close()

	roles := make([]model.Role, 0, 2)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return model.User{}, fmt.Errorf("scan role: %w", err)
		}
		role, ok := model.ParseRole(raw)
		if !ok {
			return model.User{}, fmt.Errorf("load roles: unknown role %q for user %s", raw, u.ID)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return model.User{}, fmt.Errorf("load roles: %w", err)
	}

	u.Roles = roles
	return u, nil
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
