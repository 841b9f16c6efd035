package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"go-message-board/internal/model"
)

var (
	selectByEmailSQL = regexp.QuoteMeta(`FROM users WHERE lower(email) = $1`)
	selectByIDSQL    = regexp.QuoteMeta(`FROM users WHERE id = $1`)
	selectRolesSQL   = regexp.QuoteMeta(`SELECT type FROM user_roles WHERE user_id = $1`)
	insertUserSQL    = regexp.QuoteMeta(`INSERT INTO users (id, email, password_hash, created_at)`)
	insertRoleSQL    = regexp.QuoteMeta(`INSERT INTO user_roles (user_id, type) VALUES ($1, $2)`)
	existsEmailSQL   = regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = $1)`)
)

func newRepoWithMock(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewUserRepository(mock), mock
}

func TestUserRepository_FindByEmail_LoadsRoles(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(selectByEmailSQL).
		WithArgs("user@x.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("u-1", "user@x.com", "hash", created))
	mock.ExpectQuery(selectRolesSQL).
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"type"}).AddRow("USER").AddRow("ADMIN"))

	user, err := repo.FindByEmail(context.Background(), "  User@X.com ")
	require.NoError(t, err)
	require.Equal(t, "u-1", user.ID)
	require.Equal(t, "hash", user.PasswordHash)
	require.Equal(t, created, user.CreatedAt)
	require.Equal(t, []model.Role{model.RoleUser, model.RoleAdmin}, user.Roles)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByEmailSQL).
		WithArgs("ghost@x.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@x.com")
	require.ErrorIs(t, err, model.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByEmailSQL).
		WithArgs("user@x.com").
		WillReturnError(errors.New("db down"))

	_, err := repo.FindByEmail(context.Background(), "user@x.com")
	require.Error(t, err)
	require.NotErrorIs(t, err, model.ErrUserNotFound)
	require.Contains(t, err.Error(), "find user by email: db down")
}

func TestUserRepository_FindByEmail_UnknownRole(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByEmailSQL).
		WithArgs("user@x.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("u-1", "user@x.com", "hash", time.Now().UTC()))
	mock.ExpectQuery(selectRolesSQL).
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"type"}).AddRow("ROOT"))

	_, err := repo.FindByEmail(context.Background(), "user@x.com")
	require.ErrorContains(t, err, "unknown role")
}

func TestUserRepository_FindByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByIDSQL).
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("u-1", "user@x.com", "hash", time.Now().UTC()))
	mock.ExpectQuery(selectRolesSQL).
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"type"}).AddRow("USER"))

	user, err := repo.FindByID(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, []model.Role{model.RoleUser}, user.Roles)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(existsEmailSQL).
		WithArgs("user@x.com").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(context.Background(), "USER@x.com")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_InsertsUserAndDefaultRole(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(insertUserSQL).
		WithArgs(pgxmock.AnyArg(), "user@x.com", "hash", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(insertRoleSQL).
		WithArgs(pgxmock.AnyArg(), "USER").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	user, err := repo.Create(context.Background(), "User@X.com", "hash")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "user@x.com", user.Email)
	require.Equal(t, []model.Role{model.RoleUser}, user.Roles)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(insertUserSQL).
		WithArgs(pgxmock.AnyArg(), "user@x.com", "hash", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_email_lower_key"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), "user@x.com", "hash")
	require.ErrorIs(t, err, model.ErrDuplicateEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_RoleInsertFails(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(insertUserSQL).
		WithArgs(pgxmock.AnyArg(), "user@x.com", "hash", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(insertRoleSQL).
		WithArgs(pgxmock.AnyArg(), "USER").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), "user@x.com", "hash")
	require.ErrorContains(t, err, "create default role")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_AddRole(t *testing.T) {
	t.Run("inserts role", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(insertRoleSQL).
			WithArgs("u-1", "ADMIN").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.AddRole(context.Background(), "u-1", model.RoleAdmin))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(insertRoleSQL).
			WithArgs("ghost", "ADMIN").
			WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})

		err := repo.AddRole(context.Background(), "ghost", model.RoleAdmin)
		require.ErrorIs(t, err, model.ErrUserNotFound)
	})
}
