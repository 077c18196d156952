// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/role"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

var userRowColumns = []string{
	"id", "email", "username", "password_hash", "role", "plan",
	"is_banned", "is_verified", "status", "created_at", "updated_at",
}

func TestRepositoryGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u1", "a@example.com", "alice", "hash", "moderator", "pro",
				false, true, StatusActive, now, now))

	u, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, role.Moderator, u.Role)
	assert.Equal(t, "pro", u.Plan)
	assert.True(t, u.IsVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryGetByMalformedID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("abc").
		WillReturnError(&pgconn.PgError{Code: "22P02"})

	_, err := repo.GetByID(context.Background(), "abc")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryCreateDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &User{ID: "u1", Email: "a@example.com"})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestRepositorySetBannedMissingUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE users\\s+SET is_banned = \\$2").
		WithArgs("ghost", true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetBanned(context.Background(), "ghost", true)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryReassignPlan(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE users SET plan = \\$2(.+)WHERE plan = \\$1").
		WithArgs("ultimate", "pro").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.ReassignPlan(context.Background(), "ultimate", "pro")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestRepositoryListFilters(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users u WHERE TRUE AND \\(u.email ILIKE \\$1 OR u.username ILIKE \\$1\\) AND u.plan = \\$2").
		WithArgs("%50\\%%", "pro").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	cols := append(append([]string{}, userRowColumns...), "page_count", "total_clicks")
	mock.ExpectQuery("SELECT u.id(.+)LIMIT \\$3 OFFSET \\$4").
		WithArgs("%50\\%%", "pro", 100, 0).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("u1", "a@example.com", "alice", "hash", "user", "pro",
				false, false, StatusActive, now, now, 3, 42))

	users, total, err := repo.List(context.Background(), ListUsersParams{
		Search:   "50%",
		Plan:     "pro",
		PageSize: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, 3, users[0].PageCount)
	assert.Equal(t, 42, users[0].TotalClicks)
	assert.NoError(t, mock.ExpectationsWereMet())
}
