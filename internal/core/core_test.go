// AngelaMos | 2026
// core_test.go

package core

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("battery staple", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, rehash, err := VerifyPasswordWithRehash("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, rehash, "current parameters need no rehash")
}

func TestLegacyBcryptIsRehashed(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, rehash, err := VerifyPasswordWithRehash("s3cret", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotEmpty(t, rehash)
	assert.True(t, strings.HasPrefix(rehash, "$argon2id$"))

	ok, _, err = VerifyPasswordWithRehash("wrong", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyTimingSafeWithoutAccount(t *testing.T) {
	ok, rehash, err := VerifyPasswordTimingSafe("anything", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, rehash)
}

func TestMalformedHash(t *testing.T) {
	_, err := VerifyPassword("x", "$md5$nope")
	assert.Error(t, err)
}

func TestJSONErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("get page: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"duplicate", DuplicateError("slug"), http.StatusConflict, "CONFLICT"},
		{"quota", QuotaExceededError("pages", 3), http.StatusForbidden, "QUOTA_EXCEEDED"},
		{"wrapped quota", fmt.Errorf("create page: %w", ErrQuotaExceeded), http.StatusForbidden, "QUOTA_EXCEEDED"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"expired token", ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"validation", ValidationError("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			JSONError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)

			var body struct {
				Success bool `json:"success"`
				Error   struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestInternalErrorHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, errors.New("pq: password authentication failed"))

	assert.NotContains(t, rec.Body.String(), "password authentication")
}

func TestInTx(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE pages").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = InTx(t.Context(), sqlx.NewDb(db, "sqlmock"), func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(t.Context(), "UPDATE pages SET title = $1", "x")
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and returns the original error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err = InTx(t.Context(), sqlx.NewDb(db, "sqlmock"), func(*sqlx.Tx) error {
			return ErrQuotaExceeded
		})
		assert.ErrorIs(t, err, ErrQuotaExceeded)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsDuplicateKey(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsDuplicateKey(errors.New("23505")))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(sql.ErrNoRows))
	assert.True(t, IsNoRows(fmt.Errorf("find page: %w", &pgconn.PgError{Code: "22P02"})))
	assert.False(t, IsNoRows(&pgconn.PgError{Code: "08006"}))
	assert.False(t, IsNoRows(nil))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, EscapeLike(`50%_off\`))
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?skip=20&limit=abc", nil)

	assert.Equal(t, 20, QueryInt(r, "skip", 0))
	assert.Equal(t, 50, QueryInt(r, "limit", 50))
	assert.Equal(t, 7, QueryInt(r, "missing", 7))
}
