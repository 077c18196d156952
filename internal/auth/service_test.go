// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/guard"
	"github.com/carterperez-dev/smartlink/internal/role"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*UserInfo
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*UserInfo)}
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (m *memUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (m *memUsers) Create(_ context.Context, nu NewUser) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == nu.Email || strings.EqualFold(u.Username, nu.Username) {
			return nil, fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}

	u := &UserInfo{
		ID:           uuid.New().String(),
		Email:        nu.Email,
		Username:     nu.Username,
		PasswordHash: nu.PasswordHash,
		Role:         nu.Role,
		Plan:         nu.Plan,
		IsVerified:   nu.IsVerified,
	}
	m.users[u.ID] = u

	copied := *u
	return &copied, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	u.PasswordHash = hash
	return nil
}

func newTestService(t *testing.T, users UserProvider) *Service {
	t.Helper()
	return NewService(newTestTokenService(t, testJWTConfig()), users, " Owner@Example.com ", nil)
}

func TestRegisterBindsOwnerEmail(t *testing.T) {
	svc := newTestService(t, newMemUsers())
	ctx := context.Background()

	owner, err := svc.Register(ctx, RegisterRequest{
		Email:    "OWNER@example.com",
		Username: "theowner",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner", owner.User.Role)
	assert.Equal(t, "pro", owner.User.Plan)
	assert.True(t, owner.User.IsVerified)
	assert.NotEmpty(t, owner.Token)
	assert.Equal(t, "Bearer", owner.TokenType)

	regular, err := svc.Register(ctx, RegisterRequest{
		Email:    "fan@example.com",
		Username: "fan",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.Equal(t, "user", regular.User.Role)
	assert.Equal(t, "free", regular.User.Plan)
	assert.False(t, regular.User.IsVerified)
}

func TestRegisterDuplicate(t *testing.T) {
	svc := newTestService(t, newMemUsers())
	ctx := context.Background()
	req := RegisterRequest{Email: "a@example.com", Username: "alpha", Password: "password123"}

	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)
}

func TestLogin(t *testing.T) {
	users := newMemUsers()
	svc := newTestService(t, users)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{Email: "a@example.com", Username: "alpha", Password: "password123"})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := svc.Login(ctx, LoginRequest{Email: "A@example.com", Password: "password123"})
		require.NoError(t, err)

		identity, err := svc.tokens.Validate(ctx, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, identity.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "password999"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("banned user", func(t *testing.T) {
		users.users[reg.User.ID].IsBanned = true
		defer func() { users.users[reg.User.ID].IsBanned = false }()

		_, err := svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "password123"})
		assert.ErrorIs(t, err, guard.ErrAccountBanned)
	})
}

func TestLoginUpgradesBcryptHash(t *testing.T) {
	users := newMemUsers()
	svc := newTestService(t, users)
	ctx := context.Background()

	legacy, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	u, err := users.Create(ctx, NewUser{
		Email:        "legacy@example.com",
		Username:     "legacy",
		PasswordHash: string(legacy),
		Role:         role.User,
		Plan:         "free",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "legacy@example.com", Password: "password123"})
	require.NoError(t, err)

	stored, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))

	_, err = svc.Login(ctx, LoginRequest{Email: "legacy@example.com", Password: "password123"})
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t, newMemUsers())
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{Email: "a@example.com", Username: "alpha", Password: "password123"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, reg.User.ID, ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newpassword1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, reg.User.ID, ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newpassword1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "newpassword1"})
	assert.NoError(t, err)
}
