// AngelaMos | 2026
// guard_test.go

package guard

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/role"
)

type stubValidator struct {
	identity *Identity
	err      error
}

func (s stubValidator) Validate(context.Context, string) (*Identity, error) {
	return s.identity, s.err
}

type stubLoader struct {
	principals map[string]*Principal
	err        error
}

func (s stubLoader) LoadPrincipal(_ context.Context, id string) (*Principal, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.principals[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return p, nil
}

func TestRequireRejectsLowerRoles(t *testing.T) {
	for i, required := range role.All {
		for j, actual := range role.All {
			p := &Principal{UserID: "u1", Role: actual}
			err := Require(required)(p)

			if j < i {
				assert.ErrorIs(t, err, ErrInsufficientRole, "%s requiring %s", actual, required)
			} else {
				assert.NoError(t, err, "%s requiring %s", actual, required)
			}
		}
	}
}

func TestBannedRejectedRegardlessOfRole(t *testing.T) {
	for _, r := range role.All {
		t.Run(string(r), func(t *testing.T) {
			p := &Principal{UserID: "u1", Role: r, IsBanned: true}

			for _, required := range role.All {
				err := Require(required)(p)
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrAccountBanned)
				assert.ErrorIs(t, err, core.ErrForbidden)
			}
		})
	}
}

func TestBanTakesPriorityOverRole(t *testing.T) {
	p := &Principal{UserID: "u1", Role: role.User, IsBanned: true}

	err := Require(role.Admin)(p)
	assert.ErrorIs(t, err, ErrAccountBanned)
	assert.NotErrorIs(t, err, ErrInsufficientRole)
}

func TestAuthenticatedRejectsNil(t *testing.T) {
	err := Require(role.User)(nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestAllShortCircuits(t *testing.T) {
	calls := 0
	counting := func(*Principal) error {
		calls++
		return nil
	}
	failing := func(*Principal) error {
		return errors.New("first failure")
	}

	err := All(counting, failing, counting)(&Principal{})

	assert.EqualError(t, err, "first failure")
	assert.Equal(t, 1, calls)
}

func TestOwnerOnly(t *testing.T) {
	owner := &Principal{UserID: "owner", Role: role.Owner}
	admin := &Principal{UserID: "admin", Role: role.Admin}

	t.Run("owner changes a user", func(t *testing.T) {
		assert.NoError(t, OwnerOnly(role.User)(owner))
	})

	t.Run("owner changes an admin", func(t *testing.T) {
		assert.NoError(t, OwnerOnly(role.Admin)(owner))
	})

	t.Run("admin cannot change roles", func(t *testing.T) {
		assert.ErrorIs(t, OwnerOnly(role.User)(admin), ErrOwnerRequired)
	})

	t.Run("owner role is immutable even for the owner", func(t *testing.T) {
		assert.ErrorIs(t, OwnerOnly(role.Owner)(owner), ErrOwnerImmutable)
	})

	t.Run("banned owner is rejected first", func(t *testing.T) {
		banned := &Principal{UserID: "owner", Role: role.Owner, IsBanned: true}
		err := All(Require(role.Owner), OwnerOnly(role.User))(banned)
		assert.ErrorIs(t, err, ErrAccountBanned)
	})
}

func TestAuthenticate(t *testing.T) {
	live := &Principal{UserID: "u1", Role: role.Admin, Plan: "pro"}
	loader := stubLoader{principals: map[string]*Principal{"u1": live}}
	ctx := context.Background()

	t.Run("missing token", func(t *testing.T) {
		_, err := Authenticate(ctx, stubValidator{}, loader, "")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("expired token", func(t *testing.T) {
		v := stubValidator{err: fmt.Errorf("verify token: %w", core.ErrTokenExpired)}
		_, err := Authenticate(ctx, v, loader, "tok")
		assert.ErrorIs(t, err, core.ErrTokenExpired)
	})

	t.Run("malformed token", func(t *testing.T) {
		v := stubValidator{err: fmt.Errorf("verify token: %w", core.ErrTokenInvalid)}
		_, err := Authenticate(ctx, v, loader, "tok")
		assert.ErrorIs(t, err, core.ErrTokenInvalid)
	})

	t.Run("live role wins over token snapshot", func(t *testing.T) {
		v := stubValidator{identity: &Identity{UserID: "u1", Role: role.User}}
		p, err := Authenticate(ctx, v, loader, "tok")
		require.NoError(t, err)
		assert.Equal(t, role.Admin, p.Role)
	})

	t.Run("deleted user", func(t *testing.T) {
		v := stubValidator{identity: &Identity{UserID: "gone", Role: role.User}}
		_, err := Authenticate(ctx, v, loader, "tok")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("store failure is not an auth failure", func(t *testing.T) {
		v := stubValidator{identity: &Identity{UserID: "u1"}}
		boom := errors.New("connection refused")
		_, err := Authenticate(ctx, v, stubLoader{err: boom}, "tok")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, core.ErrUnauthorized)
	})
}

func TestName(t *testing.T) {
	assert.Equal(t, "not_banned", Name(ErrAccountBanned))
	assert.Equal(t, "role_at_least", Name(ErrInsufficientRole))
	assert.Equal(t, "owner_only", Name(ErrOwnerImmutable))
	assert.Equal(t, "authenticate", Name(ErrUnauthenticated))
}
