// AngelaMos | 2026
// guard.go

package guard

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/role"
)

var (
	ErrUnauthenticated = core.NewAppError(
		core.ErrUnauthorized,
		"authentication required",
		http.StatusUnauthorized,
		"UNAUTHENTICATED",
	)
	ErrAccountBanned = core.NewAppError(
		core.ErrForbidden,
		"account banned",
		http.StatusForbidden,
		"ACCOUNT_BANNED",
	)
	ErrInsufficientRole = core.NewAppError(
		core.ErrForbidden,
		"insufficient role",
		http.StatusForbidden,
		"INSUFFICIENT_ROLE",
	)
	ErrOwnerRequired = core.NewAppError(
		core.ErrForbidden,
		"only the owner can change roles",
		http.StatusForbidden,
		"OWNER_REQUIRED",
	)
	ErrOwnerImmutable = core.NewAppError(
		core.ErrForbidden,
		"the owner's role cannot be changed",
		http.StatusForbidden,
		"OWNER_IMMUTABLE",
	)
)

// Principal is the live identity of one request. It is rebuilt from the
// credential store on every request and never cached.
type Principal struct {
	UserID     string
	Email      string
	Username   string
	Role       role.Role
	Plan       string
	IsBanned   bool
	IsVerified bool
}

func (p *Principal) Satisfies(required role.Role) bool {
	return role.Satisfies(p.Role, required)
}

func (p *Principal) IsOwner() bool {
	return p.Role == role.Owner
}

// Identity is what a validated token asserts. The role is a snapshot from
// issuance and is not used for decisions.
type Identity struct {
	UserID string
	Role   role.Role
}

type TokenValidator interface {
	Validate(ctx context.Context, token string) (*Identity, error)
}

type Loader interface {
	LoadPrincipal(ctx context.Context, userID string) (*Principal, error)
}

// Authenticate validates the bearer token and loads the caller's live state.
func Authenticate(
	ctx context.Context,
	validator TokenValidator,
	loader Loader,
	token string,
) (*Principal, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	identity, err := validator.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, core.ErrTokenExpired) {
			return nil, core.TokenExpiredError()
		}
		return nil, core.TokenInvalidError()
	}

	p, err := loader.LoadPrincipal(ctx, identity.UserID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load principal: %w", err)
	}

	return p, nil
}

// Check is one authorization predicate over a principal.
type Check func(p *Principal) error

func Authenticated(p *Principal) error {
	if p == nil {
		return ErrUnauthenticated
	}
	return nil
}

func NotBanned(p *Principal) error {
	if p.IsBanned {
		return ErrAccountBanned
	}
	return nil
}

func RoleAtLeast(required role.Role) Check {
	return func(p *Principal) error {
		if !p.Satisfies(required) {
			return ErrInsufficientRole
		}
		return nil
	}
}

// OwnerOnly gates role mutation. The caller must be the owner and the
// target must not currently hold the owner role, including the caller.
func OwnerOnly(targetRole role.Role) Check {
	return func(p *Principal) error {
		if !p.IsOwner() {
			return ErrOwnerRequired
		}
		if targetRole == role.Owner {
			return ErrOwnerImmutable
		}
		return nil
	}
}

// All runs checks in order and returns the first failure.
func All(checks ...Check) Check {
	return func(p *Principal) error {
		for _, check := range checks {
			if err := check(p); err != nil {
				return err
			}
		}
		return nil
	}
}

// Require is the standard chain: authenticated, not banned, role at least
// required.
func Require(required role.Role) Check {
	return All(Authenticated, NotBanned, RoleAtLeast(required))
}

// Name labels a guard failure for metrics and traces.
func Name(err error) string {
	switch {
	case errors.Is(err, ErrAccountBanned):
		return "not_banned"
	case errors.Is(err, ErrInsufficientRole):
		return "role_at_least"
	case errors.Is(err, ErrOwnerRequired), errors.Is(err, ErrOwnerImmutable):
		return "owner_only"
	default:
		return "authenticate"
	}
}
