// AngelaMos | 2026
// auth.go

package middleware

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/guard"
	"github.com/carterperez-dev/smartlink/internal/role"
)

// Guard adapts the authorization checks to chi middleware. Every request
// that passes Authenticator carries a freshly loaded principal.
type Guard struct {
	validator guard.TokenValidator
	loader    guard.Loader
	metrics   *core.Metrics
}

func NewGuard(
	validator guard.TokenValidator,
	loader guard.Loader,
	metrics *core.Metrics,
) *Guard {
	return &Guard{
		validator: validator,
		loader:    loader,
		metrics:   metrics,
	}
}

// Authenticator resolves the bearer token to a live, non-banned principal.
func (g *Guard) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		p, err := guard.Authenticate(ctx, g.validator, g.loader, ExtractToken(r))
		if err == nil {
			err = guard.NotBanned(p)
		}
		if err != nil {
			g.deny(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, p)))
	})
}

// RequireRole must run after Authenticator.
func (g *Guard) RequireRole(required role.Role) func(http.Handler) http.Handler {
	check := guard.Require(required)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := check(GetPrincipal(r.Context())); err != nil {
				g.deny(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (g *Guard) RequireModerator(next http.Handler) http.Handler {
	return g.RequireRole(role.Moderator)(next)
}

func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return g.RequireRole(role.Admin)(next)
}

// RequireOwner is the route-level gate for role mutation. The handler still
// applies guard.OwnerOnly against the target's current role.
func (g *Guard) RequireOwner(next http.Handler) http.Handler {
	return g.RequireRole(role.Owner)(next)
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, err error) {
	if core.IsAppError(err) {
		name := guard.Name(err)
		g.metrics.GuardDenied(name)
		core.AddSpanEvent(r.Context(), "guard.denied",
			attribute.String("guard", name),
			attribute.String("http.route", r.URL.Path),
		)
	}

	core.JSONError(w, err)
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
