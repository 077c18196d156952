// AngelaMos | 2026
// scope.go

package scope

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/guard"
	"github.com/carterperez-dev/smartlink/internal/role"
)

// CrossTenantRole is the lowest role that may resolve resources owned by
// other users.
const CrossTenantRole = role.Moderator

// Finder looks up one kind of owned resource.
type Finder[T any] interface {
	FindByID(ctx context.Context, id string) (*T, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*T, error)
}

// ResolveForAccess returns the resource only if p may see it. A resource
// owned by someone else is reported exactly like a missing one.
func ResolveForAccess[T any](
	ctx context.Context,
	finder Finder[T],
	resourceID string,
	p *guard.Principal,
) (*T, error) {
	if err := guard.All(guard.Authenticated, guard.NotBanned)(p); err != nil {
		return nil, err
	}

	crossTenant := p.Satisfies(CrossTenantRole)

	ctx, span := core.StartSpan(ctx, "scope.ResolveForAccess",
		attribute.String("resource.id", resourceID),
		attribute.Bool("scope.cross_tenant", crossTenant),
	)
	defer span.End()

	var (
		res *T
		err error
	)
	if crossTenant {
		res, err = finder.FindByID(ctx, resourceID)
	} else {
		res, err = finder.FindByIDAndOwner(ctx, resourceID, p.UserID)
	}

	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("resolve %s: %w", resourceID, core.ErrNotFound)
	}
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("resolve %s: %w", resourceID, err)
	}

	return res, nil
}
