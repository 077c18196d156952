// AngelaMos | 2026
// service.go

package subdomain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/entitlement"
	"github.com/carterperez-dev/smartlink/internal/guard"
	"github.com/carterperez-dev/smartlink/internal/page"
	"github.com/carterperez-dev/smartlink/internal/scope"
)

type Entitlements interface {
	GetPlanConfig(ctx context.Context, planName string) entitlement.PlanConfig
	CheckAccess(
		ctx context.Context,
		p *guard.Principal,
		req entitlement.Requirement,
		value entitlement.Value,
	) bool
	Enforce(
		ctx context.Context,
		p *guard.Principal,
		req entitlement.Requirement,
		value entitlement.Value,
	) error
}

// PageFinder confirms a page belongs to the subdomain's owner before it is
// bound.
type PageFinder interface {
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*page.Page, error)
}

type Service struct {
	db           *sqlx.DB
	repo         Repository
	pages        PageFinder
	entitlements Entitlements
}

func NewService(
	db *sqlx.DB,
	repo Repository,
	pages PageFinder,
	entitlements Entitlements,
) *Service {
	return &Service{
		db:           db,
		repo:         repo,
		pages:        pages,
		entitlements: entitlements,
	}
}

func (s *Service) List(ctx context.Context, p *guard.Principal) (*ListResponse, error) {
	subs, err := s.repo.ListByOwner(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	cfg := s.entitlements.GetPlanConfig(ctx, p.Plan)

	return &ListResponse{
		Subdomains: toResponses(subs),
		Count:      len(subs),
		MaxLimit:   cfg.MaxSubdomainsLimit,
		CanAdd: s.entitlements.CheckAccess(
			ctx, p, entitlement.MaxSubdomains, entitlement.Count(len(subs)),
		),
	}, nil
}

// Check reports whether a name could be claimed right now.
func (s *Service) Check(ctx context.Context, name string) (*Availability, error) {
	name = NormalizeName(name)
	result := &Availability{Subdomain: name}

	if reason := CheckName(name); reason != "" {
		result.Reason = reason
		return result, nil
	}

	taken, err := s.repo.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if taken {
		result.Reason = ReasonTaken
		return result, nil
	}

	result.Available = true
	return result, nil
}

// Create claims a name for the caller under the max_subdomains quota. The
// owner row is locked while counting.
func (s *Service) Create(
	ctx context.Context,
	p *guard.Principal,
	req CreateRequest,
) (*Subdomain, error) {
	name := NormalizeName(req.Subdomain)
	if reason := CheckName(name); reason != "" {
		return nil, core.ValidationError("subdomain is not available: " + reason)
	}

	if req.PageID != nil {
		if _, err := s.pages.FindByIDAndOwner(ctx, *req.PageID, p.UserID); err != nil {
			return nil, err
		}
	}

	sub := &Subdomain{
		ID:       uuid.New().String(),
		UserID:   p.UserID,
		PageID:   req.PageID,
		Name:     name,
		IsActive: true,
	}

	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		if err := repo.LockOwner(ctx, p.UserID); err != nil {
			return err
		}

		count, err := repo.CountByOwner(ctx, p.UserID)
		if err != nil {
			return err
		}

		if err := s.entitlements.Enforce(ctx, p, entitlement.MaxSubdomains, entitlement.Count(count)); err != nil {
			return err
		}

		return repo.Create(ctx, sub)
	})
	if errors.Is(err, core.ErrDuplicateKey) {
		return nil, core.DuplicateError("subdomain")
	}
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (s *Service) Update(
	ctx context.Context,
	p *guard.Principal,
	id string,
	req UpdateRequest,
) (*Subdomain, error) {
	sub, err := scope.ResolveForAccess[Subdomain](ctx, s.repo, id, p)
	if err != nil {
		return nil, err
	}

	if req.PageID != nil {
		if _, err := s.pages.FindByIDAndOwner(ctx, *req.PageID, sub.UserID); err != nil {
			return nil, err
		}
		sub.PageID = req.PageID
	}

	if req.IsActive != nil {
		sub.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}

	return sub, nil
}

func (s *Service) Delete(ctx context.Context, p *guard.Principal, id string) error {
	sub, err := scope.ResolveForAccess[Subdomain](ctx, s.repo, id, p)
	if err != nil {
		return err
	}

	return s.repo.Delete(ctx, sub.ID)
}

func (s *Service) AdminList(
	ctx context.Context,
	search string,
	skip, limit int,
) (*AdminListResponse, error) {
	views, total, err := s.repo.ListAll(ctx, search, skip, limit)
	if err != nil {
		return nil, err
	}

	return &AdminListResponse{
		Subdomains: toAdminResponses(views),
		Total:      total,
	}, nil
}

func (s *Service) Toggle(ctx context.Context, id string) (*Subdomain, error) {
	return s.repo.Toggle(ctx, id)
}

func (s *Service) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	return s.repo.CountByOwner(ctx, ownerID)
}

// DeleteAllByOwner runs inside the account deletion transaction.
func (s *Service) DeleteAllByOwner(ctx context.Context, tx core.DBTX, ownerID string) error {
	return NewRepository(tx).DeleteAllByOwner(ctx, ownerID)
}
