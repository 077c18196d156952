// AngelaMos | 2026
// service.go

package page

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/smartlink/internal/analytics"
	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/entitlement"
	"github.com/carterperez-dev/smartlink/internal/guard"
	"github.com/carterperez-dev/smartlink/internal/scope"
)

type Entitlements interface {
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

// Tracker captures public events and summarizes them per page.
type Tracker interface {
	RecordView(ctx context.Context, pageID string, v analytics.Visitor)
	RecordClick(ctx context.Context, pageID, linkID string, v analytics.Visitor)
	RecordShare(ctx context.Context, pageID, platform string)
	Summary(ctx context.Context, pageID string, detailed bool) (*analytics.Summary, error)
}

type Service struct {
	db           *sqlx.DB
	repo         Repository
	entitlements Entitlements
	tracker      Tracker
}

func NewService(
	db *sqlx.DB,
	repo Repository,
	entitlements Entitlements,
	tracker Tracker,
) *Service {
	return &Service{
		db:           db,
		repo:         repo,
		entitlements: entitlements,
		tracker:      tracker,
	}
}

func (s *Service) List(ctx context.Context, p *guard.Principal) ([]Page, error) {
	return s.repo.ListByOwner(ctx, p.UserID)
}

func (s *Service) Get(
	ctx context.Context,
	p *guard.Principal,
	id string,
) (*Page, []Link, error) {
	pg, err := scope.ResolveForAccess[Page](ctx, s.repo, id, p)
	if err != nil {
		return nil, nil, err
	}

	links, err := s.repo.ListLinks(ctx, pg.ID)
	if err != nil {
		return nil, nil, err
	}

	return pg, links, nil
}

// Create inserts a page after checking the owner's page quota. The owner
// row is locked for the duration so concurrent creates cannot both pass
// the check.
func (s *Service) Create(
	ctx context.Context,
	p *guard.Principal,
	req CreatePageRequest,
) (*Page, error) {
	pg := &Page{
		ID:           uuid.New().String(),
		UserID:       p.UserID,
		Title:        strings.TrimSpace(req.Title),
		Slug:         strings.ToLower(req.Slug),
		Description:  req.Description,
		Theme:        req.Theme,
		HideBranding: req.HideBranding,
		Status:       StatusActive,
	}
	if pg.Theme == "" {
		pg.Theme = DefaultTheme
	}

	if err := s.enforceDesign(ctx, p, pg.Theme != DefaultTheme, pg.HideBranding); err != nil {
		return nil, err
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

		if err := s.entitlements.Enforce(ctx, p, entitlement.MaxPages, entitlement.Count(count)); err != nil {
			return err
		}

		return repo.Create(ctx, pg)
	})
	if errors.Is(err, core.ErrDuplicateKey) {
		return nil, core.DuplicateError("slug")
	}
	if err != nil {
		return nil, err
	}

	return pg, nil
}

func (s *Service) Update(
	ctx context.Context,
	p *guard.Principal,
	id string,
	req UpdatePageRequest,
) (*Page, error) {
	pg, err := scope.ResolveForAccess[Page](ctx, s.repo, id, p)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		pg.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		pg.Description = *req.Description
	}

	// Only options being switched on are gated. A page keeps a design its
	// owner's current plan no longer offers.
	var customTheme, hideBranding bool
	if req.Theme != nil {
		theme := *req.Theme
		if theme == "" {
			theme = DefaultTheme
		}
		customTheme = theme != DefaultTheme && theme != pg.Theme
		pg.Theme = theme
	}
	if req.HideBranding != nil {
		hideBranding = *req.HideBranding && !pg.HideBranding
		pg.HideBranding = *req.HideBranding
	}
	if req.Status != nil {
		pg.Status = *req.Status
	}

	if err := s.enforceDesign(ctx, p, customTheme, hideBranding); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, pg); err != nil {
		return nil, err
	}

	return pg, nil
}

// enforceDesign gates the plan-dependent presentation options.
func (s *Service) enforceDesign(
	ctx context.Context,
	p *guard.Principal,
	customTheme, hideBranding bool,
) error {
	if customTheme {
		if err := s.entitlements.Enforce(ctx, p, entitlement.CustomDesign, entitlement.NoValue); err != nil {
			return err
		}
	}

	if hideBranding {
		if err := s.entitlements.Enforce(ctx, p, entitlement.RemoveBranding, entitlement.NoValue); err != nil {
			return err
		}
	}

	return nil
}

// Delete removes the page and everything recorded against it in one
// transaction.
func (s *Service) Delete(ctx context.Context, p *guard.Principal, id string) error {
	pg, err := scope.ResolveForAccess[Page](ctx, s.repo, id, p)
	if err != nil {
		return err
	}

	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return NewRepository(tx).Delete(ctx, pg.ID)
	})
}

func (s *Service) ListLinks(
	ctx context.Context,
	p *guard.Principal,
	pageID string,
) ([]Link, error) {
	pg, err := scope.ResolveForAccess[Page](ctx, s.repo, pageID, p)
	if err != nil {
		return nil, err
	}

	return s.repo.ListLinks(ctx, pg.ID)
}

func (s *Service) AddLink(
	ctx context.Context,
	p *guard.Principal,
	pageID string,
	req LinkRequest,
) (*Link, error) {
	pg, err := scope.ResolveForAccess[Page](ctx, s.repo, pageID, p)
	if err != nil {
		return nil, err
	}

	link := &Link{
		ID:       uuid.New().String(),
		PageID:   pg.ID,
		Platform: req.Platform,
		URL:      req.URL,
		Position: req.Position,
		Active:   req.Active == nil || *req.Active,
	}

	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

func (s *Service) UpdateLink(
	ctx context.Context,
	p *guard.Principal,
	pageID, linkID string,
	req LinkRequest,
) (*Link, error) {
	link, err := s.resolveLink(ctx, p, pageID, linkID)
	if err != nil {
		return nil, err
	}

	link.Platform = req.Platform
	link.URL = req.URL
	link.Position = req.Position
	if req.Active != nil {
		link.Active = *req.Active
	}

	if err := s.repo.UpdateLink(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

func (s *Service) RemoveLink(
	ctx context.Context,
	p *guard.Principal,
	pageID, linkID string,
) error {
	link, err := s.resolveLink(ctx, p, pageID, linkID)
	if err != nil {
		return err
	}

	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return NewRepository(tx).DeleteLink(ctx, link.ID)
	})
}

// resolveLink scopes through the parent page. A link on another page is
// reported as missing.
func (s *Service) resolveLink(
	ctx context.Context,
	p *guard.Principal,
	pageID, linkID string,
) (*Link, error) {
	pg, err := scope.ResolveForAccess[Page](ctx, s.repo, pageID, p)
	if err != nil {
		return nil, err
	}

	link, err := s.repo.FindLink(ctx, linkID)
	if err != nil {
		return nil, err
	}

	if link.PageID != pg.ID {
		return nil, fmt.Errorf("resolve link %s: %w", linkID, core.ErrNotFound)
	}

	return link, nil
}

// Analytics requires the analytics feature. The geographic breakdown is
// added for plans with advanced analytics.
func (s *Service) Analytics(
	ctx context.Context,
	p *guard.Principal,
	pageID string,
) (*analytics.Summary, error) {
	pg, err := scope.ResolveForAccess[Page](ctx, s.repo, pageID, p)
	if err != nil {
		return nil, err
	}

	if err := s.entitlements.Enforce(ctx, p, entitlement.Analytics, entitlement.NoValue); err != nil {
		return nil, err
	}

	detailed := s.entitlements.CheckAccess(ctx, p, entitlement.AdvancedAnalytics, entitlement.NoValue)

	return s.tracker.Summary(ctx, pg.ID, detailed)
}

// ViewPublic serves an active page by slug with its active links and
// records the view.
func (s *Service) ViewPublic(
	ctx context.Context,
	slug string,
	v analytics.Visitor,
) (*Page, []Link, error) {
	pg, err := s.activeBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	links, err := s.repo.ListLinks(ctx, pg.ID)
	if err != nil {
		return nil, nil, err
	}

	active := make([]Link, 0, len(links))
	for _, l := range links {
		if l.Active {
			active = append(active, l)
		}
	}

	s.tracker.RecordView(ctx, pg.ID, v)

	return pg, active, nil
}

// Click records a click on an active link and returns its target.
func (s *Service) Click(ctx context.Context, linkID string, v analytics.Visitor) (string, error) {
	link, err := s.repo.FindLink(ctx, linkID)
	if err != nil {
		return "", err
	}

	if !link.Active {
		return "", fmt.Errorf("click %s: %w", linkID, core.ErrNotFound)
	}

	pg, err := s.repo.FindByID(ctx, link.PageID)
	if err != nil {
		return "", err
	}

	if pg.Status != StatusActive {
		return "", fmt.Errorf("click %s: %w", linkID, core.ErrNotFound)
	}

	s.tracker.RecordClick(ctx, pg.ID, link.ID, v)

	return link.URL, nil
}

func (s *Service) Share(ctx context.Context, slug, platform string) error {
	pg, err := s.activeBySlug(ctx, slug)
	if err != nil {
		return err
	}

	s.tracker.RecordShare(ctx, pg.ID, platform)
	return nil
}

func (s *Service) activeBySlug(ctx context.Context, slug string) (*Page, error) {
	pg, err := s.repo.FindBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		return nil, err
	}

	if pg.Status != StatusActive {
		return nil, fmt.Errorf("page %s: %w", slug, core.ErrNotFound)
	}

	return pg, nil
}

// FindByIDAndOwner ignores the caller's role, so a moderator cannot bind
// another user's page to a subdomain.
func (s *Service) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*Page, error) {
	return s.repo.FindByIDAndOwner(ctx, id, ownerID)
}

func (s *Service) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	return s.repo.CountByOwner(ctx, ownerID)
}

func (s *Service) TotalClicksByOwner(ctx context.Context, ownerID string) (int, error) {
	return s.repo.TotalClicksByOwner(ctx, ownerID)
}

func (s *Service) ListStatsByOwner(
	ctx context.Context,
	ownerID string,
	skip, limit int,
) ([]Stats, int, error) {
	return s.repo.ListStatsByOwner(ctx, ownerID, skip, limit)
}

// DeleteAllByOwner runs inside the account deletion transaction.
func (s *Service) DeleteAllByOwner(ctx context.Context, tx core.DBTX, ownerID string) error {
	return NewRepository(tx).DeleteAllByOwner(ctx, ownerID)
}
