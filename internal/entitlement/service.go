// AngelaMos | 2026
// service.go

package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/guard"
	"github.com/carterperez-dev/smartlink/internal/role"
)

// UsageCounter reports how many resources of one kind a user owns.
type UsageCounter interface {
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

// PlanMigrator moves users between plans.
type PlanMigrator interface {
	ReassignPlan(ctx context.Context, from, to string) (int64, error)
}

type Service struct {
	store      Store
	resolver   *Resolver
	pages      UsageCounter
	subdomains UsageCounter
	logger     *slog.Logger
}

func NewService(
	store Store,
	resolver *Resolver,
	pages, subdomains UsageCounter,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		resolver:   resolver,
		pages:      pages,
		subdomains: subdomains,
		logger:     logger,
	}
}

// Bootstrap seeds missing built-in plans and retires the legacy ultimate
// plan. It is safe to run on every start.
func (s *Service) Bootstrap(ctx context.Context, migrator PlanMigrator) error {
	seeded, err := s.store.SeedDefaults(ctx, DefaultPlanConfigs())
	if err != nil {
		return fmt.Errorf("seed plan configs: %w", err)
	}

	moved, err := migrator.ReassignPlan(ctx, PlanUltimate, PlanPro)
	if err != nil {
		return fmt.Errorf("migrate %s users: %w", PlanUltimate, err)
	}

	err = s.store.Delete(ctx, PlanUltimate)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("remove %s plan: %w", PlanUltimate, err)
	}

	s.logger.InfoContext(ctx, "plan configs bootstrapped",
		"seeded", seeded,
		"migrated_users", moved,
		"legacy_plan_removed", err == nil,
	)

	return nil
}

func (s *Service) Limits(
	ctx context.Context,
	p *guard.Principal,
) (*LimitsResponse, error) {
	cfg := s.resolver.GetPlanConfig(ctx, p.Plan)

	var usage UsageResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.pages.CountByOwner(gctx, p.UserID)
		usage.Pages = n
		return err
	})
	g.Go(func() error {
		n, err := s.subdomains.CountByOwner(gctx, p.UserID)
		usage.Subdomains = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("count usage: %w", err)
	}

	return &LimitsResponse{
		Plan:       cfg.PlanName,
		LaunchMode: s.resolver.LaunchMode(),
		Limits:     cfg,
		Usage:      usage,
	}, nil
}

// Check evaluates a requirement named on the wire. value is a count for
// quota requirements and a role name for role_min.
func (s *Service) Check(
	ctx context.Context,
	p *guard.Principal,
	requirement, value string,
) (*CheckResponse, error) {
	req := ParseRequirement(requirement)

	var v Value
	switch {
	case req.IsQuota():
		if value != "" {
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, core.ValidationError("value must be a non-negative integer")
			}
			v = Count(n)
		}
	case req == RoleMin:
		r, ok := role.Parse(value)
		if !ok {
			return nil, core.ValidationError("value must be a role name")
		}
		v = MinRole(r)
	}

	return &CheckResponse{
		Requirement: strings.ToLower(strings.TrimSpace(requirement)),
		HasAccess:   s.resolver.CheckAccess(ctx, p, req, v),
	}, nil
}

func (s *Service) ListPlans(ctx context.Context) ([]PlanConfig, error) {
	return s.store.List(ctx)
}

func (s *Service) GetPlan(ctx context.Context, name string) (*PlanConfig, error) {
	return s.store.Get(ctx, NormalizePlanName(name))
}

func (s *Service) CreatePlan(
	ctx context.Context,
	req CreatePlanRequest,
) (*PlanConfig, error) {
	cfg := req.toPlanConfig(NormalizePlanName(req.PlanName))

	if err := s.store.Create(ctx, cfg); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("plan")
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "plan config created", "plan", cfg.PlanName)
	return cfg, nil
}

// UpsertPlan replaces the config for name. Every user on the plan sees the
// new values on their next request.
func (s *Service) UpsertPlan(
	ctx context.Context,
	name string,
	req UpdatePlanRequest,
) (*PlanConfig, error) {
	cfg := req.toPlanConfig(NormalizePlanName(name))

	if err := s.store.Upsert(ctx, cfg); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "plan config updated",
		"plan", cfg.PlanName,
		"max_pages_limit", cfg.MaxPagesLimit,
		"max_subdomains_limit", cfg.MaxSubdomainsLimit,
	)
	return cfg, nil
}

// KnownPlan reports whether name is stored or built in.
func (s *Service) KnownPlan(ctx context.Context, name string) (bool, error) {
	name = NormalizePlanName(name)
	if IsBuiltinPlan(name) {
		return true, nil
	}

	_, err := s.store.Get(ctx, name)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
