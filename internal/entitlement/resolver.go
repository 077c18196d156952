// AngelaMos | 2026
// resolver.go

package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/guard"
	"github.com/carterperez-dev/smartlink/internal/role"
)

type ResolverOptions struct {
	// LaunchMode grants every capability to any non-banned principal.
	// Role and ownership checks are unaffected.
	LaunchMode bool
	Logger     *slog.Logger
	Metrics    *core.Metrics
}

// Resolver answers capability questions against live plan configs. It
// holds no per-user state.
type Resolver struct {
	store      Store
	launchMode bool
	logger     *slog.Logger
	metrics    *core.Metrics
}

func NewResolver(store Store, opts ResolverOptions) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:      store,
		launchMode: opts.LaunchMode,
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

func (r *Resolver) LaunchMode() bool {
	return r.launchMode
}

// GetPlanConfig never fails. A missing row yields the built-in default for
// the plan, and an unknown plan yields the free default.
func (r *Resolver) GetPlanConfig(ctx context.Context, planName string) PlanConfig {
	name := NormalizePlanName(planName)

	cfg, err := r.store.Get(ctx, name)
	if err == nil {
		return *cfg
	}

	if !errors.Is(err, core.ErrNotFound) {
		r.logger.WarnContext(ctx, "plan config lookup failed, using default",
			"plan", name,
			"error", err,
		)
	}

	return DefaultPlanConfig(name)
}

// CheckAccess is read-only. Callers enforcing a quota pass the current
// usage count and act on the result themselves.
func (r *Resolver) CheckAccess(
	ctx context.Context,
	p *guard.Principal,
	req Requirement,
	value Value,
) bool {
	granted := r.checkAccess(ctx, p, req, value)
	r.metrics.EntitlementChecked(req.String(), granted)
	return granted
}

func (r *Resolver) checkAccess(
	ctx context.Context,
	p *guard.Principal,
	req Requirement,
	value Value,
) bool {
	if p == nil || p.IsBanned {
		return false
	}

	if r.launchMode {
		return true
	}

	if req == RoleMin {
		return role.Satisfies(p.Role, value.Role)
	}

	cfg := r.GetPlanConfig(ctx, p.Plan)

	switch req {
	case MaxPages:
		return withinLimit(value.Count, cfg.MaxPagesLimit)
	case MaxSubdomains:
		return withinLimit(value.Count, cfg.MaxSubdomainsLimit)
	case CustomDesign:
		return cfg.CustomDesign
	case Analytics:
		return cfg.Analytics
	case AdvancedAnalytics:
		return cfg.AdvancedAnalytics
	case RemoveBranding:
		return cfg.RemoveBranding
	case AIGeneration:
		return cfg.AIGeneration
	case VerifyProfile:
		return cfg.VerifyProfile
	case PrioritySupport:
		return cfg.PrioritySupport
	default:
		r.logger.WarnContext(ctx, "unknown entitlement requirement denied",
			"requirement", int(req),
			"user_id", p.UserID,
		)
		return false
	}
}

// Enforce turns a failed check into the error a handler should return:
// QUOTA_EXCEEDED for quotas, FEATURE_NOT_AVAILABLE for everything else.
func (r *Resolver) Enforce(
	ctx context.Context,
	p *guard.Principal,
	req Requirement,
	value Value,
) error {
	if r.CheckAccess(ctx, p, req, value) {
		return nil
	}

	switch req {
	case MaxPages:
		return core.QuotaExceededError("page", r.GetPlanConfig(ctx, planOf(p)).MaxPagesLimit)
	case MaxSubdomains:
		return core.QuotaExceededError("subdomain", r.GetPlanConfig(ctx, planOf(p)).MaxSubdomainsLimit)
	default:
		return core.NewAppError(
			core.ErrForbidden,
			fmt.Sprintf("%s is not available on your plan", req),
			http.StatusForbidden,
			"FEATURE_NOT_AVAILABLE",
		)
	}
}

func planOf(p *guard.Principal) string {
	if p == nil {
		return PlanFree
	}
	return p.Plan
}
