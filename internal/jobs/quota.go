// AngelaMos | 2026
// quota.go

package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/entitlement"
)

const (
	ResourcePages      = "pages"
	ResourceSubdomains = "subdomains"
)

// Usage is one user's resource counts next to their plan.
type Usage struct {
	UserID     string `db:"user_id"`
	Email      string `db:"email"`
	Plan       string `db:"plan"`
	Pages      int    `db:"pages"`
	Subdomains int    `db:"subdomains"`
}

type UsageReader interface {
	ListUsage(ctx context.Context) ([]Usage, error)
}

type usageRepository struct {
	db core.DBTX
}

func NewUsageRepository(db core.DBTX) UsageReader {
	return &usageRepository{db: db}
}

func (r *usageRepository) ListUsage(ctx context.Context) ([]Usage, error) {
	query := `
		SELECT u.id AS user_id, u.email, u.plan,
		       (SELECT COUNT(*) FROM pages p WHERE p.user_id = u.id) AS pages,
		       (SELECT COUNT(*) FROM subdomains s WHERE s.user_id = u.id) AS subdomains
		FROM users u
		WHERE EXISTS (SELECT 1 FROM pages p WHERE p.user_id = u.id)
		   OR EXISTS (SELECT 1 FROM subdomains s WHERE s.user_id = u.id)`

	var usage []Usage
	if err := r.db.SelectContext(ctx, &usage, query); err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}

	return usage, nil
}

type PlanSource interface {
	GetPlanConfig(ctx context.Context, planName string) entitlement.PlanConfig
}

// QuotaReconciler finds users whose usage exceeds their current plan,
// typically after a downgrade or a plan config edit. It only reports:
// existing resources are never removed.
type QuotaReconciler struct {
	usage   UsageReader
	plans   PlanSource
	metrics *core.Metrics
	logger  *slog.Logger
}

func NewQuotaReconciler(
	usage UsageReader,
	plans PlanSource,
	metrics *core.Metrics,
	logger *slog.Logger,
) *QuotaReconciler {
	if logger == nil {
		logger = slog.Default()
	}

	return &QuotaReconciler{
		usage:   usage,
		plans:   plans,
		metrics: metrics,
		logger:  logger,
	}
}

func (q *QuotaReconciler) Name() string {
	return "quota_reconcile"
}

// Overage counts offending users per resource.
type Overage struct {
	Pages      int
	Subdomains int
}

func (q *QuotaReconciler) Run(ctx context.Context) error {
	_, err := q.Reconcile(ctx)
	return err
}

func (q *QuotaReconciler) Reconcile(ctx context.Context) (Overage, error) {
	usage, err := q.usage.ListUsage(ctx)
	if err != nil {
		return Overage{}, err
	}

	var overage Overage
	configs := make(map[string]entitlement.PlanConfig)

	for _, u := range usage {
		cfg, ok := configs[u.Plan]
		if !ok {
			cfg = q.plans.GetPlanConfig(ctx, u.Plan)
			configs[u.Plan] = cfg
		}

		if exceeds(u.Pages, cfg.MaxPagesLimit) {
			overage.Pages++
			q.warn(ctx, u, ResourcePages, u.Pages, cfg.MaxPagesLimit)
		}
		if exceeds(u.Subdomains, cfg.MaxSubdomainsLimit) {
			overage.Subdomains++
			q.warn(ctx, u, ResourceSubdomains, u.Subdomains, cfg.MaxSubdomainsLimit)
		}
	}

	q.metrics.SetQuotaOverage(ResourcePages, overage.Pages)
	q.metrics.SetQuotaOverage(ResourceSubdomains, overage.Subdomains)

	return overage, nil
}

func (q *QuotaReconciler) warn(ctx context.Context, u Usage, resource string, count, limit int) {
	q.logger.WarnContext(ctx, "usage exceeds plan limit",
		"user_id", u.UserID,
		"email", u.Email,
		"plan", u.Plan,
		"resource", resource,
		"count", count,
		"limit", limit,
	)
}

func exceeds(count, limit int) bool {
	return limit != entitlement.Unlimited && count > limit
}
