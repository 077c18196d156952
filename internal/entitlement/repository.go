// AngelaMos | 2026
// repository.go

package entitlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/smartlink/internal/core"
)

// Store is the system of record for plan configs.
type Store interface {
	Get(ctx context.Context, planName string) (*PlanConfig, error)
	List(ctx context.Context) ([]PlanConfig, error)
	Create(ctx context.Context, cfg *PlanConfig) error
	Upsert(ctx context.Context, cfg *PlanConfig) error
	Delete(ctx context.Context, planName string) error
	SeedDefaults(ctx context.Context, defaults []PlanConfig) (int, error)
}

const planColumns = `plan_name, max_pages_limit, max_subdomains_limit,
	custom_design, analytics, advanced_analytics, remove_branding,
	ai_generation, verify_profile, priority_support, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Store {
	return &repository{db: db}
}

func (r *repository) Get(
	ctx context.Context,
	planName string,
) (*PlanConfig, error) {
	query := `SELECT ` + planColumns + `
		FROM plan_configs
		WHERE plan_name = $1`

	var cfg PlanConfig
	err := r.db.GetContext(ctx, &cfg, query, planName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get plan config: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get plan config: %w", err)
	}

	return &cfg, nil
}

func (r *repository) List(ctx context.Context) ([]PlanConfig, error) {
	query := `SELECT ` + planColumns + `
		FROM plan_configs
		ORDER BY plan_name`

	var configs []PlanConfig
	if err := r.db.SelectContext(ctx, &configs, query); err != nil {
		return nil, fmt.Errorf("list plan configs: %w", err)
	}

	return configs, nil
}

func (r *repository) Create(ctx context.Context, cfg *PlanConfig) error {
	query := `
		INSERT INTO plan_configs (
			plan_name, max_pages_limit, max_subdomains_limit,
			custom_design, analytics, advanced_analytics, remove_branding,
			ai_generation, verify_profile, priority_support
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &cfg.UpdatedAt, query, planArgs(cfg)...)
	if err != nil {
		if core.IsDuplicateKey(err) {
			return fmt.Errorf("create plan config: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create plan config: %w", err)
	}

	return nil
}

func (r *repository) Upsert(ctx context.Context, cfg *PlanConfig) error {
	query := `
		INSERT INTO plan_configs (
			plan_name, max_pages_limit, max_subdomains_limit,
			custom_design, analytics, advanced_analytics, remove_branding,
			ai_generation, verify_profile, priority_support
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (plan_name) DO UPDATE SET
			max_pages_limit = EXCLUDED.max_pages_limit,
			max_subdomains_limit = EXCLUDED.max_subdomains_limit,
			custom_design = EXCLUDED.custom_design,
			analytics = EXCLUDED.analytics,
			advanced_analytics = EXCLUDED.advanced_analytics,
			remove_branding = EXCLUDED.remove_branding,
			ai_generation = EXCLUDED.ai_generation,
			verify_profile = EXCLUDED.verify_profile,
			priority_support = EXCLUDED.priority_support,
			updated_at = NOW()
		RETURNING updated_at`

	if err := r.db.GetContext(ctx, &cfg.UpdatedAt, query, planArgs(cfg)...); err != nil {
		return fmt.Errorf("upsert plan config: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, planName string) error {
	query := `DELETE FROM plan_configs WHERE plan_name = $1`

	result, err := r.db.ExecContext(ctx, query, planName)
	if err != nil {
		return fmt.Errorf("delete plan config: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete plan config: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete plan config: %w", core.ErrNotFound)
	}

	return nil
}

// SeedDefaults inserts each default that has no stored row and reports how
// many were inserted. Existing rows are left untouched.
func (r *repository) SeedDefaults(
	ctx context.Context,
	defaults []PlanConfig,
) (int, error) {
	query := `
		INSERT INTO plan_configs (
			plan_name, max_pages_limit, max_subdomains_limit,
			custom_design, analytics, advanced_analytics, remove_branding,
			ai_generation, verify_profile, priority_support
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (plan_name) DO NOTHING`

	inserted := 0
	for i := range defaults {
		result, err := r.db.ExecContext(ctx, query, planArgs(&defaults[i])...)
		if err != nil {
			return inserted, fmt.Errorf("seed plan %s: %w", defaults[i].PlanName, err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("seed plan %s: %w", defaults[i].PlanName, err)
		}
		inserted += int(rows)
	}

	return inserted, nil
}

func planArgs(cfg *PlanConfig) []any {
	return []any{
		cfg.PlanName,
		cfg.MaxPagesLimit,
		cfg.MaxSubdomainsLimit,
		cfg.CustomDesign,
		cfg.Analytics,
		cfg.AdvancedAnalytics,
		cfg.RemoveBranding,
		cfg.AIGeneration,
		cfg.VerifyProfile,
		cfg.PrioritySupport,
	}
}
