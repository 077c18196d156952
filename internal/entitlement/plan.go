// AngelaMos | 2026
// plan.go

package entitlement

import (
	"strings"
	"time"
)

const (
	PlanFree = "free"
	PlanPro  = "pro"

	// PlanUltimate is retired. Users still on it are moved to PlanPro at
	// startup and lookups alias it until then.
	PlanUltimate = "ultimate"

	Unlimited = -1
)

// Features are the boolean capabilities a plan grants.
type Features struct {
	CustomDesign      bool `db:"custom_design"      json:"custom_design"`
	Analytics         bool `db:"analytics"          json:"analytics"`
	AdvancedAnalytics bool `db:"advanced_analytics" json:"advanced_analytics"`
	RemoveBranding    bool `db:"remove_branding"    json:"remove_branding"`
	AIGeneration      bool `db:"ai_generation"      json:"ai_generation"`
	VerifyProfile     bool `db:"verify_profile"     json:"verify_profile"`
	PrioritySupport   bool `db:"priority_support"   json:"priority_support"`
}

// PlanConfig is the live capability record for every user on PlanName.
// Edits apply to all of them on their next request.
type PlanConfig struct {
	Features

	PlanName           string    `db:"plan_name"            json:"plan_name"`
	MaxPagesLimit      int       `db:"max_pages_limit"      json:"max_pages_limit"`
	MaxSubdomainsLimit int       `db:"max_subdomains_limit" json:"max_subdomains_limit"`
	UpdatedAt          time.Time `db:"updated_at"           json:"updated_at"`
}

func defaultPlans() map[string]PlanConfig {
	return map[string]PlanConfig{
		PlanFree: {
			PlanName:           PlanFree,
			MaxPagesLimit:      3,
			MaxSubdomainsLimit: 1,
			Features: Features{
				Analytics: true,
			},
		},
		PlanPro: {
			PlanName:           PlanPro,
			MaxPagesLimit:      Unlimited,
			MaxSubdomainsLimit: 10,
			Features: Features{
				CustomDesign:      true,
				Analytics:         true,
				AdvancedAnalytics: true,
				RemoveBranding:    true,
				AIGeneration:      true,
				VerifyProfile:     true,
				PrioritySupport:   true,
			},
		},
	}
}

// DefaultPlanConfigs returns the built-in configs seeded at startup.
func DefaultPlanConfigs() []PlanConfig {
	defaults := defaultPlans()
	return []PlanConfig{defaults[PlanFree], defaults[PlanPro]}
}

// DefaultPlanConfig returns the built-in config for name, or the free
// default when name is not a built-in plan.
func DefaultPlanConfig(name string) PlanConfig {
	defaults := defaultPlans()
	if cfg, ok := defaults[NormalizePlanName(name)]; ok {
		return cfg
	}
	return defaults[PlanFree]
}

func IsBuiltinPlan(name string) bool {
	_, ok := defaultPlans()[NormalizePlanName(name)]
	return ok
}

func NormalizePlanName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == PlanUltimate {
		return PlanPro
	}
	return name
}

func withinLimit(count, limit int) bool {
	if limit == Unlimited {
		return true
	}
	return count < limit
}
