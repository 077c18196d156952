// AngelaMos | 2026
// dto.go

package entitlement

type UsageResponse struct {
	Pages      int `json:"pages"`
	Subdomains int `json:"subdomains"`
}

type LimitsResponse struct {
	Plan       string        `json:"plan"`
	LaunchMode bool          `json:"launch_mode"`
	Limits     PlanConfig    `json:"limits"`
	Usage      UsageResponse `json:"usage"`
}

type CheckResponse struct {
	Requirement string `json:"requirement"`
	HasAccess   bool   `json:"has_access"`
}

type CreatePlanRequest struct {
	PlanName string `json:"plan_name" validate:"required,min=2,max=32,alphanum"`
	UpdatePlanRequest
}

type UpdatePlanRequest struct {
	MaxPagesLimit      *int `json:"max_pages_limit"      validate:"required,min=-1"`
	MaxSubdomainsLimit *int `json:"max_subdomains_limit" validate:"required,min=-1"`
	CustomDesign       bool `json:"custom_design"`
	Analytics          bool `json:"analytics"`
	AdvancedAnalytics  bool `json:"advanced_analytics"`
	RemoveBranding     bool `json:"remove_branding"`
	AIGeneration       bool `json:"ai_generation"`
	VerifyProfile      bool `json:"verify_profile"`
	PrioritySupport    bool `json:"priority_support"`
}

func (r UpdatePlanRequest) toPlanConfig(planName string) *PlanConfig {
	return &PlanConfig{
		PlanName:           planName,
		MaxPagesLimit:      *r.MaxPagesLimit,
		MaxSubdomainsLimit: *r.MaxSubdomainsLimit,
		Features: Features{
			CustomDesign:      r.CustomDesign,
			Analytics:         r.Analytics,
			AdvancedAnalytics: r.AdvancedAnalytics,
			RemoveBranding:    r.RemoveBranding,
			AIGeneration:      r.AIGeneration,
			VerifyProfile:     r.VerifyProfile,
			PrioritySupport:   r.PrioritySupport,
		},
	}
}
