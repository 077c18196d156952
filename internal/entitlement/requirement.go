// AngelaMos | 2026
// requirement.go

package entitlement

import (
	"strings"

	"github.com/carterperez-dev/smartlink/internal/role"
)

// Requirement is a closed set of capabilities that can be checked against a
// principal's plan.
type Requirement int

const (
	RequirementUnknown Requirement = iota
	MaxPages
	MaxSubdomains
	CustomDesign
	Analytics
	AdvancedAnalytics
	RemoveBranding
	AIGeneration
	VerifyProfile
	PrioritySupport
	RoleMin
)

var requirementNames = map[Requirement]string{
	MaxPages:          "max_pages",
	MaxSubdomains:     "max_subdomains",
	CustomDesign:      "custom_design",
	Analytics:         "analytics",
	AdvancedAnalytics: "advanced_analytics",
	RemoveBranding:    "remove_branding",
	AIGeneration:      "ai_generation",
	VerifyProfile:     "verify_profile",
	PrioritySupport:   "priority_support",
	RoleMin:           "role_min",
}

func ParseRequirement(s string) Requirement {
	s = strings.ToLower(strings.TrimSpace(s))
	for req, name := range requirementNames {
		if name == s {
			return req
		}
	}
	return RequirementUnknown
}

func (r Requirement) String() string {
	if name, ok := requirementNames[r]; ok {
		return name
	}
	return "unknown"
}

// IsQuota reports whether r compares a usage count against a limit.
func (r Requirement) IsQuota() bool {
	return r == MaxPages || r == MaxSubdomains
}

// Value is the optional argument to a check: a usage count for quotas or a
// minimum role for RoleMin.
type Value struct {
	Count int
	Role  role.Role
}

var NoValue = Value{}

func Count(n int) Value {
	return Value{Count: n}
}

func MinRole(r role.Role) Value {
	return Value{Role: r}
}
