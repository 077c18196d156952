// AngelaMos | 2026
// reserved.go

package entitlement

import (
	"slices"
	"strings"
)

var reservedNames = map[string]struct{}{
	"www":       {},
	"api":       {},
	"admin":     {},
	"app":       {},
	"mail":      {},
	"ftp":       {},
	"blog":      {},
	"help":      {},
	"support":   {},
	"status":    {},
	"dashboard": {},
	"static":    {},
	"cdn":       {},
	"assets":    {},
	"dev":       {},
	"staging":   {},
	"test":      {},
	"docs":      {},
	"login":     {},
	"auth":      {},
	"root":      {},
	"billing":   {},
}

// IsReserved reports whether name is permanently unavailable as a
// subdomain, whatever the caller's plan.
func IsReserved(name string) bool {
	_, ok := reservedNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func ReservedNames() []string {
	names := make([]string, 0, len(reservedNames))
	for name := range reservedNames {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
