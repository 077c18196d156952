// AngelaMos | 2026
// role.go

package role

import (
	"strings"
)

// Role is a wire-level role name. The hierarchy is a strict total order.
type Role string

const (
	User      Role = "user"
	Moderator Role = "moderator"
	Admin     Role = "admin"
	Owner     Role = "owner"
)

// All lists the known roles from lowest to highest rank.
var All = []Role{User, Moderator, Admin, Owner}

// Parse maps a stored or requested role name onto a known role. Unknown
// names report ok=false and resolve to User so callers that ignore the flag
// still land on least privilege.
func Parse(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case User:
		return User, true
	case Moderator:
		return Moderator, true
	case Admin:
		return Admin, true
	case Owner:
		return Owner, true
	default:
		return User, false
	}
}

// Rank returns the position of r in the hierarchy. Unknown roles rank as User.
func (r Role) Rank() int {
	switch r {
	case Moderator:
		return 1
	case Admin:
		return 2
	case Owner:
		return 3
	default:
		return 0
	}
}

func (r Role) Valid() bool {
	switch r {
	case User, Moderator, Admin, Owner:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Satisfies reports whether actual meets the required minimum role.
func Satisfies(actual, required Role) bool {
	return actual.Rank() >= required.Rank()
}

// Outranks reports whether a is strictly above b.
func Outranks(a, b Role) bool {
	return a.Rank() > b.Rank()
}
