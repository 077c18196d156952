// AngelaMos | 2026
// entity.go

package subdomain

import (
	"regexp"
	"strings"
	"time"

	"github.com/carterperez-dev/smartlink/internal/entitlement"
)

type Subdomain struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	PageID    *string   `db:"page_id"`
	Name      string    `db:"subdomain"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// AdminView is a subdomain with its owner, as listed to moderators.
type AdminView struct {
	Subdomain

	OwnerEmail    string `db:"owner_email"`
	OwnerUsername string `db:"owner_username"`
}

const (
	minNameLength = 3
	maxNameLength = 63

	ReasonTooShort = "too_short"
	ReasonTooLong  = "too_long"
	ReasonInvalid  = "invalid_characters"
	ReasonReserved = "reserved"
	ReasonTaken    = "taken"
)

var namePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// NormalizeName lowercases and trims a requested name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CheckName applies the naming rule to a normalized name and returns the
// reason it is unusable, or "" when it may be claimed.
func CheckName(name string) string {
	switch {
	case len(name) < minNameLength:
		return ReasonTooShort
	case len(name) > maxNameLength:
		return ReasonTooLong
	case !namePattern.MatchString(name):
		return ReasonInvalid
	case entitlement.IsReserved(name):
		return ReasonReserved
	default:
		return ""
	}
}
