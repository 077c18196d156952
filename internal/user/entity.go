// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/smartlink/internal/role"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Role         role.Role `db:"role"`
	Plan         string    `db:"plan"`
	IsBanned     bool      `db:"is_banned"`
	IsVerified   bool      `db:"is_verified"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Summary is a user row with the usage figures shown on the admin list.
type Summary struct {
	User

	PageCount   int `db:"page_count"`
	TotalClicks int `db:"total_clicks"`
}

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)
