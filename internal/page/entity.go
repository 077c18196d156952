// AngelaMos | 2026
// entity.go

package page

import (
	"time"
)

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"

	DefaultTheme = "default"
)

type Page struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	Title        string    `db:"title"`
	Slug         string    `db:"slug"`
	Description  string    `db:"description"`
	Theme        string    `db:"theme"`
	HideBranding bool      `db:"hide_branding"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type Link struct {
	ID        string    `db:"id"`
	PageID    string    `db:"page_id"`
	Platform  string    `db:"platform"`
	URL       string    `db:"url"`
	Position  int       `db:"position"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}

// Stats is a page with the click figures shown to moderators.
type Stats struct {
	Page

	TotalClicks int `db:"total_clicks"`
	Clicks7d    int `db:"clicks_7d"`
}
