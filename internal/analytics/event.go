// AngelaMos | 2026
// event.go

package analytics

import (
	"net/http"

	"github.com/carterperez-dev/smartlink/internal/middleware"
)

// Visitor is the anonymous caller behind a public view or click.
type Visitor struct {
	IP        string
	UserAgent string
}

func VisitorFromRequest(r *http.Request) Visitor {
	return Visitor{
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

type Totals struct {
	Views  int `db:"views"  json:"views"`
	Clicks int `db:"clicks" json:"clicks"`
	Shares int `db:"shares" json:"shares"`
}

type LinkClicks struct {
	LinkID   string `db:"link_id"  json:"link_id"`
	Platform string `db:"platform" json:"platform"`
	Clicks   int    `db:"clicks"   json:"clicks"`
}

type CountryCount struct {
	Country string `db:"country" json:"country"`
	Count   int    `db:"count"   json:"count"`
}

type CityCount struct {
	City    string `db:"city"    json:"city"`
	Country string `db:"country" json:"country"`
	Count   int    `db:"count"   json:"count"`
}

// Summary is the analytics view of one page. The geographic breakdown is
// only filled in for plans with advanced analytics.
type Summary struct {
	PageID    string         `json:"page_id"`
	Totals    Totals         `json:"totals"`
	Links     []LinkClicks   `json:"links"`
	ByCountry []CountryCount `json:"by_country,omitempty"`
	ByCity    []CityCount    `json:"by_city,omitempty"`
}
