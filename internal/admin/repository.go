// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/smartlink/internal/core"
)

// Counts are the platform-wide totals on the admin dashboard.
type Counts struct {
	Users       int `db:"users"        json:"users"`
	BannedUsers int `db:"banned_users" json:"banned_users"`
	ProUsers    int `db:"pro_users"    json:"pro_users"`
	Pages       int `db:"pages"        json:"pages"`
	Subdomains  int `db:"subdomains"   json:"subdomains"`
	Views       int `db:"views"        json:"views"`
	Clicks      int `db:"clicks"       json:"clicks"`
}

type Repository interface {
	Counts(ctx context.Context) (*Counts, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Counts(ctx context.Context) (*Counts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM users WHERE is_banned) AS banned_users,
			(SELECT COUNT(*) FROM users WHERE plan = 'pro') AS pro_users,
			(SELECT COUNT(*) FROM pages) AS pages,
			(SELECT COUNT(*) FROM subdomains) AS subdomains,
			(SELECT COUNT(*) FROM views) AS views,
			(SELECT COUNT(*) FROM clicks) AS clicks`

	var c Counts
	if err := r.db.GetContext(ctx, &c, query); err != nil {
		return nil, fmt.Errorf("count platform totals: %w", err)
	}

	return &c, nil
}
