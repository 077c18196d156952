// AngelaMos | 2026
// repository.go

package analytics

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/smartlink/internal/core"
)

type Repository interface {
	InsertView(ctx context.Context, id, pageID string, loc Location) error
	InsertClick(ctx context.Context, id, pageID, linkID string, loc Location, userAgent string) error
	InsertShare(ctx context.Context, id, pageID, platform string) error
	Totals(ctx context.Context, pageID string) (Totals, error)
	ClicksByLink(ctx context.Context, pageID string) ([]LinkClicks, error)
	ByCountry(ctx context.Context, pageID string) ([]CountryCount, error)
	ByCity(ctx context.Context, pageID string) ([]CityCount, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) InsertView(
	ctx context.Context,
	id, pageID string,
	loc Location,
) error {
	query := `
		INSERT INTO views (id, page_id, country, city)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, id, pageID, loc.Country, loc.City); err != nil {
		return fmt.Errorf("insert view: %w", err)
	}

	return nil
}

func (r *repository) InsertClick(
	ctx context.Context,
	id, pageID, linkID string,
	loc Location,
	userAgent string,
) error {
	query := `
		INSERT INTO clicks (id, link_id, page_id, country, city, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		id, linkID, pageID, loc.Country, loc.City, userAgent)
	if err != nil {
		return fmt.Errorf("insert click: %w", err)
	}

	return nil
}

func (r *repository) InsertShare(ctx context.Context, id, pageID, platform string) error {
	query := `INSERT INTO shares (id, page_id, platform) VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, id, pageID, platform); err != nil {
		return fmt.Errorf("insert share: %w", err)
	}

	return nil
}

func (r *repository) Totals(ctx context.Context, pageID string) (Totals, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM views  WHERE page_id = $1) AS views,
			(SELECT COUNT(*) FROM clicks WHERE page_id = $1) AS clicks,
			(SELECT COUNT(*) FROM shares WHERE page_id = $1) AS shares`

	var totals Totals
	if err := r.db.GetContext(ctx, &totals, query, pageID); err != nil {
		return Totals{}, fmt.Errorf("page totals: %w", err)
	}

	return totals, nil
}

func (r *repository) ClicksByLink(ctx context.Context, pageID string) ([]LinkClicks, error) {
	query := `
		SELECT l.id AS link_id, l.platform, COUNT(c.id) AS clicks
		FROM links l
		LEFT JOIN clicks c ON c.link_id = l.id
		WHERE l.page_id = $1
		GROUP BY l.id, l.platform, l.position
		ORDER BY l.position`

	links := []LinkClicks{}
	if err := r.db.SelectContext(ctx, &links, query, pageID); err != nil {
		return nil, fmt.Errorf("clicks by link: %w", err)
	}

	return links, nil
}

func (r *repository) ByCountry(ctx context.Context, pageID string) ([]CountryCount, error) {
	query := `
		SELECT country, COUNT(*) AS count
		FROM clicks
		WHERE page_id = $1
		GROUP BY country
		ORDER BY count DESC, country`

	counts := []CountryCount{}
	if err := r.db.SelectContext(ctx, &counts, query, pageID); err != nil {
		return nil, fmt.Errorf("clicks by country: %w", err)
	}

	return counts, nil
}

func (r *repository) ByCity(ctx context.Context, pageID string) ([]CityCount, error) {
	query := `
		SELECT city, country, COUNT(*) AS count
		FROM clicks
		WHERE page_id = $1
		GROUP BY city, country
		ORDER BY count DESC, city`

	counts := []CityCount{}
	if err := r.db.SelectContext(ctx, &counts, query, pageID); err != nil {
		return nil, fmt.Errorf("clicks by city: %w", err)
	}

	return counts, nil
}
