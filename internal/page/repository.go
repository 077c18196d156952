// AngelaMos | 2026
// repository.go

package page

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/smartlink/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Page) error
	FindByID(ctx context.Context, id string) (*Page, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*Page, error)
	FindBySlug(ctx context.Context, slug string) (*Page, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Page, error)
	ListStatsByOwner(ctx context.Context, ownerID string, skip, limit int) ([]Stats, int, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	TotalClicksByOwner(ctx context.Context, ownerID string) (int, error)
	LockOwner(ctx context.Context, ownerID string) error
	Update(ctx context.Context, p *Page) error
	Delete(ctx context.Context, id string) error
	DeleteAllByOwner(ctx context.Context, ownerID string) error

	CreateLink(ctx context.Context, l *Link) error
	FindLink(ctx context.Context, id string) (*Link, error)
	ListLinks(ctx context.Context, pageID string) ([]Link, error)
	UpdateLink(ctx context.Context, l *Link) error
	DeleteLink(ctx context.Context, id string) error
}

const pageColumns = `id, user_id, title, slug, description, theme,
	hide_branding, status, created_at, updated_at`

const linkColumns = `id, page_id, platform, url, position, active, created_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Page) error {
	query := `
		INSERT INTO pages (id, user_id, title, slug, description, theme,
		                   hide_branding, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, p, query,
		p.ID,
		p.UserID,
		p.Title,
		p.Slug,
		p.Description,
		p.Theme,
		p.HideBranding,
		p.Status,
	)
	if err != nil {
		if core.IsDuplicateKey(err) {
			return fmt.Errorf("create page: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create page: %w", err)
	}

	return nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE id = $1`

	var p Page
	err := r.db.GetContext(ctx, &p, query, id)
	if core.IsNoRows(err) {
		return nil, fmt.Errorf("find page: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find page: %w", err)
	}

	return &p, nil
}

func (r *repository) FindByIDAndOwner(
	ctx context.Context,
	id, ownerID string,
) (*Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE id = $1 AND user_id = $2`

	var p Page
	err := r.db.GetContext(ctx, &p, query, id, ownerID)
	if core.IsNoRows(err) {
		return nil, fmt.Errorf("find page: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find page: %w", err)
	}

	return &p, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE slug = $1`

	var p Page
	err := r.db.GetContext(ctx, &p, query, slug)
	if core.IsNoRows(err) {
		return nil, fmt.Errorf("find page by slug: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find page by slug: %w", err)
	}

	return &p, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID string) ([]Page, error) {
	query := `SELECT ` + pageColumns + `
		FROM pages
		WHERE user_id = $1
		ORDER BY created_at DESC`

	pages := []Page{}
	if err := r.db.SelectContext(ctx, &pages, query, ownerID); err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	return pages, nil
}

func (r *repository) ListStatsByOwner(
	ctx context.Context,
	ownerID string,
	skip, limit int,
) ([]Stats, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM pages WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, ownerID); err != nil {
		return nil, 0, fmt.Errorf("count pages: %w", err)
	}

	query := `
		SELECT p.id, p.user_id, p.title, p.slug, p.description, p.theme,
		       p.hide_branding, p.status, p.created_at, p.updated_at,
		       COUNT(c.id) AS total_clicks,
		       COUNT(c.id) FILTER (
		           WHERE c.created_at >= NOW() - INTERVAL '7 days'
		       ) AS clicks_7d
		FROM pages p
		LEFT JOIN clicks c ON c.page_id = p.id
		WHERE p.user_id = $1
		GROUP BY p.id
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3`

	stats := []Stats{}
	if err := r.db.SelectContext(ctx, &stats, query, ownerID, limit, skip); err != nil {
		return nil, 0, fmt.Errorf("list page stats: %w", err)
	}

	return stats, total, nil
}

func (r *repository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM pages WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &count, query, ownerID); err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}

	return count, nil
}

func (r *repository) TotalClicksByOwner(ctx context.Context, ownerID string) (int, error) {
	var total int
	query := `
		SELECT COUNT(c.id)
		FROM clicks c
		JOIN pages p ON p.id = c.page_id
		WHERE p.user_id = $1`
	if err := r.db.GetContext(ctx, &total, query, ownerID); err != nil {
		return 0, fmt.Errorf("count clicks: %w", err)
	}

	return total, nil
}

// LockOwner serializes quota-checked inserts for one owner. It only has an
// effect inside a transaction.
func (r *repository) LockOwner(ctx context.Context, ownerID string) error {
	var id string
	query := `SELECT id FROM users WHERE id = $1 FOR UPDATE`

	err := r.db.GetContext(ctx, &id, query, ownerID)
	if core.IsNoRows(err) {
		return fmt.Errorf("lock owner: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lock owner: %w", err)
	}

	return nil
}

func (r *repository) Update(ctx context.Context, p *Page) error {
	query := `
		UPDATE pages
		SET title = $2, description = $3, theme = $4,
		    hide_branding = $5, status = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &p.UpdatedAt, query,
		p.ID,
		p.Title,
		p.Description,
		p.Theme,
		p.HideBranding,
		p.Status,
	)
	if core.IsNoRows(err) {
		return fmt.Errorf("update page: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}

	return nil
}

// Delete removes a page and its children, children first, and unbinds any
// subdomain pointing at it. Call it inside a transaction.
func (r *repository) Delete(ctx context.Context, id string) error {
	statements := []string{
		`UPDATE subdomains SET page_id = NULL WHERE page_id = $1`,
		`DELETE FROM clicks WHERE page_id = $1`,
		`DELETE FROM views WHERE page_id = $1`,
		`DELETE FROM shares WHERE page_id = $1`,
		`DELETE FROM links WHERE page_id = $1`,
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete page children: %w", err)
		}
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete page: %w", core.ErrNotFound)
	}

	return nil
}

// DeleteAllByOwner removes every page a user owns with the same ordering as
// Delete.
func (r *repository) DeleteAllByOwner(ctx context.Context, ownerID string) error {
	owned := `SELECT id FROM pages WHERE user_id = $1`
	statements := []string{
		`UPDATE subdomains SET page_id = NULL WHERE page_id IN (` + owned + `)`,
		`DELETE FROM clicks WHERE page_id IN (` + owned + `)`,
		`DELETE FROM views WHERE page_id IN (` + owned + `)`,
		`DELETE FROM shares WHERE page_id IN (` + owned + `)`,
		`DELETE FROM links WHERE page_id IN (` + owned + `)`,
		`DELETE FROM pages WHERE user_id = $1`,
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt, ownerID); err != nil {
			return fmt.Errorf("delete owned pages: %w", err)
		}
	}

	return nil
}

func (r *repository) CreateLink(ctx context.Context, l *Link) error {
	query := `
		INSERT INTO links (id, page_id, platform, url, position, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &l.CreatedAt, query,
		l.ID, l.PageID, l.Platform, l.URL, l.Position, l.Active)
	if err != nil {
		return fmt.Errorf("create link: %w", err)
	}

	return nil
}

func (r *repository) FindLink(ctx context.Context, id string) (*Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`

	var l Link
	err := r.db.GetContext(ctx, &l, query, id)
	if core.IsNoRows(err) {
		return nil, fmt.Errorf("find link: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find link: %w", err)
	}

	return &l, nil
}

func (r *repository) ListLinks(ctx context.Context, pageID string) ([]Link, error) {
	query := `SELECT ` + linkColumns + `
		FROM links
		WHERE page_id = $1
		ORDER BY position, created_at`

	links := []Link{}
	if err := r.db.SelectContext(ctx, &links, query, pageID); err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}

	return links, nil
}

func (r *repository) UpdateLink(ctx context.Context, l *Link) error {
	query := `
		UPDATE links
		SET platform = $2, url = $3, position = $4, active = $5
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		l.ID, l.Platform, l.URL, l.Position, l.Active)
	if err != nil {
		return fmt.Errorf("update link: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update link: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update link: %w", core.ErrNotFound)
	}

	return nil
}

// DeleteLink removes a link and its clicks. Call it inside a transaction.
func (r *repository) DeleteLink(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM clicks WHERE link_id = $1`, id); err != nil {
		return fmt.Errorf("delete link clicks: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete link: %w", core.ErrNotFound)
	}

	return nil
}
