// AngelaMos | 2026
// repository.go

package subdomain

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/smartlink/internal/core"
)

type Repository interface {
	Create(ctx context.Context, s *Subdomain) error
	FindByID(ctx context.Context, id string) (*Subdomain, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*Subdomain, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Subdomain, error)
	ListAll(ctx context.Context, search string, skip, limit int) ([]AdminView, int, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	LockOwner(ctx context.Context, ownerID string) error
	Update(ctx context.Context, s *Subdomain) error
	Toggle(ctx context.Context, id string) (*Subdomain, error)
	Delete(ctx context.Context, id string) error
	DeleteAllByOwner(ctx context.Context, ownerID string) error
}

const subdomainColumns = `id, user_id, page_id, subdomain, is_active,
	created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *Subdomain) error {
	query := `
		INSERT INTO subdomains (id, user_id, page_id, subdomain, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, s, query, s.ID, s.UserID, s.PageID, s.Name, s.IsActive)
	if err != nil {
		if core.IsDuplicateKey(err) {
			return fmt.Errorf("create subdomain: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create subdomain: %w", err)
	}

	return nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Subdomain, error) {
	query := `SELECT ` + subdomainColumns + ` FROM subdomains WHERE id = $1`

	var s Subdomain
	err := r.db.GetContext(ctx, &s, query, id)
	if core.IsNoRows(err) {
		return nil, fmt.Errorf("find subdomain: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find subdomain: %w", err)
	}

	return &s, nil
}

func (r *repository) FindByIDAndOwner(
	ctx context.Context,
	id, ownerID string,
) (*Subdomain, error) {
	query := `SELECT ` + subdomainColumns + `
		FROM subdomains
		WHERE id = $1 AND user_id = $2`

	var s Subdomain
	err := r.db.GetContext(ctx, &s, query, id, ownerID)
	if core.IsNoRows(err) {
		return nil, fmt.Errorf("find subdomain: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find subdomain: %w", err)
	}

	return &s, nil
}

func (r *repository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM subdomains WHERE subdomain = $1)`
	if err := r.db.GetContext(ctx, &exists, query, name); err != nil {
		return false, fmt.Errorf("check subdomain: %w", err)
	}

	return exists, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID string) ([]Subdomain, error) {
	query := `SELECT ` + subdomainColumns + `
		FROM subdomains
		WHERE user_id = $1
		ORDER BY created_at`

	subs := []Subdomain{}
	if err := r.db.SelectContext(ctx, &subs, query, ownerID); err != nil {
		return nil, fmt.Errorf("list subdomains: %w", err)
	}

	return subs, nil
}

func (r *repository) ListAll(
	ctx context.Context,
	search string,
	skip, limit int,
) ([]AdminView, int, error) {
	where := "TRUE"
	args := []any{}
	if search != "" {
		where = "(s.subdomain ILIKE $1 OR u.email ILIKE $1 OR u.username ILIKE $1)"
		args = append(args, "%"+core.EscapeLike(search)+"%")
	}

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM subdomains s
		JOIN users u ON u.id = s.user_id
		WHERE ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count subdomains: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT s.id, s.user_id, s.page_id, s.subdomain, s.is_active,
		       s.created_at, s.updated_at,
		       u.email AS owner_email, u.username AS owner_username
		FROM subdomains s
		JOIN users u ON u.id = s.user_id
		WHERE %s
		ORDER BY s.created_at DESC
		LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)

	args = append(args, limit, skip)

	views := []AdminView{}
	if err := r.db.SelectContext(ctx, &views, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list all subdomains: %w", err)
	}

	return views, total, nil
}

func (r *repository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM subdomains WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &count, query, ownerID); err != nil {
		return 0, fmt.Errorf("count subdomains: %w", err)
	}

	return count, nil
}

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

func (r *repository) Update(ctx context.Context, s *Subdomain) error {
	query := `
		UPDATE subdomains
		SET page_id = $2, is_active = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &s.UpdatedAt, query, s.ID, s.PageID, s.IsActive)
	if core.IsNoRows(err) {
		return fmt.Errorf("update subdomain: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update subdomain: %w", err)
	}

	return nil
}

func (r *repository) Toggle(ctx context.Context, id string) (*Subdomain, error) {
	query := `
		UPDATE subdomains
		SET is_active = NOT is_active, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + subdomainColumns

	var s Subdomain
	err := r.db.GetContext(ctx, &s, query, id)
	if core.IsNoRows(err) {
		return nil, fmt.Errorf("toggle subdomain: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("toggle subdomain: %w", err)
	}

	return &s, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subdomains WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subdomain: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subdomain: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete subdomain: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DeleteAllByOwner(ctx context.Context, ownerID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subdomains WHERE user_id = $1`, ownerID); err != nil {
		return fmt.Errorf("delete owned subdomains: %w", err)
	}

	return nil
}
