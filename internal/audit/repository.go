// AngelaMos | 2026
// repository.go

package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/carterperez-dev/smartlink/internal/core"
)

type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	Query(ctx context.Context, filter Filter) ([]Entry, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO audit_logs (id, admin_id, event, details)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &entry.Timestamp, query,
		entry.ID,
		entry.AdminID,
		entry.Event,
		entry.Details,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	return nil
}

// Query returns matching entries newest first together with the total
// number of matches.
func (r *repository) Query(
	ctx context.Context,
	filter Filter,
) ([]Entry, int, error) {
	filter.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if filter.AdminID != "" {
		conditions = append(conditions, fmt.Sprintf("a.admin_id = $%d", argIdx))
		args = append(args, filter.AdminID)
		argIdx++
	}

	if filter.Event != "" {
		conditions = append(conditions, fmt.Sprintf("a.event = $%d", argIdx))
		args = append(args, filter.Event)
		argIdx++
	}

	if filter.TargetUserID != "" {
		conditions = append(conditions, fmt.Sprintf(
			"a.details->>'target_user_id' = $%d", argIdx))
		args = append(args, filter.TargetUserID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM audit_logs a WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT a.id, a.admin_id, a.event, a.details, a.created_at,
		       COALESCE(u.email, '') AS admin_email,
		       COALESCE(u.username, '') AS admin_username
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.admin_id
		WHERE %s
		ORDER BY a.created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, filter.Skip)

	entries := []Entry{}
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("query audit entries: %w", err)
	}

	return entries, total, nil
}
