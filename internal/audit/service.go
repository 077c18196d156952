// AngelaMos | 2026
// service.go

package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/guard"
	"github.com/carterperez-dev/smartlink/internal/role"
)

type Service struct {
	repo    Repository
	logger  *slog.Logger
	metrics *core.Metrics
}

func NewService(repo Repository, logger *slog.Logger, metrics *core.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
	}
}

// Record appends an entry. A failed write is logged and counted but never
// returned, so the privileged read that triggered it still succeeds.
func (s *Service) Record(ctx context.Context, adminID, event string, details Details) {
	entry := &Entry{
		ID:      uuid.New().String(),
		AdminID: adminID,
		Event:   event,
		Details: details,
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		s.metrics.AuditWriteFailed()
		core.SetSpanError(ctx, err)
		s.logger.ErrorContext(ctx, "audit write failed",
			"admin_id", adminID,
			"event", event,
			"error", err,
		)
	}
}

// Query is admin only. Moderators can trigger audited reads but never see
// the log itself.
func (s *Service) Query(
	ctx context.Context,
	actor *guard.Principal,
	filter Filter,
) (*QueryResponse, error) {
	if err := guard.Require(role.Admin)(actor); err != nil {
		return nil, err
	}

	filter.Normalize()

	if filter.AdminID != "" {
		if _, err := uuid.Parse(filter.AdminID); err != nil {
			return &QueryResponse{
				Logs:  []Entry{},
				Skip:  filter.Skip,
				Limit: filter.Limit,
			}, nil
		}
	}

	logs, total, err := s.repo.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &QueryResponse{
		Logs:  logs,
		Total: total,
		Skip:  filter.Skip,
		Limit: filter.Limit,
	}, nil
}
