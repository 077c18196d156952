// AngelaMos | 2026
// service.go

package analytics

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	repo    Repository
	locator Locator
	logger  *slog.Logger
}

func NewService(repo Repository, locator Locator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:    repo,
		locator: locator,
		logger:  logger,
	}
}

// RecordView stores one anonymous page view. Failures are logged and never
// reach the visitor.
func (s *Service) RecordView(ctx context.Context, pageID string, v Visitor) {
	loc := s.locator.Locate(ctx, v.IP)

	if err := s.repo.InsertView(ctx, uuid.New().String(), pageID, loc); err != nil {
		s.logger.WarnContext(ctx, "record view failed", "page_id", pageID, "error", err)
	}
}

func (s *Service) RecordClick(ctx context.Context, pageID, linkID string, v Visitor) {
	loc := s.locator.Locate(ctx, v.IP)

	err := s.repo.InsertClick(ctx, uuid.New().String(), pageID, linkID, loc, v.UserAgent)
	if err != nil {
		s.logger.WarnContext(ctx, "record click failed",
			"page_id", pageID,
			"link_id", linkID,
			"error", err,
		)
	}
}

func (s *Service) RecordShare(ctx context.Context, pageID, platform string) {
	if err := s.repo.InsertShare(ctx, uuid.New().String(), pageID, platform); err != nil {
		s.logger.WarnContext(ctx, "record share failed", "page_id", pageID, "error", err)
	}
}

// Summary aggregates a page's events. detailed adds the country and city
// breakdown.
func (s *Service) Summary(ctx context.Context, pageID string, detailed bool) (*Summary, error) {
	summary := &Summary{PageID: pageID}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		totals, err := s.repo.Totals(gctx, pageID)
		summary.Totals = totals
		return err
	})

	g.Go(func() error {
		links, err := s.repo.ClicksByLink(gctx, pageID)
		summary.Links = links
		return err
	})

	if detailed {
		g.Go(func() error {
			countries, err := s.repo.ByCountry(gctx, pageID)
			summary.ByCountry = countries
			return err
		})

		g.Go(func() error {
			cities, err := s.repo.ByCity(gctx, pageID)
			summary.ByCity = cities
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summary, nil
}
