// AngelaMos | 2026
// service.go

package admin

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/smartlink/internal/audit"
	"github.com/carterperez-dev/smartlink/internal/guard"
	"github.com/carterperez-dev/smartlink/internal/page"
	"github.com/carterperez-dev/smartlink/internal/role"
	"github.com/carterperez-dev/smartlink/internal/user"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type Users interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	ListUsers(ctx context.Context, params user.ListUsersParams) ([]user.Summary, int, error)
	ChangeRole(ctx context.Context, actor *guard.Principal, targetID, roleName string) (*user.User, error)
	ChangePlan(ctx context.Context, actor *guard.Principal, targetID, planName string) (*user.User, error)
	SetBanned(ctx context.Context, actor *guard.Principal, targetID string, banned bool) (*user.User, error)
	SetVerified(ctx context.Context, actor *guard.Principal, targetID string, verified bool) (*user.User, error)
}

type Pages interface {
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	TotalClicksByOwner(ctx context.Context, ownerID string) (int, error)
	ListStatsByOwner(ctx context.Context, ownerID string, skip, limit int) ([]page.Stats, int, error)
}

type Subdomains interface {
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

type Auditor interface {
	Record(ctx context.Context, adminID, event string, details audit.Details)
}

type ServiceConfig struct {
	Repo       Repository
	Users      Users
	Pages      Pages
	Subdomains Subdomains
	Audit      Auditor
	Logger     *slog.Logger
}

// Service backs the admin panel. Every read of another user's data goes
// through here so it is audited exactly once.
type Service struct {
	repo       Repository
	users      Users
	pages      Pages
	subdomains Subdomains
	audit      Auditor
	logger     *slog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:       cfg.Repo,
		users:      cfg.Users,
		pages:      cfg.Pages,
		subdomains: cfg.Subdomains,
		audit:      cfg.Audit,
		logger:     logger,
	}
}

func (s *Service) ListUsers(
	ctx context.Context,
	actor *guard.Principal,
	params user.ListUsersParams,
) ([]user.Summary, int, error) {
	if err := guard.Require(role.Moderator)(actor); err != nil {
		return nil, 0, err
	}

	return s.users.ListUsers(ctx, params)
}

// UserProfile loads another user's profile with usage counts. The audit
// entry is written only once the target is known to exist.
func (s *Service) UserProfile(
	ctx context.Context,
	actor *guard.Principal,
	targetID string,
) (*ProfileResponse, error) {
	if err := guard.Require(role.Moderator)(actor); err != nil {
		return nil, err
	}

	target, err := s.users.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	var pageCount, totalClicks, subdomainCount int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.pages.CountByOwner(gctx, target.ID)
		pageCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.pages.TotalClicksByOwner(gctx, target.ID)
		totalClicks = n
		return err
	})
	g.Go(func() error {
		n, err := s.subdomains.CountByOwner(gctx, target.ID)
		subdomainCount = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, audit.EventViewUserProfile, audit.Details{
		"target_user_id": target.ID,
		"target_email":   target.Email,
	})

	return &ProfileResponse{
		UserResponse:   user.ToUserResponse(target),
		PageCount:      pageCount,
		TotalClicks:    totalClicks,
		SubdomainCount: subdomainCount,
	}, nil
}

func (s *Service) UserPages(
	ctx context.Context,
	actor *guard.Principal,
	targetID string,
	skip, limit int,
) (*UserPagesResponse, error) {
	if err := guard.Require(role.Moderator)(actor); err != nil {
		return nil, err
	}

	skip, limit = clampPaging(skip, limit)

	target, err := s.users.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	stats, total, err := s.pages.ListStatsByOwner(ctx, target.ID, skip, limit)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.UserID, audit.EventViewUserPages, audit.Details{
		"target_user_id": target.ID,
		"skip":           skip,
		"limit":          limit,
	})

	return &UserPagesResponse{
		Pages: page.ToStatsResponseList(stats),
		Total: total,
		Skip:  skip,
		Limit: limit,
		User:  user.ToUserResponse(target),
	}, nil
}

func (s *Service) ChangeRole(
	ctx context.Context,
	actor *guard.Principal,
	targetID, roleName string,
) (*user.User, error) {
	u, err := s.users.ChangeRole(ctx, actor, targetID, roleName)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "role changed",
		"actor_id", actor.UserID,
		"target_id", u.ID,
		"role", u.Role,
	)
	return u, nil
}

func (s *Service) ChangePlan(
	ctx context.Context,
	actor *guard.Principal,
	targetID, planName string,
) (*user.User, error) {
	u, err := s.users.ChangePlan(ctx, actor, targetID, planName)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "plan changed",
		"actor_id", actor.UserID,
		"target_id", u.ID,
		"plan", u.Plan,
	)
	return u, nil
}

func (s *Service) SetBanned(
	ctx context.Context,
	actor *guard.Principal,
	targetID string,
	banned bool,
) (*user.User, error) {
	u, err := s.users.SetBanned(ctx, actor, targetID, banned)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "ban updated",
		"actor_id", actor.UserID,
		"target_id", u.ID,
		"banned", banned,
	)
	return u, nil
}

func (s *Service) SetVerified(
	ctx context.Context,
	actor *guard.Principal,
	targetID string,
	verified bool,
) (*user.User, error) {
	return s.users.SetVerified(ctx, actor, targetID, verified)
}

func (s *Service) Counts(ctx context.Context) (*Counts, error) {
	return s.repo.Counts(ctx)
}

func clampPaging(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}
