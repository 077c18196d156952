// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/smartlink/internal/auth"
	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/entitlement"
	"github.com/carterperez-dev/smartlink/internal/guard"
	"github.com/carterperez-dev/smartlink/internal/role"
)

var (
	errSelfModeration = core.ForbiddenError("you cannot change your own account status")
	errOutranked      = core.ForbiddenError("target role is equal to or above yours")
	errInvalidRole    = core.ValidationError("role must be one of: user, moderator, admin")
	errUnknownPlan    = core.ValidationError("unknown plan")
)

// OwnedResources deletes everything of one kind that a user owns, inside
// the caller's transaction.
type OwnedResources interface {
	DeleteAllByOwner(ctx context.Context, tx core.DBTX, ownerID string) error
}

type PlanChecker interface {
	KnownPlan(ctx context.Context, name string) (bool, error)
}

type Service struct {
	db    *sqlx.DB
	repo  Repository
	plans PlanChecker
	owned []OwnedResources
}

// NewService wires the credential store. owned is deleted in order before
// the user row when an account is removed.
func NewService(
	db *sqlx.DB,
	repo Repository,
	plans PlanChecker,
	owned ...OwnedResources,
) *Service {
	return &Service{
		db:    db,
		repo:  repo,
		plans: plans,
		owned: owned,
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(ctx context.Context, nu auth.NewUser) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(nu.Email),
		Username:     nu.Username,
		PasswordHash: nu.PasswordHash,
		Role:         nu.Role,
		Plan:         nu.Plan,
		IsVerified:   nu.IsVerified,
		Status:       StatusActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

// LoadPrincipal reads the caller's live state. It runs on every
// authenticated request and is never cached.
func (s *Service) LoadPrincipal(ctx context.Context, userID string) (*guard.Principal, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	r, _ := role.Parse(string(user.Role))

	return &guard.Principal{
		UserID:     user.ID,
		Email:      user.Email,
		Username:   user.Username,
		Role:       r,
		Plan:       user.Plan,
		IsBanned:   user.IsBanned,
		IsVerified: user.IsVerified,
	}, nil
}

func (s *Service) ReassignPlan(ctx context.Context, from, to string) (int64, error) {
	return s.repo.ReassignPlan(ctx, from, to)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]Summary, int, error) {
	return s.repo.List(ctx, params)
}

// ChangeRole is owner-only. The owner's own role is immutable and the owner
// role can never be granted here.
func (s *Service) ChangeRole(
	ctx context.Context,
	actor *guard.Principal,
	targetID, roleName string,
) (*User, error) {
	if err := guard.Require(role.Owner)(actor); err != nil {
		return nil, err
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	targetRole, _ := role.Parse(string(target.Role))
	if err := guard.OwnerOnly(targetRole)(actor); err != nil {
		return nil, err
	}

	newRole, ok := role.Parse(roleName)
	if !ok || newRole == role.Owner {
		return nil, errInvalidRole
	}

	if err := s.repo.UpdateRole(ctx, target.ID, newRole); err != nil {
		return nil, err
	}

	target.Role = newRole
	return target, nil
}

func (s *Service) ChangePlan(
	ctx context.Context,
	actor *guard.Principal,
	targetID, planName string,
) (*User, error) {
	if err := guard.Require(role.Admin)(actor); err != nil {
		return nil, err
	}

	plan := entitlement.NormalizePlanName(planName)
	known, err := s.plans.KnownPlan(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("check plan: %w", err)
	}
	if !known {
		return nil, errUnknownPlan
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePlan(ctx, target.ID, plan); err != nil {
		return nil, err
	}

	target.Plan = plan
	return target, nil
}

func (s *Service) SetBanned(
	ctx context.Context,
	actor *guard.Principal,
	targetID string,
	banned bool,
) (*User, error) {
	target, err := s.moderationTarget(ctx, actor, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetBanned(ctx, target.ID, banned); err != nil {
		return nil, err
	}

	target.IsBanned = banned
	return target, nil
}

func (s *Service) SetVerified(
	ctx context.Context,
	actor *guard.Principal,
	targetID string,
	verified bool,
) (*User, error) {
	target, err := s.moderationTarget(ctx, actor, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetVerified(ctx, target.ID, verified); err != nil {
		return nil, err
	}

	target.IsVerified = verified
	return target, nil
}

// moderationTarget loads a user the actor may ban or verify: never
// themselves and only someone they strictly outrank.
func (s *Service) moderationTarget(
	ctx context.Context,
	actor *guard.Principal,
	targetID string,
) (*User, error) {
	if err := guard.Require(role.Moderator)(actor); err != nil {
		return nil, err
	}

	if actor.UserID == targetID {
		return nil, errSelfModeration
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if !role.Outranks(actor.Role, target.Role) {
		return nil, errOutranked
	}

	return target, nil
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteMe removes the account and everything it owns in one transaction.
func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("delete me: %w", core.ErrUnauthorized)
	}

	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, owned := range s.owned {
			if err := owned.DeleteAllByOwner(ctx, tx, userID); err != nil {
				return fmt.Errorf("delete owned resources: %w", err)
			}
		}

		return NewRepository(tx).Delete(ctx, userID)
	})
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Plan:         u.Plan,
		IsBanned:     u.IsBanned,
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
	}
}

var (
	_ auth.UserProvider        = (*Service)(nil)
	_ guard.Loader             = (*Service)(nil)
	_ entitlement.PlanMigrator = (*Service)(nil)
)
