// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/guard"
	"github.com/carterperez-dev/smartlink/internal/role"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	planFree = "free"
	planPro  = "pro"
)

type UserInfo struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Role         role.Role
	Plan         string
	IsBanned     bool
	IsVerified   bool
	CreatedAt    time.Time
}

// NewUser is the registration record handed to the credential store.
type NewUser struct {
	Email        string
	Username     string
	PasswordHash string
	Role         role.Role
	Plan         string
	IsVerified   bool
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(ctx context.Context, u NewUser) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	tokens     *TokenService
	users      UserProvider
	ownerEmail string
	logger     *slog.Logger
}

func NewService(
	tokens *TokenService,
	users UserProvider,
	ownerEmail string,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tokens:     tokens,
		users:      users,
		ownerEmail: strings.ToLower(strings.TrimSpace(ownerEmail)),
		logger:     logger,
	}
}

// Register creates a user. The configured owner email is bound to the
// owner role on the pro plan and starts verified.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	nu := NewUser{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: passwordHash,
		Role:         role.User,
		Plan:         planFree,
	}

	if s.ownerEmail != "" && nu.Email == s.ownerEmail {
		nu.Role = role.Owner
		nu.Plan = planPro
		nu.IsVerified = true
	}

	user, err := s.users.Create(ctx, nu)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("email or username")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if user.Role == role.Owner {
		s.logger.InfoContext(ctx, "owner account registered", "user_id", user.ID)
	}

	return s.issue(user)
}

// Login checks credentials before the ban flag so a ban is only revealed to
// someone who knows the password.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(req.Password, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if user.IsBanned {
		return nil, guard.ErrAccountBanned
	}

	if newHash != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.WarnContext(ctx, "password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	return s.issue(user)
}

func (s *Service) Me(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID string,
	req ChangePasswordRequest,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	valid, err := core.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.UpdatePassword(ctx, userID, newHash)
}

func (s *Service) issue(user *UserInfo) (*AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResponse{
		User:      toUserResponse(user),
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	}, nil
}
