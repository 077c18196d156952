// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=50,alphanum"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type UpdatePlanRequest struct {
	Plan string `json:"plan" validate:"required,max=32"`
}

type BanRequest struct {
	Banned *bool `json:"banned" validate:"required"`
}

type VerifyRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	Plan       string    `json:"plan"`
	IsBanned   bool      `json:"is_banned"`
	IsVerified bool      `json:"is_verified"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type SummaryResponse struct {
	UserResponse

	PageCount   int `json:"page_count"`
	TotalClicks int `json:"total_clicks"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
	Plan     string `json:"plan"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		Role:       string(u.Role),
		Plan:       u.Plan,
		IsBanned:   u.IsBanned,
		IsVerified: u.IsVerified,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func ToSummaryResponseList(users []Summary) []SummaryResponse {
	responses := make([]SummaryResponse, 0, len(users))
	for i := range users {
		responses = append(responses, SummaryResponse{
			UserResponse: ToUserResponse(&users[i].User),
			PageCount:    users[i].PageCount,
			TotalClicks:  users[i].TotalClicks,
		})
	}
	return responses
}
