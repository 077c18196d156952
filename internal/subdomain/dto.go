// AngelaMos | 2026
// dto.go

package subdomain

import (
	"time"
)

type CreateRequest struct {
	Subdomain string  `json:"subdomain" validate:"required,max=63"`
	PageID    *string `json:"page_id"   validate:"omitempty,uuid"`
}

type UpdateRequest struct {
	IsActive *bool   `json:"is_active"`
	PageID   *string `json:"page_id"   validate:"omitempty,uuid"`
}

type Response struct {
	ID        string    `json:"id"`
	Subdomain string    `json:"subdomain"`
	PageID    *string   `json:"page_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AdminResponse struct {
	Response

	UserID        string `json:"user_id"`
	OwnerEmail    string `json:"owner_email"`
	OwnerUsername string `json:"owner_username"`
}

type ListResponse struct {
	Subdomains []Response `json:"subdomains"`
	Count      int        `json:"count"`
	MaxLimit   int        `json:"max_limit"`
	CanAdd     bool       `json:"can_add"`
}

type AdminListResponse struct {
	Subdomains []AdminResponse `json:"subdomains"`
	Total      int             `json:"total"`
}

type Availability struct {
	Subdomain string `json:"subdomain"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

func ToResponse(s *Subdomain) Response {
	return Response{
		ID:        s.ID,
		Subdomain: s.Name,
		PageID:    s.PageID,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toResponses(subs []Subdomain) []Response {
	out := make([]Response, 0, len(subs))
	for i := range subs {
		out = append(out, ToResponse(&subs[i]))
	}
	return out
}

func toAdminResponses(views []AdminView) []AdminResponse {
	out := make([]AdminResponse, 0, len(views))
	for i := range views {
		out = append(out, AdminResponse{
			Response:      ToResponse(&views[i].Subdomain),
			UserID:        views[i].UserID,
			OwnerEmail:    views[i].OwnerEmail,
			OwnerUsername: views[i].OwnerUsername,
		})
	}
	return out
}
