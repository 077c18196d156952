// AngelaMos | 2026
// dto.go

package page

import (
	"time"
)

type CreatePageRequest struct {
	Title        string `json:"title"         validate:"required,min=1,max=100"`
	Slug         string `json:"slug"          validate:"required,slug"`
	Description  string `json:"description"   validate:"max=500"`
	Theme        string `json:"theme"         validate:"omitempty,max=32"`
	HideBranding bool   `json:"hide_branding"`
}

type UpdatePageRequest struct {
	Title        *string `json:"title,omitempty"         validate:"omitempty,min=1,max=100"`
	Description  *string `json:"description,omitempty"   validate:"omitempty,max=500"`
	Theme        *string `json:"theme,omitempty"         validate:"omitempty,max=32"`
	HideBranding *bool   `json:"hide_branding,omitempty"`
	Status       *string `json:"status,omitempty"        validate:"omitempty,oneof=active disabled"`
}

type LinkRequest struct {
	Platform string `json:"platform" validate:"required,max=50"`
	URL      string `json:"url"      validate:"required,url,max=2048"`
	Position int    `json:"position" validate:"min=0"`
	Active   *bool  `json:"active"`
}

type ShareRequest struct {
	Platform string `json:"platform" validate:"required,max=50"`
}

type LinkResponse struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Position int    `json:"position"`
	Active   bool   `json:"active"`
}

type PageResponse struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Title        string         `json:"title"`
	Slug         string         `json:"slug"`
	Description  string         `json:"description"`
	Theme        string         `json:"theme"`
	HideBranding bool           `json:"hide_branding"`
	Status       string         `json:"status"`
	Links        []LinkResponse `json:"links,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// PublicPageResponse omits ownership and lifecycle fields.
type PublicPageResponse struct {
	Title        string         `json:"title"`
	Slug         string         `json:"slug"`
	Description  string         `json:"description"`
	Theme        string         `json:"theme"`
	HideBranding bool           `json:"hide_branding"`
	Links        []LinkResponse `json:"links"`
}

type StatsResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Status      string `json:"status"`
	TotalClicks int    `json:"total_clicks"`
	Clicks7d    int    `json:"clicks_7d"`
}

func ToLinkResponse(l *Link) LinkResponse {
	return LinkResponse{
		ID:       l.ID,
		Platform: l.Platform,
		URL:      l.URL,
		Position: l.Position,
		Active:   l.Active,
	}
}

func toLinkResponses(links []Link) []LinkResponse {
	out := make([]LinkResponse, 0, len(links))
	for i := range links {
		out = append(out, ToLinkResponse(&links[i]))
	}
	return out
}

func ToPageResponse(p *Page, links []Link) PageResponse {
	resp := PageResponse{
		ID:           p.ID,
		UserID:       p.UserID,
		Title:        p.Title,
		Slug:         p.Slug,
		Description:  p.Description,
		Theme:        p.Theme,
		HideBranding: p.HideBranding,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if links != nil {
		resp.Links = toLinkResponses(links)
	}
	return resp
}

func ToStatsResponseList(stats []Stats) []StatsResponse {
	out := make([]StatsResponse, 0, len(stats))
	for _, s := range stats {
		out = append(out, StatsResponse{
			ID:          s.ID,
			Title:       s.Title,
			Slug:        s.Slug,
			Status:      s.Status,
			TotalClicks: s.TotalClicks,
			Clicks7d:    s.Clicks7d,
		})
	}
	return out
}
