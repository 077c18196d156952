// AngelaMos | 2026
// handler.go

package page

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/smartlink/internal/analytics"
	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/middleware"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,48}[a-z0-9]$`)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	//nolint:errcheck // tag name and func are static
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})

	return &Handler{
		service:   service,
		validator: v,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/pages", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)

		r.Route("/{pageID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Get("/analytics", h.Analytics)

			r.Get("/links", h.ListLinks)
			r.Post("/links", h.AddLink)
			r.Put("/links/{linkID}", h.UpdateLink)
			r.Delete("/links/{linkID}", h.RemoveLink)
		})
	})
}

// RegisterPublicRoutes mounts the unauthenticated visitor endpoints.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/p/{slug}", h.ViewPublic)
	r.Post("/p/{slug}/share", h.Share)
	r.Get("/click/{linkID}", h.Click)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pages, err := h.service.List(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	resp := make([]PageResponse, 0, len(pages))
	for i := range pages {
		resp = append(resp, ToPageResponse(&pages[i], nil))
	}

	core.OK(w, resp)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePageRequest
	if !h.decode(w, r, &req) {
		return
	}

	pg, err := h.service.Create(r.Context(), middleware.GetPrincipal(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToPageResponse(pg, []Link{}))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	pg, links, err := h.service.Get(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "pageID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToPageResponse(pg, links))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePageRequest
	if !h.decode(w, r, &req) {
		return
	}

	pg, err := h.service.Update(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "pageID"),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToPageResponse(pg, nil))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "pageID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Analytics(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "pageID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, summary)
}

func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.service.ListLinks(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "pageID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, toLinkResponses(links))
}

func (h *Handler) AddLink(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if !h.decode(w, r, &req) {
		return
	}

	link, err := h.service.AddLink(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "pageID"),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToLinkResponse(link))
}

func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if !h.decode(w, r, &req) {
		return
	}

	link, err := h.service.UpdateLink(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "pageID"),
		chi.URLParam(r, "linkID"),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToLinkResponse(link))
}

func (h *Handler) RemoveLink(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveLink(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "pageID"),
		chi.URLParam(r, "linkID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ViewPublic(w http.ResponseWriter, r *http.Request) {
	pg, links, err := h.service.ViewPublic(
		r.Context(),
		chi.URLParam(r, "slug"),
		analytics.VisitorFromRequest(r),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, PublicPageResponse{
		Title:        pg.Title,
		Slug:         pg.Slug,
		Description:  pg.Description,
		Theme:        pg.Theme,
		HideBranding: pg.HideBranding,
		Links:        toLinkResponses(links),
	})
}

func (h *Handler) Click(w http.ResponseWriter, r *http.Request) {
	target, err := h.service.Click(
		r.Context(),
		chi.URLParam(r, "linkID"),
		analytics.VisitorFromRequest(r),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.Share(r.Context(), chi.URLParam(r, "slug"), req.Platform); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}
