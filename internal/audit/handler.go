// AngelaMos | 2026
// handler.go

package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the audit log reader. Moderators can trigger
// audited reads but cannot see this log, so callers pass the admin chain.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/audit-logs", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.List)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	resp, err := h.service.Query(r.Context(), middleware.GetPrincipal(r.Context()), Filter{
		AdminID:      q.Get("admin_id"),
		Event:        q.Get("event"),
		TargetUserID: q.Get("target_user_id"),
		Skip:         core.QueryInt(r, "skip", 0),
		Limit:        core.QueryInt(r, "limit", defaultLimit),
	})
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}
