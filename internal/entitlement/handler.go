// AngelaMos | 2026
// handler.go

package entitlement

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me/limits", h.GetLimits)
		r.Get("/entitlements/check", h.CheckAccess)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/plan-configs", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListPlans)
		r.Post("/", h.CreatePlan)
		r.Get("/{planName}", h.GetPlan)
		r.Put("/{planName}", h.UpsertPlan)
	})
}

func (h *Handler) GetLimits(w http.ResponseWriter, r *http.Request) {
	limits, err := h.service.Limits(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, limits)
}

func (h *Handler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	requirement := q.Get("requirement")
	if requirement == "" {
		core.BadRequest(w, "requirement is required")
		return
	}

	result, err := h.service.Check(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		requirement,
		q.Get("value"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, result)
}

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, plans)
}

func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.GetPlan(r.Context(), chi.URLParam(r, "planName"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, plan)
}

func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	plan, err := h.service.CreatePlan(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, plan)
}

func (h *Handler) UpsertPlan(w http.ResponseWriter, r *http.Request) {
	var req UpdatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	plan, err := h.service.UpsertPlan(r.Context(), chi.URLParam(r, "planName"), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, plan)
}
