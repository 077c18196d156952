// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/middleware"
	"github.com/carterperez-dev/smartlink/internal/user"
)

type Handler struct {
	service    *Service
	validator  *validator.Validate
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	redisPing  func(ctx context.Context) error
	dbPing     func(ctx context.Context) error
}

type HandlerConfig struct {
	Service    *Service
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error
	DBPing     func(ctx context.Context) error
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		service:    cfg.Service,
		validator:  validator.New(validator.WithRequiredStructEnabled()),
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		redisPing:  cfg.RedisPing,
		dbPing:     cfg.DBPing,
	}
}

// Gates are the route-level role chains for the admin panel.
type Gates struct {
	Moderator func(http.Handler) http.Handler
	Admin     func(http.Handler) http.Handler
	Owner     func(http.Handler) http.Handler
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	gates Gates,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Group(func(r chi.Router) {
			r.Use(gates.Moderator)

			r.Get("/", h.ListUsers)
			r.Get("/{userID}", h.GetUser)
			r.Get("/{userID}/pages", h.GetUserPages)
			r.Put("/{userID}/ban", h.SetBanned)
			r.Put("/{userID}/verify", h.SetVerified)
		})

		r.With(gates.Admin).Put("/{userID}/plan", h.ChangePlan)
		r.With(gates.Owner).Put("/{userID}/role", h.ChangeRole)
	})

	r.Route("/admin/stats", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(gates.Admin)

		r.Get("/", h.GetSystemStats)
		r.Get("/runtime", h.GetRuntimeStats)
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := user.ListUsersParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 20),
		Search:   q.Get("search"),
		Role:     q.Get("role"),
		Plan:     q.Get("plan"),
	}
	params.Normalize()

	users, total, err := h.service.ListUsers(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		params,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(
		w,
		user.ToSummaryResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.UserProfile(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, profile)
}

func (h *Handler) GetUserPages(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.UserPages(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "userID"),
		core.QueryInt(r, "skip", 0),
		core.QueryInt(r, "limit", defaultLimit),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) SetBanned(w http.ResponseWriter, r *http.Request) {
	var req user.BanRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.SetBanned(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "userID"),
		*req.Banned,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, user.ToUserResponse(u))
}

func (h *Handler) SetVerified(w http.ResponseWriter, r *http.Request) {
	var req user.VerifyRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.SetVerified(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "userID"),
		*req.Verified,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, user.ToUserResponse(u))
}

func (h *Handler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	var req user.UpdatePlanRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.ChangePlan(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "userID"),
		req.Plan,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, user.ToUserResponse(u))
}

func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req user.UpdateRoleRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.ChangeRole(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "userID"),
		req.Role,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, user.ToUserResponse(u))
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := h.service.Counts(ctx)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	dbHealthy := true
	if h.dbPing != nil {
		if err := h.dbPing(ctx); err != nil {
			dbHealthy = false
		}
	}

	redisHealthy := true
	if h.redisPing != nil {
		if err := h.redisPing(ctx); err != nil {
			redisHealthy = false
		}
	}

	core.OK(w, SystemStatsResponse{
		Platform: counts,
		Database: DatabaseStatus{
			Healthy: dbHealthy,
			Stats:   h.getDBStats(),
		},
		Redis: RedisStatus{
			Healthy: redisHealthy,
			Stats:   h.getRedisStats(),
		},
		Runtime: readRuntimeStats(),
	})
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, readRuntimeStats())
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

func readRuntimeStats() RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		MemAlloc:     memStats.Alloc,
		NumGC:        memStats.NumGC,
	}
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
	}
}
