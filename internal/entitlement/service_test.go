// AngelaMos | 2026
// service_test.go

package entitlement

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/guard"
	"github.com/carterperez-dev/smartlink/internal/middleware"
	"github.com/carterperez-dev/smartlink/internal/role"
)

type fixedCounter int

func (c fixedCounter) CountByOwner(context.Context, string) (int, error) {
	return int(c), nil
}

type fakeMigrator struct {
	from, to string
}

func (m *fakeMigrator) ReassignPlan(_ context.Context, from, to string) (int64, error) {
	m.from, m.to = from, to
	return 2, nil
}

func newTestService(store Store, launch bool) *Service {
	r := NewResolver(store, ResolverOptions{LaunchMode: launch})
	return NewService(store, r, fixedCounter(2), fixedCounter(1), nil)
}

func TestBootstrap(t *testing.T) {
	legacy := DefaultPlanConfig(PlanPro)
	legacy.PlanName = PlanUltimate
	store := newMemStore(legacy)
	migrator := &fakeMigrator{}

	require.NoError(t, newTestService(store, false).Bootstrap(context.Background(), migrator))

	assert.Equal(t, PlanUltimate, migrator.from)
	assert.Equal(t, PlanPro, migrator.to)

	plans, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, PlanFree, plans[0].PlanName)
	assert.Equal(t, PlanPro, plans[1].PlanName)

	require.NoError(t, newTestService(store, false).Bootstrap(context.Background(), migrator))
}

func TestBootstrapKeepsEditedRows(t *testing.T) {
	edited := DefaultPlanConfig(PlanFree)
	edited.MaxPagesLimit = 7
	store := newMemStore(edited)

	require.NoError(t, newTestService(store, false).Bootstrap(context.Background(), &fakeMigrator{}))

	cfg, err := store.Get(context.Background(), PlanFree)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxPagesLimit)
}

func TestServiceCheck(t *testing.T) {
	svc := newTestService(newMemStore(DefaultPlanConfigs()...), false)
	ctx := context.Background()
	p := freePrincipal()

	res, err := svc.Check(ctx, p, "max_pages", "2")
	require.NoError(t, err)
	assert.True(t, res.HasAccess)

	res, err = svc.Check(ctx, p, "max_pages", "3")
	require.NoError(t, err)
	assert.False(t, res.HasAccess)

	res, err = svc.Check(ctx, p, "role_min", "moderator")
	require.NoError(t, err)
	assert.False(t, res.HasAccess)

	res, err = svc.Check(ctx, p, "time_travel", "")
	require.NoError(t, err)
	assert.False(t, res.HasAccess)
	assert.Equal(t, "time_travel", res.Requirement)

	_, err = svc.Check(ctx, p, "max_pages", "lots")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Check(ctx, p, "role_min", "emperor")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestServiceCreatePlanDuplicate(t *testing.T) {
	svc := newTestService(newMemStore(DefaultPlanConfigs()...), false)
	limit := 5

	_, err := svc.CreatePlan(context.Background(), CreatePlanRequest{
		PlanName: "Free",
		UpdatePlanRequest: UpdatePlanRequest{
			MaxPagesLimit:      &limit,
			MaxSubdomainsLimit: &limit,
		},
	})

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)
}

func TestServiceKnownPlan(t *testing.T) {
	gold := DefaultPlanConfig(PlanPro)
	gold.PlanName = "gold"
	svc := newTestService(newMemStore(gold), false)
	ctx := context.Background()

	for name, want := range map[string]bool{"free": true, "ultimate": true, "gold": true, "platinum": false} {
		got, err := svc.KnownPlan(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func withPrincipal(r *http.Request, p *guard.Principal) *http.Request {
	return r.WithContext(middleware.WithPrincipal(r.Context(), p))
}

func passthrough(next http.Handler) http.Handler { return next }

func TestHandlerLimits(t *testing.T) {
	h := NewHandler(newTestService(newMemStore(DefaultPlanConfigs()...), true))
	r := chi.NewRouter()
	h.RegisterRoutes(r, passthrough)

	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/me/limits", nil), freePrincipal())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data LimitsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, PlanFree, body.Data.Plan)
	assert.True(t, body.Data.LaunchMode)
	assert.Equal(t, 3, body.Data.Limits.MaxPagesLimit)
	assert.Equal(t, UsageResponse{Pages: 2, Subdomains: 1}, body.Data.Usage)
}

func TestHandlerUpsertPlan(t *testing.T) {
	store := newMemStore(DefaultPlanConfigs()...)
	h := NewHandler(newTestService(store, false))
	r := chi.NewRouter()
	h.RegisterAdminRoutes(r, passthrough, passthrough)

	admin := &guard.Principal{UserID: "a", Role: role.Admin, Plan: PlanPro}

	t.Run("valid body", func(t *testing.T) {
		body := `{"max_pages_limit": 10, "max_subdomains_limit": 2, "analytics": true}`
		req := withPrincipal(httptest.NewRequest(http.MethodPut, "/admin/plan-configs/free", strings.NewReader(body)), admin)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		cfg, err := store.Get(context.Background(), PlanFree)
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.MaxPagesLimit)
	})

	t.Run("limit below unlimited", func(t *testing.T) {
		body := `{"max_pages_limit": -2, "max_subdomains_limit": 2}`
		req := withPrincipal(httptest.NewRequest(http.MethodPut, "/admin/plan-configs/free", strings.NewReader(body)), admin)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing plan", func(t *testing.T) {
		req := withPrincipal(httptest.NewRequest(http.MethodGet, "/admin/plan-configs/gold", nil), admin)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
