// AngelaMos | 2026
// subdomain_test.go

package subdomain

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/smartlink/internal/core"
	"github.com/carterperez-dev/smartlink/internal/entitlement"
	"github.com/carterperez-dev/smartlink/internal/guard"
	"github.com/carterperez-dev/smartlink/internal/page"
	"github.com/carterperez-dev/smartlink/internal/role"
)

type builtinStore struct{}

func (builtinStore) Get(context.Context, string) (*entitlement.PlanConfig, error) {
	return nil, fmt.Errorf("get plan config: %w", core.ErrNotFound)
}

func (builtinStore) List(context.Context) ([]entitlement.PlanConfig, error) {
	return nil, nil
}

func (builtinStore) Create(context.Context, *entitlement.PlanConfig) error {
	return nil
}

func (builtinStore) Upsert(context.Context, *entitlement.PlanConfig) error {
	return nil
}

func (builtinStore) Delete(context.Context, string) error {
	return nil
}

func (builtinStore) SeedDefaults(context.Context, []entitlement.PlanConfig) (int, error) {
	return 0, nil
}

type memRepo struct {
	Repository
	subs map[string]*Subdomain
}

func newMemRepo() *memRepo {
	return &memRepo{subs: map[string]*Subdomain{
		"sub-a": {ID: "sub-a", UserID: "alice", Name: "alice", IsActive: true},
		"sub-b": {ID: "sub-b", UserID: "bob", Name: "bobby", IsActive: true},
	}}
}

func (m *memRepo) FindByID(_ context.Context, id string) (*Subdomain, error) {
	s, ok := m.subs[id]
	if !ok {
		return nil, fmt.Errorf("find subdomain: %w", core.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (m *memRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*Subdomain, error) {
	s, err := m.FindByID(ctx, id)
	if err != nil || s.UserID != ownerID {
		return nil, fmt.Errorf("find subdomain: %w", core.ErrNotFound)
	}
	return s, nil
}

func (m *memRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, s := range m.subs {
		if s.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) ListByOwner(_ context.Context, ownerID string) ([]Subdomain, error) {
	var out []Subdomain
	for _, s := range m.subs {
		if s.UserID == ownerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memRepo) Update(_ context.Context, s *Subdomain) error {
	cp := *s
	m.subs[s.ID] = &cp
	return nil
}

type pageOwners map[string]string

func (p pageOwners) FindByIDAndOwner(_ context.Context, id, ownerID string) (*page.Page, error) {
	if p[id] != ownerID {
		return nil, fmt.Errorf("find page: %w", core.ErrNotFound)
	}
	return &page.Page{ID: id, UserID: ownerID}, nil
}

const (
	alicePageID = "4f1c9a52-3b1e-4a7e-9f5e-0c2d7a1b8e11"
	bobPageID   = "8a2e6d10-5c4f-4b2a-8e7d-1f3a9c6b2d44"
)

func newTestService(db *sqlx.DB, launch bool) (*Service, *memRepo) {
	repo := newMemRepo()
	resolver := entitlement.NewResolver(builtinStore{}, entitlement.ResolverOptions{LaunchMode: launch})
	pages := pageOwners{alicePageID: "alice", bobPageID: "bob"}
	return NewService(db, repo, pages, resolver), repo
}

func principal(id string, r role.Role, plan string) *guard.Principal {
	return &guard.Principal{UserID: id, Role: r, Plan: plan}
}

func TestCheckName(t *testing.T) {
	tests := map[string]string{
		"alice":                 "",
		"my-page-1":             "",
		"ab":                    ReasonTooShort,
		strings.Repeat("a", 64): ReasonTooLong,
		"-lead":                 ReasonInvalid,
		"trail-":                ReasonInvalid,
		"under_score":           ReasonInvalid,
		"www":                   ReasonReserved,
		"admin":                 ReasonReserved,
		"billing":               ReasonReserved,
	}

	for name, want := range tests {
		assert.Equal(t, want, CheckName(name), name)
	}
}

func TestCheckAvailability(t *testing.T) {
	svc, _ := newTestService(nil, false)
	ctx := context.Background()

	res, err := svc.Check(ctx, "  Fresh-Name ")
	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Equal(t, "fresh-name", res.Subdomain)

	res, err = svc.Check(ctx, "bobby")
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, ReasonTaken, res.Reason)

	res, err = svc.Check(ctx, "API")
	require.NoError(t, err)
	assert.Equal(t, ReasonReserved, res.Reason)
}

func TestListReportsQuota(t *testing.T) {
	svc, _ := newTestService(nil, false)

	free, err := svc.List(context.Background(), principal("alice", role.User, "free"))
	require.NoError(t, err)
	assert.Equal(t, 1, free.Count)
	assert.Equal(t, 1, free.MaxLimit)
	assert.False(t, free.CanAdd)

	pro, err := svc.List(context.Background(), principal("alice", role.User, "pro"))
	require.NoError(t, err)
	assert.Equal(t, 10, pro.MaxLimit)
	assert.True(t, pro.CanAdd)
}

func TestCreateRejectsReservedBeforeTouchingStorage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc, _ := newTestService(sqlx.NewDb(db, "sqlmock"), false)

	_, err = svc.Create(context.Background(), principal("alice", role.User, "pro"), CreateRequest{Subdomain: "www"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBindsOnlyOwnPages(t *testing.T) {
	svc, _ := newTestService(nil, false)
	foreign := bobPageID

	_, err := svc.Create(context.Background(), principal("alice", role.User, "pro"), CreateRequest{
		Subdomain: "alice-two",
		PageID:    &foreign,
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreateEnforcesQuota(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc, _ := newTestService(sqlx.NewDb(db, "sqlmock"), false)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM users WHERE id = \\$1 FOR UPDATE").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("alice"))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM subdomains WHERE user_id = \\$1").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err = svc.Create(context.Background(), principal("alice", role.User, "free"), CreateRequest{Subdomain: "second"})
	assert.ErrorIs(t, err, core.ErrQuotaExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithinQuota(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc, _ := newTestService(sqlx.NewDb(db, "sqlmock"), false)
	now := time.Now()
	pageID := alicePageID

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("alice"))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM subdomains").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("INSERT INTO subdomains").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	sub, err := svc.Create(context.Background(), principal("alice", role.User, "pro"), CreateRequest{
		Subdomain: "Alice-Shop",
		PageID:    &pageID,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice-shop", sub.Name)
	assert.True(t, sub.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateIsScoped(t *testing.T) {
	svc, repo := newTestService(nil, false)
	off := false

	_, err := svc.Update(context.Background(), principal("alice", role.User, "free"), "sub-b", UpdateRequest{IsActive: &off})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.True(t, repo.subs["sub-b"].IsActive)

	updated, err := svc.Update(context.Background(), principal("mod", role.Moderator, "free"), "sub-b", UpdateRequest{IsActive: &off})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	alicePage := alicePageID
	_, err = svc.Update(context.Background(), principal("mod", role.Moderator, "free"), "sub-b", UpdateRequest{PageID: &alicePage})
	assert.ErrorIs(t, err, core.ErrNotFound, "page must belong to the subdomain owner")
}
