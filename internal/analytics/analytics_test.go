// AngelaMos | 2026
// analytics_test.go

package analytics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/smartlink/internal/config"
)

func newTestGeo(t *testing.T, endpoint string) *GeoResolver {
	t.Helper()

	g, err := NewGeoResolver(config.GeoConfig{
		Endpoint:  endpoint,
		CacheSize: 16,
		Timeout:   time.Second,
	}, nil)
	require.NoError(t, err)
	return g
}

func TestGeoResolverMemoizes(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/json/8.8.8.8", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","country":"United States","city":"Mountain View"}`))
	}))
	defer srv.Close()

	g := newTestGeo(t, srv.URL+"/json")

	for range 3 {
		loc := g.Locate(context.Background(), "8.8.8.8")
		assert.Equal(t, Location{Country: "United States", City: "Mountain View"}, loc)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestGeoResolverFallsBackToUnknown(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer failing.Close()

	failed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
	}))
	defer failed.Close()

	tests := map[string]struct {
		endpoint string
		ip       string
	}{
		"disabled":        {"", "8.8.8.8"},
		"loopback":        {failing.URL, "127.0.0.1"},
		"private":         {failing.URL, "10.1.2.3"},
		"garbage":         {failing.URL, "not-an-ip"},
		"upstream error":  {failing.URL, "1.1.1.1"},
		"lookup rejected": {failed.URL, "1.1.1.1"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			g := newTestGeo(t, tc.endpoint)
			assert.Equal(t, UnknownLocation, g.Locate(context.Background(), tc.ip))
		})
	}
}

type fixedLocator Location

func (f fixedLocator) Locate(context.Context, string) Location {
	return Location(f)
}

type memRepo struct {
	mu     sync.Mutex
	views  []Location
	clicks []string
	shares []string
	err    error
}

func (m *memRepo) InsertView(_ context.Context, _, _ string, loc Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views = append(m.views, loc)
	return m.err
}

func (m *memRepo) InsertClick(_ context.Context, _, _, linkID string, _ Location, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = append(m.clicks, linkID)
	return m.err
}

func (m *memRepo) InsertShare(_ context.Context, _, _, platform string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shares = append(m.shares, platform)
	return m.err
}

func (m *memRepo) Totals(context.Context, string) (Totals, error) {
	return Totals{Views: len(m.views), Clicks: len(m.clicks), Shares: len(m.shares)}, nil
}

func (m *memRepo) ClicksByLink(context.Context, string) ([]LinkClicks, error) {
	return []LinkClicks{{LinkID: "l1", Platform: "telegram", Clicks: len(m.clicks)}}, nil
}

func (m *memRepo) ByCountry(context.Context, string) ([]CountryCount, error) {
	return []CountryCount{{Country: "Russia", Count: 2}}, nil
}

func (m *memRepo) ByCity(context.Context, string) ([]CityCount, error) {
	return []CityCount{{City: "Moscow", Country: "Russia", Count: 2}}, nil
}

func TestRecordEvents(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, fixedLocator{Country: "Russia", City: "Moscow"}, nil)
	ctx := context.Background()

	svc.RecordView(ctx, "p1", Visitor{IP: "5.5.5.5"})
	svc.RecordClick(ctx, "p1", "l1", Visitor{IP: "5.5.5.5", UserAgent: "curl"})
	svc.RecordShare(ctx, "p1", "whatsapp")

	assert.Equal(t, []Location{{Country: "Russia", City: "Moscow"}}, repo.views)
	assert.Equal(t, []string{"l1"}, repo.clicks)
	assert.Equal(t, []string{"whatsapp"}, repo.shares)
}

func TestRecordFailureIsSwallowed(t *testing.T) {
	svc := NewService(&memRepo{err: errors.New("db down")}, fixedLocator(UnknownLocation), nil)

	assert.NotPanics(t, func() {
		svc.RecordView(context.Background(), "p1", Visitor{})
	})
}

func TestSummaryBreakdownOnlyWhenDetailed(t *testing.T) {
	repo := &memRepo{clicks: []string{"l1", "l1"}}
	svc := NewService(repo, fixedLocator(UnknownLocation), nil)

	basic, err := svc.Summary(context.Background(), "p1", false)
	require.NoError(t, err)
	assert.Equal(t, 2, basic.Totals.Clicks)
	assert.Nil(t, basic.ByCountry)
	assert.Nil(t, basic.ByCity)

	detailed, err := svc.Summary(context.Background(), "p1", true)
	require.NoError(t, err)
	require.Len(t, detailed.ByCountry, 1)
	assert.Equal(t, "Russia", detailed.ByCountry[0].Country)
	require.Len(t, detailed.ByCity, 1)
}

func TestVisitorFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/p/demo", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 203.0.113.7")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	v := VisitorFromRequest(req)
	assert.Equal(t, "203.0.113.7", v.IP)
	assert.Equal(t, "Mozilla/5.0", v.UserAgent)
}
