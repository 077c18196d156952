// AngelaMos | 2026
// geo.go

package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/carterperez-dev/smartlink/internal/config"
)

const Unknown = "Unknown"

type Location struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

var UnknownLocation = Location{Country: Unknown, City: Unknown}

type Locator interface {
	Locate(ctx context.Context, ip string) Location
}

// GeoResolver maps client addresses to a coarse location through an
// ip-api compatible endpoint. Results are memoized per address.
type GeoResolver struct {
	endpoint string
	client   *http.Client
	cache    *lru.Cache[string, Location]
	logger   *slog.Logger
}

func NewGeoResolver(cfg config.GeoConfig, logger *slog.Logger) (*GeoResolver, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cache, err := lru.New[string, Location](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create geo cache: %w", err)
	}

	return &GeoResolver{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
		cache:    cache,
		logger:   logger,
	}, nil
}

type geoResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	City    string `json:"city"`
}

// Locate never fails. Private, loopback and unparseable addresses and any
// lookup error resolve to UnknownLocation.
func (g *GeoResolver) Locate(ctx context.Context, ip string) Location {
	if g.endpoint == "" || !isPublicIP(ip) {
		return UnknownLocation
	}

	if loc, ok := g.cache.Get(ip); ok {
		return loc
	}

	loc, err := g.fetch(ctx, ip)
	if err != nil {
		g.logger.WarnContext(ctx, "geo lookup failed", "ip", ip, "error", err)
		return UnknownLocation
	}

	g.cache.Add(ip, loc)
	return loc
}

func (g *GeoResolver) fetch(ctx context.Context, ip string) (Location, error) {
	target, err := url.JoinPath(g.endpoint, ip)
	if err != nil {
		return UnknownLocation, fmt.Errorf("build geo url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return UnknownLocation, fmt.Errorf("build geo request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return UnknownLocation, fmt.Errorf("geo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return UnknownLocation, fmt.Errorf("geo request: status %d", resp.StatusCode)
	}

	var body geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return UnknownLocation, fmt.Errorf("decode geo response: %w", err)
	}

	if body.Status != "" && body.Status != "success" {
		return UnknownLocation, nil
	}

	loc := Location{Country: body.Country, City: body.City}
	if loc.Country == "" {
		loc.Country = Unknown
	}
	if loc.City == "" {
		loc.City = Unknown
	}

	return loc, nil
}

func isPublicIP(raw string) bool {
	ip := net.ParseIP(raw)
	if ip == nil {
		return false
	}

	return !ip.IsLoopback() &&
		!ip.IsPrivate() &&
		!ip.IsUnspecified() &&
		!ip.IsLinkLocalUnicast()
}
