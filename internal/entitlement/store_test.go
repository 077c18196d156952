// AngelaMos | 2026
// store_test.go

package entitlement

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/carterperez-dev/smartlink/internal/core"
)

type memStore struct {
	mu      sync.Mutex
	plans   map[string]PlanConfig
	gets    int
	failGet error
}

func newMemStore(configs ...PlanConfig) *memStore {
	s := &memStore{plans: make(map[string]PlanConfig)}
	for _, cfg := range configs {
		s.plans[cfg.PlanName] = cfg
	}
	return s
}

func (s *memStore) Get(_ context.Context, name string) (*PlanConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gets++
	if s.failGet != nil {
		return nil, s.failGet
	}
	cfg, ok := s.plans[name]
	if !ok {
		return nil, fmt.Errorf("get plan config: %w", core.ErrNotFound)
	}
	return &cfg, nil
}

func (s *memStore) List(context.Context) ([]PlanConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PlanConfig, 0, len(s.plans))
	for _, cfg := range s.plans {
		out = append(out, cfg)
	}
	slices.SortFunc(out, func(a, b PlanConfig) int {
		return strings.Compare(a.PlanName, b.PlanName)
	})
	return out, nil
}

func (s *memStore) Create(_ context.Context, cfg *PlanConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[cfg.PlanName]; ok {
		return fmt.Errorf("create plan config: %w", core.ErrDuplicateKey)
	}
	s.plans[cfg.PlanName] = *cfg
	return nil
}

func (s *memStore) Upsert(_ context.Context, cfg *PlanConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans[cfg.PlanName] = *cfg
	return nil
}

func (s *memStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[name]; !ok {
		return fmt.Errorf("delete plan config: %w", core.ErrNotFound)
	}
	delete(s.plans, name)
	return nil
}

func (s *memStore) SeedDefaults(_ context.Context, defaults []PlanConfig) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, cfg := range defaults {
		if _, ok := s.plans[cfg.PlanName]; !ok {
			s.plans[cfg.PlanName] = cfg
			n++
		}
	}
	return n, nil
}

func (s *memStore) getCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

var errStoreDown = errors.New("connection refused")
