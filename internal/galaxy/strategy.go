package galaxy

import (
	"fmt"
	"sync"
)

// LayoutStrategy computes positions for a flat entity list on a canvas.
//
// Strategies must not mutate shared state: they receive the build's owned
// entity snapshot and write positions in place. They are swappable at
// runtime via the registry, keyed by density regime.
type LayoutStrategy interface {
	// Name returns the stable strategy identifier used in analytics keys,
	// metrics labels and event payloads.
	Name() string
	// ComputePositions sets Position on every entity.
	ComputePositions(entities []*Entity, space Space) error
}

// StrategyRegistry maps density regimes to layout strategies.
// Safe for concurrent use.
type StrategyRegistry struct {
	mu        sync.RWMutex
	byDensity map[Density]LayoutStrategy
	byName    map[string]LayoutStrategy
}

// NewStrategyRegistry creates an empty registry.
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		byDensity: make(map[Density]LayoutStrategy),
		byName:    make(map[string]LayoutStrategy),
	}
}

// Register binds a strategy to a density regime, replacing any previous
// binding for that regime.
func (r *StrategyRegistry) Register(d Density, s LayoutStrategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byDensity[d] = s
	r.byName[s.Name()] = s
}

// For returns the strategy registered for a density regime.
func (r *StrategyRegistry) For(d Density) (LayoutStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byDensity[d]
	if !ok {
		return nil, fmt.Errorf("strategy: no strategy registered for %s", d)
	}
	return s, nil
}

// ByName returns a registered strategy by its identifier.
// Used by the advisory override path; a miss is not an error there.
func (r *StrategyRegistry) ByName(name string) (LayoutStrategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	return s, ok
}

// Names returns the identifiers of all registered strategies.
func (r *StrategyRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}
