package galaxy

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"galaxy-forge/internal/config"
)

func inBounds(e *Entity, space Space) bool {
	return e.Position.X >= e.Radius-1e-6 && e.Position.X <= space.Width-e.Radius+1e-6 &&
		e.Position.Y >= e.Radius-1e-6 && e.Position.Y <= space.Height-e.Radius+1e-6
}

// TestSimpleStrategyJitterBound verifies the jitter never exceeds the
// priority-scaled variation budget.
func TestSimpleStrategyJitterBound(t *testing.T) {
	space := testSpace()
	s := NewSimpleStrategy(rand.New(rand.NewSource(1)))

	for run := 0; run < 20; run++ {
		e := NewEntity(Record{ID: "e", Type: "planet"})
		e.Position = Position{X: 960, Y: 540}
		before := e.Position

		if err := s.ComputePositions([]*Entity{e}, space); err != nil {
			t.Fatalf("ComputePositions failed: %v", err)
		}

		variation := 10 + e.Priority*2
		if dx := math.Abs(e.Position.X - before.X); dx > variation {
			t.Errorf("x jitter %.3f exceeds variation %.3f", dx, variation)
		}
		if dy := math.Abs(e.Position.Y - before.Y); dy > variation {
			t.Errorf("y jitter %.3f exceeds variation %.3f", dy, variation)
		}
	}
}

// TestSimpleStrategyStaysInBounds verifies jittered entities near the edge
// are clamped into the canvas.
func TestSimpleStrategyStaysInBounds(t *testing.T) {
	space := testSpace()
	s := NewSimpleStrategy(rand.New(rand.NewSource(2)))

	var entities []*Entity
	for i := 0; i < 10; i++ {
		e := NewEntity(Record{ID: fmt.Sprintf("edge%d", i), Type: "planet"})
		e.Position = Position{X: 0, Y: float64(i) * 120}
		entities = append(entities, e)
	}
	if err := s.ComputePositions(entities, space); err != nil {
		t.Fatalf("ComputePositions failed: %v", err)
	}
	for _, e := range entities {
		if !inBounds(e, space) {
			t.Errorf("entity %q at (%.1f, %.1f) out of bounds", e.ID, e.Position.X, e.Position.Y)
		}
	}
}

// TestClusterStrategyDeterministic verifies the same RNG seed reproduces the
// same layout.
func TestClusterStrategyDeterministic(t *testing.T) {
	space := testSpace()

	run := func() []Position {
		s := NewClusterStrategy(config.DefaultCluster(), rand.New(rand.NewSource(3)), nil)
		var entities []*Entity
		for i := 0; i < 40; i++ {
			entities = append(entities, NewEntity(Record{ID: fmt.Sprintf("e%02d", i), Type: "station"}))
		}
		if err := s.ComputePositions(entities, space); err != nil {
			t.Fatalf("ComputePositions failed: %v", err)
		}
		out := make([]Position, len(entities))
		for i, e := range entities {
			out[i] = e.Position
		}
		return out
	}

	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("cluster layout not deterministic at entity %d: %v vs %v", i, first[i], second[i])
		}
	}
}

// TestClusterStrategyBounds verifies all clustered entities stay on canvas.
func TestClusterStrategyBounds(t *testing.T) {
	space := testSpace()
	s := NewClusterStrategy(config.DefaultCluster(), rand.New(rand.NewSource(4)), nil)

	var entities []*Entity
	for i := 0; i < 60; i++ {
		entities = append(entities, NewEntity(Record{ID: fmt.Sprintf("e%02d", i), Type: "moon"}))
	}
	if err := s.ComputePositions(entities, space); err != nil {
		t.Fatalf("ComputePositions failed: %v", err)
	}
	for _, e := range entities {
		if !inBounds(e, space) {
			t.Errorf("entity %q at (%.1f, %.1f) out of bounds", e.ID, e.Position.X, e.Position.Y)
		}
	}
}

// stubHotspots is a fixed HotspotSource for testing cluster seeding.
type stubHotspots struct {
	spots []Hotspot
}

func (s *stubHotspots) Top(n int) []Hotspot {
	if n < len(s.spots) {
		return s.spots[:n]
	}
	return s.spots
}

// TestClusterStrategyHotspotSeeding verifies the first (highest-priority)
// cluster forms around the hottest interaction spot.
func TestClusterStrategyHotspotSeeding(t *testing.T) {
	space := testSpace()
	hot := &stubHotspots{spots: []Hotspot{{X: 800, Y: 500, Hits: 9}}}
	cfg := config.DefaultCluster()
	s := NewClusterStrategy(cfg, rand.New(rand.NewSource(5)), hot)

	// One high-priority entity plus filler: the star sorts first, so it lands
	// in the first cluster, whose center is the hotspot
	entities := []*Entity{NewEntity(Record{ID: "hero", Type: "star", Importance: "high"})}
	for i := 0; i < 20; i++ {
		entities = append(entities, NewEntity(Record{ID: fmt.Sprintf("f%02d", i), Type: "debris"}))
	}
	if err := s.ComputePositions(entities, space); err != nil {
		t.Fatalf("ComputePositions failed: %v", err)
	}

	hero := entities[0]
	got := Distance(hero.Position, Position{X: 800, Y: 500})
	// First ring slot sits exactly at EntitySpacing from the cluster center
	if math.Abs(got-cfg.EntitySpacing) > 1e-6 {
		t.Errorf("hero at distance %.3f from hotspot, want ring radius %.3f", got, cfg.EntitySpacing)
	}
}

// TestHexStrategyCenterPull verifies max-priority entities sit at the canvas
// center while low-priority ones stay on their grid slots.
func TestHexStrategyCenterPull(t *testing.T) {
	space := testSpace()
	center := space.Center()
	s := NewHexStrategy(config.DefaultHex())

	var entities []*Entity
	// Priority 14 star (10 + high bonus): full center pull
	entities = append(entities, NewEntity(Record{ID: "core", Type: "star", Importance: "high"}))
	for i := 0; i < 24; i++ {
		e := NewEntity(Record{ID: fmt.Sprintf("d%02d", i), Type: "debris", Importance: "low"})
		entities = append(entities, e)
	}

	if err := s.ComputePositions(entities, space); err != nil {
		t.Fatalf("ComputePositions failed: %v", err)
	}

	core := entities[0]
	if Distance(core.Position, center) > 1e-6 {
		t.Errorf("max-priority entity at (%.1f, %.1f), want canvas center", core.Position.X, core.Position.Y)
	}

	// Debris (priority 2, bias 0.8) keeps 80% of its grid offset: the layout
	// must not collapse everything onto the center
	collapsed := true
	for _, e := range entities[1:] {
		if Distance(e.Position, center) > 30 {
			collapsed = false
			break
		}
	}
	if collapsed {
		t.Error("low-priority entities collapsed onto the canvas center")
	}
}

// TestHexStrategyBounds verifies hex layouts stay on canvas even for large
// entity sets.
func TestHexStrategyBounds(t *testing.T) {
	space := testSpace()
	s := NewHexStrategy(config.DefaultHex())

	var entities []*Entity
	for i := 0; i < 150; i++ {
		entities = append(entities, NewEntity(Record{ID: fmt.Sprintf("e%03d", i), Type: "asteroid"}))
	}
	if err := s.ComputePositions(entities, space); err != nil {
		t.Fatalf("ComputePositions failed: %v", err)
	}
	for _, e := range entities {
		if !inBounds(e, space) {
			t.Errorf("entity %q at (%.1f, %.1f) out of bounds", e.ID, e.Position.X, e.Position.Y)
		}
	}
}

// TestStrategyRegistry verifies density lookup, name lookup and rejection of
// unknown strategies.
func TestStrategyRegistry(t *testing.T) {
	r := NewStrategyRegistry()
	r.Register(DensityLow, NewSimpleStrategy(rand.New(rand.NewSource(6))))
	r.Register(DensityHigh, NewHexStrategy(config.DefaultHex()))

	s, err := r.For(DensityLow)
	if err != nil {
		t.Fatalf("For(DensityLow) failed: %v", err)
	}
	if s.Name() != "simple" {
		t.Errorf("For(DensityLow) = %q, want simple", s.Name())
	}

	if _, err := r.For(DensityMedium); err == nil {
		t.Error("For(DensityMedium) should fail, nothing registered")
	}

	if _, ok := r.ByName("hexpack"); !ok {
		t.Error("ByName(hexpack) should find the registered strategy")
	}
	if _, ok := r.ByName("nope"); ok {
		t.Error("ByName(nope) should not find anything")
	}
}
