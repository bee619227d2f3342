package galaxy

import (
	"fmt"
	"testing"

	"galaxy-forge/internal/config"
)

func testEngine(seed int64) *Engine {
	return NewEngine(EngineConfig{Seed: seed})
}

func solarRecords() []Record {
	return []Record{
		{ID: "sun", Type: "star", Title: "Sun"},
		{ID: "earth", Type: "planet", Parent: "sun", Title: "Earth"},
		{ID: "luna", Type: "moon", Parent: "earth", Title: "Luna"},
		{ID: "mars", Type: "planet", Parent: "sun", Title: "Mars"},
	}
}

// TestSetEntities verifies duplicate and empty ids are skipped, not fatal.
func TestSetEntities(t *testing.T) {
	e := testEngine(1)

	n := e.SetEntities([]Record{
		{ID: "a", Type: "planet"},
		{ID: "a", Type: "moon"}, // duplicate, dropped
		{ID: "", Type: "star"},  // empty id, dropped
		{ID: "b", Type: "wormhole"}, // unknown type, kept with defaults
	})
	if n != 2 {
		t.Errorf("SetEntities kept %d entities, want 2", n)
	}

	entities := e.Entities()
	if len(entities) != 2 {
		t.Fatalf("Entities returned %d, want 2", len(entities))
	}
	// First occurrence wins for duplicates
	if entities[0].ID != "a" || entities[0].Type != "planet" {
		t.Errorf("first entity = %s/%s, want a/planet", entities[0].ID, entities[0].Type)
	}
}

// TestAddEntity verifies duplicate and empty ids are rejected.
func TestAddEntity(t *testing.T) {
	e := testEngine(1)

	if err := e.AddEntity(Record{ID: "a", Type: "planet"}); err != nil {
		t.Fatalf("AddEntity failed: %v", err)
	}
	if err := e.AddEntity(Record{ID: "a", Type: "moon"}); err == nil {
		t.Error("duplicate id should be rejected")
	}
	if err := e.AddEntity(Record{ID: "", Type: "moon"}); err == nil {
		t.Error("empty id should be rejected")
	}
	if e.EntityCount() != 1 {
		t.Errorf("EntityCount = %d, want 1", e.EntityCount())
	}
}

// TestBuildLayoutPipeline verifies a small build end to end: metrics,
// snapshot, bounds and orbit geometry.
func TestBuildLayoutPipeline(t *testing.T) {
	e := testEngine(99)
	e.SetEntities(solarRecords())

	metrics, err := e.BuildLayout()
	if err != nil {
		t.Fatalf("BuildLayout failed: %v", err)
	}

	if metrics.EntityCount != 4 {
		t.Errorf("EntityCount = %d, want 4", metrics.EntityCount)
	}
	if metrics.Density != "LOW_DENSITY" {
		t.Errorf("Density = %q, want LOW_DENSITY", metrics.Density)
	}
	if metrics.StrategyUsed != "simple" {
		t.Errorf("StrategyUsed = %q, want simple", metrics.StrategyUsed)
	}
	if metrics.Rerooted != 0 {
		t.Errorf("Rerooted = %d, want 0", metrics.Rerooted)
	}

	snap := e.GetSnapshot()
	if snap.BuildNum != 1 {
		t.Errorf("snapshot BuildNum = %d, want 1", snap.BuildNum)
	}
	if len(snap.Entities) != 4 {
		t.Fatalf("snapshot has %d entities, want 4", len(snap.Entities))
	}

	space := e.Space()
	for _, es := range snap.Entities {
		if es.X < es.Radius-1e-6 || es.X > space.Width-es.Radius+1e-6 ||
			es.Y < es.Radius-1e-6 || es.Y > space.Height-es.Radius+1e-6 {
			t.Errorf("entity %q at (%.1f, %.1f) out of bounds", es.ID, es.X, es.Y)
		}
	}
}

// TestBuildLayoutNoOverlaps verifies the built layout honors the separation
// rule unless the iteration cap was hit.
func TestBuildLayoutNoOverlaps(t *testing.T) {
	e := testEngine(7)
	var records []Record
	for i := 0; i < 30; i++ {
		records = append(records, Record{ID: fmt.Sprintf("p%02d", i), Type: "moon"})
	}
	e.SetEntities(records)

	metrics, err := e.BuildLayout()
	if err != nil {
		t.Fatalf("BuildLayout failed: %v", err)
	}
	if metrics.IterationCapHit {
		t.Skip("iteration cap hit, layout is best-effort by contract")
	}

	if got := overlapCount(e.Entities(), config.DefaultCollision().MinDistance); got != 0 {
		t.Errorf("%d overlap(s) in the final layout", got)
	}
}

// TestBuildLayoutDeterministic verifies the same seed and entity set produce
// identical positions.
func TestBuildLayoutDeterministic(t *testing.T) {
	build := func() []EntitySnapshot {
		e := testEngine(12345)
		e.SetEntities(solarRecords())
		if _, err := e.BuildLayout(); err != nil {
			t.Fatalf("BuildLayout failed: %v", err)
		}
		snap := e.GetSnapshot()
		out := make([]EntitySnapshot, len(snap.Entities))
		copy(out, snap.Entities)
		return out
	}

	first, second := build(), build()
	if len(first) != len(second) {
		t.Fatalf("entity counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].X != second[i].X || first[i].Y != second[i].Y {
			t.Errorf("entity %q positions differ: (%.6f, %.6f) vs (%.6f, %.6f)",
				first[i].ID, first[i].X, first[i].Y, second[i].X, second[i].Y)
		}
	}
}

// TestBuildLayoutEmptySet verifies building with no entities succeeds.
func TestBuildLayoutEmptySet(t *testing.T) {
	e := testEngine(1)
	e.SetEntities(nil)

	metrics, err := e.BuildLayout()
	if err != nil {
		t.Fatalf("BuildLayout on empty set failed: %v", err)
	}
	if metrics.EntityCount != 0 {
		t.Errorf("EntityCount = %d, want 0", metrics.EntityCount)
	}
}

// TestRecordInteractionFeedsHotspots verifies valid interactions create
// hotspots and malformed ones are dropped silently.
func TestRecordInteractionFeedsHotspots(t *testing.T) {
	e := testEngine(1)

	e.RecordInteraction(500, 500, "test")
	e.RecordInteraction(510, 505, "test")
	e.RecordInteraction(-50, 500, "test")  // out of canvas, dropped
	e.RecordInteraction(1e18, 500, "test") // absurd, dropped

	spots := e.Hotspots().Top(10)
	if len(spots) != 1 {
		t.Fatalf("expected 1 hotspot, got %d", len(spots))
	}
	if spots[0].Hits != 2 {
		t.Errorf("hotspot hits = %d, want 2", spots[0].Hits)
	}
}

// TestBuildNumAdvances verifies consecutive builds bump the snapshot build
// number.
func TestBuildNumAdvances(t *testing.T) {
	e := testEngine(1)
	e.SetEntities(solarRecords())

	for want := uint64(1); want <= 3; want++ {
		if _, err := e.BuildLayout(); err != nil {
			t.Fatalf("BuildLayout %d failed: %v", want, err)
		}
		if got := e.GetSnapshot().BuildNum; got != want {
			t.Errorf("BuildNum = %d, want %d", got, want)
		}
	}
}

// TestMetricsAccessor verifies Metrics mirrors the last build.
func TestMetricsAccessor(t *testing.T) {
	e := testEngine(1)
	e.SetEntities(solarRecords())

	built, err := e.BuildLayout()
	if err != nil {
		t.Fatalf("BuildLayout failed: %v", err)
	}
	if got := e.Metrics(); got != built {
		t.Errorf("Metrics() = %+v, want %+v", got, built)
	}
}
