package galaxy

import (
	"encoding/json"
	"math"
	"testing"
)

// TestRecordInteractionValidation verifies malformed events are rejected.
func TestRecordInteractionValidation(t *testing.T) {
	tr := NewHotspotTracker(testSpace())

	tests := []struct {
		name string
		x, y float64
	}{
		{"NaN x", math.NaN(), 100},
		{"NaN y", 100, math.NaN()},
		{"positive infinity", math.Inf(1), 100},
		{"negative x", -5, 100},
		{"beyond width", 2000, 100},
		{"beyond height", 100, 1100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tr.RecordInteraction(tt.x, tt.y); err == nil {
				t.Errorf("RecordInteraction(%v, %v) should fail", tt.x, tt.y)
			}
		})
	}

	if len(tr.Top(10)) != 0 {
		t.Error("rejected interactions should not create hotspots")
	}
}

// TestTopRanking verifies hotspots rank by hit count with center-of-mass
// positions.
func TestTopRanking(t *testing.T) {
	tr := NewHotspotTracker(testSpace())

	// Three hits around (100, 100), one around (1000, 1000)
	for _, p := range []Position{{X: 90, Y: 100}, {X: 110, Y: 100}, {X: 100, Y: 100}} {
		if err := tr.RecordInteraction(p.X, p.Y); err != nil {
			t.Fatalf("RecordInteraction failed: %v", err)
		}
	}
	if err := tr.RecordInteraction(1000, 1000); err != nil {
		t.Fatalf("RecordInteraction failed: %v", err)
	}

	spots := tr.Top(10)
	if len(spots) != 2 {
		t.Fatalf("expected 2 hotspots, got %d", len(spots))
	}
	if spots[0].Hits != 3 {
		t.Errorf("hottest spot has %d hits, want 3", spots[0].Hits)
	}
	if spots[0].X != 100 || spots[0].Y != 100 {
		t.Errorf("hottest spot at (%.1f, %.1f), want center of mass (100, 100)", spots[0].X, spots[0].Y)
	}
}

// TestTopLimit verifies the n limit.
func TestTopLimit(t *testing.T) {
	tr := NewHotspotTracker(testSpace())
	// Interactions in well-separated grid cells
	for i := 0; i < 5; i++ {
		if err := tr.RecordInteraction(float64(i)*350+50, 50); err != nil {
			t.Fatalf("RecordInteraction failed: %v", err)
		}
	}
	if got := len(tr.Top(3)); got != 3 {
		t.Errorf("Top(3) returned %d hotspots", got)
	}
	if got := len(tr.Top(0)); got != 5 {
		t.Errorf("Top(0) should return all hotspots, got %d", got)
	}
}

// TestHotspotJSON verifies both coordinates survive marshaling; the dashboard
// reads hotspots as {x, y, hits}.
func TestHotspotJSON(t *testing.T) {
	data, err := json.Marshal(Hotspot{X: 100, Y: 200, Hits: 3})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]float64
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["x"] != 100 || got["y"] != 200 || got["hits"] != 3 {
		t.Errorf("marshaled hotspot = %s, want x=100 y=200 hits=3", data)
	}
}

// TestReset verifies clearing the tracker.
func TestReset(t *testing.T) {
	tr := NewHotspotTracker(testSpace())
	if err := tr.RecordInteraction(500, 500); err != nil {
		t.Fatalf("RecordInteraction failed: %v", err)
	}
	tr.Reset()
	if len(tr.Top(10)) != 0 {
		t.Error("Reset should drop all hotspots")
	}
}
