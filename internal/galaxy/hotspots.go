package galaxy

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Hotspot is a canvas region with elevated recorded user interaction.
// The clustering strategy seeds cluster centers on hotspots and the engine's
// rebalance step pulls entities gently toward them.
type Hotspot struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Hits int     `json:"hits"`
}

// hotspotCellSize buckets interactions into coarse regions; a click 50px
// away from another still heats the same spot.
const hotspotCellSize = 160.0

// HotspotTracker aggregates interaction points into grid-bucketed hotspots.
// Safe for concurrent use: interactions arrive from HTTP handlers while
// builds read the ranking.
type HotspotTracker struct {
	mu    sync.Mutex
	space Space
	cells map[[2]int]*hotspotCell
}

type hotspotCell struct {
	sumX, sumY float64
	hits       int
}

// NewHotspotTracker creates a tracker for the given canvas.
func NewHotspotTracker(space Space) *HotspotTracker {
	return &HotspotTracker{
		space: space,
		cells: make(map[[2]int]*hotspotCell),
	}
}

// RecordInteraction registers one interaction at (x, y).
// Malformed events (non-finite or out-of-canvas coordinates) are rejected
// with an error; the caller logs and drops them — they must never reach the
// layout pipeline.
func (t *HotspotTracker) RecordInteraction(x, y float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return fmt.Errorf("hotspot: non-finite interaction coordinates (%v, %v)", x, y)
	}
	if x < 0 || y < 0 || x > t.space.Width || y > t.space.Height {
		return fmt.Errorf("hotspot: interaction (%.1f, %.1f) outside canvas %gx%g",
			x, y, t.space.Width, t.space.Height)
	}

	key := [2]int{int(x / hotspotCellSize), int(y / hotspotCellSize)}

	t.mu.Lock()
	defer t.mu.Unlock()
	cell, ok := t.cells[key]
	if !ok {
		cell = &hotspotCell{}
		t.cells[key] = cell
	}
	cell.sumX += x
	cell.sumY += y
	cell.hits++
	return nil
}

// Top returns up to n hotspots ranked by interaction count (highest first).
// Each hotspot's position is the center of mass of its recorded interactions.
func (t *HotspotTracker) Top(n int) []Hotspot {
	t.mu.Lock()
	spots := make([]Hotspot, 0, len(t.cells))
	for _, cell := range t.cells {
		spots = append(spots, Hotspot{
			X:    cell.sumX / float64(cell.hits),
			Y:    cell.sumY / float64(cell.hits),
			Hits: cell.hits,
		})
	}
	t.mu.Unlock()

	sort.Slice(spots, func(i, j int) bool {
		if spots[i].Hits != spots[j].Hits {
			return spots[i].Hits > spots[j].Hits
		}
		// Deterministic order on equal hit counts
		if spots[i].X != spots[j].X {
			return spots[i].X < spots[j].X
		}
		return spots[i].Y < spots[j].Y
	})

	if n > 0 && len(spots) > n {
		spots = spots[:n]
	}
	return spots
}

// Reset clears all recorded interactions.
func (t *HotspotTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cells = make(map[[2]int]*hotspotCell)
}
