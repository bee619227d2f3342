package spatial

import (
	"math/rand"
	"testing"
)

// TestGridInsertAndLen verifies basic insertion accounting.
func TestGridInsertAndLen(t *testing.T) {
	g := NewGrid(1920, 1080, 150, 64)

	if g.Len() != 0 {
		t.Errorf("new grid Len = %d, want 0", g.Len())
	}
	g.Insert(0, 100, 100)
	g.Insert(1, 500, 500)
	if g.Len() != 2 {
		t.Errorf("Len = %d, want 2", g.Len())
	}

	g.Clear()
	if g.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", g.Len())
	}
}

// TestGridOutOfBoundsClamping verifies positions outside the canvas land in
// border cells instead of panicking.
func TestGridOutOfBoundsClamping(t *testing.T) {
	g := NewGrid(1920, 1080, 150, 64)

	g.Insert(0, -500, -500)
	g.Insert(1, 5000, 5000)
	g.Insert(2, 1920, 1080) // exactly on the far edge

	if g.Len() != 3 {
		t.Errorf("Len = %d, want 3", g.Len())
	}

	// All three must be discoverable via radius queries near the corners
	if got := g.QueryRadius(0, 0, 200); len(got) != 1 || got[0] != 0 {
		t.Errorf("corner query returned %v, want [0]", got)
	}
}

// TestForEachCandidatePairExactlyOnce verifies each adjacent pair is visited
// exactly once, regardless of cell layout.
func TestForEachCandidatePairExactlyOnce(t *testing.T) {
	g := NewGrid(1920, 1080, 150, 256)
	rng := rand.New(rand.NewSource(11))

	type pos struct{ x, y float64 }
	positions := make([]pos, 100)
	for i := range positions {
		positions[i] = pos{rng.Float64() * 1920, rng.Float64() * 1080}
		g.Insert(uint32(i), positions[i].x, positions[i].y)
	}

	seen := make(map[[2]uint32]int)
	g.ForEachCandidatePair(func(a, b uint32) {
		if a == b {
			t.Fatalf("self pair for entity %d", a)
		}
		if a > b {
			a, b = b, a
		}
		seen[[2]uint32{a, b}]++
	})

	for pair, count := range seen {
		if count != 1 {
			t.Errorf("pair %v visited %d times", pair, count)
		}
	}

	// Cross-check coverage: every adjacent-cell pair must have been visited
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			ci, ri := g.CellKey(positions[i].x, positions[i].y)
			cj, rj := g.CellKey(positions[j].x, positions[j].y)
			if !Adjacent(ci, ri, cj, rj) {
				continue
			}
			if seen[[2]uint32{uint32(i), uint32(j)}] != 1 {
				t.Errorf("adjacent pair (%d, %d) not visited", i, j)
			}
		}
	}
}

// TestQueryRadiusCoversNeighborhood verifies the broad phase returns every
// entity within the radius (false positives are allowed, misses are not).
func TestQueryRadiusCoversNeighborhood(t *testing.T) {
	g := NewGrid(1920, 1080, 150, 64)

	g.Insert(0, 300, 300)
	g.Insert(1, 360, 300) // 60px away
	g.Insert(2, 1500, 900)

	got := g.QueryRadius(300, 300, 100)
	found := map[uint32]bool{}
	for _, id := range got {
		found[id] = true
	}
	if !found[0] || !found[1] {
		t.Errorf("QueryRadius missed nearby entities: %v", got)
	}
	if found[2] {
		t.Error("QueryRadius returned an entity three cells away")
	}
}

// TestGridStats verifies occupancy statistics.
func TestGridStats(t *testing.T) {
	g := NewGrid(1920, 1080, 150, 64)
	for i := 0; i < 5; i++ {
		g.Insert(uint32(i), 100, 100) // all in one cell
	}
	g.Insert(5, 1000, 1000)

	stats := g.Stats()
	if stats.TotalEntities != 6 {
		t.Errorf("TotalEntities = %d, want 6", stats.TotalEntities)
	}
	if stats.NonEmptyCells != 2 {
		t.Errorf("NonEmptyCells = %d, want 2", stats.NonEmptyCells)
	}
	if stats.MaxInCell != 5 {
		t.Errorf("MaxInCell = %d, want 5", stats.MaxInCell)
	}
}

// TestGridDegenerateCanvas verifies tiny canvases still produce a 1x1 grid.
func TestGridDegenerateCanvas(t *testing.T) {
	g := NewGrid(10, 10, 150, 4)
	cols, rows, _ := g.Dimensions()
	if cols != 1 || rows != 1 {
		t.Errorf("grid is %dx%d, want 1x1", cols, rows)
	}

	for i := 0; i < 3; i++ {
		g.Insert(uint32(i), float64(i), float64(i))
	}
	pairs := 0
	g.ForEachCandidatePair(func(a, b uint32) { pairs++ })
	if pairs != 3 {
		t.Errorf("3 entities in one cell should yield 3 pairs, got %d", pairs)
	}
}

func BenchmarkGridRebuild(b *testing.B) {
	g := NewGrid(1920, 1080, 150, 1024)
	rng := rand.New(rand.NewSource(1))
	xs := make([]float64, 500)
	ys := make([]float64, 500)
	for i := range xs {
		xs[i] = rng.Float64() * 1920
		ys[i] = rng.Float64() * 1080
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		g.Clear()
		for i := range xs {
			g.Insert(uint32(i), xs[i], ys[i])
		}
	}
}

func BenchmarkForEachCandidatePair(b *testing.B) {
	g := NewGrid(1920, 1080, 150, 1024)
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 500; i++ {
		g.Insert(uint32(i), rng.Float64()*1920, rng.Float64()*1080)
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		pairs := 0
		g.ForEachCandidatePair(func(a, b uint32) { pairs++ })
	}
}
