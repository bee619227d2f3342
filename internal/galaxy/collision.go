package galaxy

import (
	"log"
	"math"
	"sort"

	"galaxy-forge/internal/config"
	"galaxy-forge/internal/galaxy/spatial"
)

// Overlap is one detected pairwise collision. A and B index into the build's
// entity slice with A < B so every unordered pair appears at most once.
type Overlap struct {
	A, B     int
	Distance float64
}

// ResolveResult summarizes one resolver run.
type ResolveResult struct {
	Iterations int  // Detect->resolve passes executed
	Resolved   int  // Positional corrections applied
	CapHit     bool // True when MaxIterations was reached with overlaps left
}

// Resolver iteratively separates overlapping entities.
//
// Overlap rule: two entities overlap iff
//
//	distance < radius(A) + radius(B) + MinDistance
//
// This is the single rule used everywhere (detection and resolution); there
// is no early-trigger threshold variant.
//
// Each iteration re-runs detection on the updated positions, because a
// correction can push an entity into a neighbor it previously cleared.
// The loop is bounded by MaxIterations; hitting the cap is a soft failure:
// positions are returned best-effort and a warning is logged, never an error.
type Resolver struct {
	cfg        config.CollisionConfig
	spatialCfg config.SpatialConfig
	space      Space
	grid       *spatial.Grid // owned: concurrent builds need independent grids
}

// NewResolver creates a resolver with its own spatial grid.
// The configured cell size is a floor; the grid grows per batch to cover the
// largest separation the overlap rule can require (see ensureCellSize).
func NewResolver(cfg config.CollisionConfig, spatialCfg config.SpatialConfig, space Space) *Resolver {
	return &Resolver{
		cfg:        cfg,
		spatialCfg: spatialCfg,
		space:      space,
		grid:       spatial.NewGrid(space.Width, space.Height, spatialCfg.CellSize, spatialCfg.MaxEntities),
	}
}

// ensureCellSize grows the grid's cells to cover the largest pair separation
// the overlap rule checks for: maxRadius*2 + MinDistance. Adjacent-cell
// pruning is only sound up to one cell size of separation; with smaller cells
// two large entities can overlap from cells at Chebyshev distance 2 and the
// pair would never be offered. Radii are fixed during a resolve, so at most
// one rebuild happens per batch.
func (r *Resolver) ensureCellSize(entities []*Entity) {
	var maxRadius float64
	for _, e := range entities {
		if e.Radius > maxRadius {
			maxRadius = e.Radius
		}
	}
	needed := maxRadius*2 + r.cfg.MinDistance
	if _, _, current := r.grid.Dimensions(); needed <= current {
		return
	}
	r.grid = spatial.NewGrid(r.space.Width, r.space.Height, needed, r.spatialCfg.MaxEntities)
}

// Resolve separates overlapping entities in place.
//
// After it returns, every unordered pair either satisfies the overlap rule
// or CapHit is true. Higher-priority entities move less: the displacement
// of each entity is proportional to the other entity's priority.
func (r *Resolver) Resolve(entities []*Entity) ResolveResult {
	var res ResolveResult

	for res.Iterations < r.cfg.MaxIterations {
		overlaps := r.Detect(entities)
		if len(overlaps) == 0 {
			return res
		}
		res.Iterations++

		// High-priority conflicts first within an iteration. The ordering is
		// deterministic (pair indices break ties) but the final layout is
		// not unique: corrections are not commutative.
		sort.SliceStable(overlaps, func(i, j int) bool {
			pi := math.Max(entities[overlaps[i].A].Priority, entities[overlaps[i].B].Priority)
			pj := math.Max(entities[overlaps[j].A].Priority, entities[overlaps[j].B].Priority)
			if pi != pj {
				return pi > pj
			}
			if overlaps[i].A != overlaps[j].A {
				return overlaps[i].A < overlaps[j].A
			}
			return overlaps[i].B < overlaps[j].B
		})

		for _, ov := range overlaps {
			if r.separate(entities[ov.A], entities[ov.B], ov) {
				res.Resolved++
			}
		}
	}

	// Cap reached with work left: best effort, not fatal
	remaining := len(r.Detect(entities))
	if remaining > 0 {
		res.CapHit = true
		log.Printf("⚠️ Collision resolution hit iteration cap (%d) with %d overlap(s) remaining",
			r.cfg.MaxIterations, remaining)
	}
	return res
}

// Detect returns all overlapping pairs under the current positions.
//
// The spatial grid is rebuilt from scratch (O(n)) and candidate pairs are
// limited to same/adjacent cells. With an empty grid the resolver falls back
// to checking all pairs directly.
func (r *Resolver) Detect(entities []*Entity) []Overlap {
	r.ensureCellSize(entities)
	r.grid.Clear()
	for i, e := range entities {
		r.grid.Insert(uint32(i), e.Position.X, e.Position.Y)
	}

	var overlaps []Overlap
	check := func(a, b int) {
		if a > b {
			a, b = b, a
		}
		ea, eb := entities[a], entities[b]
		dist := Distance(ea.Position, eb.Position)
		if dist < ea.Radius+eb.Radius+r.cfg.MinDistance {
			overlaps = append(overlaps, Overlap{A: a, B: b, Distance: dist})
		}
	}

	if r.grid.Len() == 0 {
		for i := 0; i < len(entities); i++ {
			for j := i + 1; j < len(entities); j++ {
				check(i, j)
			}
		}
		return overlaps
	}

	r.grid.ForEachCandidatePair(func(a, b uint32) {
		check(int(a), int(b))
	})
	return overlaps
}

// separate pushes two entities apart along their connecting axis.
//
// The required separation is split proportionally to the *other* entity's
// priority: shiftA = overlap * pB/(pA+pB), so the lower-priority entity
// absorbs more of the displacement. Both positions are clamped into the
// canvas accounting for each entity's own radius.
//
// Returns false when the pair no longer overlaps (an earlier correction in
// the same iteration already separated it).
func (r *Resolver) separate(a, b *Entity, ov Overlap) bool {
	dist := Distance(a.Position, b.Position)
	required := a.Radius + b.Radius + r.cfg.MinDistance
	if dist >= required {
		return false
	}

	var angle float64
	if dist > 1e-9 {
		angle = math.Atan2(b.Position.Y-a.Position.Y, b.Position.X-a.Position.X)
	} else {
		// Coincident centers: derive a deterministic push direction from the
		// pair indices instead of an RNG so replays stay stable
		angle = float64(ov.A*31+ov.B*17) * math.Pi / 8
	}

	overlap := required - dist
	pa, pb := a.Priority, b.Priority
	if pa+pb <= 0 {
		pa, pb = 1, 1 // split evenly when neither entity carries priority
	}
	shiftA := overlap * pb / (pa + pb)
	shiftB := overlap * pa / (pa + pb)

	a.Position.X -= math.Cos(angle) * shiftA
	a.Position.Y -= math.Sin(angle) * shiftA
	b.Position.X += math.Cos(angle) * shiftB
	b.Position.Y += math.Sin(angle) * shiftB

	clampToSpace(a, r.space)
	clampToSpace(b, r.space)
	return true
}
