package galaxy

import (
	"math"
	"sort"

	"galaxy-forge/internal/config"
)

// HexStrategy arranges entities in a hexagonal-ish tiling with a center bias.
// Used in the HIGH density regime, where packing efficiency matters more
// than organic spread.
//
// Entities are sorted by descending priority and laid out column-major in a
// near-square grid; every other column is offset by half the vertical
// spacing, forming the hex tiling. Higher-priority entities are pulled more
// strongly toward the canvas center so the most important pages stay in the
// visual focus even at scale.
type HexStrategy struct {
	cfg config.HexConfig
}

// NewHexStrategy creates the hexagonal packing strategy.
func NewHexStrategy(cfg config.HexConfig) *HexStrategy {
	return &HexStrategy{cfg: cfg}
}

// Name implements LayoutStrategy.
func (s *HexStrategy) Name() string { return "hexpack" }

// ComputePositions computes the hex grid slot per entity, then lerps toward
// the canvas center by the entity's center bias.
func (s *HexStrategy) ComputePositions(entities []*Entity, space Space) error {
	n := len(entities)
	if n == 0 {
		return nil
	}

	sorted := make([]*Entity, n)
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].ID < sorted[j].ID
	})

	itemsPerRow := int(math.Floor(math.Sqrt(float64(n))))
	if itemsPerRow < 1 {
		itemsPerRow = 1
	}

	r := s.cfg.CellRadius
	hSpacing := 2 * r
	vSpacing := r * math.Sqrt(3)

	rows := (n + itemsPerRow - 1) / itemsPerRow
	gridW := float64(itemsPerRow-1) * hSpacing
	gridH := float64(rows-1) * vSpacing
	center := space.Center()
	startX := center.X - gridW/2
	startY := center.Y - gridH/2

	for i, e := range sorted {
		col := i % itemsPerRow
		row := i / itemsPerRow

		grid := Position{
			X: startX + float64(col)*hSpacing,
			Y: startY + float64(row)*vSpacing,
		}
		// Offset every other column by half a cell: hexagonal tiling
		if col%2 == 1 {
			grid.Y += vSpacing / 2
		}

		// centerBias shrinks as priority grows; the lerp weight is its
		// complement, so priority>=10 entities sit at the exact center pull
		centerBias := math.Max(0, 1-e.Priority/10)
		e.Position = LerpPos(grid, center, 1-centerBias)

		e.Position.X = Clamp(e.Position.X, e.Radius, space.Width-e.Radius)
		e.Position.Y = Clamp(e.Position.Y, e.Radius, space.Height-e.Radius)
	}
	return nil
}
