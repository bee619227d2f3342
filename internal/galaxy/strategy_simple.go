package galaxy

import (
	"math/rand"
)

// SimpleStrategy applies a small random jitter to each entity's current
// position. Used in the LOW density regime, where the existing layout is
// already acceptable and fine adjustment suffices.
//
// The jitter magnitude scales with priority: important entities get a larger
// variation budget, which gives the collision resolver room to keep them
// prominent without crowding.
type SimpleStrategy struct {
	rng *rand.Rand
}

// NewSimpleStrategy creates the jitter strategy with a caller-owned RNG
// (seeded deterministically by the engine for replayable builds).
func NewSimpleStrategy(rng *rand.Rand) *SimpleStrategy {
	return &SimpleStrategy{rng: rng}
}

// Name implements LayoutStrategy.
func (s *SimpleStrategy) Name() string { return "simple" }

// ComputePositions perturbs each entity around its current position.
func (s *SimpleStrategy) ComputePositions(entities []*Entity, space Space) error {
	for _, e := range entities {
		variation := 10 + e.Priority*2
		e.Position.X += (s.rng.Float64()*2 - 1) * variation
		e.Position.Y += (s.rng.Float64()*2 - 1) * variation
		clampToSpace(e, space)
	}
	return nil
}
