package galaxy

import (
	"fmt"

	"galaxy-forge/internal/config"
)

// Density is the classification regime that drives strategy selection.
type Density int

const (
	DensityLow Density = iota
	DensityMedium
	DensityHigh
)

// String returns the canonical density label.
func (d Density) String() string {
	switch d {
	case DensityLow:
		return "LOW_DENSITY"
	case DensityMedium:
		return "MEDIUM_DENSITY"
	case DensityHigh:
		return "HIGH_DENSITY"
	default:
		return "UNKNOWN_DENSITY"
	}
}

// Classifier buckets an entity set into LOW / MEDIUM / HIGH density.
//
// The raw count is weighted by how evenly the entities are spread: a tight
// clump of 30 entities is effectively denser than 30 entities covering the
// whole canvas, so the spread discounts the count before thresholding.
type Classifier struct {
	cfg   config.DensityConfig
	space Space
}

// NewClassifier creates a density classifier for the given canvas.
func NewClassifier(cfg config.DensityConfig, space Space) *Classifier {
	return &Classifier{cfg: cfg, space: space}
}

// Classify returns the density regime for the entity set.
// A nil slice is invalid input and fails fast; an empty slice is LOW.
// For a fixed entity set and config the result is deterministic.
func (c *Classifier) Classify(entities []*Entity) (Density, error) {
	if entities == nil {
		return DensityLow, fmt.Errorf("density: entities must be a slice, got nil")
	}

	adjusted := float64(len(entities)) * c.distributionScore(entities)

	switch {
	case adjusted <= c.cfg.LowMax:
		return DensityLow, nil
	case adjusted <= c.cfg.MediumMax:
		return DensityMedium, nil
	default:
		return DensityHigh, nil
	}
}

// distributionScore measures spatial evenness in [MinScore, 1].
// Score 1 means the entities sit at uniform distances from their centroid
// (or there are too few to measure); the score drops toward MinScore as the
// radial spread grows relative to the canvas half-width.
func (c *Classifier) distributionScore(entities []*Entity) float64 {
	if len(entities) <= 1 {
		return 1
	}

	centroid := CenterOfMass(entities)
	distances := make([]float64, len(entities))
	for i, e := range entities {
		distances[i] = Distance(e.Position, centroid)
	}

	maxVariance := (c.space.Width / 2) * (c.space.Width / 2)
	if maxVariance <= 0 {
		return c.cfg.MinScore
	}

	score := 1 - Variance(distances)/maxVariance
	if score < c.cfg.MinScore {
		return c.cfg.MinScore
	}
	return score
}
