package galaxy

import (
	"math"
	"math/rand"
	"sort"

	"galaxy-forge/internal/config"
)

// HotspotSource supplies recorded user-interaction hotspots, ranked by
// interaction count (highest first). The clustering strategy seeds cluster
// centers there when any exist.
type HotspotSource interface {
	Top(n int) []Hotspot
}

// ClusterStrategy groups entities into priority-ordered clusters.
// Used in the MEDIUM density regime.
//
// High-priority entities land in the earliest clusters, which sit on the
// hottest interaction spots (or, lacking interaction data, evenly around a
// circle at the canvas center). Cluster sizes are deliberately uneven: each
// cluster has a small chance to close before it is full so the layout avoids
// uniform block sizes.
type ClusterStrategy struct {
	cfg      config.ClusterConfig
	rng      *rand.Rand
	hotspots HotspotSource // may be nil
}

// NewClusterStrategy creates the clustering strategy.
// hotspots may be nil when no interaction tracking is wired in.
func NewClusterStrategy(cfg config.ClusterConfig, rng *rand.Rand, hotspots HotspotSource) *ClusterStrategy {
	return &ClusterStrategy{cfg: cfg, rng: rng, hotspots: hotspots}
}

// Name implements LayoutStrategy.
func (s *ClusterStrategy) Name() string { return "clustered" }

// ComputePositions buckets entities into clusters and places each cluster's
// members on a ring around its center.
func (s *ClusterStrategy) ComputePositions(entities []*Entity, space Space) error {
	if len(entities) == 0 {
		return nil
	}

	sorted := make([]*Entity, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].ID < sorted[j].ID
	})

	clusters := s.bucket(sorted)
	centers := s.clusterCenters(len(clusters), space)

	for ci, cluster := range clusters {
		center := centers[ci]
		for idx, e := range cluster {
			ringRadius := s.cfg.EntitySpacing + float64(idx)*10
			angle := 360.0 / float64(len(cluster)) * float64(idx)
			offset := Polar(ringRadius, angle)
			e.Position = Position{X: center.X + offset.X, Y: center.Y + offset.Y}
			clampToSpace(e, space)
		}
	}
	return nil
}

// bucket greedily fills clusters of at most MaxClusterSize entities,
// closing each one early with probability EarlyCloseProb.
func (s *ClusterStrategy) bucket(sorted []*Entity) [][]*Entity {
	var clusters [][]*Entity
	var current []*Entity

	for _, e := range sorted {
		current = append(current, e)
		full := len(current) >= s.cfg.MaxClusterSize
		earlyClose := len(current) > 1 && s.rng.Float64() < s.cfg.EarlyCloseProb
		if full || earlyClose {
			clusters = append(clusters, current)
			current = nil
		}
	}
	if len(current) > 0 {
		clusters = append(clusters, current)
	}
	return clusters
}

// clusterCenters picks a center per cluster: recorded hotspots first
// (highest interaction count first), then evenly spaced points on a circle
// of ClusterRadius around the canvas center for the remainder.
func (s *ClusterStrategy) clusterCenters(n int, space Space) []Position {
	centers := make([]Position, 0, n)

	if s.hotspots != nil {
		for _, h := range s.hotspots.Top(n) {
			centers = append(centers, Position{X: h.X, Y: h.Y})
		}
	}

	center := space.Center()
	remaining := n - len(centers)
	for i := 0; i < remaining; i++ {
		angle := 2 * math.Pi * float64(i) / float64(remaining)
		centers = append(centers, Position{
			X: center.X + s.cfg.ClusterRadius*math.Cos(angle),
			Y: center.Y + s.cfg.ClusterRadius*math.Sin(angle),
		})
	}
	return centers
}
