package galaxy

import (
	"math"
	"sync"
)

// PatternType classifies the shape of a position history.
type PatternType string

const (
	PatternLinear    PatternType = "linear"
	PatternCircular  PatternType = "circular"
	PatternClustered PatternType = "clustered"
	PatternUnknown   PatternType = "unknown"
)

const (
	patternHistoryCap   = 64 // Positions kept for detection
	patternMinSamples   = 5
	kmeansIterations    = 10 // Fixed cap: advisory quality is enough
	linearDeviationTol  = 0.08
	circularVarianceTol = 0.05
)

// PatternDetector watches a position history and predicts the next likely
// position. Advisory only: consumers decide whether to act on predictions,
// and nothing in the layout pipeline depends on them.
type PatternDetector struct {
	mu      sync.Mutex
	history []Position
}

// NewPatternDetector creates an empty detector.
func NewPatternDetector() *PatternDetector {
	return &PatternDetector{history: make([]Position, 0, patternHistoryCap)}
}

// Observe appends a position to the bounded history.
func (d *PatternDetector) Observe(p Position) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history = append(d.history, p)
	if len(d.history) > patternHistoryCap {
		d.history = d.history[len(d.history)-patternHistoryCap:]
	}
}

// Detect classifies the current history. Checks run in order of specificity:
// linear, then circular, then clustered.
func (d *PatternDetector) Detect() PatternType {
	d.mu.Lock()
	history := make([]Position, len(d.history))
	copy(history, d.history)
	d.mu.Unlock()

	if len(history) < patternMinSamples {
		return PatternUnknown
	}
	if isLinear(history) {
		return PatternLinear
	}
	if isCircular(history) {
		return PatternCircular
	}
	if isClustered(history) {
		return PatternClustered
	}
	return PatternUnknown
}

// PredictNext returns the next likely position for the detected pattern.
// ok is false when no pattern is established.
func (d *PatternDetector) PredictNext() (Position, bool) {
	pattern := d.Detect()

	d.mu.Lock()
	history := make([]Position, len(d.history))
	copy(history, d.history)
	d.mu.Unlock()

	if len(history) < patternMinSamples {
		return Position{}, false
	}
	last := history[len(history)-1]

	switch pattern {
	case PatternLinear:
		// Continue the last step
		prev := history[len(history)-2]
		return Position{X: last.X + (last.X - prev.X), Y: last.Y + (last.Y - prev.Y)}, true

	case PatternCircular:
		// Rotate the last point around the centroid by the mean angular step
		centroid := centroidOf(history)
		step := meanAngularStep(history, centroid)
		angle := math.Atan2(last.Y-centroid.Y, last.X-centroid.X) + step
		radius := math.Hypot(last.X-centroid.X, last.Y-centroid.Y)
		return Position{
			X: centroid.X + radius*math.Cos(angle),
			Y: centroid.Y + radius*math.Sin(angle),
		}, true

	case PatternClustered:
		// The nearest cluster centroid is the likely revisit target
		centroids := kmeans(history, clusterK(len(history)))
		best := centroids[0]
		bestDist := math.Inf(1)
		for _, c := range centroids {
			if dist := math.Hypot(last.X-c.X, last.Y-c.Y); dist < bestDist {
				bestDist = dist
				best = c
			}
		}
		return best, true

	default:
		return Position{}, false
	}
}

func centroidOf(points []Position) Position {
	var sx, sy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(points))
	return Position{X: sx / n, Y: sy / n}
}

// isLinear measures mean perpendicular deviation from the first-last segment
// relative to the segment length.
func isLinear(points []Position) bool {
	first, last := points[0], points[len(points)-1]
	length := math.Hypot(last.X-first.X, last.Y-first.Y)
	if length < 1e-6 {
		return false
	}

	var totalDev float64
	for _, p := range points {
		// Perpendicular distance from p to the first-last line
		dev := math.Abs((last.Y-first.Y)*p.X-(last.X-first.X)*p.Y+last.X*first.Y-last.Y*first.X) / length
		totalDev += dev
	}
	meanDev := totalDev / float64(len(points))
	return meanDev/length < linearDeviationTol
}

// isCircular measures the variance of distances to the centroid relative to
// the squared mean distance.
func isCircular(points []Position) bool {
	centroid := centroidOf(points)
	distances := make([]float64, len(points))
	var sum float64
	for i, p := range points {
		distances[i] = math.Hypot(p.X-centroid.X, p.Y-centroid.Y)
		sum += distances[i]
	}
	mean := sum / float64(len(points))
	if mean < 1e-6 {
		return false
	}
	return Variance(distances)/(mean*mean) < circularVarianceTol
}

// isClustered runs a small k-means and checks whether points sit tightly
// around their assigned centroids compared to the overall spread.
func isClustered(points []Position) bool {
	k := clusterK(len(points))
	if k < 2 {
		return false
	}
	centroids := kmeans(points, k)

	var intra float64
	for _, p := range points {
		best := math.Inf(1)
		for _, c := range centroids {
			if d := math.Hypot(p.X-c.X, p.Y-c.Y); d < best {
				best = d
			}
		}
		intra += best
	}
	intra /= float64(len(points))

	centroid := centroidOf(points)
	var overall float64
	for _, p := range points {
		overall += math.Hypot(p.X-centroid.X, p.Y-centroid.Y)
	}
	overall /= float64(len(points))
	if overall < 1e-6 {
		return false
	}
	return intra < overall*0.4
}

func clusterK(n int) int {
	k := n / 8
	if k < 2 {
		k = 2
	}
	if k > 4 {
		k = 4
	}
	return k
}

// kmeans is a minimal fixed-iteration k-means. Centroids initialize to the
// first k points (not seeded/randomized) — acceptable for advisory use only,
// never for correctness-critical clustering.
func kmeans(points []Position, k int) []Position {
	if k > len(points) {
		k = len(points)
	}
	centroids := make([]Position, k)
	copy(centroids, points[:k])

	assign := make([]int, len(points))
	for iter := 0; iter < kmeansIterations; iter++ {
		// Assignment step
		for i, p := range points {
			best, bestDist := 0, math.Inf(1)
			for ci, c := range centroids {
				if d := math.Hypot(p.X-c.X, p.Y-c.Y); d < bestDist {
					bestDist = d
					best = ci
				}
			}
			assign[i] = best
		}

		// Update step
		sums := make([]Position, k)
		counts := make([]int, k)
		for i, p := range points {
			sums[assign[i]].X += p.X
			sums[assign[i]].Y += p.Y
			counts[assign[i]]++
		}
		for ci := range centroids {
			if counts[ci] > 0 {
				centroids[ci] = Position{
					X: sums[ci].X / float64(counts[ci]),
					Y: sums[ci].Y / float64(counts[ci]),
				}
			}
		}
	}
	return centroids
}

// meanAngularStep averages the signed angle delta between consecutive
// history points as seen from the centroid.
func meanAngularStep(points []Position, centroid Position) float64 {
	var total float64
	var count int
	for i := 1; i < len(points); i++ {
		a0 := math.Atan2(points[i-1].Y-centroid.Y, points[i-1].X-centroid.X)
		a1 := math.Atan2(points[i].Y-centroid.Y, points[i].X-centroid.X)
		delta := a1 - a0
		for delta > math.Pi {
			delta -= 2 * math.Pi
		}
		for delta < -math.Pi {
			delta += 2 * math.Pi
		}
		total += delta
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
