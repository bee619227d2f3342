package galaxy

import "math"

// Space is the layout canvas the engine positions entities in.
type Space struct {
	Width  float64
	Height float64
}

// Center returns the canvas center point.
func (s Space) Center() Position {
	return Position{X: s.Width / 2, Y: s.Height / 2}
}

// Distance returns the Euclidean distance between two positions.
func Distance(a, b Position) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// CenterOfMass returns the unweighted centroid of the entities' positions.
// Returns the zero position for an empty slice.
func CenterOfMass(entities []*Entity) Position {
	if len(entities) == 0 {
		return Position{}
	}
	var sx, sy float64
	for _, e := range entities {
		sx += e.Position.X
		sy += e.Position.Y
	}
	n := float64(len(entities))
	return Position{X: sx / n, Y: sy / n}
}

// Variance returns the population variance of the values.
// Returns 0 for fewer than two values.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return sq / float64(len(values))
}

// Clamp limits v to the closed interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if lo > hi {
		// Degenerate interval (entity larger than the canvas): collapse to lo
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b by t in [0,1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpPos linearly interpolates between two positions.
func LerpPos(a, b Position, t float64) Position {
	return Position{X: Lerp(a.X, b.X, t), Y: Lerp(a.Y, b.Y, t)}
}

// Polar converts a polar offset (radius, degrees) into a position delta.
func Polar(radius, degrees float64) Position {
	rad := degrees * math.Pi / 180
	return Position{X: radius * math.Cos(rad), Y: radius * math.Sin(rad)}
}

// clampToSpace keeps an entity inside the canvas accounting for its radius.
// Position coordinates are always clamped into bounds after any mutation.
func clampToSpace(e *Entity, space Space) {
	e.Position.X = Clamp(e.Position.X, e.Radius, space.Width-e.Radius)
	e.Position.Y = Clamp(e.Position.Y, e.Radius, space.Height-e.Radius)
}
