package galaxy

import (
	"math"
	"testing"
)

// TestResolveHierarchyMissingParent verifies an entity with an unknown parent
// is re-rooted instead of failing the build.
func TestResolveHierarchyMissingParent(t *testing.T) {
	entities := []*Entity{
		NewEntity(Record{ID: "sun", Type: "star"}),
		NewEntity(Record{ID: "lost", Type: "planet", Parent: "nowhere"}),
	}

	rerooted := ResolveHierarchy(entities)
	if rerooted != 1 {
		t.Errorf("expected 1 re-rooted entity, got %d", rerooted)
	}
	if entities[1].Parent != "" {
		t.Errorf("lost entity should have been re-rooted, parent is %q", entities[1].Parent)
	}
	if len(Roots(entities)) != 2 {
		t.Errorf("expected 2 roots, got %d", len(Roots(entities)))
	}
}

// TestResolveHierarchyCycle verifies a parent cycle is broken by re-rooting.
func TestResolveHierarchyCycle(t *testing.T) {
	entities := []*Entity{
		NewEntity(Record{ID: "a", Type: "planet", Parent: "b"}),
		NewEntity(Record{ID: "b", Type: "planet", Parent: "a"}),
	}

	rerooted := ResolveHierarchy(entities)
	if rerooted == 0 {
		t.Fatal("cycle should have re-rooted at least one entity")
	}

	// After breaking the cycle at least one entity must be a root, and every
	// depth must be finite and consistent
	if len(Roots(entities)) == 0 {
		t.Error("cycle broken but no root produced")
	}
	for _, e := range entities {
		if e.Depth < 0 || e.Depth >= len(entities) {
			t.Errorf("entity %q has invalid depth %d", e.ID, e.Depth)
		}
	}
}

// TestResolveHierarchyDepth verifies depth assignment along a chain.
func TestResolveHierarchyDepth(t *testing.T) {
	entities := []*Entity{
		NewEntity(Record{ID: "sun", Type: "star"}),
		NewEntity(Record{ID: "earth", Type: "planet", Parent: "sun"}),
		NewEntity(Record{ID: "luna", Type: "moon", Parent: "earth"}),
	}

	if rerooted := ResolveHierarchy(entities); rerooted != 0 {
		t.Fatalf("valid hierarchy re-rooted %d entities", rerooted)
	}

	wantDepth := map[string]int{"sun": 0, "earth": 1, "luna": 2}
	for _, e := range entities {
		if e.Depth != wantDepth[e.ID] {
			t.Errorf("entity %q depth = %d, want %d", e.ID, e.Depth, wantDepth[e.ID])
		}
	}
}

// TestPlaceRootsCircle verifies small root sets are equidistant from the
// canvas center at twice their type's default radius.
func TestPlaceRootsCircle(t *testing.T) {
	space := testSpace()
	center := space.Center()

	roots := make([]*Entity, 0, 8)
	for i := 0; i < 8; i++ {
		roots = append(roots, NewEntity(Record{ID: string(rune('a' + i)), Type: "planet"}))
	}
	PlaceRoots(roots, space)

	defRadius, _, _, _ := DefaultsFor("planet")
	want := 2 * defRadius
	for _, e := range roots {
		got := Distance(e.Position, center)
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("root %q at distance %.3f from center, want %.3f", e.ID, got, want)
		}
	}
}

// TestPlaceRootsSpiral verifies large root sets use the golden-angle spiral:
// radii strictly increase with index.
func TestPlaceRootsSpiral(t *testing.T) {
	space := testSpace()
	center := space.Center()

	roots := make([]*Entity, 0, 20)
	for i := 0; i < 20; i++ {
		roots = append(roots, NewEntity(Record{ID: string(rune('a'+i%26)) + string(rune('0'+i/26)), Type: "station"}))
	}
	PlaceRoots(roots, space)

	prev := -1.0
	for i, e := range roots {
		got := Distance(e.Position, center)
		if got <= prev {
			t.Errorf("spiral radius not strictly increasing at index %d: %.3f <= %.3f", i, got, prev)
		}
		prev = got
	}
}

// TestPlaceRootsKeepsExplicitPositions verifies scanner-declared positions
// survive placement.
func TestPlaceRootsKeepsExplicitPositions(t *testing.T) {
	space := testSpace()
	fixed := NewEntity(Record{ID: "fixed", Type: "planet", Position: &Position{X: 100, Y: 200}})
	auto := NewEntity(Record{ID: "auto", Type: "planet"})

	PlaceRoots([]*Entity{fixed, auto}, space)

	if fixed.Position.X != 100 || fixed.Position.Y != 200 {
		t.Errorf("explicit position overwritten: got (%.1f, %.1f)", fixed.Position.X, fixed.Position.Y)
	}
	if auto.Position == (Position{}) {
		t.Error("auto-placed root still at origin")
	}
}

// TestPlaceOrbits verifies children sit at their orbit radius from the parent
// and siblings without explicit angles split the circle evenly.
func TestPlaceOrbits(t *testing.T) {
	space := testSpace()
	sun := NewEntity(Record{ID: "sun", Type: "star"})
	planets := []*Entity{
		NewEntity(Record{ID: "p1", Type: "planet", Parent: "sun"}),
		NewEntity(Record{ID: "p2", Type: "planet", Parent: "sun"}),
		NewEntity(Record{ID: "p3", Type: "planet", Parent: "sun"}),
		NewEntity(Record{ID: "p4", Type: "planet", Parent: "sun"}),
	}
	all := append([]*Entity{sun}, planets...)

	ResolveHierarchy(all)
	PlaceRoots(Roots(all), space)
	PlaceOrbits(all, space)

	for _, p := range planets {
		got := Distance(p.Position, sun.Position)
		if math.Abs(got-p.OrbitRadius) > 1e-6 {
			t.Errorf("planet %q at distance %.3f from parent, want orbit radius %.3f", p.ID, got, p.OrbitRadius)
		}
	}

	// Four siblings sorted by ID get angles 0, 90, 180, 270
	wantAngles := map[string]float64{"p1": 0, "p2": 90, "p3": 180, "p4": 270}
	for _, p := range planets {
		if math.Abs(p.OrbitAngle-wantAngles[p.ID]) > 1e-6 {
			t.Errorf("planet %q orbit angle = %.1f, want %.1f", p.ID, p.OrbitAngle, wantAngles[p.ID])
		}
	}
}

// TestPlaceOrbitsExplicitAngle verifies declared orbit angles are honored.
func TestPlaceOrbitsExplicitAngle(t *testing.T) {
	space := testSpace()
	angle := 45.0
	radius := 200.0
	all := []*Entity{
		NewEntity(Record{ID: "sun", Type: "star"}),
		NewEntity(Record{ID: "p", Type: "planet", Parent: "sun", OrbitAngle: &angle, OrbitRadius: &radius}),
	}

	ResolveHierarchy(all)
	PlaceRoots(Roots(all), space)
	PlaceOrbits(all, space)

	p := all[1]
	if p.OrbitAngle != 45 {
		t.Errorf("explicit orbit angle changed to %.1f", p.OrbitAngle)
	}
	offset := Polar(radius, angle)
	wantX := all[0].Position.X + offset.X
	wantY := all[0].Position.Y + offset.Y
	if math.Abs(p.Position.X-wantX) > 1e-6 || math.Abs(p.Position.Y-wantY) > 1e-6 {
		t.Errorf("planet at (%.2f, %.2f), want (%.2f, %.2f)", p.Position.X, p.Position.Y, wantX, wantY)
	}
}

// TestPlaceOrbitsMoonChain verifies a planet-moon chain: the moon orbits the
// planet's final position at the moon's default orbit radius.
func TestPlaceOrbitsMoonChain(t *testing.T) {
	space := testSpace()
	all := []*Entity{
		NewEntity(Record{ID: "sun", Type: "star"}),
		NewEntity(Record{ID: "earth", Type: "planet", Parent: "sun"}),
		NewEntity(Record{ID: "luna", Type: "moon", Parent: "earth"}),
	}

	ResolveHierarchy(all)
	PlaceRoots(Roots(all), space)
	PlaceOrbits(all, space)

	earth, luna := all[1], all[2]
	_, _, moonOrbit, _ := DefaultsFor("moon")
	got := Distance(luna.Position, earth.Position)
	if math.Abs(got-moonOrbit) > 1e-6 {
		t.Errorf("moon at distance %.3f from planet, want %.3f", got, moonOrbit)
	}
}
