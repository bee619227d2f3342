package galaxy

import (
	"log"
	"math"
	"sort"
)

// goldenAngle is the spiral step used for large root sets. Consecutive roots
// never line up, which avoids the uniform ring artifacts a plain circle
// produces past a handful of entities.
const goldenAngle = 137.5

// rootCircleMax is the largest root count still placed on a plain circle.
const rootCircleMax = 8

// ResolveHierarchy validates parent references and assigns depth to every
// entity. An entity whose parent is missing from the batch is recoverable:
// it is logged and treated as a root, never a build failure.
//
// Cyclic parent chains are broken by re-rooting the entity where the cycle
// closes. Returns the number of entities that were re-rooted.
func ResolveHierarchy(entities []*Entity) int {
	byID := make(map[string]*Entity, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}

	rerooted := 0
	for _, e := range entities {
		if e.Parent == "" {
			continue
		}
		if _, ok := byID[e.Parent]; !ok {
			log.Printf("⚠️ Entity %q references missing parent %q, treating as root", e.ID, e.Parent)
			e.Parent = ""
			rerooted++
		}
	}

	// Depth assignment with cycle detection: walk each parent chain, bounded
	// by the batch size.
	for _, e := range entities {
		depth := 0
		seen := map[string]bool{e.ID: true}
		cur := e
		for cur.Parent != "" {
			next := byID[cur.Parent]
			if next == nil || seen[next.ID] {
				if next != nil {
					log.Printf("⚠️ Entity %q is part of a parent cycle, re-rooting", cur.ID)
					cur.Parent = ""
					rerooted++
				}
				break
			}
			seen[next.ID] = true
			depth++
			cur = next
		}
		e.Depth = depth
	}

	return rerooted
}

// Roots returns the root entities (no parent) in input order.
func Roots(entities []*Entity) []*Entity {
	roots := make([]*Entity, 0, len(entities))
	for _, e := range entities {
		if e.Parent == "" {
			roots = append(roots, e)
		}
	}
	return roots
}

// PlaceRoots distributes root entities around the canvas center.
//
// Small root sets (<= 8) spread evenly on a circle of twice the type's
// default radius. Larger sets use a golden-angle spiral so radii strictly
// grow with index instead of forming concentric rings.
func PlaceRoots(roots []*Entity, space Space) {
	if len(roots) == 0 {
		return
	}
	center := space.Center()

	if len(roots) <= rootCircleMax {
		step := 360.0 / float64(len(roots))
		for i, e := range roots {
			if e.HasPosition {
				clampToSpace(e, space)
				continue
			}
			defRadius, _, _, _ := DefaultsFor(e.Type)
			offset := Polar(2*defRadius, step*float64(i))
			e.Position = Position{X: center.X + offset.X, Y: center.Y + offset.Y}
			clampToSpace(e, space)
		}
		return
	}

	for i, e := range roots {
		if e.HasPosition {
			clampToSpace(e, space)
			continue
		}
		defRadius, _, _, _ := DefaultsFor(e.Type)
		angle := float64(i) * goldenAngle
		radius := 0.8 * math.Sqrt(float64(i)) * defRadius
		offset := Polar(radius, angle)
		e.Position = Position{X: center.X + offset.X, Y: center.Y + offset.Y}
		clampToSpace(e, space)
	}
}

// PlaceOrbits positions every non-root entity at a polar offset from its
// parent. Children without an explicit orbit angle are split evenly among
// their siblings (360/siblingCount * siblingIndex).
//
// Parents are processed in increasing depth order so a child's parent is
// always placed before the child itself.
func PlaceOrbits(entities []*Entity, space Space) {
	byID := make(map[string]*Entity, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}

	children := make(map[string][]*Entity)
	for _, e := range entities {
		if e.Parent != "" {
			children[e.Parent] = append(children[e.Parent], e)
		}
	}

	// Stable sibling order: by ID, so auto angles are deterministic
	for _, sibs := range children {
		sort.Slice(sibs, func(i, j int) bool { return sibs[i].ID < sibs[j].ID })
	}

	ordered := make([]*Entity, len(entities))
	copy(ordered, entities)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Depth < ordered[j].Depth })

	for _, parent := range ordered {
		sibs := children[parent.ID]
		for idx, child := range sibs {
			if child.HasPosition {
				clampToSpace(child, space)
				continue
			}
			angle := child.OrbitAngle
			if !child.HasOrbitAngle {
				angle = 360.0 / float64(len(sibs)) * float64(idx)
				child.OrbitAngle = angle
			}
			offset := Polar(child.OrbitRadius, angle)
			child.Position = Position{
				X: parent.Position.X + offset.X,
				Y: parent.Position.Y + offset.Y,
			}
			clampToSpace(child, space)
		}
	}
}
