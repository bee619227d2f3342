package galaxy

import (
	"math"
)

// Importance is the editorial weight assigned to a page.
type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

// Position is a point on the layout canvas, in absolute pixels.
// The engine never mixes pixel and percentage coordinates within one pass;
// conversion to percentages happens at site-emit time only.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Entity is a positioned celestial body representing one page/content unit.
type Entity struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Parent string `json:"parent,omitempty"` // "" = root
	Title  string `json:"title,omitempty"`
	URL    string `json:"url,omitempty"`

	Position    Position   `json:"position"`
	HasPosition bool       `json:"-"` // explicit position from the scanner
	Importance  Importance `json:"importance"`

	// Derived per-type visual and weighting attributes
	Priority float64 `json:"priority"`
	Radius   float64 `json:"radius"`
	Color    string  `json:"color"`

	// Orbital metadata: explicit overrides or auto-computed during placement
	OrbitRadius  float64 `json:"orbitRadius"`
	OrbitAngle   float64 `json:"orbitAngle"` // degrees
	HasOrbitAngle bool   `json:"-"`          // false = even sibling split

	// Depth in the page hierarchy, assigned during tree flattening
	Depth int `json:"depth"`
}

// Record is a raw entity record as produced by the page scanner.
// Optional fields are pointers so "absent" is distinguishable from zero.
type Record struct {
	ID           string
	Type         string
	Parent       string
	Title        string
	URL          string
	Importance   string
	Position     *Position
	OrbitRadius  *float64
	OrbitAngle   *float64
	SizeModifier float64 // 0 = default (1.0)
}

// typeDefaults maps each known entity type to its visual defaults.
// Unknown types fall back to fallbackDefaults; they never fail a build.
type typeDefault struct {
	Radius      float64
	Priority    float64
	OrbitRadius float64
	Color       string
}

var typeDefaults = map[string]typeDefault{
	"star":      {Radius: 90, Priority: 10, OrbitRadius: 0, Color: "#ffd27d"},
	"blackhole": {Radius: 70, Priority: 10, OrbitRadius: 0, Color: "#4a148c"},
	"galaxy":    {Radius: 120, Priority: 9, OrbitRadius: 0, Color: "#b39ddb"},
	"planet":    {Radius: 48, Priority: 8, OrbitRadius: 140, Color: "#6ec6ff"},
	"gateway":   {Radius: 30, Priority: 8, OrbitRadius: 130, Color: "#ffcc80"},
	"nebula":    {Radius: 100, Priority: 7, OrbitRadius: 220, Color: "#f48fb1"},
	"station":   {Radius: 26, Priority: 7, OrbitRadius: 110, Color: "#80cbc4"},
	"moon":      {Radius: 22, Priority: 6, OrbitRadius: 60, Color: "#cfd8dc"},
	"anomaly":   {Radius: 18, Priority: 5, OrbitRadius: 80, Color: "#ef9a9a"},
	"asteroid":  {Radius: 12, Priority: 4, OrbitRadius: 90, Color: "#a1887f"},
	"debris":    {Radius: 8, Priority: 2, OrbitRadius: 45, Color: "#8d6e63"},
}

// fallbackDefaults is used for any type outside the fixed vocabulary.
var fallbackDefaults = typeDefault{Radius: 30, Priority: 5, OrbitRadius: 100, Color: "#90a4ae"}

// DefaultsFor returns the visual defaults for an entity type.
// Unknown types get fallbackDefaults.
func DefaultsFor(entityType string) (radius, priority, orbitRadius float64, color string) {
	d, ok := typeDefaults[entityType]
	if !ok {
		d = fallbackDefaults
	}
	return d.Radius, d.Priority, d.OrbitRadius, d.Color
}

// KnownType reports whether entityType is part of the fixed vocabulary.
func KnownType(entityType string) bool {
	_, ok := typeDefaults[entityType]
	return ok
}

// importanceBonus converts editorial importance into a priority bonus.
func importanceBonus(imp Importance) float64 {
	switch imp {
	case ImportanceHigh:
		return 4
	case ImportanceLow:
		return 0
	default: // medium is the documented default
		return 2
	}
}

// NewEntity builds an Entity from a raw scanner record, applying per-type
// defaults for radius, priority, color and orbit radius.
func NewEntity(rec Record) *Entity {
	radius, basePriority, orbitRadius, color := DefaultsFor(rec.Type)

	imp := Importance(rec.Importance)
	switch imp {
	case ImportanceHigh, ImportanceMedium, ImportanceLow:
	default:
		imp = ImportanceMedium
	}

	sizeMod := rec.SizeModifier
	if sizeMod <= 0 {
		sizeMod = 1.0
	}

	e := &Entity{
		ID:          rec.ID,
		Type:        rec.Type,
		Parent:      rec.Parent,
		Title:       rec.Title,
		URL:         rec.URL,
		Importance:  imp,
		Priority:    basePriority + importanceBonus(imp),
		Radius:      radius * sizeMod,
		Color:       color,
		OrbitRadius: orbitRadius,
	}

	if rec.Position != nil {
		e.Position = *rec.Position
		e.HasPosition = true
	}
	if rec.OrbitRadius != nil && *rec.OrbitRadius > 0 {
		e.OrbitRadius = *rec.OrbitRadius
	}
	if rec.OrbitAngle != nil {
		e.OrbitAngle = math.Mod(*rec.OrbitAngle, 360)
		e.HasOrbitAngle = true
	}

	return e
}

// Clone returns an independent copy of the entity.
// Builds operate on owned snapshots; callers must not assume aliasing
// across layout passes.
func (e *Entity) Clone() *Entity {
	c := *e
	return &c
}

// CloneAll deep-copies an entity slice.
func CloneAll(entities []*Entity) []*Entity {
	out := make([]*Entity, len(entities))
	for i, e := range entities {
		out[i] = e.Clone()
	}
	return out
}
