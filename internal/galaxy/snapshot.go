package galaxy

import (
	"sync/atomic"
	"time"
)

// MaxSnapshotEntities caps how many entities a snapshot carries.
// Prevents unbounded memory growth if a scanner run explodes.
const MaxSnapshotEntities = 4096

// EntitySnapshot is an immutable copy of entity state for rendering.
// Uses value types (not pointers) to ensure immutability.
type EntitySnapshot struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Parent      string     `json:"parent,omitempty"`
	Title       string     `json:"title,omitempty"`
	URL         string     `json:"url,omitempty"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	Radius      float64    `json:"radius"`
	Priority    float64    `json:"priority"`
	Color       string     `json:"color"`
	Importance  Importance `json:"importance"`
	OrbitRadius float64    `json:"orbitRadius"`
	OrbitAngle  float64    `json:"orbitAngle"`
	Depth       int        `json:"depth"`
}

// LayoutMetrics is the per-run report consumed by dashboards and the site
// generator's build statistics page.
type LayoutMetrics struct {
	EntityCount        int           `json:"entityCount"`
	CalculationTime    time.Duration `json:"calculationTime"`
	CollisionsResolved int           `json:"collisionsResolved"`
	PerformanceScore   float64       `json:"performanceScore"`
	StrategyUsed       string        `json:"strategyUsed"`
	Density            string        `json:"density"`
	IterationCapHit    bool          `json:"iterationCapHit"`
	Rerooted           int           `json:"rerooted"`
}

// LayoutSnapshot is a complete immutable layout state.
// The entity slice is pre-allocated and capped.
type LayoutSnapshot struct {
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence for ordering
	Timestamp time.Time `json:"timestamp"` // When the snapshot was created
	BuildNum  uint64    `json:"buildNum"`  // Layout build this represents
	RNGSeed   int64     `json:"rngSeed"`   // Seed for deterministic replay

	Entities []EntitySnapshot `json:"entities"`
	Metrics  LayoutMetrics    `json:"metrics"`
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure.
// Uses triple buffering for lock-free producer/consumer: the engine writes
// at the end of each build, the API/renderer reads without locking.
type SnapshotPool struct {
	snapshots [3]LayoutSnapshot // Triple buffer
	writeIdx  uint32            // atomic - producer index
	readIdx   uint32            // atomic - consumer index
	sequence  uint64            // atomic - monotonic sequence
}

// NewSnapshotPool creates a pool with pre-allocated slices.
func NewSnapshotPool() *SnapshotPool {
	pool := &SnapshotPool{}
	for i := 0; i < 3; i++ {
		pool.snapshots[i] = LayoutSnapshot{
			Entities: make([]EntitySnapshot, 0, 256),
		}
	}
	return pool
}

// AcquireWrite gets the next write slot (producer only, called at build end).
// Returns a snapshot with reset slices but preserved capacity.
func (p *SnapshotPool) AcquireWrite() *LayoutSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Entities = snap.Entities[:0]
	snap.Metrics = LayoutMetrics{}
	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()

	return snap
}

// PublishWrite marks the write complete and advances the read pointer.
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead gets the latest complete snapshot (consumer side).
func (p *SnapshotPool) AcquireRead() *LayoutSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}

// snapshotEntity converts a live entity into its immutable snapshot form.
func snapshotEntity(e *Entity) EntitySnapshot {
	return EntitySnapshot{
		ID:          e.ID,
		Type:        e.Type,
		Parent:      e.Parent,
		Title:       e.Title,
		URL:         e.URL,
		X:           e.Position.X,
		Y:           e.Position.Y,
		Radius:      e.Radius,
		Priority:    e.Priority,
		Color:       e.Color,
		Importance:  e.Importance,
		OrbitRadius: e.OrbitRadius,
		OrbitAngle:  e.OrbitAngle,
		Depth:       e.Depth,
	}
}
