package galaxy

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"galaxy-forge/internal/config"
)

// EngineConfig bundles everything one engine instance needs.
// Zero-value sections fall back to the config package defaults.
type EngineConfig struct {
	Space     config.SpaceConfig
	Density   config.DensityConfig
	Collision config.CollisionConfig
	Spatial   config.SpatialConfig
	Cluster   config.ClusterConfig
	Hex       config.HexConfig
	Analytics config.AnalyticsConfig
	Seed      int64 // 0 = derive from wall clock
}

// Engine orchestrates one galaxy's layout pipeline:
// density -> strategy -> hierarchy placement -> collision resolution ->
// hotspot rebalancing -> report.
//
// The engine owns the canonical entity map for the duration of a build and
// every build operates on an owned clone of the entity set, so callers must
// not retain references into a snapshot once the next build begins. Engines
// are fully independent: each owns its spatial grid and entity map, so
// multiple galaxies can build concurrently in a worker pool.
type Engine struct {
	mu sync.RWMutex

	space    Space
	entities map[string]*Entity
	order    []string // insertion order, for deterministic builds

	registry   *StrategyRegistry
	classifier *Classifier
	resolver   *Resolver
	advisor    *Advisor
	patterns   *PatternDetector
	hotspots   *HotspotTracker

	eventLog     *EventLog
	snapshotPool *SnapshotPool

	// Deterministic RNG for replayable builds
	rng     *rand.Rand
	rngSeed int64

	buildCount    uint64
	lastMetrics   LayoutMetrics
	lastRecommend string

	// Optional advisory callbacks; consumers decide whether to act on them.
	// Invoked on their own goroutines, never blocking the build.
	OnRecommendationChanged func(strategy string)
	OnPrediction            func(pattern PatternType, next Position)
}

// NewEngine creates an engine with the three standard strategies registered.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Space.Width <= 0 || cfg.Space.Height <= 0 {
		cfg.Space = config.DefaultSpace()
	}
	if cfg.Density.LowMax <= 0 {
		cfg.Density = config.DefaultDensity()
	}
	if cfg.Collision.MaxIterations <= 0 {
		cfg.Collision = config.DefaultCollision()
	}
	if cfg.Spatial.CellSize <= 0 {
		cfg.Spatial = config.DefaultSpatial()
	}
	if cfg.Cluster.MaxClusterSize <= 0 {
		cfg.Cluster = config.DefaultCluster()
	}
	if cfg.Hex.CellRadius <= 0 {
		cfg.Hex = config.DefaultHex()
	}
	if cfg.Analytics.HistoryCap <= 0 {
		cfg.Analytics = config.DefaultAnalytics()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	space := Space{Width: cfg.Space.Width, Height: cfg.Space.Height}
	rng := rand.New(rand.NewSource(seed))
	hotspots := NewHotspotTracker(space)

	registry := NewStrategyRegistry()
	registry.Register(DensityLow, NewSimpleStrategy(rng))
	registry.Register(DensityMedium, NewClusterStrategy(cfg.Cluster, rng, hotspots))
	registry.Register(DensityHigh, NewHexStrategy(cfg.Hex))

	return &Engine{
		space:        space,
		entities:     make(map[string]*Entity),
		registry:     registry,
		classifier:   NewClassifier(cfg.Density, space),
		resolver:     NewResolver(cfg.Collision, cfg.Spatial, space),
		advisor:      NewAdvisor(cfg.Analytics),
		patterns:     NewPatternDetector(),
		hotspots:     hotspots,
		eventLog:     NewEventLog(),
		snapshotPool: NewSnapshotPool(),
		rng:          rng,
		rngSeed:      seed,
	}
}

// SetEntities replaces the canonical entity set from raw scanner records.
// Duplicate IDs keep the first occurrence and log a warning.
func (e *Engine) SetEntities(records []Record) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.entities = make(map[string]*Entity, len(records))
	e.order = e.order[:0]

	for _, rec := range records {
		if rec.ID == "" {
			log.Printf("⚠️ Skipping entity record with empty id (title=%q)", rec.Title)
			continue
		}
		if _, exists := e.entities[rec.ID]; exists {
			log.Printf("⚠️ Duplicate entity id %q, keeping first occurrence", rec.ID)
			continue
		}
		if !KnownType(rec.Type) {
			log.Printf("🪐 Unknown entity type %q for %q, using defaults", rec.Type, rec.ID)
		}
		e.entities[rec.ID] = NewEntity(rec)
		e.order = append(e.order, rec.ID)
	}

	return len(e.entities)
}

// AddEntity appends one entity to the canonical set.
func (e *Engine) AddEntity(rec Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rec.ID == "" {
		return fmt.Errorf("engine: entity id must not be empty")
	}
	if _, exists := e.entities[rec.ID]; exists {
		return fmt.Errorf("engine: entity %q already exists", rec.ID)
	}
	e.entities[rec.ID] = NewEntity(rec)
	e.order = append(e.order, rec.ID)
	return nil
}

// EntityCount returns the canonical entity count.
func (e *Engine) EntityCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.entities)
}

// Entities returns an owned copy of the canonical entity set in insertion
// order. Mutating the result does not affect the engine.
func (e *Engine) Entities() []*Entity {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.workingSet()
}

// workingSet clones the canonical entities in insertion order.
// Callers must hold at least a read lock.
func (e *Engine) workingSet() []*Entity {
	out := make([]*Entity, 0, len(e.entities))
	for _, id := range e.order {
		if ent, ok := e.entities[id]; ok {
			out = append(out, ent.Clone())
		}
	}
	return out
}

// RecordInteraction feeds one user interaction into the hotspot tracker.
// Malformed events are logged and dropped; they never propagate into the
// layout pipeline.
func (e *Engine) RecordInteraction(x, y float64, source string) {
	if err := e.hotspots.RecordInteraction(x, y); err != nil {
		log.Printf("⚠️ Dropping malformed interaction from %q: %v", source, err)
		return
	}
	e.patterns.Observe(Position{X: x, Y: y})
	e.eventLog.EmitSimple(EventTypeInteraction, e.currentBuild(), source,
		InteractionPayload{X: x, Y: y})
}

// currentBuild reads the build counter without the main lock.
func (e *Engine) currentBuild() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buildCount
}

// BuildLayout runs one complete layout pass and returns the run metrics.
//
// The pipeline is synchronous and bounded: collision resolution is capped by
// iterations, not wall clock, so a build always terminates. Recoverable
// conditions (missing parents, iteration cap, advisor noise) degrade the
// result but never fail the build; only invalid input returns an error.
func (e *Engine) BuildLayout() (LayoutMetrics, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	e.buildCount++

	work := e.workingSet()

	// Advance RNG seed deterministically per build for replayability
	e.rngSeed = e.rng.Int63()

	// 1. Hierarchy: resolve parents, assign depth, place roots and orbits
	rerooted := ResolveHierarchy(work)
	PlaceRoots(Roots(work), e.space)
	PlaceOrbits(work, e.space)

	// 2. Density classification on the placed set
	density, err := e.classifier.Classify(work)
	if err != nil {
		return LayoutMetrics{}, err
	}

	e.eventLog.EmitSimple(EventTypeBuildStarted, e.buildCount, "engine",
		BuildStartedPayload{
			RNGSeed:     e.rngSeed,
			EntityCount: len(work),
			Density:     density.String(),
		})

	// 3. Strategy selection, with optional advisory override
	strategy, err := e.registry.For(density)
	if err != nil {
		return LayoutMetrics{}, err
	}
	strategy, override := e.applyAdvisorOverride(strategy, len(work))

	e.eventLog.EmitSimple(EventTypeStrategySelected, e.buildCount, "engine",
		StrategySelectedPayload{
			Strategy: strategy.Name(),
			Density:  density.String(),
			Override: override,
		})

	// 4. Layout
	if err := strategy.ComputePositions(work, e.space); err != nil {
		return LayoutMetrics{}, fmt.Errorf("engine: %s layout failed: %w", strategy.Name(), err)
	}

	// 5. Collision resolution (best effort, bounded)
	result := e.resolver.Resolve(work)
	if result.CapHit {
		e.eventLog.EmitSimple(EventTypeCollisionCap, e.buildCount, "engine",
			CollisionCapPayload{Iterations: result.Iterations, Remaining: len(e.resolver.Detect(work))})
	}

	// 6. Rebalance around usage hotspots, then settle any overlaps the
	// rebalance introduced
	if e.rebalanceAroundHotspots(work) {
		settle := e.resolver.Resolve(work)
		result.Resolved += settle.Resolved
		result.CapHit = result.CapHit || settle.CapHit
	}

	// 7. Report
	calcTime := time.Since(start)
	score := e.advisor.RecordCalculation(strategy.Name(), len(work), calcTime, result.Resolved)

	metrics := LayoutMetrics{
		EntityCount:        len(work),
		CalculationTime:    calcTime,
		CollisionsResolved: result.Resolved,
		PerformanceScore:   score,
		StrategyUsed:       strategy.Name(),
		Density:            density.String(),
		IterationCapHit:    result.CapHit,
		Rerooted:           rerooted,
	}
	e.lastMetrics = metrics

	// Write results back into the canonical map
	for _, w := range work {
		if canonical, ok := e.entities[w.ID]; ok {
			*canonical = *w
		}
	}

	e.produceSnapshot(work, metrics)
	e.emitPrediction()

	e.eventLog.EmitSimple(EventTypeBuildCompleted, e.buildCount, "engine",
		BuildCompletedPayload{
			Strategy:           metrics.StrategyUsed,
			EntityCount:        metrics.EntityCount,
			CalculationTimeMs:  float64(calcTime.Microseconds()) / 1000,
			CollisionsResolved: metrics.CollisionsResolved,
			PerformanceScore:   metrics.PerformanceScore,
			IterationCapHit:    metrics.IterationCapHit,
		})

	log.Printf("🌌 Layout built: %d entities, %s via %s, %d collision(s) resolved in %s",
		metrics.EntityCount, metrics.Density, metrics.StrategyUsed,
		metrics.CollisionsResolved, calcTime.Round(time.Microsecond))

	return metrics, nil
}

// applyAdvisorOverride consults the analytics advisor for a better strategy.
// Advisory only: any miss falls back to the density-derived choice, and a
// changed recommendation fires the optional callback.
func (e *Engine) applyAdvisorOverride(current LayoutStrategy, entityCount int) (LayoutStrategy, bool) {
	recommended := e.advisor.OptimalStrategy(entityCount)
	if recommended == "" || recommended == current.Name() {
		return current, false
	}

	s, ok := e.registry.ByName(recommended)
	if !ok {
		log.Printf("⚠️ Advisor recommended unregistered strategy %q, keeping %s", recommended, current.Name())
		return current, false
	}

	if recommended != e.lastRecommend {
		e.lastRecommend = recommended
		e.eventLog.EmitSimple(EventTypeRecommendation, e.buildCount, "advisor",
			RecommendationPayload{EntityCount: entityCount, Strategy: recommended})
		if e.OnRecommendationChanged != nil {
			go e.OnRecommendationChanged(recommended)
		}
	}

	log.Printf("📊 Advisor override: %s -> %s for %d entities", current.Name(), recommended, entityCount)
	return s, true
}

// hotspotAttraction tunes the rebalance pull. Entities move a few percent
// toward the nearest hotspot, scaled down as their priority grows so
// important bodies hold their strategic positions.
const (
	hotspotTopN      = 3
	hotspotRange     = 400.0
	hotspotPullMax   = 0.08
	hotspotPriorityN = 15.0
)

// rebalanceAroundHotspots pulls entities gently toward nearby interaction
// hotspots. Returns true when any entity moved.
func (e *Engine) rebalanceAroundHotspots(work []*Entity) bool {
	spots := e.hotspots.Top(hotspotTopN)
	if len(spots) == 0 {
		return false
	}

	moved := false
	for _, ent := range work {
		// Nearest hotspot within range
		var nearest *Hotspot
		nearestDist := hotspotRange
		for i := range spots {
			d := Distance(ent.Position, Position{X: spots[i].X, Y: spots[i].Y})
			if d < nearestDist {
				nearestDist = d
				nearest = &spots[i]
			}
		}
		if nearest == nil {
			continue
		}

		pull := hotspotPullMax * math.Max(0, 1-ent.Priority/hotspotPriorityN)
		if pull <= 0 {
			continue
		}
		ent.Position = LerpPos(ent.Position, Position{X: nearest.X, Y: nearest.Y}, pull)
		clampToSpace(ent, e.space)
		moved = true
	}
	return moved
}

// emitPrediction asks the pattern detector for a next likely position.
// Purely advisory; failures and unknowns are silent.
func (e *Engine) emitPrediction() {
	next, ok := e.patterns.PredictNext()
	if !ok {
		return
	}
	pattern := e.patterns.Detect()
	e.eventLog.EmitSimple(EventTypePrediction, e.buildCount, "patterns",
		PredictionPayload{Pattern: string(pattern), X: next.X, Y: next.Y})
	if e.OnPrediction != nil {
		go e.OnPrediction(pattern, next)
	}
}

// produceSnapshot publishes an immutable snapshot for lock-free readers.
func (e *Engine) produceSnapshot(work []*Entity, metrics LayoutMetrics) {
	snap := e.snapshotPool.AcquireWrite()
	snap.BuildNum = e.buildCount
	snap.RNGSeed = e.rngSeed
	snap.Metrics = metrics

	for _, ent := range work {
		if len(snap.Entities) >= MaxSnapshotEntities {
			break
		}
		snap.Entities = append(snap.Entities, snapshotEntity(ent))
	}

	e.snapshotPool.PublishWrite()
}

// GetSnapshot returns the latest immutable layout snapshot for lock-free
// reads. This is the preferred access path for the API and renderers.
func (e *Engine) GetSnapshot() *LayoutSnapshot {
	return e.snapshotPool.AcquireRead()
}

// Metrics returns the last build's metrics.
func (e *Engine) Metrics() LayoutMetrics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastMetrics
}

// Space returns the engine's canvas dimensions.
func (e *Engine) Space() Space {
	return e.space
}

// Advisor exposes the analytics advisor for reporting endpoints.
func (e *Engine) Advisor() *Advisor {
	return e.advisor
}

// Hotspots exposes the hotspot tracker.
func (e *Engine) Hotspots() *HotspotTracker {
	return e.hotspots
}

// Registry exposes the strategy registry so callers can swap strategies at
// runtime.
func (e *Engine) Registry() *StrategyRegistry {
	return e.registry
}

// StartEventLog initializes the layout event logging system.
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Start(filePath)
}

// StopEventLog gracefully stops the event logging system.
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// GetEventLogStats returns event log statistics for monitoring.
func (e *Engine) GetEventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}
