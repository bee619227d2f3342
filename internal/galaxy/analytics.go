package galaxy

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"galaxy-forge/internal/config"
)

// AnalyticsRecord is one layout run's performance sample.
type AnalyticsRecord struct {
	Timestamp          time.Time     `json:"timestamp"`
	Strategy           string        `json:"strategy"`
	EntityCount        int           `json:"entityCount"`
	CalculationTime    time.Duration `json:"calculationTime"`
	CollisionsResolved int           `json:"collisionsResolved"`
	PerformanceScore   float64       `json:"performanceScore"`
}

// Advisor keeps a bounded performance history per (strategy, entityCount)
// and recommends a strategy override for a given entity count.
//
// Advisory only: it must never block or fail the layout pipeline. Callers
// treat an empty recommendation as "keep the density-derived strategy".
type Advisor struct {
	mu      sync.Mutex
	cfg     config.AnalyticsConfig
	history map[string][]AnalyticsRecord // key: "strategy:entityCount"
}

// NewAdvisor creates an empty advisor.
func NewAdvisor(cfg config.AnalyticsConfig) *Advisor {
	return &Advisor{
		cfg:     cfg,
		history: make(map[string][]AnalyticsRecord),
	}
}

// historyKey builds the ring-buffer key for a (strategy, count) pair.
func historyKey(strategy string, entityCount int) string {
	return strategy + ":" + strconv.Itoa(entityCount)
}

// parseHistoryKey splits a ring-buffer key back into its parts.
func parseHistoryKey(key string) (strategy string, entityCount int, ok bool) {
	idx := strings.LastIndexByte(key, ':')
	if idx < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return "", 0, false
	}
	return key[:idx], n, true
}

// RecordCalculation appends a run to the bounded history and returns its
// performance score. The score rewards handling more entities and resolving
// more collisions, and penalizes wall-clock time.
func (a *Advisor) RecordCalculation(strategy string, entityCount int, dur time.Duration, collisions int) float64 {
	ms := float64(dur.Milliseconds())
	score := 1000 - ms/10 + math.Log(float64(entityCount)+1)*10 + float64(collisions)*5
	if score < 0 {
		score = 0
	}

	rec := AnalyticsRecord{
		Timestamp:          time.Now(),
		Strategy:           strategy,
		EntityCount:        entityCount,
		CalculationTime:    dur,
		CollisionsResolved: collisions,
		PerformanceScore:   score,
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := historyKey(strategy, entityCount)
	buf := append(a.history[key], rec)
	// Ring-buffer semantics: evict oldest past the cap
	if len(buf) > a.cfg.HistoryCap {
		buf = buf[len(buf)-a.cfg.HistoryCap:]
	}
	a.history[key] = buf

	return score
}

// OptimalStrategy returns the strategy with the best average score among
// history keys whose entity count is within the configured window of n.
// Returns "" when no history matches.
func (a *Advisor) OptimalStrategy(n int) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	sums := make(map[string]float64)
	counts := make(map[string]int)

	for key, records := range a.history {
		strategy, count, ok := parseHistoryKey(key)
		if !ok {
			continue
		}
		delta := count - n
		if delta < -a.cfg.CountWindow || delta > a.cfg.CountWindow {
			continue
		}
		for _, rec := range records {
			sums[strategy] += rec.PerformanceScore
			counts[strategy]++
		}
	}

	best := ""
	bestAvg := math.Inf(-1)
	// Deterministic iteration for stable recommendations on score ties
	names := make([]string, 0, len(sums))
	for name := range sums {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		avg := sums[name] / float64(counts[name])
		if avg > bestAvg {
			bestAvg = avg
			best = name
		}
	}
	return best
}

// Summary aggregates the advisor's history per strategy for reporting.
func (a *Advisor) Summary() map[string]StrategySummary {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]StrategySummary)
	for key, records := range a.history {
		strategy, _, ok := parseHistoryKey(key)
		if !ok {
			continue
		}
		s := out[strategy]
		for _, rec := range records {
			s.Runs++
			s.TotalScore += rec.PerformanceScore
			s.TotalCollisions += rec.CollisionsResolved
			s.TotalTime += rec.CalculationTime
		}
		out[strategy] = s
	}
	for strategy, s := range out {
		if s.Runs > 0 {
			s.AvgScore = s.TotalScore / float64(s.Runs)
		}
		out[strategy] = s
	}
	return out
}

// StrategySummary is the aggregate view of one strategy's history.
type StrategySummary struct {
	Runs            int           `json:"runs"`
	AvgScore        float64       `json:"avgScore"`
	TotalScore      float64       `json:"-"`
	TotalCollisions int           `json:"totalCollisions"`
	TotalTime       time.Duration `json:"totalTime"`
}

// String implements fmt.Stringer for log lines.
func (s StrategySummary) String() string {
	return fmt.Sprintf("%d run(s), avg score %.1f, %d collisions resolved", s.Runs, s.AvgScore, s.TotalCollisions)
}
