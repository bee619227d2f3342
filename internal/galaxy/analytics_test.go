package galaxy

import (
	"testing"
	"time"

	"galaxy-forge/internal/config"
)

// TestRecordCalculationScore verifies the score rewards entity count and
// collisions and penalizes wall-clock time.
func TestRecordCalculationScore(t *testing.T) {
	a := NewAdvisor(config.DefaultAnalytics())

	fast := a.RecordCalculation("simple", 50, 5*time.Millisecond, 3)
	slow := a.RecordCalculation("simple", 50, 500*time.Millisecond, 3)
	if slow >= fast {
		t.Errorf("slower run scored %.1f >= faster run %.1f", slow, fast)
	}

	few := a.RecordCalculation("hexpack", 10, 5*time.Millisecond, 0)
	many := a.RecordCalculation("hexpack", 500, 5*time.Millisecond, 0)
	if many <= few {
		t.Errorf("larger entity count scored %.1f <= smaller %.1f", many, few)
	}
}

// TestRecordCalculationFloor verifies scores never go negative.
func TestRecordCalculationFloor(t *testing.T) {
	a := NewAdvisor(config.DefaultAnalytics())
	score := a.RecordCalculation("simple", 1, time.Hour, 0)
	if score < 0 {
		t.Errorf("score should be floored at 0, got %.1f", score)
	}
}

// TestOptimalStrategyWindow verifies the recommendation only considers
// history within the entity-count window.
func TestOptimalStrategyWindow(t *testing.T) {
	cfg := config.DefaultAnalytics() // window of 10
	a := NewAdvisor(cfg)

	// "clustered" has great history at count 100, "simple" poor history
	a.RecordCalculation("clustered", 100, 1*time.Millisecond, 10)
	a.RecordCalculation("simple", 100, 900*time.Millisecond, 0)

	if got := a.OptimalStrategy(105); got != "clustered" {
		t.Errorf("OptimalStrategy(105) = %q, want clustered (within window)", got)
	}
	if got := a.OptimalStrategy(150); got != "" {
		t.Errorf("OptimalStrategy(150) = %q, want empty (outside window)", got)
	}
}

// TestOptimalStrategyEmptyHistory verifies an empty advisor recommends
// nothing.
func TestOptimalStrategyEmptyHistory(t *testing.T) {
	a := NewAdvisor(config.DefaultAnalytics())
	if got := a.OptimalStrategy(42); got != "" {
		t.Errorf("empty advisor recommended %q", got)
	}
}

// TestHistoryCap verifies ring-buffer eviction keeps the history bounded.
func TestHistoryCap(t *testing.T) {
	cfg := config.AnalyticsConfig{HistoryCap: 5, CountWindow: 10}
	a := NewAdvisor(cfg)

	for i := 0; i < 50; i++ {
		a.RecordCalculation("simple", 30, time.Millisecond, 0)
	}

	summary := a.Summary()
	s, ok := summary["simple"]
	if !ok {
		t.Fatal("summary missing the simple strategy")
	}
	if s.Runs != 5 {
		t.Errorf("history should be capped at 5 records, summary reports %d runs", s.Runs)
	}
}

// TestSummaryAggregation verifies the per-strategy rollup.
func TestSummaryAggregation(t *testing.T) {
	a := NewAdvisor(config.DefaultAnalytics())
	a.RecordCalculation("hexpack", 120, 2*time.Millisecond, 4)
	a.RecordCalculation("hexpack", 130, 3*time.Millisecond, 6)
	a.RecordCalculation("simple", 10, 1*time.Millisecond, 0)

	summary := a.Summary()
	if got := summary["hexpack"].Runs; got != 2 {
		t.Errorf("hexpack runs = %d, want 2", got)
	}
	if got := summary["hexpack"].TotalCollisions; got != 10 {
		t.Errorf("hexpack collisions = %d, want 10", got)
	}
	if got := summary["simple"].Runs; got != 1 {
		t.Errorf("simple runs = %d, want 1", got)
	}
	if summary["hexpack"].AvgScore <= 0 {
		t.Error("hexpack average score should be positive")
	}
}

// TestParseHistoryKey verifies round-tripping keys, including strategy names
// containing the separator.
func TestParseHistoryKey(t *testing.T) {
	tests := []struct {
		strategy string
		count    int
	}{
		{"simple", 10},
		{"clustered", 0},
		{"custom:variant", 250},
	}
	for _, tt := range tests {
		key := historyKey(tt.strategy, tt.count)
		strategy, count, ok := parseHistoryKey(key)
		if !ok || strategy != tt.strategy || count != tt.count {
			t.Errorf("round trip of (%q, %d) gave (%q, %d, %v)", tt.strategy, tt.count, strategy, count, ok)
		}
	}
}
