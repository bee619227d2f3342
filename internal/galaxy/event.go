package galaxy

import (
	"encoding/json"
	"time"
)

// EventType enum for layout event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeBuildStarted
	EventTypeStrategySelected
	EventTypeCollisionCap
	EventTypeRecommendation // Advisor suggested a strategy override
	EventTypePrediction     // Pattern detector predicted a next position
	EventTypeInteraction
	EventTypeBuildCompleted
)

// EventVersion for backwards compatibility when replaying logs
const EventVersion uint8 = 1

// Event is the core structure written to the layout event log.
type Event struct {
	Version   uint8     `json:"version"`   // Schema version
	Type      EventType `json:"type"`      // Event type
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence
	BuildNum  uint64    `json:"buildNum"`  // Layout build this occurred in
	Source    string    `json:"source"`    // Originator (for rate limiting)
	Payload   []byte    `json:"payload"`   // JSON-encoded payload
}

// String returns the human-readable event type.
func (t EventType) String() string {
	switch t {
	case EventTypeBuildStarted:
		return "build_started"
	case EventTypeStrategySelected:
		return "strategy_selected"
	case EventTypeCollisionCap:
		return "collision_cap"
	case EventTypeRecommendation:
		return "recommendation"
	case EventTypePrediction:
		return "prediction"
	case EventTypeInteraction:
		return "interaction"
	case EventTypeBuildCompleted:
		return "build_completed"
	default:
		return "unknown"
	}
}

// Typed payloads for different event types

// BuildStartedPayload records the inputs of one layout run.
type BuildStartedPayload struct {
	RNGSeed     int64  `json:"rngSeed"`
	EntityCount int    `json:"entityCount"`
	Density     string `json:"density"`
}

// StrategySelectedPayload records which strategy ran and why.
type StrategySelectedPayload struct {
	Strategy string `json:"strategy"`
	Density  string `json:"density"`
	Override bool   `json:"override"` // True when the advisor overrode the density choice
}

// CollisionCapPayload records an iteration cap hit (soft failure).
type CollisionCapPayload struct {
	Iterations int `json:"iterations"`
	Remaining  int `json:"remaining"`
}

// RecommendationPayload records an advisory strategy recommendation.
type RecommendationPayload struct {
	EntityCount int    `json:"entityCount"`
	Strategy    string `json:"strategy"`
}

// PredictionPayload records a predicted next position.
type PredictionPayload struct {
	Pattern string  `json:"pattern"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// InteractionPayload records one user interaction point.
type InteractionPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BuildCompletedPayload records the outcome of one layout run.
type BuildCompletedPayload struct {
	Strategy           string  `json:"strategy"`
	EntityCount        int     `json:"entityCount"`
	CalculationTimeMs  float64 `json:"calculationTimeMs"`
	CollisionsResolved int     `json:"collisionsResolved"`
	PerformanceScore   float64 `json:"performanceScore"`
	IterationCapHit    bool    `json:"iterationCapHit"`
}

// EncodePayload marshals a payload to JSON bytes.
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType EventType, buildNum uint64, source string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		BuildNum:  buildNum,
		Source:    source,
		Payload:   EncodePayload(payload),
	}
}
