package events

import (
	"fmt"
	"math"
)

// Kind classifies a pointer interaction record
type Kind string

const (
	KindClick Kind = "click"
	KindDown  Kind = "down"
	KindUp    Kind = "up"
	KindMove  Kind = "move"
)

// PointerEvent is a single recorded interaction. Timestamp counts seconds
// from the start of the recording; X and Y are normalized to [0,1] in
// source-frame space.
type PointerEvent struct {
	Timestamp float64 `json:"timestamp"`
	Kind      Kind    `json:"kind"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// Metadata describes the recording the events belong to
type Metadata struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	FPS    float64 `json:"fps,omitempty"`
}

// Log is the full ordered event sequence for one recording.
// It is read-only input for the path planner.
type Log struct {
	Metadata Metadata       `json:"metadata"`
	Events   []PointerEvent `json:"events"`
}

// ValidationError reports the first offending event in a malformed log
type ValidationError struct {
	Index  int
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event %d: %s=%v (%s)", e.Index, e.Field, e.Value, e.Reason)
}

// Validate checks that timestamps are finite, non-negative and strictly
// increasing and that positions lie in [0,1]. The planner refuses to work
// on a log that fails here; events are never silently reordered.
func (l *Log) Validate() error {
	prev := math.Inf(-1)
	for i, ev := range l.Events {
		if math.IsNaN(ev.Timestamp) || math.IsInf(ev.Timestamp, 0) {
			return &ValidationError{Index: i, Field: "timestamp", Value: ev.Timestamp, Reason: "not finite"}
		}
		if ev.Timestamp < 0 {
			return &ValidationError{Index: i, Field: "timestamp", Value: ev.Timestamp, Reason: "negative"}
		}
		if ev.Timestamp <= prev {
			return &ValidationError{Index: i, Field: "timestamp", Value: ev.Timestamp, Reason: "not increasing"}
		}
		switch ev.Kind {
		case KindClick, KindDown, KindUp, KindMove:
		default:
			return &ValidationError{Index: i, Field: "kind", Value: 0, Reason: fmt.Sprintf("unknown kind %q", ev.Kind)}
		}
		if badCoord(ev.X) {
			return &ValidationError{Index: i, Field: "x", Value: ev.X, Reason: "outside [0,1]"}
		}
		if badCoord(ev.Y) {
			return &ValidationError{Index: i, Field: "y", Value: ev.Y, Reason: "outside [0,1]"}
		}
		prev = ev.Timestamp
	}
	return nil
}

// Duration returns the timestamp of the last event, or 0 for an empty log
func (l *Log) Duration() float64 {
	if len(l.Events) == 0 {
		return 0
	}
	return l.Events[len(l.Events)-1].Timestamp
}

func badCoord(v float64) bool {
	return math.IsNaN(v) || v < 0 || v > 1
}
