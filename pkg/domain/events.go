package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeVisit EventType = "node_visit"
	EventEvaluated EventType = "evaluated"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Tree      string    `json:"tree"`
}

// NodeEvent is emitted for every node visited during evaluation.
type NodeEvent struct {
	EventBase
	Input string    `json:"input"`
	Kind  InputKind `json:"kind"`
	Depth int       `json:"depth"`
	Key   string    `json:"key,omitempty"`
}

// EvaluationEvent is emitted once per evaluation, successful or not.
type EvaluationEvent struct {
	EventBase
	Duration time.Duration `json:"duration"`
	Depth    int           `json:"depth"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeVisit func(context.Context, *NodeEvent)
	OnEvaluated func(context.Context, *EvaluationEvent)
}
