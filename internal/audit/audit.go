// Package audit records who changed what in the academic state.
//
// Recorders are injected into services; there is no process-wide audit log.
// A recorder never fails the operation it describes: sinks log their own
// delivery errors.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionAccess Action = "access"
)

// Event is one audit trail entry.
type Event struct {
	Action   Action            `json:"action"`
	Entity   string            `json:"entity"`
	EntityID string            `json:"entityId"`
	Actor    string            `json:"actor"`
	Details  map[string]string `json:"details,omitempty"`
	At       time.Time         `json:"at"`
}

// Recorder accepts audit events.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Event) {}

// Nop returns a recorder that drops every event.
func Nop() Recorder { return nopRecorder{} }

// LogRecorder writes events to a structured logger.
type LogRecorder struct {
	logger *slog.Logger
}

func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger.With(slog.String("component", "audit"))}
}

func (r *LogRecorder) Record(ctx context.Context, event Event) {
	attrs := []any{
		"action", event.Action,
		"entity", event.Entity,
		"entity_id", event.EntityID,
		"actor", event.Actor,
	}
	for k, v := range event.Details {
		attrs = append(attrs, k, v)
	}
	level := slog.LevelInfo
	if event.Action == ActionAccess {
		level = slog.LevelDebug
	}
	r.logger.Log(ctx, level, "audit event", attrs...)
}

type multiRecorder []Recorder

func (m multiRecorder) Record(ctx context.Context, event Event) {
	for _, r := range m {
		r.Record(ctx, event)
	}
}

// Multi fans events out to every non-nil recorder.
func Multi(recorders ...Recorder) Recorder {
	out := make(multiRecorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Memory keeps events in order; used by tests and the statistics view.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Record(_ context.Context, event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events returns a copy of the recorded events.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

type contextKey string

const actorKey contextKey = "actor"

// WithActor tags ctx with the natural key of the logged-in user.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom returns the actor set by WithActor, or "system".
func ActorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey).(string); ok && actor != "" {
		return actor
	}
	return "system"
}

// Stamp fills the event time when the caller left it empty.
func Stamp(event Event) Event {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	return event
}
