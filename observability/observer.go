// Package observability reports what a pipeline run does. The pipeline
// engine emits an Event at each run, stage, provider, dispatch, cache, and
// store step; an Observer decides where those events go (slog, OTel,
// Prometheus, or an in-memory Recorder for tests).
//
// Levels reuse OpenTelemetry severity numbers, so an event's Level can be
// exported as a log record severity without translation.
package observability

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

// Level is an event severity on the OTel SeverityNumber scale.
type Level int

const (
	LevelVerbose Level = 5  // per-stage and per-store detail
	LevelInfo    Level = 9  // run boundaries and dispatch decisions
	LevelWarning Level = 13
	LevelError   Level = 17 // failed runs
)

type severity struct {
	max  Level
	text string
	slog slog.Level
}

// severities partitions the OTel scale; anything above the last band is FATAL.
var severities = []severity{
	{max: 4, text: "TRACE", slog: slog.LevelDebug},
	{max: 8, text: "DEBUG", slog: slog.LevelDebug},
	{max: 12, text: "INFO", slog: slog.LevelInfo},
	{max: 16, text: "WARN", slog: slog.LevelWarn},
	{max: 20, text: "ERROR", slog: slog.LevelError},
}

func (l Level) severity() severity {
	for _, s := range severities {
		if l <= s.max {
			return s
		}
	}
	return severity{text: "FATAL", slog: slog.LevelError}
}

func (l Level) String() string {
	return l.severity().text
}

// SlogLevel returns the slog level a SlogObserver logs this level at.
func (l Level) SlogLevel() slog.Level {
	return l.severity().slog
}

// EventType names an event, such as "pipeline.start" or "cache.hit".
type EventType string

// Event is one occurrence during pipeline construction or a run. Source is
// the emitting package; Data holds event-specific fields, with "run_id" set
// on every event emitted inside a run.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Keys returns the Data keys in sorted order.
func (e Event) Keys() []string {
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Duration returns the elapsed time carried by completion events.
func (e Event) Duration() (time.Duration, bool) {
	d, ok := e.Data["duration"].(time.Duration)
	return d, ok
}

// RunID returns the run the event belongs to, or "" outside a run.
func (e Event) RunID() string {
	id, _ := e.Data["run_id"].(string)
	return id
}

// Observer receives events. Batch runs share one observer across
// goroutines, so implementations must be safe for concurrent use.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// Emit timestamps an event and hands it to obs. A nil obs drops it.
func Emit(ctx context.Context, obs Observer, typ EventType, level Level, source string, data map[string]any) {
	if obs == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	obs.OnEvent(ctx, Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	})
}
