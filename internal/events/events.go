package events

import (
	"fmt"
	"sync"
)

// Level indicates the severity/type of an event.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Event is one progress update.
type Event struct {
	Message string
	Level   Level

	// Dir and File locate the event when it concerns a specific
	// directory or file. Either may be empty.
	Dir  string
	File string

	// Err is set for warning and error events caused by an error value.
	Err error
}

// Sink receives events. Implementations must be safe for concurrent use;
// the converter emits from several goroutines.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// OrDiscard returns s, or Discard when s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// Multi fans events out to several sinks in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(e Event) {
		for _, s := range sinks {
			if s != nil {
				s.Emit(e)
			}
		}
	})
}

// Collector records events in memory.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

// Emit records e.
func (c *Collector) Emit(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

// Events returns a copy of the recorded events.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Count returns how many recorded events have the given level.
func (c *Collector) Count(level Level) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Emitter is a small helper embedded by components that emit events.
type Emitter struct {
	Sink Sink
}

// Emitf emits a formatted message at level.
func (em Emitter) Emitf(level Level, format string, args ...any) {
	OrDiscard(em.Sink).Emit(Event{Message: fmt.Sprintf(format, args...), Level: level})
}

// Emit forwards e.
func (em Emitter) Emit(e Event) {
	OrDiscard(em.Sink).Emit(e)
}
