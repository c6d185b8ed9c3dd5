package anim

import (
	"fmt"
	"time"
)

// EventKind identifies a transient effect.
type EventKind int

const (
	Ripple EventKind = iota
	Heartbeat
)

func (k EventKind) String() string {
	switch k {
	case Ripple:
		return "ripple"
	case Heartbeat:
		return "heartbeat"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// ParseEventKind maps the names used by scene files and UI hooks.
func ParseEventKind(s string) (EventKind, error) {
	switch s {
	case "ripple":
		return Ripple, nil
	case "heartbeat":
		return Heartbeat, nil
	}
	return 0, fmt.Errorf("anim: unknown event kind %q", s)
}

// Event is a point-anchored, time-boxed effect.
type Event struct {
	X, Y     float64
	Start    time.Time
	Duration time.Duration
	Kind     EventKind
}

// Progress is the clamped age of the event in [0,1].
func (e Event) Progress(now time.Time) float64 {
	return Progress(now.Sub(e.Start), e.Duration)
}

// Expired reports whether the event is past its duration.
func (e Event) Expired(now time.Time) bool {
	return now.Sub(e.Start) > e.Duration
}

// Queue is the transient event bag owned by a single layer.
// It is only touched from the redraw goroutine.
type Queue struct {
	events []Event
}

func (q *Queue) Push(e Event) {
	q.events = append(q.events, e)
}

// Active drops expired events and returns the survivors. The returned slice
// aliases the queue and is valid until the next Push or Active call.
func (q *Queue) Active(now time.Time) []Event {
	kept := q.events[:0]
	for _, e := range q.events {
		if !e.Expired(now) {
			kept = append(kept, e)
		}
	}
	// release references held past the new length
	for i := len(kept); i < len(q.events); i++ {
		q.events[i] = Event{}
	}
	q.events = kept
	return q.events
}

func (q *Queue) Clear() {
	q.events = nil
}

func (q *Queue) Len() int { return len(q.events) }
