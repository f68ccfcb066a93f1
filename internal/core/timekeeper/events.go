package timekeeper

import "time"

// Mode represents the current phase of the work/break cycle.
type Mode string

const (
	ModeIdle      Mode = "idle"
	ModeWork      Mode = "work"
	ModeWorkDone  Mode = "work_done"
	ModeBreak     Mode = "break"
	ModeBreakDone Mode = "break_done"
)

// EventType defines the type of TimeKeeper event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventProgress    EventType = "progress"
)

// Event represents a TimeKeeper update for observers.
type Event struct {
	Type        EventType
	Mode        Mode
	Remaining   time.Duration
	WorkMinutes int
	At          time.Time
}
