package model

import "time"

// Limits for the user-configurable work interval.
const (
	MinWorkMinutes = 0
	MaxWorkMinutes = 59
)

// CountdownConfig contains runtime settings for the TimeKeeper state machine.
type CountdownConfig struct {
	WorkMinutes   int
	BreakDuration time.Duration
}

// DefaultConfig returns the out-of-the-box 20-20-20 schedule.
func DefaultConfig() CountdownConfig {
	return CountdownConfig{
		WorkMinutes:   20,
		BreakDuration: 23 * time.Second,
	}
}

// ClampWorkMinutes forces a minutes value into the supported range.
func ClampWorkMinutes(minutes int) int {
	if minutes < MinWorkMinutes {
		return MinWorkMinutes
	}
	if minutes > MaxWorkMinutes {
		return MaxWorkMinutes
	}
	return minutes
}
