// Package timekeeper contains the countdown state machine that alternates
// work intervals with fixed rest breaks and drives the audio cues at each
// transition.
package timekeeper

import (
	"sync"
	"time"

	"twentytwenty/internal/core/model"
)

// CuePlayer is the audio collaborator injected into the TimeKeeper. The
// machine never depends on a concrete audio backend; playback failures are
// handled (and swallowed) on the other side of this interface.
type CuePlayer interface {
	// PlayWorkEnd starts the looping work-end cue.
	PlayWorkEnd()
	// PlayBreakEnd plays the break-end cue a fixed number of times and then
	// invokes onDone, unless the cue is stopped first.
	PlayBreakEnd(onDone func())
	// StopAll silences any active cue. Idempotent.
	StopAll()
}

// Config contains runtime options for TimeKeeper.
type Config struct {
	// TickInterval is the cadence of expiration checks and progress events.
	TickInterval time.Duration
	// Clock overrides the time source, for tests. Defaults to time.Now,
	// whose values carry a monotonic reading, so countdown arithmetic is
	// immune to wall-clock adjustments.
	Clock func() time.Time
}

// Snapshot is a coherent view of the machine for rendering.
type Snapshot struct {
	Mode        Mode
	Remaining   time.Duration
	WorkMinutes int
}

// TimeKeeper is a state machine cycling idle -> work -> work_done ->
// break -> break_done -> work. Remaining time is always recomputed from an
// absolute deadline, never accumulated per tick, so a suspended process
// shows up as immediate expiration rather than a frozen countdown.
type TimeKeeper struct {
	mu        sync.Mutex
	config    model.CountdownConfig
	options   Config
	mode      Mode
	target    time.Time
	hasTarget bool
	cues      CuePlayer
	events    []chan Event
	stopCh    chan struct{}
	running   bool
}

// New creates a TimeKeeper with the provided configuration.
func New(config model.CountdownConfig, options Config) *TimeKeeper {
	if options.TickInterval <= 0 {
		options.TickInterval = 200 * time.Millisecond
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	if config.BreakDuration <= 0 {
		config.BreakDuration = model.DefaultConfig().BreakDuration
	}
	config.WorkMinutes = model.ClampWorkMinutes(config.WorkMinutes)

	return &TimeKeeper{
		config:  config,
		options: options,
		mode:    ModeIdle,
		stopCh:  make(chan struct{}),
	}
}

// SetCuePlayer injects the audio cue player.
func (keeper *TimeKeeper) SetCuePlayer(cues CuePlayer) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.cues = cues
}

// Subscribe registers a new observer channel.
func (keeper *TimeKeeper) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	keeper.mu.Lock()
	keeper.events = append(keeper.events, ch)
	keeper.mu.Unlock()
	return ch
}

// Start launches the ticking loop.
func (keeper *TimeKeeper) Start() {
	keeper.mu.Lock()
	if keeper.running {
		keeper.mu.Unlock()
		return
	}
	keeper.running = true
	keeper.mu.Unlock()

	keeper.emitStateChange()
	go keeper.run()
}

// Stop terminates the ticking loop, silences audio and closes observers.
func (keeper *TimeKeeper) Stop() {
	keeper.mu.Lock()
	if !keeper.running {
		keeper.mu.Unlock()
		return
	}
	close(keeper.stopCh)
	keeper.running = false
	events := keeper.events
	keeper.events = nil
	keeper.mu.Unlock()

	keeper.stopCues()
	for _, ch := range events {
		close(ch)
	}
}

// StartCountdown begins a fresh work interval from idle, or re-applies the
// configured minutes while already working. Replaces any existing deadline;
// deadlines never stack. A zero minutes value makes this a no-op.
func (keeper *TimeKeeper) StartCountdown() {
	now := keeper.now()
	keeper.mu.Lock()
	if keeper.mode != ModeIdle && keeper.mode != ModeWork {
		keeper.mu.Unlock()
		return
	}
	if keeper.config.WorkMinutes <= 0 {
		keeper.mu.Unlock()
		return
	}
	keeper.enterWorkLocked(now)
	keeper.mu.Unlock()

	keeper.stopCues()
	keeper.emitStateChange()
}

// Continue moves from work_done into the fixed rest break.
func (keeper *TimeKeeper) Continue() {
	now := keeper.now()
	keeper.mu.Lock()
	if keeper.mode != ModeWorkDone {
		keeper.mu.Unlock()
		return
	}
	keeper.mode = ModeBreak
	keeper.target = now.Add(keeper.config.BreakDuration)
	keeper.hasTarget = true
	keeper.mu.Unlock()

	keeper.stopCues()
	keeper.emitStateChange()
}

// Restart begins the next work interval from break_done. It serves both the
// Restart button and the break-end cue completion callback; whichever comes
// second finds the mode already changed and does nothing.
func (keeper *TimeKeeper) Restart() {
	now := keeper.now()
	keeper.mu.Lock()
	if keeper.mode != ModeBreakDone {
		keeper.mu.Unlock()
		return
	}
	keeper.enterWorkLocked(now)
	keeper.mu.Unlock()

	keeper.stopCues()
	keeper.emitStateChange()
}

// Reset returns to idle from any mode, silencing audio and clearing the
// deadline. The displayed remaining time reverts to the configured minutes.
func (keeper *TimeKeeper) Reset() {
	keeper.mu.Lock()
	keeper.mode = ModeIdle
	keeper.hasTarget = false
	keeper.target = time.Time{}
	keeper.mu.Unlock()

	keeper.stopCues()
	keeper.emitStateChange()
}

// SetWorkMinutes updates the configured work interval, clamped to the
// supported range. Takes effect on the next StartCountdown or Restart.
func (keeper *TimeKeeper) SetWorkMinutes(minutes int) {
	keeper.mu.Lock()
	keeper.config.WorkMinutes = model.ClampWorkMinutes(minutes)
	keeper.mu.Unlock()

	keeper.emitProgress(keeper.now())
}

// WorkMinutes returns the configured work interval in minutes.
func (keeper *TimeKeeper) WorkMinutes() int {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.config.WorkMinutes
}

// Mode returns the current mode.
func (keeper *TimeKeeper) Mode() Mode {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.mode
}

// Remaining returns the displayed countdown value for the current mode.
func (keeper *TimeKeeper) Remaining() time.Duration {
	now := keeper.now()
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.remainingLocked(now)
}

// Deadline reports the absolute countdown target. The second return value
// is true exactly when the mode is work or break.
func (keeper *TimeKeeper) Deadline() (time.Time, bool) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.target, keeper.hasTarget
}

// Snapshot returns a coherent view of mode, remaining time and minutes.
func (keeper *TimeKeeper) Snapshot() Snapshot {
	now := keeper.now()
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return Snapshot{
		Mode:        keeper.mode,
		Remaining:   keeper.remainingLocked(now),
		WorkMinutes: keeper.config.WorkMinutes,
	}
}

func (keeper *TimeKeeper) run() {
	ticker := time.NewTicker(keeper.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-keeper.stopCh:
			return
		case <-ticker.C:
			keeper.tick(keeper.now())
		}
	}
}

// tick applies an expiration transition, if due, before emitting the
// progress event for the same instant, so observers never see a negative
// remaining time or a stale mode.
func (keeper *TimeKeeper) tick(now time.Time) {
	keeper.mu.Lock()
	var expired Mode
	if keeper.hasTarget && !keeper.target.After(now) {
		switch keeper.mode {
		case ModeWork:
			keeper.mode = ModeWorkDone
		case ModeBreak:
			keeper.mode = ModeBreakDone
		}
		keeper.hasTarget = false
		keeper.target = time.Time{}
		expired = keeper.mode
	}
	cues := keeper.cues
	keeper.mu.Unlock()

	switch expired {
	case ModeWorkDone:
		keeper.emitStateChange()
		if cues != nil {
			cues.PlayWorkEnd()
		}
	case ModeBreakDone:
		keeper.emitStateChange()
		if cues != nil {
			cues.PlayBreakEnd(keeper.Restart)
		}
	}

	keeper.emitProgress(now)
}

func (keeper *TimeKeeper) enterWorkLocked(now time.Time) {
	keeper.mode = ModeWork
	keeper.target = now.Add(time.Duration(keeper.config.WorkMinutes) * time.Minute)
	keeper.hasTarget = true
}

func (keeper *TimeKeeper) remainingLocked(now time.Time) time.Duration {
	switch keeper.mode {
	case ModeWork, ModeBreak:
		if !keeper.hasTarget {
			return 0
		}
		remaining := keeper.target.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		return remaining
	case ModeIdle:
		return time.Duration(keeper.config.WorkMinutes) * time.Minute
	}
	return 0
}

func (keeper *TimeKeeper) now() time.Time {
	return keeper.options.Clock()
}

func (keeper *TimeKeeper) stopCues() {
	keeper.mu.Lock()
	cues := keeper.cues
	keeper.mu.Unlock()
	if cues != nil {
		cues.StopAll()
	}
}

func (keeper *TimeKeeper) emitStateChange() {
	now := keeper.now()
	keeper.mu.Lock()
	keeper.emitLocked(Event{
		Type:        EventStateChange,
		Mode:        keeper.mode,
		Remaining:   keeper.remainingLocked(now),
		WorkMinutes: keeper.config.WorkMinutes,
		At:          now,
	})
	keeper.mu.Unlock()
}

func (keeper *TimeKeeper) emitProgress(now time.Time) {
	keeper.mu.Lock()
	keeper.emitLocked(Event{
		Type:        EventProgress,
		Mode:        keeper.mode,
		Remaining:   keeper.remainingLocked(now),
		WorkMinutes: keeper.config.WorkMinutes,
		At:          now,
	})
	keeper.mu.Unlock()
}

func (keeper *TimeKeeper) emitLocked(event Event) {
	events := append([]chan Event(nil), keeper.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}
