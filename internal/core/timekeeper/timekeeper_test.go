package timekeeper

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twentytwenty/internal/core/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Advance(delta time.Duration) {
	clock.mu.Lock()
	clock.now = clock.now.Add(delta)
	clock.mu.Unlock()
}

type recordingCues struct {
	mu        sync.Mutex
	workEnds  int
	breakEnds int
	stops     int
	onDone    func()
}

func (cues *recordingCues) PlayWorkEnd() {
	cues.mu.Lock()
	defer cues.mu.Unlock()
	cues.workEnds++
}

func (cues *recordingCues) PlayBreakEnd(onDone func()) {
	cues.mu.Lock()
	defer cues.mu.Unlock()
	cues.breakEnds++
	cues.onDone = onDone
}

func (cues *recordingCues) StopAll() {
	cues.mu.Lock()
	defer cues.mu.Unlock()
	cues.stops++
}

func (cues *recordingCues) counts() (workEnds, breakEnds, stops int) {
	cues.mu.Lock()
	defer cues.mu.Unlock()
	return cues.workEnds, cues.breakEnds, cues.stops
}

func (cues *recordingCues) completeBreakCue() func() {
	cues.mu.Lock()
	defer cues.mu.Unlock()
	return cues.onDone
}

// newTestKeeper builds a keeper driven by a fake clock. The ticking loop is
// never started; tests call tick directly for determinism.
func newTestKeeper(minutes int) (*TimeKeeper, *fakeClock, *recordingCues) {
	clock := newFakeClock()
	cues := &recordingCues{}
	keeper := New(model.CountdownConfig{
		WorkMinutes:   minutes,
		BreakDuration: 23 * time.Second,
	}, Config{Clock: clock.Now})
	keeper.SetCuePlayer(cues)
	return keeper, clock, cues
}

func assertDeadlineInvariant(t *testing.T, keeper *TimeKeeper) {
	t.Helper()
	mode := keeper.Mode()
	_, hasTarget := keeper.Deadline()
	expected := mode == ModeWork || mode == ModeBreak
	assert.Equal(t, expected, hasTarget, "deadline presence must match mode %s", mode)
}

func TestStartCountdown_EntersWork(t *testing.T) {
	keeper, _, _ := newTestKeeper(20)

	keeper.StartCountdown()

	assert.Equal(t, ModeWork, keeper.Mode())
	assert.Equal(t, 20*time.Minute, keeper.Remaining())
	assertDeadlineInvariant(t, keeper)
}

func TestStartCountdown_AllSupportedMinutes(t *testing.T) {
	for minutes := 1; minutes <= 59; minutes++ {
		keeper, _, _ := newTestKeeper(minutes)
		keeper.StartCountdown()
		require.Equal(t, ModeWork, keeper.Mode(), "minutes=%d", minutes)
		require.Equal(t, time.Duration(minutes)*time.Minute, keeper.Remaining(), "minutes=%d", minutes)
	}
}

func TestStartCountdown_ZeroMinutesIsNoOp(t *testing.T) {
	keeper, clock, _ := newTestKeeper(0)

	keeper.StartCountdown()
	keeper.tick(clock.Now())

	assert.Equal(t, ModeIdle, keeper.Mode())
	assertDeadlineInvariant(t, keeper)
}

func TestWorkExpiry_EntersWorkDoneAndStartsCue(t *testing.T) {
	keeper, clock, cues := newTestKeeper(20)

	keeper.StartCountdown()
	clock.Advance(20 * time.Minute)
	keeper.tick(clock.Now())

	assert.Equal(t, ModeWorkDone, keeper.Mode())
	assert.Equal(t, time.Duration(0), keeper.Remaining())
	workEnds, _, _ := cues.counts()
	assert.Equal(t, 1, workEnds)
	assertDeadlineInvariant(t, keeper)
}

func TestContinue_EntersBreakWithFixedDuration(t *testing.T) {
	keeper, clock, cues := newTestKeeper(20)

	keeper.StartCountdown()
	clock.Advance(20 * time.Minute)
	keeper.tick(clock.Now())
	keeper.Continue()

	assert.Equal(t, ModeBreak, keeper.Mode())
	assert.Equal(t, 23*time.Second, keeper.Remaining())
	assertDeadlineInvariant(t, keeper)

	clock.Advance(23 * time.Second)
	keeper.tick(clock.Now())

	assert.Equal(t, ModeBreakDone, keeper.Mode())
	assert.Equal(t, time.Duration(0), keeper.Remaining())
	_, breakEnds, _ := cues.counts()
	assert.Equal(t, 1, breakEnds)
	assertDeadlineInvariant(t, keeper)
}

func TestContinue_IgnoredOutsideWorkDone(t *testing.T) {
	keeper, _, _ := newTestKeeper(20)

	keeper.Continue()
	assert.Equal(t, ModeIdle, keeper.Mode())

	keeper.StartCountdown()
	keeper.Continue()
	assert.Equal(t, ModeWork, keeper.Mode())
	assertDeadlineInvariant(t, keeper)
}

func TestRestart_FromBreakDoneStopsAudio(t *testing.T) {
	keeper, clock, cues := newTestKeeper(20)

	keeper.StartCountdown()
	clock.Advance(20 * time.Minute)
	keeper.tick(clock.Now())
	keeper.Continue()
	clock.Advance(23 * time.Second)
	keeper.tick(clock.Now())
	_, _, stopsBefore := cues.counts()

	keeper.Restart()

	assert.Equal(t, ModeWork, keeper.Mode())
	assert.Equal(t, 20*time.Minute, keeper.Remaining())
	_, _, stops := cues.counts()
	assert.Greater(t, stops, stopsBefore, "restart must silence the break-end cue")
	assertDeadlineInvariant(t, keeper)
}

func TestBreakCueCompletion_AutoRestartsWork(t *testing.T) {
	keeper, clock, cues := newTestKeeper(20)

	keeper.StartCountdown()
	clock.Advance(20 * time.Minute)
	keeper.tick(clock.Now())
	keeper.Continue()
	clock.Advance(23 * time.Second)
	keeper.tick(clock.Now())

	onDone := cues.completeBreakCue()
	require.NotNil(t, onDone)
	onDone()

	assert.Equal(t, ModeWork, keeper.Mode())
	assert.Equal(t, 20*time.Minute, keeper.Remaining())
	assertDeadlineInvariant(t, keeper)

	// A late callback after the mode already moved on must be a no-op.
	keeper.Reset()
	onDone()
	assert.Equal(t, ModeIdle, keeper.Mode())
}

func TestReset_FromWorkRevertsDisplay(t *testing.T) {
	keeper, clock, cues := newTestKeeper(20)

	keeper.StartCountdown()
	clock.Advance(20*time.Minute - 5*time.Second)
	keeper.tick(clock.Now())
	require.Equal(t, ModeWork, keeper.Mode())
	require.Equal(t, 5*time.Second, keeper.Remaining())

	keeper.Reset()

	assert.Equal(t, ModeIdle, keeper.Mode())
	assert.Equal(t, 20*time.Minute, keeper.Remaining())
	_, _, stops := cues.counts()
	assert.Greater(t, stops, 0)
	assertDeadlineInvariant(t, keeper)
}

func TestReset_DuringWorkDoneSilencesCue(t *testing.T) {
	keeper, clock, cues := newTestKeeper(20)

	keeper.StartCountdown()
	clock.Advance(20 * time.Minute)
	keeper.tick(clock.Now())
	require.Equal(t, ModeWorkDone, keeper.Mode())
	_, _, stopsBefore := cues.counts()

	keeper.Reset()

	assert.Equal(t, ModeIdle, keeper.Mode())
	_, _, stops := cues.counts()
	assert.Greater(t, stops, stopsBefore)
	assertDeadlineInvariant(t, keeper)
}

func TestDoubleStart_OnlyLatestDeadlineGoverns(t *testing.T) {
	keeper, clock, cues := newTestKeeper(20)

	keeper.StartCountdown()
	clock.Advance(time.Minute)
	keeper.StartCountdown()

	// The first deadline would have expired here; the replacement must not.
	clock.Advance(19 * time.Minute)
	keeper.tick(clock.Now())
	assert.Equal(t, ModeWork, keeper.Mode())
	assert.Equal(t, time.Minute, keeper.Remaining())

	clock.Advance(time.Minute)
	keeper.tick(clock.Now())
	assert.Equal(t, ModeWorkDone, keeper.Mode())
	workEnds, _, _ := cues.counts()
	assert.Equal(t, 1, workEnds)
}

func TestSetWorkMinutes_ClampsToSupportedRange(t *testing.T) {
	keeper, _, _ := newTestKeeper(20)

	keeper.SetWorkMinutes(-5)
	assert.Equal(t, 0, keeper.WorkMinutes())

	keeper.SetWorkMinutes(99)
	assert.Equal(t, 59, keeper.WorkMinutes())
	assert.Equal(t, 59*time.Minute, keeper.Remaining(), "idle display follows the configured minutes")

	keeper.SetWorkMinutes(15)
	assert.Equal(t, 15, keeper.WorkMinutes())
}

func TestLongSuspension_ExpiresImmediately(t *testing.T) {
	keeper, clock, _ := newTestKeeper(20)

	keeper.StartCountdown()
	clock.Advance(3 * time.Hour)
	keeper.tick(clock.Now())

	assert.Equal(t, ModeWorkDone, keeper.Mode())
	assert.Equal(t, time.Duration(0), keeper.Remaining())
	assertDeadlineInvariant(t, keeper)
}

func TestTick_TransitionEmittedBeforeProgress(t *testing.T) {
	keeper, clock, _ := newTestKeeper(20)
	events := keeper.Subscribe(8)

	keeper.StartCountdown()
	drain(events)

	clock.Advance(20 * time.Minute)
	keeper.tick(clock.Now())

	received := drain(events)
	require.NotEmpty(t, received)
	assert.Equal(t, EventStateChange, received[0].Type)
	assert.Equal(t, ModeWorkDone, received[0].Mode)
	for _, event := range received {
		assert.GreaterOrEqual(t, event.Remaining, time.Duration(0))
		assert.Equal(t, ModeWorkDone, event.Mode, "no event may carry the superseded mode")
	}
}

func TestSnapshot_IsCoherent(t *testing.T) {
	keeper, clock, _ := newTestKeeper(20)

	keeper.StartCountdown()
	clock.Advance(5 * time.Minute)

	snapshot := keeper.Snapshot()
	assert.Equal(t, ModeWork, snapshot.Mode)
	assert.Equal(t, 15*time.Minute, snapshot.Remaining)
	assert.Equal(t, 20, snapshot.WorkMinutes)
}

func TestStop_ClosesSubscribers(t *testing.T) {
	keeper, _, _ := newTestKeeper(20)
	events := keeper.Subscribe(2)

	keeper.Start()
	keeper.Stop()

	deadline := time.After(time.Second)
	for {
		select {
		case _, open := <-events:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("subscriber channel not closed after Stop")
		}
	}
}

func drain(events <-chan Event) []Event {
	var received []Event
	for {
		select {
		case event := <-events:
			received = append(received, event)
		default:
			return received
		}
	}
}
