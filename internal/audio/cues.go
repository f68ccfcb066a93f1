// Package audio synthesizes the two transition cues and manages their
// lifecycle so that at most one cue is audible at a time. All playback
// failures are logged and swallowed here; the state machine never sees them.
package audio

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// noteAttack is the fade-in applied to each synthesized note so tone onsets
// do not click.
const noteAttack = 12 * time.Millisecond

// Player renders the cue presets into buffers once and plays them through
// the speaker. A single cancellable goroutine owns the cue schedule, so
// starting a new cue always supersedes the previous one.
type Player struct {
	mu       sync.Mutex
	enabled  bool
	presets  Presets
	workEnd  *beep.Buffer
	breakEnd *beep.Buffer
	cancel   context.CancelFunc
	active   *activeCue
}

type activeCue struct {
	ctrl   *beep.Ctrl
	volume *effects.Volume
}

// NewPlayer initializes the speaker and pre-renders both cues. If the audio
// backend is unavailable the player stays disabled: cue schedules still run
// on wall-clock sleeps so completion callbacks fire, there is just no sound.
func NewPlayer(presets Presets) *Player {
	player := &Player{presets: presets}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		log.Printf("audio disabled: failed to initialize speaker: %v", err)
		return player
	}

	player.enabled = true
	player.workEnd = renderCue(presets.WorkEnd)
	player.breakEnd = renderCue(presets.BreakEnd)
	return player
}

// PlayWorkEnd stops any active cue, then loops the work-end arpeggio on a
// fixed interval until stopped.
func (player *Player) PlayWorkEnd() {
	player.startRun(func(ctx context.Context) {
		for {
			if !player.playCue(ctx, player.workEnd, player.presets.WorkEnd.Duration()) {
				return
			}
			if !sleepWithContext(ctx, player.presets.WorkEnd.RepeatEvery()) {
				return
			}
		}
	})
}

// PlayBreakEnd stops any active cue, plays the break-end ping its configured
// number of times, then invokes onDone. Stopping the cue before the last
// repetition suppresses the callback.
func (player *Player) PlayBreakEnd(onDone func()) {
	player.startRun(func(ctx context.Context) {
		repetitions := player.presets.BreakEnd.PlayCount()
		for i := 0; i < repetitions; i++ {
			if i > 0 && !sleepWithContext(ctx, player.presets.BreakEnd.Gap()) {
				return
			}
			if !player.playCue(ctx, player.breakEnd, player.presets.BreakEnd.Duration()) {
				return
			}
		}
		if onDone != nil {
			onDone()
		}
	})
}

// StopAll cancels any scheduled repeats and fades the active sound down
// instead of cutting it. Idempotent and safe when nothing is playing.
func (player *Player) StopAll() {
	player.mu.Lock()
	cancel := player.cancel
	player.cancel = nil
	active := player.active
	player.active = nil
	player.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if active != nil {
		player.fadeOut(active)
	}
}

// startRun replaces the current cue goroutine with a fresh one.
func (player *Player) startRun(run func(context.Context)) {
	player.StopAll()

	ctx, cancel := context.WithCancel(context.Background())
	player.mu.Lock()
	player.cancel = cancel
	player.mu.Unlock()

	go run(ctx)
}

// playCue plays one pass of a rendered cue and waits for it to finish.
// Returns false when the cue was cancelled mid-play. A disabled player
// sleeps for the cue length instead, keeping the schedule's timing.
func (player *Player) playCue(ctx context.Context, buffer *beep.Buffer, length time.Duration) bool {
	if !player.enabled || buffer == nil {
		return sleepWithContext(ctx, length)
	}

	streamer := buffer.Streamer(0, buffer.Len())
	volume := &effects.Volume{Streamer: streamer, Base: 2}
	ctrl := &beep.Ctrl{Streamer: volume}

	player.mu.Lock()
	player.active = &activeCue{ctrl: ctrl, volume: volume}
	player.mu.Unlock()
	defer player.release(ctrl)

	done := make(chan struct{})
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

func (player *Player) release(ctrl *beep.Ctrl) {
	player.mu.Lock()
	if player.active != nil && player.active.ctrl == ctrl {
		player.active = nil
	}
	player.mu.Unlock()
}

// fadeOut ramps the cue down over roughly a hundred milliseconds, then
// detaches its streamer so nothing is left scheduled on the speaker.
func (player *Player) fadeOut(active *activeCue) {
	if !player.enabled {
		return
	}
	const steps = 8
	for i := 0; i < steps; i++ {
		speaker.Lock()
		active.volume.Volume -= 0.9
		speaker.Unlock()
		time.Sleep(12 * time.Millisecond)
	}
	speaker.Lock()
	active.volume.Silent = true
	active.ctrl.Streamer = nil
	speaker.Unlock()
}

// renderCue synthesizes a preset into a buffer: each note is a sine tone
// with a short attack and a bell-like decay to zero.
func renderCue(preset CuePreset) *beep.Buffer {
	format := beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2}
	buffer := beep.NewBuffer(format)

	for i, note := range preset.Notes {
		if i > 0 && preset.Gap() > 0 {
			buffer.Append(beep.Silence(sampleRate.N(preset.Gap())))
		}

		tone, err := generators.SineTone(sampleRate, float64(note.Frequency))
		if err != nil {
			log.Printf("skipping cue note at %d Hz: %v", note.Frequency, err)
			continue
		}

		total := sampleRate.N(time.Duration(note.DurationMS) * time.Millisecond)
		attack := sampleRate.N(noteAttack)
		if attack > total/4 {
			attack = total / 4
		}
		buffer.Append(effects.Transition(beep.Take(attack, tone), attack, 0, 1, effects.TransitionEqualPower))
		buffer.Append(effects.Transition(beep.Take(total-attack, tone), total-attack, 1, 0, effects.TransitionLinear))
	}

	return buffer
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
