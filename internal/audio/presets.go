package audio

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Note is a single synthesized tone within a cue.
type Note struct {
	Frequency  int `yaml:"frequency"`
	DurationMS int `yaml:"duration_ms"`
}

// CuePreset describes one cue: its notes, the gap between notes (and, for a
// repeated cue, between repetitions), and how the cue recurs. RepeatEveryMS
// applies to the looping work-end cue; Repetitions to the break-end cue.
type CuePreset struct {
	Notes         []Note `yaml:"notes"`
	GapMS         int    `yaml:"gap_ms"`
	RepeatEveryMS int    `yaml:"repeat_every_ms"`
	Repetitions   int    `yaml:"repetitions"`
}

// Presets holds both transition cues.
type Presets struct {
	WorkEnd  CuePreset `yaml:"work_end"`
	BreakEnd CuePreset `yaml:"break_end"`
}

// DefaultPresets returns the built-in cues: a three-note ascending bell
// arpeggio for work-end and a softer single ping for break-end.
func DefaultPresets() Presets {
	return Presets{
		WorkEnd: CuePreset{
			Notes: []Note{
				{Frequency: 659, DurationMS: 180},
				{Frequency: 831, DurationMS: 180},
				{Frequency: 988, DurationMS: 280},
			},
			GapMS:         40,
			RepeatEveryMS: 3000,
		},
		BreakEnd: CuePreset{
			Notes: []Note{
				{Frequency: 740, DurationMS: 320},
			},
			GapMS:       650,
			Repetitions: 2,
		},
	}
}

// LoadPresets parses cue presets from YAML. Missing or out-of-range values
// keep their defaults; a parse failure returns the defaults along with the
// error so the caller can log and carry on.
func LoadPresets(data []byte) (Presets, error) {
	presets := DefaultPresets()

	var fileData Presets
	if err := yaml.Unmarshal(data, &fileData); err != nil {
		return presets, fmt.Errorf("parse cue presets yaml: %w", err)
	}

	applyPresetOverrides(&presets.WorkEnd, fileData.WorkEnd)
	applyPresetOverrides(&presets.BreakEnd, fileData.BreakEnd)
	return presets, nil
}

func applyPresetOverrides(preset *CuePreset, fileData CuePreset) {
	if validNotes(fileData.Notes) {
		preset.Notes = fileData.Notes
	}
	if fileData.GapMS > 0 && fileData.GapMS <= 5000 {
		preset.GapMS = fileData.GapMS
	}
	if fileData.RepeatEveryMS >= 500 && fileData.RepeatEveryMS <= 60000 {
		preset.RepeatEveryMS = fileData.RepeatEveryMS
	}
	if fileData.Repetitions >= 1 && fileData.Repetitions <= 10 {
		preset.Repetitions = fileData.Repetitions
	}
}

// validNotes accepts a notes list only when every entry is playable.
func validNotes(notes []Note) bool {
	if len(notes) == 0 {
		return false
	}
	for _, note := range notes {
		if note.Frequency < 20 || note.Frequency > 18000 {
			return false
		}
		if note.DurationMS < 20 || note.DurationMS > 5000 {
			return false
		}
	}
	return true
}

// Duration is the audible length of one pass of the cue.
func (preset CuePreset) Duration() time.Duration {
	var total time.Duration
	for i, note := range preset.Notes {
		if i > 0 {
			total += preset.Gap()
		}
		total += time.Duration(note.DurationMS) * time.Millisecond
	}
	return total
}

// Gap is the pause between notes, or between repetitions of a repeated cue.
func (preset CuePreset) Gap() time.Duration {
	return time.Duration(preset.GapMS) * time.Millisecond
}

// RepeatEvery is the pause between loop iterations of a looping cue.
func (preset CuePreset) RepeatEvery() time.Duration {
	return time.Duration(preset.RepeatEveryMS) * time.Millisecond
}

// PlayCount is how many times a non-looping cue plays before completing.
func (preset CuePreset) PlayCount() int {
	if preset.Repetitions < 1 {
		return 1
	}
	return preset.Repetitions
}
