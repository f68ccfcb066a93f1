// Package mainwindow builds the single fixed-size window: a countdown
// display, the minutes field and the contextual transition buttons. All
// rendering is driven by TimeKeeper events; the window holds no countdown
// state of its own.
package mainwindow

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"twentytwenty/internal/core/model"
	"twentytwenty/internal/core/timekeeper"
	"twentytwenty/internal/i18n"
)

const (
	windowWidth  = 320
	windowHeight = 260

	timeTextSize   float32 = 52
	statusTextSize float32 = 16
)

// Window manages the main application window.
type Window struct {
	window fyne.Window
	keeper *timekeeper.TimeKeeper

	statusText     *canvas.Text
	timeText       *canvas.Text
	minutesEntry   *widget.Entry
	startButton    *widget.Button
	continueButton *widget.Button
	restartButton  *widget.Button
	stopButton     *widget.Button

	lastMode timekeeper.Mode
}

// New creates the main window and subscribes it to keeper events.
func New(app fyne.App, keeper *timekeeper.TimeKeeper) *Window {
	win := &Window{
		window: app.NewWindow("TwentyTwenty"),
		keeper: keeper,
	}

	win.statusText = canvas.NewText(i18n.T("Ready"), color.White)
	win.statusText.TextSize = statusTextSize

	win.timeText = canvas.NewText("--:--", color.White)
	win.timeText.TextSize = timeTextSize
	win.timeText.TextStyle.Bold = true

	win.minutesEntry = widget.NewEntry()
	win.minutesEntry.SetText(strconv.Itoa(keeper.WorkMinutes()))
	win.minutesEntry.OnChanged = win.handleMinutesChanged
	win.minutesEntry.OnSubmitted = func(string) {
		win.applyMinutes()
	}

	win.startButton = widget.NewButton(i18n.T("Start"), win.applyMinutes)
	win.continueButton = widget.NewButton(i18n.T("Continue"), keeper.Continue)
	win.restartButton = widget.NewButton(i18n.T("Restart"), keeper.Restart)
	win.stopButton = widget.NewButton(i18n.T("Stop"), keeper.Reset)
	win.continueButton.Hide()
	win.restartButton.Hide()
	win.stopButton.Hide()

	entryWidth := canvas.NewRectangle(color.Transparent)
	entryWidth.SetMinSize(fyne.NewSize(56, 0))
	entryBox := container.NewStack(entryWidth, win.minutesEntry)

	minutesRow := container.NewHBox(
		layout.NewSpacer(),
		entryBox,
		widget.NewLabel(i18n.T("minutes")),
		win.startButton,
		layout.NewSpacer(),
	)

	buttonsRow := container.NewHBox(
		layout.NewSpacer(),
		win.continueButton,
		win.restartButton,
		win.stopButton,
		layout.NewSpacer(),
	)

	content := container.NewVBox(
		layout.NewSpacer(),
		container.New(layout.NewCenterLayout(), win.statusText),
		container.New(layout.NewCenterLayout(), win.timeText),
		layout.NewSpacer(),
		minutesRow,
		buttonsRow,
		layout.NewSpacer(),
	)

	win.window.SetContent(content)
	win.window.Resize(fyne.NewSize(windowWidth, windowHeight))
	win.window.SetFixedSize(true)

	win.bindKeyboard()

	events := keeper.Subscribe(8)
	go func() {
		for event := range events {
			win.render(event)
		}
	}()

	return win
}

// Show displays the window.
func (win *Window) Show() {
	win.window.Show()
	win.window.RequestFocus()
}

// ShowAndRun displays the window and runs the application event loop.
func (win *Window) ShowAndRun() {
	win.window.ShowAndRun()
}

// SetOnClosed registers a close handler on the underlying window.
func (win *Window) SetOnClosed(handler func()) {
	win.window.SetOnClosed(handler)
}

// bindKeyboard wires the shortcuts: Space starts from idle, Enter
// re-applies the minutes field while working and continues from work_done.
// When the entry has focus, key events go to the entry instead of the
// canvas, so Space never triggers Start mid-edit.
func (win *Window) bindKeyboard() {
	win.window.Canvas().SetOnTypedRune(func(r rune) {
		if r == ' ' && win.keeper.Mode() == timekeeper.ModeIdle {
			win.applyMinutes()
		}
	})
	win.window.Canvas().SetOnTypedKey(func(event *fyne.KeyEvent) {
		if event.Name != fyne.KeyReturn && event.Name != fyne.KeyEnter {
			return
		}
		switch win.keeper.Mode() {
		case timekeeper.ModeWork:
			win.applyMinutes()
		case timekeeper.ModeWorkDone:
			win.keeper.Continue()
		}
	})
}

// handleMinutesChanged sanitizes free-text input down to an in-range
// minutes value and pushes it into the keeper so the idle display follows.
func (win *Window) handleMinutesChanged(text string) {
	sanitized := sanitizeMinutes(text)
	if sanitized != text {
		win.minutesEntry.SetText(sanitized)
		return
	}
	if sanitized == "" {
		win.keeper.SetWorkMinutes(0)
		return
	}
	minutes, err := strconv.Atoi(sanitized)
	if err != nil {
		return
	}
	win.keeper.SetWorkMinutes(minutes)
}

// applyMinutes starts (or re-applies) the work countdown with the entry
// value. The keeper refuses a zero-minute start on its own.
func (win *Window) applyMinutes() {
	mode := win.keeper.Mode()
	if mode != timekeeper.ModeIdle && mode != timekeeper.ModeWork {
		return
	}
	win.keeper.StartCountdown()
	win.window.Canvas().Focus(nil)
}

// render applies one keeper event to the widgets on the UI thread.
func (win *Window) render(event timekeeper.Event) {
	fyne.Do(func() {
		timeStr := formatDuration(event.Remaining)
		if win.timeText.Text != timeStr {
			win.timeText.Text = timeStr
			win.timeText.Refresh()
		}

		if event.Mode == win.lastMode && event.Type != timekeeper.EventStateChange {
			return
		}
		win.lastMode = event.Mode

		win.statusText.Text = statusLabel(event.Mode)
		win.statusText.Refresh()

		switch event.Mode {
		case timekeeper.ModeIdle:
			win.startButton.SetText(i18n.T("Start"))
			win.startButton.Show()
			win.continueButton.Hide()
			win.restartButton.Hide()
			win.stopButton.Hide()
			win.minutesEntry.Enable()
		case timekeeper.ModeWork:
			win.startButton.SetText(i18n.T("Apply"))
			win.startButton.Show()
			win.continueButton.Hide()
			win.restartButton.Hide()
			win.stopButton.Show()
			win.minutesEntry.Enable()
		case timekeeper.ModeWorkDone:
			win.startButton.Hide()
			win.continueButton.Show()
			win.restartButton.Hide()
			win.stopButton.Show()
			win.minutesEntry.Disable()
		case timekeeper.ModeBreak:
			win.startButton.Hide()
			win.continueButton.Hide()
			win.restartButton.Hide()
			win.stopButton.Show()
			win.minutesEntry.Disable()
		case timekeeper.ModeBreakDone:
			win.startButton.Hide()
			win.continueButton.Hide()
			win.restartButton.Show()
			win.stopButton.Show()
			win.minutesEntry.Disable()
		}
	})
}

func statusLabel(mode timekeeper.Mode) string {
	switch mode {
	case timekeeper.ModeWork:
		return i18n.T("Work")
	case timekeeper.ModeWorkDone:
		return i18n.T("Time to rest your eyes!")
	case timekeeper.ModeBreak:
		return i18n.T("Break")
	case timekeeper.ModeBreakDone:
		return i18n.T("Break over")
	}
	return i18n.T("Ready")
}

// sanitizeMinutes strips everything but digits and clamps to two digits in
// the supported range.
func sanitizeMinutes(text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)

	if len(digits) > 2 {
		digits = digits[:2]
	}
	if digits == "" {
		return ""
	}
	value, err := strconv.Atoi(digits)
	if err != nil {
		return ""
	}
	if value > model.MaxWorkMinutes {
		return strconv.Itoa(model.MaxWorkMinutes)
	}
	return strconv.Itoa(value)
}

func formatDuration(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	seconds := int(value.Round(time.Second).Seconds())
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
