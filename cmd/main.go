package main

import (
	"fmt"
	"log"
	"time"

	"twentytwenty/internal/audio"
	"twentytwenty/internal/core/model"
	"twentytwenty/internal/core/timekeeper"
	"twentytwenty/internal/i18n"
	"twentytwenty/internal/ui/mainwindow"
	"twentytwenty/internal/ui/tray"
	"twentytwenty/resources"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
)

func main() {
	fyneApp := app.NewWithID("com.twentytwenty.app")

	presets, err := audio.LoadPresets(resources.MustCue("cues.yaml"))
	if err != nil {
		log.Printf("cue presets: %v, using defaults", err)
	}
	player := audio.NewPlayer(presets)

	keeper := timekeeper.New(model.DefaultConfig(), timekeeper.Config{
		TickInterval: 200 * time.Millisecond,
	})
	keeper.SetCuePlayer(player)

	window := mainwindow.New(fyneApp, keeper)

	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager := tray.New(desktopApp, tray.Callbacks{
			OnShow:  window.Show,
			OnStart: keeper.StartCountdown,
			OnStop:  keeper.Reset,
			OnQuit: func() {
				keeper.Stop()
				fyneApp.Quit()
			},
		})
		go watchStatus(keeper.Subscribe(8), trayManager)
	} else {
		log.Printf("system tray unsupported on this platform")
	}

	keeper.Start()
	window.ShowAndRun()
	keeper.Stop()
}

// watchStatus mirrors keeper progress into the tray status line. The tray
// manager drops unchanged labels, so the 200ms tick cadence only rebuilds
// the menu once per displayed second.
func watchStatus(events <-chan timekeeper.Event, trayManager *tray.Manager) {
	for event := range events {
		trayManager.SetStatus(statusLine(event))
	}
}

func statusLine(event timekeeper.Event) string {
	remaining := event.Remaining.Round(time.Second)
	seconds := int(remaining.Seconds())

	switch event.Mode {
	case timekeeper.ModeWork:
		return fmt.Sprintf("%s %02d:%02d", i18n.T("Work"), seconds/60, seconds%60)
	case timekeeper.ModeBreak:
		return fmt.Sprintf("%s %02d:%02d", i18n.T("Break"), seconds/60, seconds%60)
	case timekeeper.ModeWorkDone:
		return i18n.T("Time to rest your eyes!")
	case timekeeper.ModeBreakDone:
		return i18n.T("Break over")
	}
	return i18n.T("Ready")
}
