package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"krait/internal/driver"
	"krait/internal/ui"
)

// shouldUseProgress decides whether a run gets the interactive progress
// view: only for real terminals, multiple files, and never under
// --quiet.
func shouldUseProgress(quietRun bool, files int) bool {
	return !quietRun && files > 1 && isTerminal(os.Stdout)
}

// runWithProgress drives the Bubble Tea progress view while start does
// the actual work, translating driver notifications into UI events.
func runWithProgress(title string, files []string, stage ui.Stage, start func(notify driver.Notify) error) error {
	events := make(chan ui.Event, len(files)*2)
	model := ui.NewProgressModel(title, files, events)
	prog := tea.NewProgram(model)

	var runErr error
	go func() {
		runErr = start(func(path string, status driver.NotifyStatus) {
			ev := ui.Event{File: path, Stage: stage}
			switch status {
			case driver.NotifyStart:
				ev.Status = ui.StatusWorking
			case driver.NotifyDone:
				ev.Status = ui.StatusDone
			case driver.NotifyError:
				ev.Status = ui.StatusError
			}
			events <- ev
		})
		close(events)
	}()

	if _, err := prog.Run(); err != nil {
		return err
	}
	return runErr
}
