package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"moveck/internal/driver"
	"moveck/internal/ui"
)

type analyzeOutcome struct {
	results []driver.FileResult
	err     error
}

// analyzeWithUI runs the analysis in the background while a progress view
// follows its events on stdout.
func analyzeWithUI(ctx context.Context, title string, files []string, opts driver.Options) ([]driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan analyzeOutcome, 1)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.AnalyzeFiles(ctx, files, optsCopy)
		outcomeCh <- analyzeOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		cancel()
	}
	// the view may quit early (ctrl+c); keep draining so workers never block
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
