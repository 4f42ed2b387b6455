package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"emptylines/internal/driver"
	"emptylines/internal/ui"
)

type analyzeOutcome struct {
	result *driver.Result
	err    error
}

type fixOutcome struct {
	result *driver.FixResult
	err    error
}

// runAnalyzeWithUI runs driver.Analyze in the background while a progress
// model renders its events.
func runAnalyzeWithUI(ctx context.Context, title, path string, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan analyzeOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Analyze(ctx, path, opts)
		outcomeCh <- analyzeOutcome{result: res, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, events), tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

func runFixWithUI(ctx context.Context, title, path string, opts driver.FixOptions) (*driver.FixResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan fixOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.FixPath(ctx, path, opts)
		outcomeCh <- fixOutcome{result: res, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, events), tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
