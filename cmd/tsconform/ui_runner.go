package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tsconform/internal/runner"
	"tsconform/internal/ui"
)

type runOutcome struct {
	summary *runner.Summary
	err     error
}

// runWithUI drives the runner under the progress board. The board consumes
// the event stream; the runner's outcome is handed over on a side channel
// once the stream closes.
func runWithUI(ctx context.Context, title string, r *runner.Runner) (*runner.Summary, error) {
	events := make(chan runner.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		r.SetProgress(runner.ChannelSink{Ch: events})
		sum, err := r.Run(ctx)
		outcomeCh <- runOutcome{summary: sum, err: err}
		close(events)
	}()

	model := ui.NewBoardModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// The board may quit before the stream ends (q, ctrl+c, render error).
	// Keep draining so the runner never wedges on a full event buffer.
	drainEvents(events)
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.summary, uiErr
	}
	return outcome.summary, outcome.err
}

// drainEvents discards the remainder of the stream in the background.
func drainEvents(events <-chan runner.Event) {
	go func() {
		for range events {
		}
	}()
}
