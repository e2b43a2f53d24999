package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

// callResult is delivered to the program when the wrapped portal call returns.
type callResult[T any] struct {
	value T
	err   error
}

// pendingCall animates a spinner until its callResult arrives, then keeps it.
type pendingCall[T any] struct {
	spinner spinner.Model
	label   string
	start   tea.Cmd
	result  *callResult[T]
}

func (p pendingCall[T]) Init() tea.Cmd {
	return tea.Batch(p.spinner.Tick, p.start)
}

func (p pendingCall[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(callResult[T]); ok {
		p.result = &result
		return p, tea.Quit
	}

	tick, ok := msg.(spinner.TickMsg)
	if !ok || p.result != nil {
		return p, nil
	}

	var next tea.Cmd
	p.spinner, next = p.spinner.Update(tick)
	return p, next
}

func (p pendingCall[T]) View() string {
	if p.result != nil {
		return ""
	}
	return p.spinner.View() + " " + p.label
}

// withSpinner runs call while a spinner labelled label animates on output and
// returns whatever call produced.
func withSpinner[T any](ctx context.Context, output io.Writer, label string, call func(context.Context) (T, error)) (T, error) {
	var zero T

	model := pendingCall[T]{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		label:   label,
		start: func() tea.Msg {
			value, err := call(ctx)
			return callResult[T]{value: value, err: err}
		},
	}

	final, err := tea.NewProgram(model, tea.WithInput(nil), tea.WithOutput(output), tea.WithContext(ctx)).Run()
	if err != nil {
		return zero, err
	}

	done, ok := final.(pendingCall[T])
	if !ok || done.result == nil {
		return zero, fmt.Errorf("portal call did not finish (final model %T)", final)
	}

	return done.result.value, done.result.err
}
