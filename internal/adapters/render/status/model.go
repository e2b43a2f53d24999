package status

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/suitetecsa/suitetecsa-cli/internal/application"
)

// ErrBoardNotLaidOut is returned when the program stops before the board text
// was produced.
var ErrBoardNotLaidOut = errors.New("status board was not laid out")

// boardText carries the finished board from the layout command to the model.
type boardText string

// board is a one-shot program: its Init command lays out the statuses and the
// model quits as soon as the text comes back.
type board struct {
	layout tea.Cmd
	text   *boardText
}

func (b board) Init() tea.Cmd {
	return b.layout
}

func (b board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	text, ok := msg.(boardText)
	if !ok {
		return b, nil
	}
	b.text = &text
	return b, tea.Quit
}

func (b board) View() string {
	if b.text == nil {
		return ""
	}
	return string(*b.text)
}

// Render lays out the statuses once and returns the resulting text.
func Render(statuses []application.AccountStatus, opts RenderOptions) (string, error) {
	s := newStyles()
	initial := board{
		layout: func() tea.Msg {
			return boardText(renderView(statuses, opts, s))
		},
	}

	final, err := tea.NewProgram(initial, tea.WithInput(nil), tea.WithOutput(io.Discard)).Run()
	if err != nil {
		return "", err
	}

	done, ok := final.(board)
	if !ok || done.text == nil {
		return "", ErrBoardNotLaidOut
	}
	return done.View(), nil
}
