package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	logx "lotwatch/pkg/logx"
)

// Run starts the thread monitor and blocks until the operator quits or ctx
// is cancelled. Pass a nil dispatcher for browse-only mode (no alerts, no
// bell).
func Run(ctx context.Context, src ThreadSource, disp Dispatcher, interval time.Duration, log logx.Logger) error {
	m := NewModel(src, disp, interval, log)
	p := tea.NewProgram(model{m}, tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		// Cancellation surfaces as a killed program; report it as such.
		return ctx.Err()
	}
	return err
}

// model adapts the value-typed Model to tea.Model.
type model struct{ Model }

func (w model) Init() tea.Cmd { return w.Model.Init() }

func (w model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := w.Model.Update(msg)
	return model{m}, cmd
}

func (w model) View() string { return w.Model.View() }
