package system

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/moonlit/internal/cli"
	"github.com/julianstephens/moonlit/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := ctx.NewSession()
	go session.Calendar.Watch(watchCtx, ctx.Content.Changes().Subscribe(watchCtx))

	m := tui.NewModel(session, ctx.Auth)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	m.Close()
	return err
}
