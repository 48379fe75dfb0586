package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/quitlog/internal/cli"
	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.NewService()
	if err != nil {
		return err
	}

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	logger.Detach()
	p := tea.NewProgram(tui.NewModel(svc, ctx.Currency), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
