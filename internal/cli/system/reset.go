package system

import (
	"github.com/julianstephens/quitlog/internal/cli"
	"github.com/julianstephens/quitlog/internal/forms"
)

type ResetCmd struct {
	Yes bool `help:"Do not ask for confirmation."`
}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		ok, err := forms.Confirm("Delete all quitlog data?",
			"Entries, cravings, goals, achievements and your baseline will be removed. A backup is taken first.")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Reset cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()

	svc, err := ctx.NewService()
	if err != nil {
		return err
	}
	if err := svc.Reset(); err != nil {
		return err
	}
	ctx.Println("✓ All data deleted. Run 'quitlog onboard' to start a new journey.")
	return nil
}
