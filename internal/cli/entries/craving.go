package entries

import (
	"github.com/julianstephens/quitlog/internal/cli"
	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/forms"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/utils"
)

type CravingCmd struct {
	Intensity int    `help:"How strong it was, 1 to 5. Omit to answer a form."`
	Trigger   string `help:"What set it off."`
	Strategy  string `help:"What you did instead."`
	Resisted  bool   `help:"You did not smoke."`
	Notes     string `help:"Free-form notes."`
	At        string `help:"When it happened. Defaults to now."`
}

func (c *CravingCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.NewService()
	if err != nil {
		return err
	}

	craving := models.CravingEntry{
		Intensity: c.Intensity,
		Trigger:   constants.Trigger(c.Trigger),
		Strategy:  c.Strategy,
		Resisted:  c.Resisted,
		Notes:     c.Notes,
	}
	if c.Intensity == 0 {
		fm := &forms.CravingFormModel{Trigger: c.Trigger, Strategy: c.Strategy, Resisted: c.Resisted}
		if err := forms.NewCravingForm(fm).Run(); err != nil {
			return err
		}
		if craving, err = fm.Craving(); err != nil {
			return err
		}
		craving.Notes = c.Notes
	}
	if c.At != "" {
		if craving.Timestamp, err = utils.ParseMoment(c.At, svc.Now(), svc.Location()); err != nil {
			return err
		}
	}

	saved, err := svc.LogCraving(craving)
	if err != nil {
		return err
	}
	if saved.Resisted {
		ctx.Printf("✓ Craving logged (intensity %d). Nice work riding it out.\n", saved.Intensity)
	} else {
		ctx.Printf("✓ Craving logged (intensity %d).\n", saved.Intensity)
	}
	return nil
}
