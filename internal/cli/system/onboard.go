package system

import (
	"context"
	"strings"

	"github.com/julianstephens/quitlog/internal/cli"
	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/forms"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/stats"
)

type OnboardCmd struct {
	Name     string  `help:"Display name."`
	PerDay   float64 `help:"Cigarettes per day before you started. Omit to answer a form."`
	PackCost float64 `help:"Cost of one pack."`
	PackSize float64 `help:"Cigarettes per pack (default 20)."`
	Currency string  `help:"Currency code (USD, EUR, GBP, CAD, AUD)."`
	Limit    string  `help:"Optional daily limit, or \"none\"."`
}

func (c *OnboardCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.NewService()
	if err != nil {
		return err
	}

	var p models.UserProfile
	if c.PerDay == 0 {
		fm := &forms.OnboardingFormModel{Name: c.Name, Currency: c.Currency}
		if err := forms.NewOnboardingForm(fm).Run(); err != nil {
			return err
		}
		if p, err = fm.Profile(); err != nil {
			return err
		}
	} else {
		p = models.UserProfile{
			DisplayName:            c.Name,
			CigarettesPerDayBefore: c.PerDay,
			CostPerPack:            c.PackCost,
			Currency:               strings.ToUpper(c.Currency),
		}
		if c.PackSize != 0 {
			size := c.PackSize
			p.CigarettesPerPack = &size
		}
		if c.Limit != "" {
			if p.DailyLimit, err = cli.ParseLimit(c.Limit); err != nil {
				return err
			}
		}
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}

	d, err := svc.CompleteOnboarding(context.Background(), p)
	if err != nil {
		return err
	}

	ctx.Printf("✓ Journey started %s\n", d.Profile.JourneyStartDate.In(svc.Location()).Format(constants.DateFormat+" "+constants.TimeFormat))
	ctx.Printf("  Baseline: %g a day at %s per cigarette\n",
		d.Profile.CigarettesPerDayBefore,
		constants.CurrencySymbol(ctx.Currency(d.Profile))+stats.PricePerCigarette(&d.Profile).StringFixed(2))
	if d.Profile.DailyLimit != nil {
		ctx.Printf("  Daily limit: %d\n", *d.Profile.DailyLimit)
	}
	return nil
}
