package progress

import (
	"github.com/julianstephens/quitlog/internal/cli"
)

type LimitSetCmd struct {
	Limit string `arg:"" help:"Cigarettes per day, or \"none\" to clear the limit."`
}

func (c *LimitSetCmd) Run(ctx *cli.Context) error {
	limit, err := cli.ParseLimit(c.Limit)
	if err != nil {
		return err
	}
	svc, err := ctx.NewService()
	if err != nil {
		return err
	}
	p, err := svc.SetDailyLimit(limit)
	if err != nil {
		return err
	}
	if p.DailyLimit == nil {
		ctx.Println("✓ Daily limit cleared")
		return nil
	}
	ctx.Printf("✓ Daily limit set to %d\n", *p.DailyLimit)
	return nil
}

type LimitShowCmd struct{}

func (c *LimitShowCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.NewService()
	if err != nil {
		return err
	}
	snap, err := svc.Snapshot()
	if err != nil {
		return err
	}
	if snap.Profile.DailyLimit == nil {
		ctx.Printf("No daily limit. Today: %d\n", snap.TodayCount)
		return nil
	}
	ctx.Printf("Daily limit: %d. Today: %d (%s)\n", *snap.Profile.DailyLimit, snap.TodayCount, snap.LimitStatus)
	return nil
}
