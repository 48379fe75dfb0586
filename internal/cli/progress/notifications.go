package progress

import (
	"context"
	"fmt"
	"slices"

	"github.com/julianstephens/quitlog/internal/cli"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/storage"
)

type NotificationsPendingCmd struct{}

func (c *NotificationsPendingCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.NewService()
	if err != nil {
		return err
	}
	d, err := svc.Refresh(context.Background())
	if err != nil {
		return err
	}
	if d.Pending == nil {
		ctx.Println("Nothing new.")
		return nil
	}
	p := d.Pending
	ctx.Printf("%s %s\n", p.BadgeIcon, p.Title)
	ctx.Printf("  %s\n", p.Description)
	ctx.Printf("  id: %s\n", p.ID)
	ctx.Println("Run 'quitlog notifications shown <id>' once you have seen it.")
	return nil
}

type NotificationsShownCmd struct {
	ID string `arg:"" help:"Achievement record ID."`
}

func (c *NotificationsShownCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.NewService()
	if err != nil {
		return err
	}
	records, err := ctx.Store.ListAchievements()
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(records, func(r models.AchievementRecord) bool { return r.ID == c.ID }) {
		return fmt.Errorf("achievement %s: %w", c.ID, storage.ErrNotFound)
	}
	if err := svc.MarkShown(c.ID); err != nil {
		return err
	}
	ctx.Println("✓ Marked as shown")
	return nil
}

type NotificationsDismissCmd struct{}

func (c *NotificationsDismissCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.NewService()
	if err != nil {
		return err
	}
	n, err := svc.MarkAllShown(context.Background())
	if err != nil {
		return err
	}
	if n == 0 {
		ctx.Println("Nothing to dismiss.")
		return nil
	}
	ctx.Printf("✓ Dismissed %d notification(s)\n", n)
	return nil
}
