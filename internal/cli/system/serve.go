package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/quitlog/internal/api"
	"github.com/julianstephens/quitlog/internal/cli"
	"github.com/julianstephens/quitlog/internal/journey"
)

type ServeCmd struct {
	Host      string `help:"Listen address host. Overrides the settings file."`
	Port      int    `help:"Listen port. Overrides the settings file."`
	NoMetrics bool   `help:"Do not expose /metrics."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	cfg := ctx.Settings
	if c.Host != "" {
		cfg.API.Host = c.Host
	}
	if c.Port != 0 {
		cfg.API.Port = c.Port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var (
		svc     *journey.Service
		metrics *api.Metrics
		err     error
	)
	if cfg.API.Metrics && !c.NoMetrics {
		metrics = api.NewMetrics(func() (uint64, uint64) { return svc.Cache().Counts() })
		svc, err = ctx.NewService(journey.WithObserver(metrics))
	} else {
		svc, err = ctx.NewService()
	}
	if err != nil {
		return err
	}

	server := api.NewServer(svc)
	server.SetCORSOrigins(cfg.API.CORSOrigins)
	if metrics != nil {
		server.EnableMetrics(metrics)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.Addr()
	ctx.Printf("Serving quitlog API on http://%s (Ctrl+C to stop)\n", addr)
	return server.Serve(sigCtx, addr)
}
