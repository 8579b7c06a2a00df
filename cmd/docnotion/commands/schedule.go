package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docnotion/internal/output"
	"git.home.luguber.info/inful/docnotion/internal/pull"
)

// ScheduleCmd implements the 'schedule' command: full pulls on an interval
// until interrupted. Custom pages are always overwritten since nobody is there
// to answer a prompt.
type ScheduleCmd struct {
	PullFlags
	Every time.Duration `help:"Interval between pulls" default:"1h"`
}

func (s *ScheduleCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, s.PullFlags)
	if err != nil {
		return err
	}
	configureLogger(g, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// One recorder for the whole process so counters accumulate across runs.
	recorder, prom := newRecorder(cfg)
	puller, err := newPuller(cfg, g.Logger, recorder, output.AlwaysOverwrite)
	if err != nil {
		return err
	}

	scheduler, err := pull.NewScheduler(g.Logger)
	if err != nil {
		return err
	}
	if _, err := scheduler.Every(ctx, s.Every, func(ctx context.Context) error {
		res, err := puller.Run(ctx)
		exportMetrics(cfg, prom, g.Logger)
		if err == nil {
			g.Logger.Info("Scheduled pull finished", slog.Duration("duration", res.Duration))
		}
		return err
	}); err != nil {
		return err
	}

	scheduler.Start()
	g.Logger.Info("Scheduler started, waiting for shutdown signal", slog.Duration("every", s.Every))
	<-ctx.Done()
	g.Logger.Info("Shutdown signal received")
	return scheduler.Stop()
}
