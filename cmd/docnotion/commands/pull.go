package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docnotion/internal/config"
	"git.home.luguber.info/inful/docnotion/internal/logfields"
	"git.home.luguber.info/inful/docnotion/internal/metrics"
	"git.home.luguber.info/inful/docnotion/internal/output"
	"git.home.luguber.info/inful/docnotion/internal/pull"
)

// PullCmd implements the 'pull' command.
type PullCmd struct {
	PullFlags
	Yes bool `short:"y" help:"Overwrite existing custom pages without asking"`
}

func (p *PullCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, p.PullFlags)
	if err != nil {
		return err
	}
	configureLogger(g, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	confirm := output.AlwaysOverwrite
	if !p.Yes {
		confirm = promptOverwrite(os.Stdin, os.Stderr)
	}
	return RunPull(ctx, cfg, g.Logger, confirm)
}

// RunPull performs one pull and exports metrics when configured.
func RunPull(ctx context.Context, cfg *config.Config, logger *slog.Logger, confirm output.Confirm) error {
	recorder, prom := newRecorder(cfg)
	puller, err := newPuller(cfg, logger, recorder, confirm)
	if err != nil {
		return err
	}
	_, err = puller.Run(ctx)
	exportMetrics(cfg, prom, logger)
	return err
}

func exportMetrics(cfg *config.Config, prom *metrics.PrometheusRecorder, logger *slog.Logger) {
	if prom == nil {
		return
	}
	if err := prom.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logger.Warn("Failed to write metrics", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
	}
}
