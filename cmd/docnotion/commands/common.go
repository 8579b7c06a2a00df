// Package commands holds the kong command tree of the docnotion CLI.
package commands

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docnotion/internal/config"
	"git.home.luguber.info/inful/docnotion/internal/metrics"
	"git.home.luguber.info/inful/docnotion/internal/notion"
	"git.home.luguber.info/inful/docnotion/internal/output"
	"git.home.luguber.info/inful/docnotion/internal/pull"
	"git.home.luguber.info/inful/docnotion/internal/retry"
)

// Global is shared state handed to every command's Run method.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root of the command tree.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docnotion.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Pull     PullCmd     `cmd:"" help:"Pull the outline from Notion and write markdown"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
	Schedule ScheduleCmd `cmd:"" help:"Run pulls periodically"`
}

// AfterApply installs a default logger before any command runs. Commands that
// load configuration replace it once the configured level and format are known.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// PullFlags are the flags shared by pull and schedule. Empty values leave the
// configuration file and environment in charge.
type PullFlags struct {
	NotionToken        string `short:"n" name:"notion-token" help:"Notion integration token (env NOTION_TOKEN)"`
	RootPage           string `short:"r" name:"root-page" help:"ID of the root page (env DOCNOTION_ROOT_PAGE)"`
	MarkdownOutputPath string `short:"m" name:"markdown-output-path" help:"Root directory for generated markdown (default ./docs)"`
	StatusTag          string `short:"t" name:"status-tag" help:"Only output database pages with this Status; '*' outputs all (default Publish)"`
	LogLevel           string `short:"l" name:"log-level" help:"Log level: debug, info, warn, error"`
	CustomPagesPath    string `name:"custom-pages-path" help:"Where custom pages are moved after a pull (default src/pages)"`
	MetricsTextfile    string `name:"metrics-textfile" help:"Write Prometheus metrics to this file after each pull"`
	Fingerprint        bool   `name:"fingerprint" help:"Embed a content fingerprint and skip rewriting unchanged pages"`
}

// apply copies explicitly set flags over cfg.
func (f PullFlags) apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Notion.Token, f.NotionToken)
	set(&cfg.Notion.RootPage, f.RootPage)
	set(&cfg.Output.CustomPagesPath, f.CustomPagesPath)
	set(&cfg.Output.StatusTag, f.StatusTag)
	set(&cfg.Metrics.Textfile, f.MetricsTextfile)
	if f.MarkdownOutputPath != "" {
		cfg.Output.MarkdownPath = strings.TrimRight(f.MarkdownOutputPath, "/")
	}
	if f.LogLevel != "" {
		cfg.Logging.Level = config.NormalizeLogLevel(f.LogLevel)
	}
	if f.Fingerprint {
		cfg.Output.Fingerprint = true
	}
}

// loadConfig resolves the configuration for a pull: file, then environment,
// then flags. The result is validated.
func loadConfig(root *CLI, flags PullFlags) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	flags.apply(cfg)
	if root.Verbose {
		cfg.Logging.Level = config.LogLevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configureLogger replaces the default logger with one honouring cfg.
func configureLogger(g *Global, cfg *config.Config) {
	g.Logger = cfg.Logging.NewLogger(os.Stderr)
	slog.SetDefault(g.Logger)
	g.Logger.Debug("Options", slog.Any("config", cfg.Redacted()))
}

// newPuller wires the remote client, hooks and output sink described by cfg.
func newPuller(cfg *config.Config, logger *slog.Logger, recorder metrics.Recorder, confirm output.Confirm) (*pull.Puller, error) {
	executor := retry.NewExecutor(retry.FromConfig(cfg.Retry),
		retry.WithLogger(logger),
		retry.WithObserver(recorder))
	client := notion.NewClient(notion.Options{
		APIURL:        cfg.Notion.APIURL,
		APIVersion:    cfg.Notion.APIVersion,
		Token:         cfg.Notion.Token,
		RatePerSecond: cfg.Notion.RatePerSecond,
		HTTPClient:    &http.Client{Timeout: cfg.Notion.Timeout},
		Retry:         executor,
		Logger:        logger,
		Recorder:      recorder,
	})
	set, err := pull.NewHookSet(cfg, logger)
	if err != nil {
		return nil, err
	}
	return pull.New(client, output.NewFS(), pull.Options{
		RootPage:        cfg.Notion.RootPage,
		MarkdownPath:    cfg.Output.MarkdownPath,
		CustomPagesPath: cfg.Output.CustomPagesPath,
		StatusTag:       cfg.Output.StatusTag,
		OutlineTitle:    cfg.Output.OutlineTitle,
		Fingerprint:     cfg.Output.Fingerprint,
		Confirm:         confirm,
	}, pull.WithRetry(executor), pull.WithRecorder(recorder), pull.WithLogger(logger), pull.WithHooks(set)), nil
}

// newRecorder returns a Prometheus recorder when a textfile is configured.
func newRecorder(cfg *config.Config) (metrics.Recorder, *metrics.PrometheusRecorder) {
	if cfg.Metrics.Textfile == "" {
		return metrics.NoopRecorder{}, nil
	}
	prom := metrics.NewPrometheusRecorder(nil)
	return prom, prom
}

// promptOverwrite asks on out and reads the answer from in.
func promptOverwrite(in io.Reader, out io.Writer) output.Confirm {
	reader := bufio.NewReader(in)
	return func(path string) (bool, error) {
		_, _ = fmt.Fprintf(out, "%s already exists. Overwrite? [y/N] ", path)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return false, nil
			}
			return false, fmt.Errorf("read confirmation: %w", err)
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}
