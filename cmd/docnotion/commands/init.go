package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docnotion/internal/config"
	"git.home.luguber.info/inful/docnotion/internal/page"
)

// InitCmd writes a starter docnotion.yaml, optionally pre-filled for a workspace.
type InitCmd struct {
	Dir                string `arg:"" optional:"" help:"Site directory to place docnotion.yaml in (default: --config path)"`
	Force              bool   `help:"Replace an existing configuration file"`
	RootPage           string `short:"r" name:"root-page" help:"Root page id or URL id, with or without dashes"`
	MarkdownOutputPath string `short:"m" name:"markdown-output-path" help:"Markdown directory to record in the file"`
	StatusTag          string `short:"t" name:"status-tag" help:"Status to record in the file; '*' publishes every page"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	target := root.Config
	if i.Dir != "" {
		target = filepath.Join(i.Dir, config.DefaultConfigFile)
	}
	seed := config.Seed{
		MarkdownPath: i.MarkdownOutputPath,
		StatusTag:    i.StatusTag,
	}
	if i.RootPage != "" {
		seed.RootPage = page.NormalizeID(i.RootPage)
	}
	return RunInit(os.Stdout, target, i.Force, seed)
}

// RunInit writes the configuration file and tells the operator what is still missing.
func RunInit(out io.Writer, configPath string, force bool, seed config.Seed) error {
	if err := config.Init(configPath, force, seed); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Wrote %s\n", configPath)

	var missing []string
	if os.Getenv(config.EnvToken) == "" {
		missing = append(missing, config.EnvToken)
	}
	if seed.RootPage == "" && os.Getenv(config.EnvRootPage) == "" {
		missing = append(missing, config.EnvRootPage)
	}
	for _, name := range missing {
		_, _ = fmt.Fprintf(out, "  %s is not set; export it or put it in .env\n", name)
	}
	_, _ = fmt.Fprintf(out, "Next: docnotion pull --config %s\n", configPath)
	return nil
}
