package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnotion/internal/config"
	"git.home.luguber.info/inful/docnotion/internal/foundation/errors"
)

func parse(t *testing.T, args ...string) (*CLI, *Global, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	g := &Global{}
	parser, err := kong.New(cli, kong.Bind(g), kong.Vars{"version": "test"})
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, g, ctx
}

func TestParsePullFlags(t *testing.T) {
	cli, g, ctx := parse(t, "pull", "-n", "tok", "-r", "root", "-m", "out/", "-t", "*", "-y", "--fingerprint")

	assert.Equal(t, "pull", ctx.Command())
	assert.NotNil(t, g.Logger)
	assert.Equal(t, "docnotion.yaml", cli.Config)
	assert.Equal(t, "tok", cli.Pull.NotionToken)
	assert.Equal(t, "root", cli.Pull.RootPage)
	assert.Equal(t, "out/", cli.Pull.MarkdownOutputPath)
	assert.Equal(t, "*", cli.Pull.StatusTag)
	assert.True(t, cli.Pull.Yes)
	assert.True(t, cli.Pull.Fingerprint)
}

func TestParseSchedule(t *testing.T) {
	cli, _, ctx := parse(t, "schedule", "--every", "15m", "-r", "root")
	assert.Equal(t, "schedule", ctx.Command())
	assert.Equal(t, 15*time.Minute, cli.Schedule.Every)

	cli, _, _ = parse(t, "schedule")
	assert.Equal(t, time.Hour, cli.Schedule.Every)
}

func TestPullFlagsOverrideConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Notion.Token = "from-file"
	cfg.Output.MarkdownPath = "./docs"
	cfg.Output.StatusTag = "Publish"

	PullFlags{
		NotionToken:        "from-flag",
		MarkdownOutputPath: "site/docs/",
		LogLevel:           "WARN",
		Fingerprint:        true,
	}.apply(cfg)

	assert.Equal(t, "from-flag", cfg.Notion.Token)
	assert.Equal(t, "site/docs", cfg.Output.MarkdownPath)
	assert.Equal(t, "Publish", cfg.Output.StatusTag, "unset flags leave values alone")
	assert.Equal(t, config.LogLevelWarn, cfg.Logging.Level)
	assert.True(t, cfg.Output.Fingerprint)
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(config.EnvToken, "env-token")
	t.Setenv(config.EnvRootPage, "env-root")

	path := filepath.Join(dir, "docnotion.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  status_tag: Ready\n"), 0o600))

	cfg, err := loadConfig(&CLI{Config: path, Verbose: true}, PullFlags{RootPage: "flag-root"})
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Notion.Token)
	assert.Equal(t, "flag-root", cfg.Notion.RootPage)
	assert.Equal(t, "Ready", cfg.Output.StatusTag)
	assert.Equal(t, config.LogLevelDebug, cfg.Logging.Level)
}

func TestLoadConfigRequiresToken(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvToken, "")
	t.Setenv(config.EnvRootPage, "")

	_, err := loadConfig(&CLI{Config: config.DefaultConfigFile}, PullFlags{RootPage: "root"})
	require.Error(t, err)
	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryConfig, classified.Category())
}

func TestPromptOverwrite(t *testing.T) {
	var out bytes.Buffer
	confirm := promptOverwrite(strings.NewReader("y\nno\nYES\n"), &out)

	for _, want := range []bool{true, false, true, false} {
		got, err := confirm("src/pages/About.md")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Contains(t, out.String(), "src/pages/About.md already exists. Overwrite? [y/N]")
}

func TestRunInit(t *testing.T) {
	t.Setenv(config.EnvToken, "")
	t.Setenv(config.EnvRootPage, "")
	path := filepath.Join(t.TempDir(), config.DefaultConfigFile)

	var out bytes.Buffer
	require.NoError(t, RunInit(&out, path, false, config.Seed{}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "status_tag: Publish")
	assert.Contains(t, out.String(), "NOTION_TOKEN is not set")
	assert.Contains(t, out.String(), "DOCNOTION_ROOT_PAGE is not set")

	require.Error(t, RunInit(&out, path, false, config.Seed{}))
	require.NoError(t, RunInit(&out, path, true, config.Seed{}))
}

func TestInitCommandSeedsRootPage(t *testing.T) {
	t.Setenv(config.EnvToken, "tok")
	dir := filepath.Join(t.TempDir(), "site")
	cli, g, ctx := parse(t, "init", dir, "-r", "4a6de8c0b90b444b8a7bd534d6ec71a4", "-t", "*")
	assert.True(t, strings.HasPrefix(ctx.Command(), "init"))

	require.NoError(t, cli.Init.Run(g, cli))
	data, err := os.ReadFile(filepath.Join(dir, config.DefaultConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `root_page: "4a6de8c0-b90b-444b-8a7b-d534d6ec71a4"`)
	assert.Contains(t, string(data), `status_tag: "*"`)
}
