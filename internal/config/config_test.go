package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnotion/internal/foundation/errors"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvToken, "secret_token_value")
	t.Setenv(EnvRootPage, "root-id")

	cfg, err := Load(DefaultConfigFile)
	require.NoError(t, err)

	assert.Equal(t, "secret_token_value", cfg.Notion.Token)
	assert.Equal(t, "root-id", cfg.Notion.RootPage)
	assert.Equal(t, "https://api.notion.com/v1", cfg.Notion.APIURL)
	assert.InDelta(t, 3.0, cfg.Notion.RatePerSecond, 0.0001)
	assert.Equal(t, 10, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.InitialDelay)
	assert.Equal(t, RetryBackoffLinear, cfg.Retry.Backoff)
	assert.Equal(t, "./docs", cfg.Output.MarkdownPath)
	assert.Equal(t, "src/pages", cfg.Output.CustomPagesPath)
	assert.Equal(t, "Publish", cfg.Output.StatusTag)
	assert.Equal(t, "Outline", cfg.Output.OutlineTitle)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestLoad_FileWithEnvExpansion(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("MY_TOKEN", "from-env")
	t.Setenv(EnvRootPage, "ignored")

	content := `notion:
  token: "${MY_TOKEN}"
  root_page: abc123
retry:
  max_attempts: 4
  backoff: EXPONENTIAL
output:
  markdown_path: out/docs/
  status_tag: "*"
hooks:
  disabled: [heading-ids]
  regex:
    - name: shout
      pattern: 'hello'
      replacement: 'HELLO'
logging:
  level: verbose
  format: json
`
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Notion.Token)
	assert.Equal(t, "abc123", cfg.Notion.RootPage)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.Equal(t, RetryBackoffExponential, cfg.Retry.Backoff)
	assert.Equal(t, "out/docs", cfg.Output.MarkdownPath)
	assert.Equal(t, "*", cfg.Output.StatusTag)
	assert.False(t, cfg.HookEnabled("heading-ids"))
	assert.True(t, cfg.HookEnabled("tabs"))
	require.Len(t, cfg.Hooks.Regex, 1)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NOTION_TOKEN=dotenv\nDOCNOTION_ROOT_PAGE=from-dotenv\n"), 0o600))
	t.Setenv(EnvToken, "process")
	t.Setenv(EnvRootPage, "")
	require.NoError(t, os.Unsetenv(EnvRootPage))

	cfg, err := Load(DefaultConfigFile)
	require.NoError(t, err)
	assert.Equal(t, "process", cfg.Notion.Token)
	assert.Equal(t, "from-dotenv", cfg.Notion.RootPage)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		category errors.ErrorCategory
	}{
		{"missing token", func(c *Config) { c.Notion.Token = "" }, errors.CategoryConfig},
		{"missing root", func(c *Config) { c.Notion.RootPage = "" }, errors.CategoryConfig},
		{"bad regex", func(c *Config) {
			c.Hooks.Regex = []RegexHookConfig{{Name: "x", Pattern: "("}}
		}, errors.CategoryValidation},
		{"unnamed regex", func(c *Config) {
			c.Hooks.Regex = []RegexHookConfig{{Pattern: "a"}}
		}, errors.CategoryValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Notion: NotionConfig{Token: "t", RootPage: "r"}}
			applyDefaults(cfg)
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, tt.category))
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := &Config{Notion: NotionConfig{Token: "secret_abcdefghijklmnop"}}
	assert.Equal(t, "secret_abc...", cfg.Redacted().Notion.Token)
	assert.Equal(t, "secret_abcdefghijklmnop", cfg.Notion.Token)

	short := &Config{Notion: NotionConfig{Token: "abc"}}
	assert.Equal(t, "...", short.Redacted().Notion.Token)
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, Init(path, false, Seed{}))
	err := Init(path, false, Seed{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	require.NoError(t, Init(path, true, Seed{}))

	t.Setenv(EnvToken, "tok")
	t.Setenv(EnvRootPage, "root")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tok", cfg.Notion.Token)
	assert.Equal(t, "root", cfg.Notion.RootPage)
	require.NoError(t, cfg.Validate())
}

func TestInitWithSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site", DefaultConfigFile)
	require.NoError(t, Init(path, false, Seed{RootPage: "4a6de8c0-b90b-444b-8a7b-d534d6ec71a4", MarkdownPath: "website/docs", StatusTag: "*"}))

	t.Setenv(EnvToken, "tok")
	t.Setenv(EnvRootPage, "from-env")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "4a6de8c0-b90b-444b-8a7b-d534d6ec71a4", cfg.Notion.RootPage)
	assert.Equal(t, "website/docs", cfg.Output.MarkdownPath)
	assert.Equal(t, "*", cfg.Output.StatusTag)
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, NormalizeLogLevel(" DEBUG "))
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("warning"))
	assert.Equal(t, LogLevelError, NormalizeLogLevel("error"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("bogus"))
}
