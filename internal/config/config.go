package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docnotion/internal/foundation/errors"
)

// DefaultConfigFile is looked up in the working directory when --config is not given.
const DefaultConfigFile = "docnotion.yaml"

// Config represents the application configuration.
type Config struct {
	Notion  NotionConfig  `yaml:"notion"`
	Retry   RetryConfig   `yaml:"retry"`
	Output  OutputConfig  `yaml:"output"`
	Hooks   HooksConfig   `yaml:"hooks"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// NotionConfig describes how to reach the remote workspace.
type NotionConfig struct {
	Token         string        `yaml:"token"`
	RootPage      string        `yaml:"root_page"`
	APIURL        string        `yaml:"api_url,omitempty"`
	APIVersion    string        `yaml:"api_version,omitempty"`
	RatePerSecond float64       `yaml:"rate_per_second,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty"`
}

// RetryConfig bounds the retry loop around every remote call.
type RetryConfig struct {
	MaxAttempts  int              `yaml:"max_attempts,omitempty"`
	InitialDelay time.Duration    `yaml:"initial_delay,omitempty"`
	Backoff      RetryBackoffMode `yaml:"backoff,omitempty"`
}

// OutputConfig represents where and what gets written.
type OutputConfig struct {
	MarkdownPath    string `yaml:"markdown_path"`
	CustomPagesPath string `yaml:"custom_pages_path,omitempty"`
	StatusTag       string `yaml:"status_tag,omitempty"`
	OutlineTitle    string `yaml:"outline_title,omitempty"`
	Fingerprint     bool   `yaml:"fingerprint,omitempty"`
}

// HooksConfig enables/disables built-in hooks and declares regex markdown modifications.
type HooksConfig struct {
	Disabled []string          `yaml:"disabled,omitempty"`
	Regex    []RegexHookConfig `yaml:"regex,omitempty"`
}

// RegexHookConfig is a regex-based markdown tweak applied after link resolution.
type RegexHookConfig struct {
	Name              string   `yaml:"name"`
	Pattern           string   `yaml:"pattern"`
	Replacement       string   `yaml:"replacement"`
	IncludeCodeBlocks bool     `yaml:"include_code_blocks,omitempty"`
	Imports           []string `yaml:"imports,omitempty"`
}

// MetricsConfig controls Prometheus metric export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// Load loads configuration from the specified file. A missing file is not an
// error when path is the default file name; defaults and environment are applied
// either way.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	cfg := &Config{}
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", configPath, err)
		}
		slog.Debug("Loaded configuration", "path", configPath)
	case os.IsNotExist(err) && (configPath == "" || configPath == DefaultConfigFile):
		slog.Debug("No configuration file found, using defaults", "path", configPath)
	case os.IsNotExist(err):
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Notion.APIURL == "" {
		cfg.Notion.APIURL = "https://api.notion.com/v1"
	}
	if cfg.Notion.APIVersion == "" {
		cfg.Notion.APIVersion = "2022-06-28"
	}
	if cfg.Notion.RatePerSecond <= 0 {
		cfg.Notion.RatePerSecond = 3
	}
	if cfg.Notion.Timeout <= 0 {
		cfg.Notion.Timeout = 60 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 10
	}
	if cfg.Retry.InitialDelay <= 0 {
		cfg.Retry.InitialDelay = time.Second
	}
	if mode := NormalizeRetryBackoff(string(cfg.Retry.Backoff)); mode != "" {
		cfg.Retry.Backoff = mode
	} else {
		cfg.Retry.Backoff = RetryBackoffLinear
	}
	if cfg.Output.MarkdownPath == "" {
		cfg.Output.MarkdownPath = "./docs"
	}
	cfg.Output.MarkdownPath = strings.TrimRight(cfg.Output.MarkdownPath, "/")
	if cfg.Output.CustomPagesPath == "" {
		cfg.Output.CustomPagesPath = "src/pages"
	}
	if cfg.Output.StatusTag == "" {
		cfg.Output.StatusTag = "Publish"
	}
	if cfg.Output.OutlineTitle == "" {
		cfg.Output.OutlineTitle = "Outline"
	}
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
}

// HookEnabled reports whether a built-in hook was not disabled in configuration.
func (c *Config) HookEnabled(name string) bool {
	for _, d := range c.Hooks.Disabled {
		if strings.EqualFold(strings.TrimSpace(d), name) {
			return false
		}
	}
	return true
}

// Redacted returns a copy safe for logging: only the first few characters of the token survive.
func (c *Config) Redacted() Config {
	cp := *c
	if len(cp.Notion.Token) > 10 {
		cp.Notion.Token = cp.Notion.Token[:10] + "..."
	} else if cp.Notion.Token != "" {
		cp.Notion.Token = "..."
	}
	return cp
}

// Seed holds values written into a fresh configuration file in place of the
// example defaults. Empty fields keep the example value.
type Seed struct {
	RootPage     string
	MarkdownPath string
	StatusTag    string
}

func (s Seed) apply(doc string) string {
	var pairs []string
	if s.RootPage != "" {
		pairs = append(pairs, `root_page: "${`+EnvRootPage+`}"`, fmt.Sprintf("root_page: %q", s.RootPage))
	}
	if s.MarkdownPath != "" {
		pairs = append(pairs, "markdown_path: ./docs", fmt.Sprintf("markdown_path: %q", s.MarkdownPath))
	}
	if s.StatusTag != "" {
		pairs = append(pairs, "status_tag: Publish", fmt.Sprintf("status_tag: %q", s.StatusTag))
	}
	if len(pairs) == 0 {
		return doc
	}
	return strings.NewReplacer(pairs...).Replace(doc)
}

// Init writes an example configuration file, seeded with seed. An existing file
// is only replaced when force is set. Parent directories are created.
func Init(configPath string, force bool, seed Seed) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists").
			WithContext("path", configPath).
			WithContext("hint", "use --force to overwrite").
			Build()
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create config directory").
				WithContext("path", dir).
				Build()
		}
	}
	if err := os.WriteFile(configPath, []byte(seed.apply(exampleConfig)), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}

const exampleConfig = `# docnotion configuration
notion:
  token: "${NOTION_TOKEN}"
  root_page: "${DOCNOTION_ROOT_PAGE}"
  rate_per_second: 3

retry:
  max_attempts: 10
  initial_delay: 1s
  backoff: linear

output:
  markdown_path: ./docs
  custom_pages_path: src/pages
  status_tag: Publish   # "*" publishes every database page
  outline_title: Outline

hooks:
  disabled: []
  regex: []
  #  - name: youtube
  #    pattern: '\[.*\]\((https://www\.youtube\.com/watch\?v=[^)]+)\)'
  #    replacement: '<iframe src="$1"></iframe>'

logging:
  level: info
  format: text
`
