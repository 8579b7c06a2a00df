package config

import (
	"regexp"

	"git.home.luguber.info/inful/docnotion/internal/foundation/errors"
)

// Validate checks the fields a pull cannot run without.
func (c *Config) Validate() error {
	if c.Notion.Token == "" {
		return errors.ConfigError("notion token is required").
			WithContext("hint", "set --notion-token, notion.token or "+EnvToken).
			Build()
	}
	if c.Notion.RootPage == "" {
		return errors.ConfigError("root page id is required").
			WithContext("hint", "set --root-page, notion.root_page or "+EnvRootPage).
			Build()
	}
	if c.Retry.MaxAttempts < 1 {
		return errors.ValidationError("retry.max_attempts must be at least 1").Build()
	}
	for _, h := range c.Hooks.Regex {
		if h.Name == "" {
			return errors.ValidationError("regex hook requires a name").Build()
		}
		if _, err := regexp.Compile(h.Pattern); err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "invalid regex hook pattern").
				Fatal().
				WithContext("hook", h.Name).
				Build()
		}
	}
	return nil
}
