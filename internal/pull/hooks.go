package pull

import (
	"log/slog"

	"git.home.luguber.info/inful/docnotion/internal/config"
	"git.home.luguber.info/inful/docnotion/internal/foundation/errors"
	"git.home.luguber.info/inful/docnotion/internal/hooks"
	"git.home.luguber.info/inful/docnotion/internal/links"
	"git.home.luguber.info/inful/docnotion/internal/render"
)

// NewHookSet registers the built-in hooks that are not disabled in cfg,
// followed by the configured regex modifications.
func NewHookSet(cfg *config.Config, logger *slog.Logger) (*hooks.Set, error) {
	if logger == nil {
		logger = slog.Default()
	}
	builtins := []struct {
		name  string
		hooks []hooks.Hook
	}{
		{hooks.NameAnnotationSpacing, []hooks.Hook{hooks.AnnotationSpacing()}},
		{render.NameHeadingIDs, render.HeadingIDs()},
		{render.NameTabs, []hooks.Hook{render.Tabs()}},
		{links.NameInternalLinks, []hooks.Hook{links.InternalLinks(logger)}},
		{links.NameExternalLinks, []hooks.Hook{links.ExternalLinks(logger)}},
	}

	set := hooks.NewSet()
	for _, b := range builtins {
		if !cfg.HookEnabled(b.name) {
			logger.Debug("Built-in hook disabled", slog.String("hook", b.name))
			continue
		}
		if err := set.Register(b.hooks...); err != nil {
			return nil, errors.WrapError(err, errors.CategoryInternal, "failed to register built-in hook").
				WithContext("hook", b.name).
				Build()
		}
	}

	regex, err := hooks.RegexFromConfig(cfg.Hooks.Regex)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid regex hook").Build()
	}
	if err := set.Register(regex...); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid regex hook").Build()
	}
	return set, nil
}
