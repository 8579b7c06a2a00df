package hooks

import (
	"log/slog"
	"regexp"

	"git.home.luguber.info/inful/docnotion/internal/config"
	"git.home.luguber.info/inful/docnotion/internal/logfields"
)

// RegexFromConfig compiles the regex modifications declared in configuration.
func RegexFromConfig(cfgs []config.RegexHookConfig) ([]Hook, error) {
	out := make([]Hook, 0, len(cfgs))
	for _, c := range cfgs {
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, RegexModification{
			Name:              c.Name,
			Pattern:           re,
			Replacement:       c.Replacement,
			IncludeCodeBlocks: c.IncludeCodeBlocks,
			Imports:           c.Imports,
		})
	}
	return out, nil
}

// CodeRangeFunc reports the byte ranges of fenced code in a document.
type CodeRangeFunc func(body []byte) [][2]int

// ApplyRegex runs every regex modification over body. Matches inside fenced
// code are left alone unless the modification opts in. It returns the new
// body and the imports of every modification that changed something.
func (s *Set) ApplyRegex(body string, codeRanges CodeRangeFunc, logger *slog.Logger) (string, []string) {
	var imports []string
	for _, mod := range s.regex {
		var ranges [][2]int
		if !mod.IncludeCodeBlocks && codeRanges != nil {
			ranges = codeRanges([]byte(body))
		}
		changed := false
		out := replaceOutside(body, mod.Pattern, ranges, func(match []int) string {
			repl := string(mod.Pattern.ExpandString(nil, mod.Replacement, body, match))
			if repl != body[match[0]:match[1]] {
				changed = true
				logger.Debug("Regex modification applied", logfields.Hook(mod.Name), slog.String("match", body[match[0]:match[1]]))
			}
			return repl
		})
		if changed {
			body = out
			imports = append(imports, mod.Imports...)
		}
	}
	return body, imports
}

func replaceOutside(body string, re *regexp.Regexp, skip [][2]int, repl func(match []int) string) string {
	matches := re.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return body
	}
	var out []byte
	last := 0
	for _, m := range matches {
		if inRanges(m[0], m[1], skip) {
			continue
		}
		out = append(out, body[last:m[0]]...)
		out = append(out, repl(m)...)
		last = m[1]
	}
	out = append(out, body[last:]...)
	return string(out)
}

func inRanges(start, end int, ranges [][2]int) bool {
	for _, r := range ranges {
		if start < r[1] && end > r[0] {
			return true
		}
	}
	return false
}
