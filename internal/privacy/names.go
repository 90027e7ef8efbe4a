package privacy

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/raaihank/deidentify/internal/config"
)

// knownName is a full name matched case-insensitively anywhere in the text,
// including inside longer words.
type knownName struct {
	name    string
	label   string
	pattern *regexp.Regexp
}

// commonName is a first name matched case-sensitively as a whole word
type commonName struct {
	name    string
	pattern *regexp.Regexp
}

func compileNames(cfg config.NamesConfig) ([]knownName, []commonName, error) {
	known := make([]knownName, 0, len(cfg.Known))
	for _, kn := range cfg.Known {
		if strings.TrimSpace(kn.Name) == "" {
			return nil, nil, fmt.Errorf("known name entry with empty name")
		}
		known = append(known, knownName{
			name:    kn.Name,
			label:   kn.Label,
			pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kn.Name)),
		})
	}

	common := make([]commonName, 0, len(cfg.Common))
	for _, name := range cfg.Common {
		if strings.TrimSpace(name) == "" {
			return nil, nil, fmt.Errorf("common name list contains an empty name")
		}
		common = append(common, commonName{
			name:    name,
			pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`),
		})
	}

	return known, common, nil
}

// deidentifyNames runs the known full-name pass and then the standalone
// first-name pass. identifier is expected upper-cased.
func (e *Engine) deidentifyNames(text, identifier string) (string, passStats) {
	var stats passStats

	for _, kn := range e.knownNames {
		replacement := identifier
		if e.useRoleLabels && kn.label != "" {
			replacement = kn.label
		}
		text = kn.pattern.ReplaceAllStringFunc(text, func(string) string {
			stats.count++
			return replacement
		})
	}

	for _, cn := range e.commonNames {
		var n int
		text, n = replaceStandalone(text, cn.pattern, identifier)
		stats.count += n
	}

	return text, stats
}

// replaceStandalone replaces matches of pattern unless they are directly
// followed by whitespace and a capitalised word.
func replaceStandalone(text string, pattern *regexp.Regexp, replacement string) (string, int) {
	matches := pattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text, 0
	}

	var b strings.Builder
	b.Grow(len(text))

	last, replaced := 0, 0
	for _, m := range matches {
		if followedByCapitalized(text[m[1]:]) {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(replacement)
		last = m[1]
		replaced++
	}
	b.WriteString(text[last:])

	return b.String(), replaced
}

func followedByCapitalized(rest string) bool {
	trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
	if len(trimmed) == len(rest) || trimmed == "" {
		return false
	}
	return trimmed[0] >= 'A' && trimmed[0] <= 'Z'
}
