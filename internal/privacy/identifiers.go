package privacy

import (
	"fmt"
	"strings"
)

var idPatterns = []replacer{
	newBoundedPattern(`ID:` + space + `*` + digit + `+`),
	newBoundedPattern(`Mobile:` + space + `*` + digit + `+`),
}

func (e *Engine) deidentifyIDs(text string) (string, passStats) {
	var stats passStats
	for _, pattern := range idPatterns {
		text = pattern.ReplaceAllStringFunc(text, func(id string) string {
			return e.ids.resolve(id, &stats, func() string {
				e.idCounter++
				return idReplacement(id, e.idCounter)
			})
		})
	}
	return text, stats
}

func idReplacement(id string, n int) string {
	switch {
	case strings.Contains(id, "ID:"):
		return fmt.Sprintf("ID: %06d", n)
	case strings.Contains(id, "Mobile:"):
		return fmt.Sprintf("Mobile: XXXX%03d", n)
	default:
		return fmt.Sprintf("ID_%d", n)
	}
}
