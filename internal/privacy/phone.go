package privacy

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

type phoneRule struct {
	name    string
	pattern replacer
}

// phoneRules run in this order, each over the output of the previous one.
// The bare digit rule also hits long non-phone numbers such as account IDs.
var phoneRules = []phoneRule{
	{"international", regexp.MustCompile(`\+61` + space + `?` + digit + `+` + space + `?` + digit + `+` + space + `?` + digit + `+`)},
	{"mobile", newBoundedPattern(`0` + digit + `{3}` + space + `?` + digit + `{3}` + space + `?` + digit + `{3}`)},
	{"digits", newBoundedPattern(digit + `{9,10}`)},
	{"area_code", newBoundedPattern(`\(` + digit + `{2}\)` + space + `?` + digit + `{4}` + space + `?` + digit + `{4}`)},
	{"landline", newBoundedPattern(`0[2-9]` + space + `?` + digit + `{4}` + space + `?` + digit + `{4}`)},
}

func (e *Engine) deidentifyPhones(text string) (string, passStats) {
	var stats passStats
	for _, rule := range phoneRules {
		before := stats.count
		text = rule.pattern.ReplaceAllStringFunc(text, func(phone string) string {
			return e.phones.resolve(phone, &stats, func() string {
				e.phoneCounter++
				return phoneReplacement(phone, e.phoneCounter)
			})
		})
		if matched := stats.count - before; matched > 0 {
			e.logger.Debug("Phone rule matched",
				zap.String("rule", rule.name),
				zap.Int("count", matched),
			)
		}
	}
	return text, stats
}

func phoneReplacement(phone string, n int) string {
	switch {
	case strings.HasPrefix(phone, "0"):
		return fmt.Sprintf("0XXX XXX %03d", n)
	case strings.Contains(phone, "+61"):
		return fmt.Sprintf("+61 XXX XXX %03d", n)
	default:
		return fmt.Sprintf("XXX XXX %03d", n)
	}
}
