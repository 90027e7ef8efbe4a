package privacy

import (
	"regexp"
	"strings"
)

// emailPattern keeps the literal '|' in the TLD class
var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)

// deidentifyEmails replaces every email with an identifier scoped address on
// the same provider class. identifier is expected lower-cased.
func (e *Engine) deidentifyEmails(text, identifier string) (string, passStats) {
	var stats passStats
	out := emailPattern.ReplaceAllStringFunc(text, func(email string) string {
		return e.emails.resolve(email, &stats, func() string {
			return emailReplacement(email, identifier)
		})
	})
	return out, stats
}

func emailReplacement(email, identifier string) string {
	domain := email[strings.IndexByte(email, '@')+1:]
	switch {
	case strings.Contains(domain, "gmail.com"):
		return identifier + "@gmail.com"
	case strings.Contains(domain, "hotmail.com"):
		return identifier + "@hotmail.com"
	default:
		return identifier + "@example.com"
	}
}
