package privacy

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Character classes shared by the phone and identifier rules. Whitespace and
// digits are Unicode-aware so NBSP-separated or non-ASCII digit runs are
// still caught.
const (
	space = `[\t\n\v\f\r\x{1c}-\x{1f}\x{85}\p{Z}]`
	digit = `\p{Nd}`
)

// replacer is the subset of *regexp.Regexp the matchers rely on
type replacer interface {
	ReplaceAllStringFunc(src string, repl func(string) string) string
}

// boundedPattern matches core only where a Unicode word boundary holds on
// both sides. RE2's \b only knows ASCII word characters, so a digit run in
// another script would never satisfy it. core must end in a word character.
type boundedPattern struct {
	re *regexp.Regexp
}

func newBoundedPattern(core string) *boundedPattern {
	return &boundedPattern{
		re: regexp.MustCompile(`^(` + core + `)(?:[^\p{L}\p{N}_]|\z)`),
	}
}

// ReplaceAllStringFunc replaces every bounded match, scanning left to right
// and resuming after each replacement
func (p *boundedPattern) ReplaceAllStringFunc(text string, repl func(string) string) string {
	var b strings.Builder
	last := 0
	prevWord := false

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if prevWord != isWordRune(r) {
			if loc := p.re.FindStringSubmatchIndex(text[i:]); loc != nil && loc[3] > 0 {
				end := i + loc[3]
				b.WriteString(text[last:i])
				b.WriteString(repl(text[i:end]))
				last = end

				lastRune, _ := utf8.DecodeLastRuneInString(text[i:end])
				prevWord = isWordRune(lastRune)
				i = end
				continue
			}
		}
		prevWord = isWordRune(r)
		i += size
	}

	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// isWordRune reports whether r is a word character: a letter, a number or an
// underscore in any script
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
