package japanese

import (
	"regexp"
	"strings"
)

// annotatedReading matches inline reading annotations such as 漢字(かんじ).
var annotatedReading = regexp.MustCompile(`[^()\s\x{3000}]+\([^()]+\)`)

// placeholderBase is the first rune of the Private Use Area; annotations are
// swapped for single runes from there so no analyzer tier can split them.
const placeholderBase = 0xE000

// protectReadings replaces every reading annotation in text with a
// placeholder rune and returns a replacer that restores them.
func protectReadings(text string) (string, *strings.Replacer) {
	matches := annotatedReading.FindAllString(text, -1)
	if len(matches) == 0 {
		return text, strings.NewReplacer()
	}

	var i int
	protected := annotatedReading.ReplaceAllStringFunc(text, func(string) string {
		r := string(rune(placeholderBase + i))
		i++
		return r
	})

	pairs := make([]string, 0, len(matches)*2)
	for n, m := range matches {
		pairs = append(pairs, string(rune(placeholderBase+n)), m)
	}
	return protected, strings.NewReplacer(pairs...)
}

// isPlaceholder reports whether r lies in the Private Use Area used by
// protectReadings.
func isPlaceholder(r rune) bool {
	return r >= placeholderBase && r <= 0xF8FF
}

// splitPlaceholders breaks a surface holding more than one placeholder into
// one part per placeholder, keeping the text between them as its own parts.
// Any other surface is returned whole.
func splitPlaceholders(surface string) []string {
	var n int
	for _, r := range surface {
		if isPlaceholder(r) {
			n++
		}
	}
	if n < 2 {
		return []string{surface}
	}

	parts := make([]string, 0, n+1)
	var rest strings.Builder
	for _, r := range surface {
		if !isPlaceholder(r) {
			rest.WriteRune(r)
			continue
		}
		if rest.Len() > 0 {
			parts = append(parts, rest.String())
			rest.Reset()
		}
		parts = append(parts, string(r))
	}
	if rest.Len() > 0 {
		parts = append(parts, rest.String())
	}
	return parts
}

// particles are tried in this order at each position; the first
// alternative that matches wins.
var particles = []string{
	"は", "が", "を", "に", "へ", "で", "と", "も", "から", "まで",
	"より", "の", "か", "や", "など", "だけ", "ばかり", "ほど",
	"くらい", "ぐらい", "までに", "によって", "について", "に対して",
}

var particlePattern = func() *regexp.Regexp {
	quoted := make([]string, 0, len(particles))
	for _, p := range particles {
		quoted = append(quoted, regexp.QuoteMeta(p))
	}
	return regexp.MustCompile(strings.Join(quoted, "|"))
}()

// SplitParticles segments text at grammatical particles. Text between
// particles is trimmed and kept as one token; reading annotations are never
// split. It needs no dictionary and always succeeds.
func SplitParticles(text string) []string {
	protected, restore := protectReadings(strings.TrimSpace(text))

	var tokens []string
	emit := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			tokens = append(tokens, restore.Replace(s))
		}
	}

	last := 0
	for _, loc := range particlePattern.FindAllStringIndex(protected, -1) {
		emit(protected[last:loc[0]])
		emit(protected[loc[0]:loc[1]])
		last = loc[1]
	}
	emit(protected[last:])

	if tokens == nil {
		return []string{}
	}
	return tokens
}
