package signal

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NameResolver links a player name to one already seen in the same run.
// Implementations must be deterministic for a given seen order.
type NameResolver interface {
	// Resolve returns the entry of seen that name refers to, if any.
	Resolve(name string, seen []string) (string, bool)
}

// ExactResolver only links names that are identical after normalization.
type ExactResolver struct{}

// Resolve implements NameResolver.
func (ExactResolver) Resolve(name string, seen []string) (string, bool) {
	key := FoldName(name)
	for _, s := range seen {
		if FoldName(s) == key {
			return s, true
		}
	}
	return "", false
}

// SuffixResolver links a short form ("C. McDavid", "McDavid") to the first
// seen name sharing its last token. Two players with the same surname will be
// merged when only the short form is available.
type SuffixResolver struct{}

// Resolve implements NameResolver.
func (SuffixResolver) Resolve(name string, seen []string) (string, bool) {
	if s, ok := (ExactResolver{}).Resolve(name, seen); ok {
		return s, true
	}

	tokens := strings.Fields(FoldName(name))
	if len(tokens) == 0 || !isShortForm(tokens) {
		return "", false
	}
	surname := tokens[len(tokens)-1]

	for _, s := range seen {
		seenTokens := strings.Fields(FoldName(s))
		if len(seenTokens) < 2 {
			continue
		}
		if seenTokens[len(seenTokens)-1] != surname {
			continue
		}
		if len(tokens) == 2 && !strings.HasPrefix(seenTokens[0], tokens[0]) {
			continue
		}
		return s, true
	}
	return "", false
}

// isShortForm reports a bare surname or an initial followed by a surname.
func isShortForm(tokens []string) bool {
	switch len(tokens) {
	case 1:
		return true
	case 2:
		return len([]rune(tokens[0])) == 1
	default:
		return false
	}
}

// stripAccents builds a fresh chain per call: a transform.Chain keeps
// internal buffers and must not be shared across goroutines.
func stripAccents(s string) (string, error) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	return out, err
}

// FoldName lowercases, strips accents and drops punctuation.
func FoldName(name string) string {
	name = strings.ToLower(name)
	if stripped, err := stripAccents(name); err == nil {
		name = stripped
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || r == '-' || r == '\'' {
			return r
		}
		return ' '
	}, name)
	return strings.Join(strings.Fields(name), " ")
}
