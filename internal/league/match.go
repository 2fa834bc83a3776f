package league

import (
	"regexp"
	"strings"
)

// Match is a parsed match name. Sides are returned as written.
type Match struct {
	Home string
	Away string
}

// "<A> vs <B>" lists the home side first, "<A> @ <B>" the away side first.
var (
	vsPattern = regexp.MustCompile(`(?i)^\s*(.+?)\s+vs\.?\s+(.+?)\s*$`)
	atPattern = regexp.MustCompile(`^\s*(.+?)\s*@\s*(.+?)\s*$`)
)

// ParseMatch splits "<A> vs <B>", "<A> vs. <B>" or "<A> @ <B>".
func ParseMatch(name string) (Match, bool) {
	if m := vsPattern.FindStringSubmatch(name); m != nil {
		return Match{Home: m[1], Away: m[2]}, true
	}
	if m := atPattern.FindStringSubmatch(name); m != nil {
		return Match{Home: m[2], Away: m[1]}, true
	}
	return Match{}, false
}

// Sides returns home then away.
func (m Match) Sides() []string {
	return []string{m.Home, m.Away}
}

// IsSeparator reports whether a token is a match separator rather than a name.
func IsSeparator(token string) bool {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "vs", "vs.", "@", "v", "v.", "at":
		return true
	default:
		return false
	}
}
