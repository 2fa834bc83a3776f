// Package league holds the NHL team directory and match-name parsing.
package league

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Team represents one franchise.
type Team struct {
	Abbrev   string
	City     string
	Nickname string
}

// FullName returns "<City> <Nickname>".
func (t Team) FullName() string {
	return t.City + " " + t.Nickname
}

var nhlTeams = []Team{
	{"ANA", "Anaheim", "Ducks"},
	{"BOS", "Boston", "Bruins"},
	{"BUF", "Buffalo", "Sabres"},
	{"CGY", "Calgary", "Flames"},
	{"CAR", "Carolina", "Hurricanes"},
	{"CHI", "Chicago", "Blackhawks"},
	{"COL", "Colorado", "Avalanche"},
	{"CBJ", "Columbus", "Blue Jackets"},
	{"DAL", "Dallas", "Stars"},
	{"DET", "Detroit", "Red Wings"},
	{"EDM", "Edmonton", "Oilers"},
	{"FLA", "Florida", "Panthers"},
	{"LAK", "Los Angeles", "Kings"},
	{"MIN", "Minnesota", "Wild"},
	{"MTL", "Montreal", "Canadiens"},
	{"NSH", "Nashville", "Predators"},
	{"NJD", "New Jersey", "Devils"},
	{"NYI", "New York", "Islanders"},
	{"NYR", "New York", "Rangers"},
	{"OTT", "Ottawa", "Senators"},
	{"PHI", "Philadelphia", "Flyers"},
	{"PIT", "Pittsburgh", "Penguins"},
	{"SJS", "San Jose", "Sharks"},
	{"SEA", "Seattle", "Kraken"},
	{"STL", "St. Louis", "Blues"},
	{"TBL", "Tampa Bay", "Lightning"},
	{"TOR", "Toronto", "Maple Leafs"},
	{"UTA", "Utah", "Hockey Club"},
	{"VAN", "Vancouver", "Canucks"},
	{"VGK", "Vegas", "Golden Knights"},
	{"WSH", "Washington", "Capitals"},
	{"WPG", "Winnipeg", "Jets"},
}

// Common alternate abbreviations seen in bookmaker feeds.
var abbrevAliases = map[string]string{
	"TB":  "TBL",
	"NJ":  "NJD",
	"LA":  "LAK",
	"SJ":  "SJS",
	"VEG": "VGK",
	"WAS": "WSH",
	"MON": "MTL",
	"CLB": "CBJ",
}

// Directory resolves free-form team references to abbreviations.
// It is read-only after construction and safe for concurrent use.
type Directory struct {
	byAbbrev map[string]Team
	byName   map[string]string
	// names sorted longest first so "maple leafs" wins over "leafs"
	names []string
}

// NewDirectory builds a directory over the given teams.
func NewDirectory(teams []Team) *Directory {
	d := &Directory{
		byAbbrev: make(map[string]Team, len(teams)),
		byName:   make(map[string]string, len(teams)*3),
	}

	cityCount := make(map[string]int)
	for _, t := range teams {
		cityCount[normalizeName(t.City)]++
	}

	for _, t := range teams {
		d.byAbbrev[t.Abbrev] = t
		d.byName[normalizeName(t.FullName())] = t.Abbrev
		d.byName[normalizeName(t.Nickname)] = t.Abbrev
		// New York is shared, so the city alone is ambiguous there
		if city := normalizeName(t.City); cityCount[city] == 1 {
			d.byName[city] = t.Abbrev
		}
	}

	for name := range d.byName {
		d.names = append(d.names, name)
	}
	sort.Slice(d.names, func(i, j int) bool {
		if len(d.names[i]) != len(d.names[j]) {
			return len(d.names[i]) > len(d.names[j])
		}
		return d.names[i] < d.names[j]
	})

	return d
}

// NewNHLDirectory returns the directory of current NHL franchises.
func NewNHLDirectory() *Directory {
	return NewDirectory(nhlTeams)
}

// Team returns the team for an abbreviation.
func (d *Directory) Team(abbrev string) (Team, bool) {
	t, ok := d.byAbbrev[strings.ToUpper(abbrev)]
	return t, ok
}

// Resolve maps an abbreviation, full name, nickname or unambiguous city to an abbreviation.
func (d *Directory) Resolve(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", false
	}

	upper := strings.ToUpper(trimmed)
	if _, ok := d.byAbbrev[upper]; ok {
		return upper, true
	}
	if canonical, ok := abbrevAliases[upper]; ok {
		return canonical, true
	}

	if abbrev, ok := d.byName[normalizeName(trimmed)]; ok {
		return abbrev, true
	}
	return "", false
}

// ResolveMatch parses a match name and resolves both sides.
// ok is false when the name cannot be parsed or either side is unknown.
func (d *Directory) ResolveMatch(matchName string) (home, away string, ok bool) {
	m, parsed := ParseMatch(matchName)
	if !parsed {
		return "", "", false
	}
	home, okHome := d.Resolve(m.Home)
	away, okAway := d.Resolve(m.Away)
	if !okHome || !okAway {
		return "", "", false
	}
	return home, away, true
}

// Mentions reports whether text refers to the team with the given abbreviation,
// either by abbreviation token or by any of its names.
func (d *Directory) Mentions(text, abbrev string) bool {
	team, ok := d.Team(abbrev)
	if !ok {
		return false
	}

	// abbreviations only count when written in capitals
	for _, tok := range tokenPattern.FindAllString(text, -1) {
		if tok != strings.ToUpper(tok) {
			continue
		}
		if tok == team.Abbrev || abbrevAliases[tok] == team.Abbrev {
			return true
		}
	}

	normalized := " " + normalizeName(text) + " "
	for _, name := range []string{team.FullName(), team.Nickname, team.City} {
		n := normalizeName(name)
		if n == "" {
			continue
		}
		if d.byName[n] != team.Abbrev {
			continue
		}
		if strings.Contains(normalized, " "+n+" ") {
			return true
		}
	}
	return false
}

// IsTeamName reports whether phrase is exactly a known team reference.
func (d *Directory) IsTeamName(phrase string) bool {
	_, ok := d.Resolve(phrase)
	return ok
}

var tokenPattern = regexp.MustCompile(`[A-Za-z]+`)

// stripAccents builds a fresh chain per call: a transform.Chain keeps
// internal buffers and must not be shared across goroutines.
func stripAccents(s string) (string, error) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	return out, err
}

// normalizeName lowercases, strips accents and collapses punctuation and spaces.
func normalizeName(name string) string {
	name = strings.ToLower(name)
	if stripped, err := stripAccents(name); err == nil {
		name = stripped
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, name)
	return strings.Join(strings.Fields(name), " ")
}
