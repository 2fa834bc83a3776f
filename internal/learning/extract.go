package learning

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/league"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

// marketAliases maps free-text bet types onto market kinds.
var marketAliases = map[string]models.MarketKind{
	"head_to_head":        models.MarketHeadToHead,
	"h2h":                 models.MarketHeadToHead,
	"moneyline":           models.MarketHeadToHead,
	"ml":                  models.MarketHeadToHead,
	"winner":              models.MarketHeadToHead,
	"vainqueur":           models.MarketHeadToHead,
	"goal_scorer":         models.MarketGoalScorer,
	"goalscorer":          models.MarketGoalScorer,
	"anytime goal scorer": models.MarketGoalScorer,
	"scorer":              models.MarketGoalScorer,
	"buteur":              models.MarketGoalScorer,
	"points":              models.MarketPoints,
	"point":               models.MarketPoints,
	"duo":                 models.MarketDuo,
}

// MarketKey returns the market dimension key for a bet type.
// Unknown bet types are kept, lower-cased, as their own key.
func MarketKey(betType string) string {
	key := strings.ToLower(strings.Join(strings.Fields(betType), " "))
	if kind, ok := marketAliases[key]; ok {
		return string(kind)
	}
	return key
}

// contextKeywords maps note substrings to context keys, checked in order.
var contextKeywords = []struct {
	key      string
	keywords []string
}{
	{models.ContextBackToBack, []string{"b2b", "back-to-back", "back to back"}},
	{models.ContextHighPenaltyRate, []string{"penalty", "pim", "indiscipline"}},
	{models.ContextDuoActive, []string{"duo"}},
}

// ContextKeys returns the context tags recognized in free-text notes.
func ContextKeys(notes string) []string {
	lower := strings.ToLower(notes)
	var keys []string
	for _, ck := range contextKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(lower, kw) {
				keys = append(keys, ck.key)
				break
			}
		}
	}
	return keys
}

// TeamKey returns the side of matchName that selectionText refers to.
// Selections naming both sides or neither yield no key.
func TeamKey(directory *league.Directory, matchName, selectionText string) (string, bool) {
	home, away, ok := directory.ResolveMatch(matchName)
	if !ok {
		return "", false
	}
	mentionsHome := directory.Mentions(selectionText, home)
	mentionsAway := directory.Mentions(selectionText, away)
	switch {
	case mentionsHome && !mentionsAway:
		return home, true
	case mentionsAway && !mentionsHome:
		return away, true
	default:
		return "", false
	}
}

var wordPattern = regexp.MustCompile(`[\p{L}][\p{L}'’.\-]*|@`)

// PlayerNames extracts capitalized word sequences of two or more words,
// such as "Connor McDavid" or "C. McDavid". Sequences are split on
// punctuation, match separators and all-caps tokens. Team names are skipped.
func PlayerNames(directory *league.Directory, texts ...string) []string {
	var names []string
	seen := make(map[string]bool)

	for _, text := range texts {
		var run []string
		flush := func() {
			if len(run) >= 2 {
				// sentence-final dot, but keep initials
				if last := strings.TrimRight(run[len(run)-1], "."); len([]rune(last)) > 1 {
					run[len(run)-1] = last
				}
				name := strings.Join(run, " ")
				if !directory.IsTeamName(name) && !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
			run = run[:0]
		}

		prevEnd := 0
		for _, loc := range wordPattern.FindAllStringIndex(text, -1) {
			word := text[loc[0]:loc[1]]
			// anything but spaces between two words ends the sequence
			if strings.TrimSpace(text[prevEnd:loc[0]]) != "" {
				flush()
			}
			prevEnd = loc[1]
			if league.IsSeparator(word) || !isNameWord(word) {
				flush()
				continue
			}
			run = append(run, word)
		}
		flush()
	}

	return names
}

// isNameWord accepts "McDavid", "C." and "O'Reilly" but not "EDM" or "buteur".
func isNameWord(word string) bool {
	runes := []rune(strings.TrimRight(word, "."))
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return false
	}
	if len(runes) == 1 {
		return true
	}
	for _, r := range runes[1:] {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}
