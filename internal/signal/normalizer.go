// Package signal turns the upstream slate into scoreable candidates.
package signal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/datasource"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/league"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

// BackToBackWindow is the longest gap between two games still counted as back-to-back.
const BackToBackWindow = 36 * time.Hour

// Warning codes
const (
	WarnUnparsedMatch   = "unparsed_match"
	WarnMissingOpponent = "missing_opponent_context"
	WarnInvalidOdds     = "invalid_odds"
	WarnUnknownSubject  = "unknown_subject"
	WarnUnknownMarket   = "unknown_market"
	WarnMergedName      = "merged_name"
	WarnDuplicateOffer  = "duplicate_offer"
)

// Warning reports a data gap that was degraded rather than failed.
type Warning struct {
	Code     string `json:"code"`
	Subject  string `json:"subject,omitempty"`
	MatchRef string `json:"match_ref,omitempty"`
	Message  string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s (%s, %s)", w.Code, w.Message, w.Subject, w.MatchRef)
}

// Normalizer maps slate records onto candidates with a flat factor set.
type Normalizer struct {
	directory *league.Directory
	resolver  NameResolver
}

// NewNormalizer creates a normalizer. A nil resolver falls back to exact matching.
func NewNormalizer(directory *league.Directory, resolver NameResolver) *Normalizer {
	if resolver == nil {
		resolver = ExactResolver{}
	}
	return &Normalizer{directory: directory, resolver: resolver}
}

// subject is a merged subject record.
type subject struct {
	record datasource.SubjectRecord
	team   string
}

// Normalize builds one candidate per valid offer. It never fails: missing or
// unparseable context leaves the dependent factors at their zero value and
// adds a warning.
func (n *Normalizer) Normalize(slate *datasource.Slate) ([]models.Candidate, []Warning) {
	if slate == nil {
		return nil, nil
	}

	var warnings []Warning
	subjects, aliases, mergeWarnings := n.mergeSubjects(slate.Subjects)
	warnings = append(warnings, mergeWarnings...)
	opponents := n.indexOpponents(slate.Opponents)

	candidates := make([]models.Candidate, 0, len(slate.Offers))
	seen := make(map[string]int, len(slate.Offers))

	for _, offer := range slate.Offers {
		if !offer.Market.IsValid() {
			warnings = append(warnings, Warning{Code: WarnUnknownMarket, Subject: offer.SubjectID, MatchRef: offer.MatchName,
				Message: fmt.Sprintf("market %q is not supported", offer.Market)})
			continue
		}
		if offer.Odds < models.MinOdds {
			warnings = append(warnings, Warning{Code: WarnInvalidOdds, Subject: offer.SubjectID, MatchRef: offer.MatchName,
				Message: fmt.Sprintf("odds %.2f below %.2f", offer.Odds, models.MinOdds)})
			continue
		}

		id := offer.SubjectID
		if canonical, ok := aliases[id]; ok {
			id = canonical
		}
		subj, ok := subjects[id]
		if !ok {
			warnings = append(warnings, Warning{Code: WarnUnknownSubject, Subject: offer.SubjectID, MatchRef: offer.MatchName,
				Message: "no subject record for offer"})
			continue
		}

		c := models.Candidate{
			Subject:     id,
			SubjectName: subj.record.DisplayName,
			Team:        subj.team,
			MatchRef:    offer.MatchName,
			Market:      offer.Market,
			Odds:        offer.Odds,
			Factors: models.RawFactors{
				RecentGoals:    subj.record.RecentGoals,
				PowerPlayGoals: subj.record.PowerPlayGoals,
				DuoPartner:     subj.record.DuoPartner,
			},
		}
		if canonical, ok := aliases[c.Factors.DuoPartner]; ok {
			c.Factors.DuoPartner = canonical
		}

		opponent, gap := n.opponentOf(subj.team, offer.MatchName)
		if gap != "" {
			warnings = append(warnings, Warning{Code: WarnUnparsedMatch, Subject: id, MatchRef: offer.MatchName, Message: gap})
		} else {
			c.Opponent = opponent
			c.Factors.GoalsVsOpponent = subj.record.GoalsVsOpponent[opponent]
			if oc, ok := opponents[opponent]; ok {
				c.Factors.OpponentBackToBack = isBackToBack(oc, offer.MatchDate)
				c.Factors.OpponentPenaltyRate = oc.PenaltyMinutesPerGame
			} else {
				warnings = append(warnings, Warning{Code: WarnMissingOpponent, Subject: id, MatchRef: offer.MatchName,
					Message: fmt.Sprintf("no context for opponent %s", opponent)})
			}
		}

		key := c.Subject + "|" + string(c.Market) + "|" + c.MatchRef
		if idx, dup := seen[key]; dup {
			warnings = append(warnings, Warning{Code: WarnDuplicateOffer, Subject: id, MatchRef: offer.MatchName,
				Message: "duplicate offer, best price kept"})
			if c.Odds > candidates[idx].Odds {
				candidates[idx] = c
			}
			continue
		}
		seen[key] = len(candidates)
		candidates = append(candidates, c)
	}

	return candidates, warnings
}

// mergeSubjects indexes subjects by ID, folding player short forms into the
// long form they resolve to. aliases maps a merged-away ID to its canonical ID.
func (n *Normalizer) mergeSubjects(records []datasource.SubjectRecord) (map[string]*subject, map[string]string, []Warning) {
	caser := cases.Title(language.Und)
	subjects := make(map[string]*subject, len(records))
	aliases := make(map[string]string)
	var warnings []Warning

	players := make([]datasource.SubjectRecord, 0, len(records))
	for _, r := range records {
		if r.Kind != datasource.SubjectPlayer {
			if r.DisplayName == "" {
				r.DisplayName = r.SubjectID
			}
			team := r.Team
			if team == "" {
				team = r.SubjectID
			}
			subjects[r.SubjectID] = &subject{record: r, team: n.resolveTeam(team)}
			continue
		}
		r.DisplayName = displayName(caser, r.DisplayName, r.SubjectID)
		players = append(players, r)
	}

	// long forms first so short forms have something to resolve against
	sort.SliceStable(players, func(i, j int) bool {
		ti, tj := len(strings.Fields(players[i].DisplayName)), len(strings.Fields(players[j].DisplayName))
		if ti != tj {
			return ti > tj
		}
		return len(players[i].DisplayName) > len(players[j].DisplayName)
	})

	var seenNames []string
	byName := make(map[string]string)
	for _, r := range players {
		if _, dup := subjects[r.SubjectID]; dup {
			continue
		}
		if match, ok := n.resolver.Resolve(r.DisplayName, seenNames); ok {
			canonicalID := byName[match]
			if canonicalID != r.SubjectID {
				mergeInto(subjects[canonicalID], r)
				aliases[r.SubjectID] = canonicalID
				warnings = append(warnings, Warning{Code: WarnMergedName, Subject: canonicalID,
					Message: fmt.Sprintf("%q merged into %q", r.DisplayName, match)})
			}
			continue
		}
		seenNames = append(seenNames, r.DisplayName)
		byName[r.DisplayName] = r.SubjectID
		subjects[r.SubjectID] = &subject{record: r, team: n.resolveTeam(r.Team)}
	}

	return subjects, aliases, warnings
}

func mergeInto(dst *subject, src datasource.SubjectRecord) {
	dst.record.RecentGoals += src.RecentGoals
	dst.record.PowerPlayGoals += src.PowerPlayGoals
	if dst.record.DuoPartner == "" {
		dst.record.DuoPartner = src.DuoPartner
	}
	if len(src.GoalsVsOpponent) > 0 {
		merged := make(map[string]int, len(dst.record.GoalsVsOpponent)+len(src.GoalsVsOpponent))
		for k, v := range dst.record.GoalsVsOpponent {
			merged[k] += v
		}
		for k, v := range src.GoalsVsOpponent {
			merged[k] += v
		}
		dst.record.GoalsVsOpponent = merged
	}
}

func (n *Normalizer) indexOpponents(contexts []datasource.OpponentContext) map[string]datasource.OpponentContext {
	index := make(map[string]datasource.OpponentContext, len(contexts))
	for _, oc := range contexts {
		index[n.resolveTeam(oc.Team)] = oc
	}
	return index
}

// opponentOf returns the side of the match that is not team, or a data-gap reason.
func (n *Normalizer) opponentOf(team, matchName string) (string, string) {
	home, away, ok := n.directory.ResolveMatch(matchName)
	if !ok {
		return "", "match name could not be resolved to two teams"
	}
	switch team {
	case home:
		return away, ""
	case away:
		return home, ""
	default:
		return "", fmt.Sprintf("team %s does not play in this match", team)
	}
}

func (n *Normalizer) resolveTeam(name string) string {
	if abbrev, ok := n.directory.Resolve(name); ok {
		return abbrev
	}
	return strings.ToUpper(strings.TrimSpace(name))
}

func isBackToBack(oc datasource.OpponentContext, matchDate time.Time) bool {
	if oc.BackToBack {
		return true
	}
	if oc.LastGameAt == nil || matchDate.IsZero() {
		return false
	}
	gap := matchDate.Sub(*oc.LastGameAt)
	return gap > 0 && gap <= BackToBackWindow
}

// displayName title-cases names that arrive all lower or all upper case.
// Mixed case is kept since casing rules would break names like "McDavid".
func displayName(caser cases.Caser, name, fallback string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return fallback
	}
	if name == strings.ToLower(name) || name == strings.ToUpper(name) {
		return caser.String(strings.ToLower(name))
	}
	return name
}
