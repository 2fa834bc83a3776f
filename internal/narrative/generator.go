// Package narrative produces display-only justification text for a recommendation.
package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/metrics"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

// Narrative sources
const (
	SourceGenerator = "generator"
	SourceFallback  = "fallback"
)

// Selection is the justification of one candidate.
type Selection struct {
	Subject       string `json:"subject"`
	Justification string `json:"justification"`
}

// Narrative is advisory text shown next to a recommendation.
type Narrative struct {
	Summary    string      `json:"summary"`
	Selections []Selection `json:"selections"`
	Source     string      `json:"source"`
}

// Generator produces a narrative for the selected candidates.
type Generator interface {
	Generate(ctx context.Context, candidates []models.Candidate) (*Narrative, error)
}

// Resolve asks gen for a narrative and falls back to the reasoning tags when
// gen is nil or fails. The returned error is a soft warning only: the
// narrative is always usable.
func Resolve(ctx context.Context, gen Generator, candidates []models.Candidate) (*Narrative, error) {
	if gen == nil {
		return Fallback(candidates), nil
	}

	n, err := gen.Generate(ctx, candidates)
	if err == nil && n == nil {
		err = fmt.Errorf("%w: generator returned no narrative", models.ErrMalformedNarrative)
	}
	if err != nil {
		metrics.RecordNarrativeRequest("fallback")
		return Fallback(candidates), err
	}
	return n, nil
}

// Fallback builds a narrative from the deterministic reasoning tags.
func Fallback(candidates []models.Candidate) *Narrative {
	n := &Narrative{
		Source:     SourceFallback,
		Selections: make([]Selection, 0, len(candidates)),
	}

	tiers := make([]string, 0, len(candidates))
	for _, c := range candidates {
		reason := "no scoring factor fired"
		if len(c.ReasoningTags) > 0 {
			reason = strings.Join(c.ReasoningTags, ", ")
		}
		n.Selections = append(n.Selections, Selection{
			Subject:       c.Subject,
			Justification: fmt.Sprintf("%s at %.2f, confidence %d%%: %s", c.Label(), c.Odds, c.Confidence, reason),
		})
		if c.Tier != models.TierNone {
			tiers = append(tiers, string(c.Tier))
		}
	}

	switch len(candidates) {
	case 0:
		n.Summary = "No selection tonight."
	case 1:
		n.Summary = "1 selection"
	default:
		n.Summary = fmt.Sprintf("%d selections", len(candidates))
	}
	if len(tiers) > 0 {
		n.Summary += " (" + strings.Join(tiers, ", ") + ")"
	}
	if len(candidates) > 0 {
		n.Summary += ", justified by scoring factors."
	}

	return n
}

// BuildPrompt renders the candidates as the generator prompt. The output is
// deterministic so it can serve as a cache key.
func BuildPrompt(candidates []models.Candidate) string {
	var b strings.Builder
	b.WriteString("Justify each hockey betting selection in one or two sentences. ")
	b.WriteString(`Answer with JSON {"summary": string, "selections": [{"subject": string, "justification": string}]}.`)
	b.WriteString("\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- subject=%s name=%q market=%s match=%q odds=%.2f confidence=%d tier=%s factors=[%s]\n",
			c.Subject, c.SubjectName, c.Market, c.MatchRef, c.Odds, c.Confidence, c.Tier, strings.Join(c.ReasoningTags, ", "))
	}
	return b.String()
}
