// Package learning turns settled-bet history into confidence adjustments.
package learning

import (
	"sort"
	"strings"
	"time"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/league"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/signal"
)

// Aggregator recomputes the full learning table from settled bets.
type Aggregator struct {
	directory *league.Directory
	resolver  signal.NameResolver
	policy    Policy
	now       func() time.Time
}

// NewAggregator creates an aggregator. A nil resolver only merges identical names.
func NewAggregator(directory *league.Directory, resolver signal.NameResolver, policy Policy) *Aggregator {
	if resolver == nil {
		resolver = signal.ExactResolver{}
	}
	return &Aggregator{
		directory: directory,
		resolver:  resolver,
		policy:    policy,
		now:       time.Now,
	}
}

// Stats summarizes one aggregation pass.
type Stats struct {
	BetsRead int
	BetsUsed int
}

// Aggregate builds one metric per dimension touched by a won or lost bet.
// The result replaces the table; it is sorted by kind then key.
func (a *Aggregator) Aggregate(bets []models.SettledBet) ([]*models.LearningMetric, Stats) {
	stats := Stats{BetsRead: len(bets)}
	metrics := make(map[models.MetricKey]*models.LearningMetric)
	updatedAt := a.now().UTC()

	record := func(kind models.DimensionKind, key string, bet *models.SettledBet) {
		if key == "" {
			return
		}
		k := models.MetricKey{Kind: kind, Key: key}
		m, ok := metrics[k]
		if !ok {
			m = &models.LearningMetric{DimensionKind: kind, DimensionKey: key, UpdatedAt: updatedAt}
			metrics[k] = m
		}
		m.Total++
		if bet.IsWin() {
			m.Wins++
		}
		m.CumulativeROIPercent += bet.GetROI()
	}

	settled := make([]*models.SettledBet, 0, len(bets))
	for i := range bets {
		bet := &bets[i]
		if !bet.IsSettled() || bet.Stake <= 0 {
			continue
		}
		settled = append(settled, bet)
	}
	stats.BetsUsed = len(settled)

	playerNames := make([][]string, len(settled))
	for i, bet := range settled {
		playerNames[i] = PlayerNames(a.directory, bet.SelectionText, bet.Notes)
	}
	canonical := a.canonicalNames(playerNames)

	for i, bet := range settled {
		record(models.DimensionMarket, MarketKey(bet.BetType), bet)

		if team, ok := TeamKey(a.directory, bet.MatchName, bet.SelectionText); ok {
			record(models.DimensionTeam, team, bet)
		}

		distinct := make(map[string]bool)
		for _, name := range playerNames[i] {
			key := PlayerKey(canonical[name])
			if distinct[key] {
				continue
			}
			distinct[key] = true
			record(models.DimensionPlayer, key, bet)
		}

		for _, ctx := range ContextKeys(bet.Notes) {
			record(models.DimensionContext, ctx, bet)
		}
	}

	result := make([]*models.LearningMetric, 0, len(metrics))
	for _, m := range metrics {
		m.ConfidenceAdjustment = Adjustment(m, a.policy.MinSampleSize, a.policy.AdjustmentCap)
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DimensionKind != result[j].DimensionKind {
			return result[i].DimensionKind < result[j].DimensionKind
		}
		return result[i].DimensionKey < result[j].DimensionKey
	})

	return result, stats
}

// canonicalNames maps every extracted name onto the long form it resolves to.
// Long forms are registered first so the outcome does not depend on bet order.
func (a *Aggregator) canonicalNames(perBet [][]string) map[string]string {
	var all []string
	unique := make(map[string]bool)
	for _, names := range perBet {
		for _, n := range names {
			if !unique[n] {
				unique[n] = true
				all = append(all, n)
			}
		}
	}

	sort.Slice(all, func(i, j int) bool {
		ti, tj := len(strings.Fields(all[i])), len(strings.Fields(all[j]))
		if ti != tj {
			return ti > tj
		}
		if len(all[i]) != len(all[j]) {
			return len(all[i]) > len(all[j])
		}
		return all[i] < all[j]
	})

	canonical := make(map[string]string, len(all))
	var seen []string
	for _, n := range all {
		if match, ok := a.resolver.Resolve(n, seen); ok {
			canonical[n] = match
			continue
		}
		seen = append(seen, n)
		canonical[n] = n
	}
	return canonical
}

// PlayerKey returns the player dimension key for a display name.
func PlayerKey(name string) string {
	return signal.FoldName(name)
}
