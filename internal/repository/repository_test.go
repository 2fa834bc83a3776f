package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/database"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

func setupRepositories(t *testing.T) *Repositories {
	t.Helper()
	repos, err := NewSQLiteRepositories(database.SetupTestSQLite(t))
	require.NoError(t, err)
	return repos
}

func TestNewRepositoriesRequiresConnection(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)

	_, err = NewSQLiteRepositories(nil)
	assert.Error(t, err)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "mysql"}}
	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "sqlite", SQLitePath: database.MemoryPath}}
	repos, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer repos.Close()

	assert.NoError(t, repos.Store.Ping(context.Background()))
}

func TestSettledBetGetSettledSince(t *testing.T) {
	repos := setupRepositories(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	bets := []*models.SettledBet{
		{Stake: 2, ActualGain: 1.3, Outcome: models.OutcomeWon, BetType: "head_to_head",
			MatchName: "Edmonton Oilers vs Calgary Flames", SelectionText: "Victoire EDM", SettledAt: now.Add(-48 * time.Hour)},
		{Stake: 1, Outcome: models.OutcomeLost, BetType: "buteur",
			MatchName: "Edmonton Oilers vs Calgary Flames", SelectionText: "Connor McDavid", SettledAt: now.Add(-24 * time.Hour)},
		{Stake: 1, Outcome: models.OutcomePending, BetType: "points", SettledAt: now.Add(-time.Hour)},
		{Stake: 1, Outcome: models.OutcomeVoid, BetType: "points", SettledAt: now.Add(-2 * time.Hour)},
		{Stake: 5, Outcome: models.OutcomeWon, ActualGain: 4, BetType: "points", SettledAt: now.Add(-40 * 24 * time.Hour)},
	}
	for _, b := range bets {
		require.NoError(t, repos.SettledBets.Create(ctx, b))
		assert.NotEmpty(t, b.ID.String())
	}

	got, err := repos.SettledBets.GetSettledSince(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, bets[0].ID, got[0].ID)
	assert.Equal(t, models.OutcomeWon, got[0].Outcome)
	assert.InDelta(t, 1.3, got[0].ActualGain, 1e-9)
	assert.Equal(t, "Victoire EDM", got[0].SelectionText)
	assert.True(t, bets[0].SettledAt.Equal(got[0].SettledAt))

	assert.Equal(t, models.OutcomeLost, got[1].Outcome)
	assert.Equal(t, models.OutcomeVoid, got[2].Outcome)
}

func TestLearningMetricUpsertAll(t *testing.T) {
	repos := setupRepositories(t)
	ctx := context.Background()
	first := time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	initial := []*models.LearningMetric{
		{DimensionKind: models.DimensionMarket, DimensionKey: "points", Wins: 2, Total: 3, CumulativeROIPercent: 40, ConfidenceAdjustment: 15},
		{DimensionKind: models.DimensionTeam, DimensionKey: "EDM", Wins: 1, Total: 1, CumulativeROIPercent: 65},
	}
	require.NoError(t, repos.LearningMetrics.UpsertAll(ctx, initial, first))

	all, err := repos.LearningMetrics.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, models.DimensionMarket, all[0].DimensionKind)
	assert.Equal(t, models.DimensionTeam, all[1].DimensionKind)

	next := []*models.LearningMetric{
		{DimensionKind: models.DimensionMarket, DimensionKey: "points", Wins: 3, Total: 4, CumulativeROIPercent: 90, ConfidenceAdjustment: 20},
		{DimensionKind: models.DimensionPlayer, DimensionKey: "connor mcdavid", Wins: 0, Total: 1, CumulativeROIPercent: -100},
	}
	require.NoError(t, repos.LearningMetrics.UpsertAll(ctx, next, second))
	// replaying the same run changes nothing
	require.NoError(t, repos.LearningMetrics.UpsertAll(ctx, next, second))

	all, err = repos.LearningMetrics.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	points, err := repos.LearningMetrics.GetByKey(ctx, models.DimensionMarket, "points")
	require.NoError(t, err)
	assert.Equal(t, 3, points.Wins)
	assert.Equal(t, 4, points.Total)
	assert.Equal(t, 20, points.ConfidenceAdjustment)
	assert.True(t, second.Equal(points.UpdatedAt))

	mcdavid, err := repos.LearningMetrics.GetByKey(ctx, models.DimensionPlayer, "connor mcdavid")
	require.NoError(t, err)
	assert.Equal(t, 1, mcdavid.Total)
}

func TestLearningMetricUpsertAllKeepsDimensionsOutsideWindow(t *testing.T) {
	repos := setupRepositories(t)
	ctx := context.Background()
	first := time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC)
	// EDM's only bet has left the 30 day window by the second run
	second := first.Add(31 * 24 * time.Hour)

	require.NoError(t, repos.LearningMetrics.UpsertAll(ctx, []*models.LearningMetric{
		{DimensionKind: models.DimensionTeam, DimensionKey: "EDM", Wins: 1, Total: 1, CumulativeROIPercent: 65},
		{DimensionKind: models.DimensionMarket, DimensionKey: "winner", Wins: 1, Total: 1, CumulativeROIPercent: 65},
	}, first))
	require.NoError(t, repos.LearningMetrics.UpsertAll(ctx, []*models.LearningMetric{
		{DimensionKind: models.DimensionMarket, DimensionKey: "winner", Wins: 4, Total: 6, CumulativeROIPercent: 120, ConfidenceAdjustment: 5},
	}, second))

	edm, err := repos.LearningMetrics.GetByKey(ctx, models.DimensionTeam, "EDM")
	require.NoError(t, err)
	assert.Equal(t, 1, edm.Wins)
	assert.Equal(t, 1, edm.Total)
	assert.InDelta(t, 65, edm.CumulativeROIPercent, 1e-9)
	assert.True(t, first.Equal(edm.UpdatedAt))

	winner, err := repos.LearningMetrics.GetByKey(ctx, models.DimensionMarket, "winner")
	require.NoError(t, err)
	assert.Equal(t, 6, winner.Total)
	assert.True(t, second.Equal(winner.UpdatedAt))
}

func TestLearningMetricUpsertAllEmptyBatchKeepsRows(t *testing.T) {
	repos := setupRepositories(t)
	ctx := context.Background()
	asOf := time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repos.LearningMetrics.UpsertAll(ctx, []*models.LearningMetric{
		{DimensionKind: models.DimensionContext, DimensionKey: models.ContextBackToBack, Wins: 1, Total: 2},
	}, asOf))
	require.NoError(t, repos.LearningMetrics.UpsertAll(ctx, nil, asOf.Add(time.Hour)))

	all, err := repos.LearningMetrics.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.ContextBackToBack, all[0].DimensionKey)
	assert.True(t, asOf.Equal(all[0].UpdatedAt))
}
