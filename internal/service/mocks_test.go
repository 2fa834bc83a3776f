package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/datasource"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/narrative"
)

// MockSettledBetRepository mocks the settled-bet repository
type MockSettledBetRepository struct {
	mock.Mock
}

func (m *MockSettledBetRepository) Create(ctx context.Context, bet *models.SettledBet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockSettledBetRepository) GetSettledSince(ctx context.Context, since time.Time) ([]models.SettledBet, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SettledBet), args.Error(1)
}

// MockLearningMetricRepository mocks the learning table repository
type MockLearningMetricRepository struct {
	mock.Mock
}

func (m *MockLearningMetricRepository) UpsertAll(ctx context.Context, metrics []*models.LearningMetric, asOf time.Time) error {
	args := m.Called(ctx, metrics, asOf)
	return args.Error(0)
}

func (m *MockLearningMetricRepository) GetAll(ctx context.Context) ([]*models.LearningMetric, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LearningMetric), args.Error(1)
}

func (m *MockLearningMetricRepository) GetByKey(ctx context.Context, kind models.DimensionKind, key string) (*models.LearningMetric, error) {
	args := m.Called(ctx, kind, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LearningMetric), args.Error(1)
}

// MockSlateSource mocks the nightly slate source
type MockSlateSource struct {
	mock.Mock
}

func (m *MockSlateSource) FetchSlate(ctx context.Context) (*datasource.Slate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datasource.Slate), args.Error(1)
}

func (m *MockSlateSource) Name() string {
	return "mock"
}

// MockGenerator mocks the narrative generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, candidates []models.Candidate) (*narrative.Narrative, error) {
	args := m.Called(ctx, candidates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*narrative.Narrative), args.Error(1)
}
