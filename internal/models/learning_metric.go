package models

import "time"

// DimensionKind represents the axis a learning metric is aggregated on
type DimensionKind string

const (
	DimensionMarket  DimensionKind = "market"
	DimensionTeam    DimensionKind = "team"
	DimensionPlayer  DimensionKind = "player"
	DimensionContext DimensionKind = "context"
)

// Context dimension keys recovered from bet notes
const (
	ContextBackToBack      = "back_to_back"
	ContextHighPenaltyRate = "high_penalty_rate"
	ContextDuoActive       = "duo_active"
)

// MetricKey identifies one learning metric row
type MetricKey struct {
	Kind DimensionKind
	Key  string
}

// String returns the storage form of the key
func (k MetricKey) String() string {
	return string(k.Kind) + ":" + k.Key
}

// LearningMetric represents the aggregated track record of one dimension
type LearningMetric struct {
	DimensionKind        DimensionKind `db:"dimension_kind" json:"dimension_kind" validate:"required,oneof=market team player context"`
	DimensionKey         string        `db:"dimension_key" json:"dimension_key" validate:"required"`
	Wins                 int           `db:"wins" json:"wins" validate:"gte=0"`
	Total                int           `db:"total" json:"total" validate:"gte=0"`
	CumulativeROIPercent float64       `db:"cumulative_roi_percent" json:"cumulative_roi_percent"`
	ConfidenceAdjustment int           `db:"confidence_adjustment" json:"confidence_adjustment" validate:"gte=-20,lte=20"`
	UpdatedAt            time.Time     `db:"updated_at" json:"updated_at"`
}

// Key returns the upsert key of the metric
func (m *LearningMetric) Key() MetricKey {
	return MetricKey{Kind: m.DimensionKind, Key: m.DimensionKey}
}

// WinRate returns wins over total as a fraction
func (m *LearningMetric) WinRate() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Wins) / float64(m.Total)
}

// AverageROI returns the mean ROI percentage per bet
func (m *LearningMetric) AverageROI() float64 {
	if m.Total == 0 {
		return 0
	}
	return m.CumulativeROIPercent / float64(m.Total)
}
