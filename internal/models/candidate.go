package models

// MarketKind represents the kind of market a candidate is offered on
type MarketKind string

const (
	MarketHeadToHead MarketKind = "head_to_head"
	MarketGoalScorer MarketKind = "goal_scorer"
	MarketPoints     MarketKind = "points"
	MarketDuo        MarketKind = "duo"
)

// IsTeamMarket reports whether the market is priced on a team rather than a player
func (m MarketKind) IsTeamMarket() bool {
	return m == MarketHeadToHead
}

// IsValid checks the market against the known kinds
func (m MarketKind) IsValid() bool {
	switch m {
	case MarketHeadToHead, MarketGoalScorer, MarketPoints, MarketDuo:
		return true
	default:
		return false
	}
}

// Tier represents a risk bucket
type Tier string

const (
	TierNone       Tier = ""
	TierSafe       Tier = "SAFE"
	TierFun        Tier = "FUN"
	TierSuperCombo Tier = "SUPER_COMBO"
	TierDuo        Tier = "DUO"
)

// BasketTiers lists the basket slots in composition order.
var BasketTiers = []Tier{TierSafe, TierFun, TierSuperCombo, TierDuo}

// MinOdds is the shortest decimal price a candidate may carry
const MinOdds = 1.01

// RawFactors holds the normalized signals for a single candidate
type RawFactors struct {
	OpponentBackToBack  bool    `json:"opponent_back_to_back"`
	OpponentPenaltyRate float64 `json:"opponent_penalty_rate"`
	RecentGoals         int     `json:"recent_goals"`
	PowerPlayGoals      int     `json:"power_play_goals"`
	DuoPartner          string  `json:"duo_partner,omitempty"`
	GoalsVsOpponent     int     `json:"goals_vs_opponent"`
}

// HasDuoPartner reports whether a partnership was recorded for the subject
func (f RawFactors) HasDuoPartner() bool {
	return f.DuoPartner != ""
}

// Candidate represents a single proposable bet.
//
// Candidates are rebuilt on every run. Scoring and tiering return copies, so a
// candidate value is never modified once its confidence and tier are set.
type Candidate struct {
	Subject            string     `json:"subject" validate:"required"`
	SubjectName        string     `json:"subject_name"`
	Team               string     `json:"team"`
	Opponent           string     `json:"opponent,omitempty"`
	MatchRef           string     `json:"match_ref" validate:"required"`
	Market             MarketKind `json:"market" validate:"required"`
	Odds               float64    `json:"odds" validate:"required,gte=1.01"`
	Factors            RawFactors `json:"factors"`
	Confidence         int        `json:"confidence" validate:"gte=0,lte=100"`
	Tier               Tier       `json:"tier"`
	ReasoningTags      []string   `json:"reasoning_tags"`
	LearningAdjustment int        `json:"learning_adjustment"`
}

// IsDuoEligible reports whether the candidate may fill the DUO slot
func (c Candidate) IsDuoEligible() bool {
	return c.Factors.HasDuoPartner()
}

// Label returns a short human readable description
func (c Candidate) Label() string {
	name := c.SubjectName
	if name == "" {
		name = c.Subject
	}
	return name + " (" + string(c.Market) + ") - " + c.MatchRef
}
