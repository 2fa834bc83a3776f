// Package config provides configuration management for the Puck Predictor engine.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Engine     EngineConfig     `mapstructure:"engine" validate:"required"`
	Narrative  NarrativeConfig  `mapstructure:"narrative"`
	DataSource DataSourceConfig `mapstructure:"datasource" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents the metric and settled-bet store connection
type DatabaseConfig struct {
	Driver             string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	Host               string `mapstructure:"host" validate:"required_if=Driver postgres"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required_if=Driver postgres"`
	User               string `mapstructure:"user" validate:"required_if=Driver postgres"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
	SQLitePath         string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
}

// RedisConfig represents the optional lock backend for learning runs
type RedisConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Addr           string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password       string `mapstructure:"password"`
	DB             int    `mapstructure:"db" validate:"gte=0"`
	LockTTLSeconds int    `mapstructure:"lock_ttl_seconds" validate:"omitempty,gt=0"`
}

// EngineConfig groups every policy constant of the decision engine
type EngineConfig struct {
	Scoring  ScoringConfig  `mapstructure:"scoring" validate:"required"`
	Tiers    TierConfig     `mapstructure:"tiers" validate:"required"`
	Stakes   StakeConfig    `mapstructure:"stakes" validate:"required"`
	Learning LearningConfig `mapstructure:"learning" validate:"required"`
	System   SystemConfig   `mapstructure:"system" validate:"required"`
}

// ScoringConfig represents confidence score weights
type ScoringConfig struct {
	BaseScore             int     `mapstructure:"base_score" validate:"gte=0,lte=100"`
	SimplifiedPlayerBase  int     `mapstructure:"simplified_player_base" validate:"gte=0,lte=100"`
	SimpleMarketCeiling   int     `mapstructure:"simple_market_ceiling" validate:"gt=0,lte=100"`
	PlayerPropCeiling     int     `mapstructure:"player_prop_ceiling" validate:"gt=0,lte=100"`
	BackToBackBonus       int     `mapstructure:"back_to_back_bonus" validate:"gte=0"`
	HighGoalThreshold     int     `mapstructure:"high_goal_threshold" validate:"gt=0"`
	HighGoalBonus         int     `mapstructure:"high_goal_bonus" validate:"gte=0"`
	MidGoalThreshold      int     `mapstructure:"mid_goal_threshold" validate:"gt=0"`
	MidGoalBonus          int     `mapstructure:"mid_goal_bonus" validate:"gte=0"`
	PowerPlaySynergyGoals int     `mapstructure:"power_play_synergy_goals" validate:"gt=0"`
	PenaltyRateThreshold  float64 `mapstructure:"penalty_rate_threshold" validate:"gte=0"`
	PowerPlaySynergyBonus int     `mapstructure:"power_play_synergy_bonus" validate:"gte=0"`
	PowerPlaySingleBonus  int     `mapstructure:"power_play_single_bonus" validate:"gte=0"`
	DuoBonus              int     `mapstructure:"duo_bonus" validate:"gte=0"`
	PriceBandCeiling      float64 `mapstructure:"price_band_ceiling" validate:"gt=1"`
	PriceBandMultiplier   float64 `mapstructure:"price_band_multiplier" validate:"gte=0"`
}

// TierConfig represents the odds and confidence bands of the tier classifier
type TierConfig struct {
	SafeMinOdds          float64 `mapstructure:"safe_min_odds" validate:"gt=1"`
	SafeMaxOdds          float64 `mapstructure:"safe_max_odds" validate:"gt=1"`
	SuperComboMinOdds    float64 `mapstructure:"super_combo_min_odds" validate:"gt=1"`
	PlayerSafeConfidence int     `mapstructure:"player_safe_confidence" validate:"gte=0,lte=100"`
	PlayerFunConfidence  int     `mapstructure:"player_fun_confidence" validate:"gte=0,lte=100"`
	PlayerSuperComboOdds float64 `mapstructure:"player_super_combo_odds" validate:"gt=1"`
}

// StakeConfig represents the fixed stake per basket tier, in units
type StakeConfig struct {
	Safe       float64 `mapstructure:"safe" validate:"gt=0"`
	Duo        float64 `mapstructure:"duo" validate:"gt=0"`
	Fun        float64 `mapstructure:"fun" validate:"gt=0"`
	SuperCombo float64 `mapstructure:"super_combo" validate:"gt=0"`
}

// LearningConfig represents the learning aggregator policy
type LearningConfig struct {
	WindowDays    int `mapstructure:"window_days" validate:"gt=0"`
	MinSampleSize int `mapstructure:"min_sample_size" validate:"gt=0"`
	AdjustmentCap int `mapstructure:"adjustment_cap" validate:"gt=0,lte=50"`
}

// SystemConfig represents the system bet policy
type SystemConfig struct {
	MinSelections        int     `mapstructure:"min_selections" validate:"gte=2"`
	MaxSelections        int     `mapstructure:"max_selections" validate:"gte=2,lte=12"`
	DefaultStakePerCombo float64 `mapstructure:"default_stake_per_combo" validate:"gt=0"`
}

// NarrativeConfig represents the optional text generator endpoint
type NarrativeConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	URL             string  `mapstructure:"url" validate:"required_if=Enabled true,omitempty,url"`
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	MaxTokens       int     `mapstructure:"max_tokens" validate:"omitempty,gt=0"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
	RetryAttempts   int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimit       float64 `mapstructure:"rate_limit" validate:"gte=0"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" validate:"omitempty,gt=0"`
	CacheMaxSize    int     `mapstructure:"cache_max_size" validate:"omitempty,gt=0"`
}

// DataSourceConfig represents where the nightly slate is read from.
// SlatePath may be a file path or an http(s) URL.
type DataSourceConfig struct {
	SlatePath      string `mapstructure:"slate_path" validate:"required"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries     int    `mapstructure:"max_retries" validate:"gte=0"`
}

// SchedulerConfig represents the cron expressions of the nightly jobs
type SchedulerConfig struct {
	LearningCron       string `mapstructure:"learning_cron" validate:"required,cron"`
	RecommendationCron string `mapstructure:"recommendation_cron" validate:"required,cron"`
	JobTimeoutMinutes  int    `mapstructure:"job_timeout_minutes" validate:"gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// LearningWindow returns the trailing window of settled bets fed to the aggregator
func (c *LearningConfig) LearningWindow() time.Duration {
	return time.Duration(c.WindowDays) * 24 * time.Hour
}

// LockTTL returns the learning lock lifetime
func (c *RedisConfig) LockTTL() time.Duration {
	if c.LockTTLSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// JobTimeout returns the upper bound of one scheduled job run
func (c *SchedulerConfig) JobTimeout() time.Duration {
	return time.Duration(c.JobTimeoutMinutes) * time.Minute
}

// DefaultEngine returns the engine policy with its documented defaults
func DefaultEngine() EngineConfig {
	return EngineConfig{
		Scoring: ScoringConfig{
			BaseScore:             50,
			SimplifiedPlayerBase:  55,
			SimpleMarketCeiling:   98,
			PlayerPropCeiling:     95,
			BackToBackBonus:       15,
			HighGoalThreshold:     4,
			HighGoalBonus:         25,
			MidGoalThreshold:      2,
			MidGoalBonus:          15,
			PowerPlaySynergyGoals: 2,
			PenaltyRateThreshold:  8,
			PowerPlaySynergyBonus: 20,
			PowerPlaySingleBonus:  10,
			DuoBonus:              10,
			PriceBandCeiling:      1.80,
			PriceBandMultiplier:   20,
		},
		Tiers: TierConfig{
			SafeMinOdds:          1.40,
			SafeMaxOdds:          1.80,
			SuperComboMinOdds:    4.50,
			PlayerSafeConfidence: 85,
			PlayerFunConfidence:  70,
			PlayerSuperComboOdds: 4.00,
		},
		Stakes: StakeConfig{
			Safe:       2.0,
			Duo:        1.0,
			Fun:        1.0,
			SuperCombo: 0.5,
		},
		Learning: LearningConfig{
			WindowDays:    30,
			MinSampleSize: 3,
			AdjustmentCap: 20,
		},
		System: SystemConfig{
			MinSelections:        3,
			MaxSelections:        5,
			DefaultStakePerCombo: 0.5,
		},
	}
}
