// Package config provides configuration management for the Puck Predictor engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "PUCK_PREDICTOR"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error: defaults and environment variables are used.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// setDefaults registers every key so that AutomaticEnv can override it even
// when the YAML file omits the section.
func setDefaults(v *viper.Viper) {
	engine := DefaultEngine()

	v.SetDefault("app.name", "puck-predictor")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite_path", "data/puck_predictor.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.lock_ttl_seconds", 600)

	s := engine.Scoring
	v.SetDefault("engine.scoring.base_score", s.BaseScore)
	v.SetDefault("engine.scoring.simplified_player_base", s.SimplifiedPlayerBase)
	v.SetDefault("engine.scoring.simple_market_ceiling", s.SimpleMarketCeiling)
	v.SetDefault("engine.scoring.player_prop_ceiling", s.PlayerPropCeiling)
	v.SetDefault("engine.scoring.back_to_back_bonus", s.BackToBackBonus)
	v.SetDefault("engine.scoring.high_goal_threshold", s.HighGoalThreshold)
	v.SetDefault("engine.scoring.high_goal_bonus", s.HighGoalBonus)
	v.SetDefault("engine.scoring.mid_goal_threshold", s.MidGoalThreshold)
	v.SetDefault("engine.scoring.mid_goal_bonus", s.MidGoalBonus)
	v.SetDefault("engine.scoring.power_play_synergy_goals", s.PowerPlaySynergyGoals)
	v.SetDefault("engine.scoring.penalty_rate_threshold", s.PenaltyRateThreshold)
	v.SetDefault("engine.scoring.power_play_synergy_bonus", s.PowerPlaySynergyBonus)
	v.SetDefault("engine.scoring.power_play_single_bonus", s.PowerPlaySingleBonus)
	v.SetDefault("engine.scoring.duo_bonus", s.DuoBonus)
	v.SetDefault("engine.scoring.price_band_ceiling", s.PriceBandCeiling)
	v.SetDefault("engine.scoring.price_band_multiplier", s.PriceBandMultiplier)

	t := engine.Tiers
	v.SetDefault("engine.tiers.safe_min_odds", t.SafeMinOdds)
	v.SetDefault("engine.tiers.safe_max_odds", t.SafeMaxOdds)
	v.SetDefault("engine.tiers.super_combo_min_odds", t.SuperComboMinOdds)
	v.SetDefault("engine.tiers.player_safe_confidence", t.PlayerSafeConfidence)
	v.SetDefault("engine.tiers.player_fun_confidence", t.PlayerFunConfidence)
	v.SetDefault("engine.tiers.player_super_combo_odds", t.PlayerSuperComboOdds)

	v.SetDefault("engine.stakes.safe", engine.Stakes.Safe)
	v.SetDefault("engine.stakes.duo", engine.Stakes.Duo)
	v.SetDefault("engine.stakes.fun", engine.Stakes.Fun)
	v.SetDefault("engine.stakes.super_combo", engine.Stakes.SuperCombo)

	v.SetDefault("engine.learning.window_days", engine.Learning.WindowDays)
	v.SetDefault("engine.learning.min_sample_size", engine.Learning.MinSampleSize)
	v.SetDefault("engine.learning.adjustment_cap", engine.Learning.AdjustmentCap)

	v.SetDefault("engine.system.min_selections", engine.System.MinSelections)
	v.SetDefault("engine.system.max_selections", engine.System.MaxSelections)
	v.SetDefault("engine.system.default_stake_per_combo", engine.System.DefaultStakePerCombo)

	v.SetDefault("narrative.enabled", false)
	v.SetDefault("narrative.max_tokens", 1024)
	v.SetDefault("narrative.timeout_seconds", 30)
	v.SetDefault("narrative.retry_attempts", 2)
	v.SetDefault("narrative.rate_limit", 1.0)
	v.SetDefault("narrative.cache_ttl_seconds", 3600)
	v.SetDefault("narrative.cache_max_size", 256)

	v.SetDefault("datasource.slate_path", "data/slate.json")
	v.SetDefault("datasource.timeout_seconds", 30)
	v.SetDefault("datasource.max_retries", 3)

	v.SetDefault("scheduler.learning_cron", "0 9 * * *")
	v.SetDefault("scheduler.recommendation_cron", "0 17 * * *")
	v.SetDefault("scheduler.job_timeout_minutes", 15)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}
