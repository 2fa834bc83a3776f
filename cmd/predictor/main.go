package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/health"
	applogger "github.com/Pilou89/puck-predictor-pro-sub000/internal/logger"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/metrics"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/scheduler"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/system"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

const (
	jobLearning       = "learning"
	jobRecommendation = "recommendation"
)

var (
	configFile string
	slatePath  string
	systemOdds []float64
	systemK    int
	stake      float64

	cfg    *config.Config
	logger *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	recommendCmd.Flags().StringVar(&slatePath, "slate", "", "Slate file or URL, overrides datasource.slate_path")
	systemCmd.Flags().Float64SliceVar(&systemOdds, "odds", nil, "Decimal odds of each selection, comma separated")
	systemCmd.Flags().IntVar(&systemK, "k", 0, "Winning selections required per combination (1..n-1)")
	systemCmd.Flags().Float64Var(&stake, "stake", 0, "Stake per combination, defaults to engine.system.default_stake_per_combo")
	_ = systemCmd.MarkFlagRequired("odds")
	_ = systemCmd.MarkFlagRequired("k")
}

var rootCmd = &cobra.Command{
	Use:           "predictor",
	Short:         "Nightly hockey betting decision engine",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduled learning and recommendation jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Recompute the learning table from settled bets",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.learning.Run(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Compose tonight's basket and system proposal",
	RunE: func(cmd *cobra.Command, args []string) error {
		if slatePath != "" {
			cfg.DataSource.SlatePath = slatePath
		}

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.learning.Warm(cmd.Context()); err != nil {
			return err
		}

		rec, err := a.recommendation.Run(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(rec)
	},
}

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Compute the payouts of a k-of-n system bet",
	RunE: func(cmd *cobra.Command, args []string) error {
		perCombo := stake
		if perCombo == 0 {
			perCombo = cfg.Engine.System.DefaultStakePerCombo
		}

		calc := system.NewCalculator(cfg.Engine.System)
		sys, err := calc.Build(system.SelectionsFromOdds(systemOdds), systemK, decimal.NewFromFloat(perCombo))
		if err != nil {
			metrics.RecordSystemBuild("rejected")
			return err
		}
		metrics.RecordSystemBuild("built")
		applogger.NewEngineLogger(logger).LogSystemBuilt(sys.Size(), sys.RequiredK, sys.CombinationCount,
			sys.TotalStake.String(), sys.MinGuaranteedGain.String(), sys.MaxGain.String())
		return printJSON(sys)
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, learnCmd, recommendCmd, systemCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets from AWS: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger = applogger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	// logs go to stderr so command output stays parseable
	logger.SetOutput(os.Stderr)
	metrics.InitRegistry()
	return nil
}

func serve(ctx context.Context) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.learning.Warm(ctx); err != nil {
		logger.WithError(err).Warn("Starting with an empty learning table")
	}

	sched := scheduler.NewScheduler(cfg.Scheduler.JobTimeout(), logger)
	if err := sched.Schedule(jobLearning, cfg.Scheduler.LearningCron, func(ctx context.Context) error {
		_, err := a.learning.Run(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := sched.Schedule(jobRecommendation, cfg.Scheduler.RecommendationCron, func(ctx context.Context) error {
		rec, err := a.recommendation.Run(ctx)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"run_id":           rec.RunID,
			"snapshot_version": rec.SnapshotVersion,
			"selections":       rec.Basket.Size(),
			"total_stake":      rec.Basket.TotalStake.String(),
			"status":           rec.Basket.Status,
			"has_system":       rec.System != nil,
			"summary":          rec.Narrative.Summary,
		}).Info("Scheduled recommendation ready")
		return nil
	}); err != nil {
		return err
	}

	srv := health.NewServer(health.Config{
		ServiceName:    cfg.App.Name,
		Version:        Version + "+" + GitCommit,
		Port:           cfg.Metrics.Port,
		Logger:         logger,
		DB:             a.repos.Store,
		MetricsPath:    cfg.Metrics.Path,
		MetricsHandler: metricsHandler(),
	})
	if err := srv.Start(ctx); err != nil {
		return err
	}

	if err := sched.Start(); err != nil {
		return err
	}
	srv.SetReady(true)

	logger.WithFields(logrus.Fields{
		"version":             Version,
		"learning_cron":       cfg.Scheduler.LearningCron,
		"recommendation_cron": cfg.Scheduler.RecommendationCron,
	}).Info("Predictor serving")

	<-ctx.Done()
	logger.Info("Shutdown signal received")
	srv.SetReady(false)

	return sched.Stop()
}

func metricsHandler() http.Handler {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.Handler()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
