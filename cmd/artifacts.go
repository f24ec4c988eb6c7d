package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-digest/internal/ai"
	"github.com/spigell/job-digest/internal/ai/gemini"
	"github.com/spigell/job-digest/internal/config"
	"github.com/spigell/job-digest/internal/logger"
	"github.com/spigell/job-digest/internal/materials"
	"github.com/spigell/job-digest/internal/secrets"
	"github.com/spigell/job-digest/internal/stats"
)

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "Post resume bullets and cover letter drafts for an approved digest issue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runArtifacts(cmd)
	},
}

func init() {
	rootCmd.AddCommand(artifactsCmd)

	artifactsCmd.Flags().Int("issue", 0, "digest issue number")
	artifactsCmd.Flags().BoolP("force", "f", false, "generate even if the issue has no approval label")
	artifactsCmd.MarkFlagRequired("issue")
}

func runArtifacts(cmd *cobra.Command) error {
	ctx := context.Background()

	number, _ := cmd.Flags().GetInt("issue")
	force, _ := cmd.Flags().GetBool("force")

	runID := uuid.NewString()
	log := logger.WithRun(newLogger(), runID)

	if number <= 0 {
		return exitErr(log, "checking flags", fmt.Errorf("--issue must be a positive number, got %d", number))
	}

	cfg, err := getConfig(config.Requirements{Repo: true})
	if err != nil {
		return exitErr(log, "getting a config", err)
	}
	debugConfig(log, cfg)

	statsLog := stats.NewFileLog(cfg.StatsFile)
	if _, err := statsLog.Records(); err != nil {
		return exitErr(log, "reading stats log", err)
	}

	gh, err := newGitHubClient(ctx, cfg, log)
	if err != nil {
		return exitErr(log, "building github client", err)
	}

	generator := &materials.Generator{
		Tracker: gh,
		Fetcher: materials.NewScraper(log, sourceOptions(cfg)),
		Applicant: ai.Applicant{
			Name:     cfg.Applicant.Name,
			Headline: cfg.Applicant.Headline,
		},
		ApprovalLabel:  cfg.GitHub.ApprovalLabel,
		MaterialsLabel: cfg.GitHub.MaterialsLabel,
		Logger:         log,
	}

	if cfg.AI != nil && cfg.AI.Enabled {
		writer, err := newAIWriter(ctx, cfg.AI, log)
		if err != nil {
			log.Warn("skipping AI writer, using templates", zap.Error(err))
		} else {
			generator.Writer = writer
		}
	}

	res, err := generator.Run(ctx, number, force)
	if err != nil {
		return exitErr(log, "generating materials", err)
	}
	if res.Skipped {
		log.Info("exiting", zap.String("reason", res.Reason))
		return nil
	}

	record := stats.NewRecord(time.Now(), stats.PhaseArtifacts)
	record.JobsApproved = res.Rows
	record.ApplicationsGenerated = res.Drafts
	record.RunID = runID
	record.Issue = number

	if err := statsLog.Append(record); err != nil {
		return exitErr(log, "appending stats record", err)
	}

	return nil
}

func newAIWriter(ctx context.Context, cfg *config.AIConfig, log *zap.Logger) (ai.Writer, error) {
	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api_key_file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := log.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewWriter(generator, cfg.Gemini.MaxLogLength, genLogger), nil
}
