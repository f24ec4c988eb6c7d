package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-digest/internal/config"
	"github.com/spigell/job-digest/internal/digest"
	"github.com/spigell/job-digest/internal/filtering"
	"github.com/spigell/job-digest/internal/github"
	"github.com/spigell/job-digest/internal/jobs"
	"github.com/spigell/job-digest/internal/logger"
	"github.com/spigell/job-digest/internal/ranking"
	"github.com/spigell/job-digest/internal/scoring"
	"github.com/spigell/job-digest/internal/secrets"
	"github.com/spigell/job-digest/internal/serrors"
	"github.com/spigell/job-digest/internal/sources"
	"github.com/spigell/job-digest/internal/stats"
)

const (
	PromptPublish             = "Publish digest"
	PromptAbort               = "Abort"
	PromptReportByCompany     = "Report by company"
	PromptDigestToFile        = "Dump digest to file"
	PromptAppendToExcludeFile = "Append all postings to exclude file"
)

var errExit = errors.New("exit requested")

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Fetch postings from every source, rank them and publish the daily digest issue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDigest(cmd)
	},
}

func init() {
	rootCmd.AddCommand(digestCmd)

	digestCmd.Flags().Bool("dry-run", false, "render the digest without creating an issue")
	digestCmd.Flags().StringP("output", "o", "", "also write the rendered digest to this file")
	digestCmd.Flags().BoolP("interactive", "i", false, "ask for confirmation before publishing")
}

// run holds everything one digest invocation produced.
type run struct {
	date    time.Time
	found   int
	ranked  []jobs.Scored
	summary digest.Summary
}

type digestOptions struct {
	runID       string
	dryRun      bool
	output      string
	interactive bool
}

// newRegistry builds the adapters used by collectAndRank. Tests point it at local servers.
var newRegistry = sources.NewRegistry

func runDigest(cmd *cobra.Command) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	output, _ := cmd.Flags().GetString("output")
	interactive, _ := cmd.Flags().GetBool("interactive")

	runID := uuid.NewString()
	log := logger.WithRun(newLogger(), runID)

	cfg, err := getConfig(config.Requirements{Sources: true, Repo: !dryRun})
	if err != nil {
		return exitErr(log, "getting a config", err)
	}

	return executeDigest(context.Background(), cfg, digestOptions{
		runID:       runID,
		dryRun:      dryRun,
		output:      output,
		interactive: interactive,
	}, log)
}

func executeDigest(ctx context.Context, cfg *config.Config, opts digestOptions, log *zap.Logger) error {
	log.Info("starting the job-digest", zap.String("version", version), zap.Bool("dry_run", opts.dryRun))
	debugConfig(log, cfg)

	statsLog := stats.NewFileLog(cfg.StatsFile)
	// A corrupt log must stop the run before anything is published.
	if _, err := statsLog.Records(); err != nil {
		return exitErr(log, "reading stats log", err)
	}

	r, err := collectAndRank(ctx, cfg, log)
	if err != nil {
		return exitErr(log, "building the digest", err)
	}

	if opts.interactive {
		if err := confirm(cfg, r, log); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return exitErr(log, "exiting", err)
		}
	}

	body := digest.Render(r.date, r.ranked, r.summary)
	if opts.output != "" {
		if err := writeDigest(opts.output, body); err != nil {
			return exitErr(log, "writing digest to file", err)
		}
		log.Info("digest written", zap.String("filename", opts.output))
	}

	record := stats.NewRecord(r.date, stats.PhaseDigest)
	record.JobsFound = len(r.ranked)
	record.JobsFetched = r.found
	record.RunID = opts.runID

	if opts.dryRun {
		fmt.Println(body)
	} else {
		issue, err := publish(ctx, cfg, r, log)
		if err != nil {
			return exitErr(log, "publishing the digest", err)
		}
		record.Issue = issue.Number
	}

	if err := statsLog.Append(record); err != nil {
		return exitErr(log, "appending stats record", err)
	}

	log.Info("run finished",
		zap.Int("found", r.found),
		zap.Int("listed", len(r.ranked)),
		zap.String("stats_file", cfg.StatsFile),
	)

	return nil
}

func collectAndRank(ctx context.Context, cfg *config.Config, log *zap.Logger) (*run, error) {
	keywords, err := jobs.LoadKeywords(cfg.KeywordsFile)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrConfig, err, "loading keywords")
	}
	if keywords.Len() == 0 {
		log.Warn("keywords file is empty, every posting scores 0", zap.String("file", cfg.KeywordsFile))
	}

	srcs, err := sources.ParseSources(cfg.Sources)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrConfig, err, "parsing sources")
	}

	client := sources.New(log, sourceOptions(cfg))

	log.Info("starting the collection", zap.Int("sources", len(srcs)), zap.Int("keywords", keywords.Len()))

	postings, report, err := sources.Collect(ctx, client, newRegistry(), srcs, log)
	if err != nil {
		return nil, err
	}

	log.Info("getting postings",
		zap.Int("count", report.Postings),
		zap.Strings("failed_sources", report.FailedSources),
		zap.Int("skipped_records", report.SkippedRecords),
	)

	scorer := scoring.New(scoring.Options{
		Keywords:             keywords,
		Locations:            cfg.Locations,
		NoSponsorshipPhrases: cfg.NoSponsorshipList(),
		InternshipKeywords:   cfg.InternshipKeywords,
		RoleKeywords:         cfg.RoleKeywords,
		MinScore:             cfg.MinMatchScore,
	}, log)

	scored, result := scorer.ScoreAll(postings)
	excluded := make(map[string]int, len(result.Excluded))
	for reason, n := range result.Excluded {
		excluded[string(reason)] = n
	}
	log.Info("scoring finished", zap.Int("eligible", result.Eligible), zap.Any("excluded", excluded))

	filters := prepareFilters(cfg, log)
	eligible, err := filters.RunFilters(ctx, &jobs.Postings{Items: scored})
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrConfig, err, "filtering")
	}

	ranked := ranking.Rank(eligible.Items, ranking.Options{
		MaxResults:     cfg.MaxResults,
		SourcePriority: cfg.PriorityOrder(),
	})

	return &run{
		date:   time.Now().UTC(),
		found:  len(postings),
		ranked: ranked,
		summary: digest.Summary{
			MinScore:   cfg.MinMatchScore,
			MaxResults: cfg.MaxResults,
			Locations:  cfg.Locations,
			Found:      len(postings),
			Eligible:   eligible.Len(),
		},
	}, nil
}

func prepareFilters(cfg *config.Config, log *zap.Logger) *filtering.Filtering {
	steps := []filtering.Filter{
		filtering.NewExcludedCompanies(cfg.Exclude.Companies, log),
		filtering.NewExcludeFile(cfg.ExcludeFile, log),
	}

	filters := filtering.New(steps, log)
	if cfg.ExcludeFile == "" {
		filters.DisableByName("exclude_file", "exclude_file is not set")
	}
	if len(cfg.Exclude.Companies) == 0 {
		filters.DisableByName("excluded_companies", "exclude.companies is empty")
	}

	for _, status := range filters.Describe() {
		log.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	return filters
}

func publish(ctx context.Context, cfg *config.Config, r *run, log *zap.Logger) (*github.Issue, error) {
	gh, err := newGitHubClient(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	publisher := &digest.Publisher{
		Tracker: gh,
		Labels:  cfg.GitHub.Labels,
		Logger:  log,
	}

	return publisher.Publish(r.date, r.ranked, r.summary)
}

// confirm shows the menu until the operator publishes or aborts.
func confirm(cfg *config.Config, r *run, log *zap.Logger) error {
	items := []string{PromptPublish, PromptAbort, PromptReportByCompany, PromptDigestToFile}
	if cfg.ExcludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}

	prompt := promptui.Select{
		Label: fmt.Sprintf("Digest has %d postings. Proceed?", len(r.ranked)),
		Items: items,
	}

	listed := &jobs.Postings{Items: r.ranked}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptPublish:
			return nil
		case PromptAbort:
			log.Info("exiting", zap.String("reason", "got abort from prompt"))
			return errExit
		case PromptReportByCompany:
			pretty, _ := json.MarshalIndent(listed.ReportByCompany(), "", "  ")
			log.Info(string(pretty), zap.Int("postings count", listed.Len()))
		case PromptDigestToFile:
			filename, err := listed.DumpToTmpFile()
			if err != nil {
				return fmt.Errorf("dump digest to file: %w", err)
			}
			log.Info("dumping result to file", zap.String("filename", filename))
		case PromptAppendToExcludeFile:
			if err := appendToExcludeFile(cfg.ExcludeFile, listed); err != nil {
				return err
			}
			log.Info("postings appended to exclude file",
				zap.String("filename", cfg.ExcludeFile),
				zap.Int("count", listed.Len()),
			)
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}

func appendToExcludeFile(path string, listed *jobs.Postings) error {
	excluded, err := jobs.GetExcludedPostingsFromFile(path)
	if err != nil {
		return fmt.Errorf("reading exclude file: %w", err)
	}

	excluded.Append(listed.ToExcluded())

	if err := excluded.ToFile(path); err != nil {
		return fmt.Errorf("writing exclude file: %w", err)
	}
	return nil
}

func writeDigest(path, body string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(body), 0o644)
}

func sourceOptions(cfg *config.Config) sources.Options {
	return sources.Options{
		Timeout:           cfg.HTTP.Timeout,
		RetryDelay:        cfg.HTTP.RetryDelay,
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
		UserAgent:         cfg.HTTP.UserAgent,
	}
}

func newGitHubClient(ctx context.Context, cfg *config.Config, log *zap.Logger) (*github.Client, error) {
	token, err := secrets.Load(secrets.Source{
		Name:           "github token",
		Value:          cfg.GitHub.Token,
		File:           cfg.GitHub.TokenFile,
		KeyringAccount: cfg.GitHub.TokenKeyringAccount,
	})
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrConfig, err, "loading github token (set GITHUB_TOKEN or github.token_file)")
	}

	gh, err := github.New(ctx, log, token, cfg.GitHub.Repo)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrConfig, err, "building github client")
	}
	if cfg.GitHub.APIURL != "" {
		gh.APIURL = cfg.GitHub.APIURL
	}
	if cfg.HTTP.UserAgent != "" {
		gh.UserAgent = cfg.HTTP.UserAgent
	}

	return gh, nil
}
