package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-digest/internal/config"
	"github.com/spigell/job-digest/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the totals of the stats log",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runStats()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats() error {
	log := newLogger()

	cfg, err := getConfig(config.Requirements{})
	if err != nil {
		return exitErr(log, "getting a config", err)
	}

	records, err := stats.NewFileLog(cfg.StatsFile).Records()
	if err != nil {
		return exitErr(log, "reading stats log", err)
	}

	log.Debug("stats log read", zap.String("path", cfg.StatsFile), zap.Int("records", len(records)))

	pretty, err := json.MarshalIndent(stats.Summarize(records), "", "  ")
	if err != nil {
		return exitErr(log, "encoding summary", err)
	}
	fmt.Println(string(pretty))

	return nil
}
