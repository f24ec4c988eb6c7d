package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-digest/internal/config"
	"github.com/spigell/job-digest/internal/logger"
	"github.com/spigell/job-digest/internal/serrors"
)

const (
	app = "job-digest"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "job-digest collects internship postings from job boards and publishes a daily digest as a GitHub issue",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("github.token", "GITHUB_TOKEN"); err != nil {
		log.Fatalf("binding GITHUB_TOKEN environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api_key_file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("config", "JOB_DIGEST_CONFIG"); err != nil {
		log.Fatalf("binding JOB_DIGEST_CONFIG environment variable: %v", err)
	}

	config.SetDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-digest.yaml in current directory)")
	rootCmd.PersistentFlags().String("keywords", "", "keywords file, one phrase per line (overrides keywords_file)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("keywords_file", rootCmd.PersistentFlags().Lookup("keywords"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// version and help do not need a config.
	if digestCmd.CalledAs() == "" && artifactsCmd.CalledAs() == "" && statsCmd.CalledAs() == "" {
		return
	}

	if cfgFile == "" {
		cfgFile = viper.GetString("config")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// getConfig decodes, normalises and validates the loaded configuration.
func getConfig(req config.Requirements) (*config.Config, error) {
	cfg, err := config.Decode(viper.GetViper())
	if err != nil {
		return nil, err
	}

	cfg.Normalize()
	if err := cfg.Validate(req); err != nil {
		return nil, err
	}

	return cfg, nil
}

func debugConfig(logger *zap.Logger, cfg *config.Config) {
	redacted := *cfg
	if redacted.GitHub.Token != "" {
		redacted.GitHub.Token = "***"
	}
	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))
}

// exitErr logs err with its kind and returns it so cobra reports failure.
func exitErr(logger *zap.Logger, msg string, err error) error {
	fields := []zap.Field{zap.Error(err)}
	if kind := serrors.KindOf(err); kind != nil {
		fields = append(fields, zap.String("kind", kind.Error()))
	}
	logger.Error(msg, fields...)
	return fmt.Errorf("%s: %w", msg, err)
}
