package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/spigell/job-digest/internal/serrors"
	"github.com/spigell/job-digest/internal/sources"
)

const (
	DefaultStatsFile      = "data/stats.jsonl"
	DefaultMaxResults     = 15
	DefaultTimeout        = 30 * time.Second
	DefaultRetryDelay     = 2 * time.Second
	DefaultRequestsPerSec = 2.0
	DefaultUserAgent      = "spigell/job-digest"
	DefaultGitHubAPIURL   = "https://api.github.com"
	DefaultDigestLabel    = "job-digest"
	DefaultApprovalLabel  = "approved"
	DefaultMaterialsLabel = "materials-generated"
)

type Config struct {
	MinMatchScore  int      `mapstructure:"min_match_score"`
	MaxResults     int      `mapstructure:"max_results"`
	Locations      []string `mapstructure:"locations"`
	Sources        []string `mapstructure:"sources"`
	SourcePriority []string `mapstructure:"source_priority"`
	KeywordsFile   string   `mapstructure:"keywords_file"`

	InternshipKeywords   []string `mapstructure:"internship_keywords"`
	RoleKeywords         []string `mapstructure:"role_keywords"`
	NoSponsorshipPhrases []string `mapstructure:"no_sponsorship_phrases"`

	StatsFile   string `mapstructure:"stats_file"`
	ExcludeFile string `mapstructure:"exclude_file"`
	Exclude     struct {
		Companies []string `mapstructure:"companies"`
	} `mapstructure:"exclude"`

	HTTP      HTTPConfig      `mapstructure:"http"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	Applicant ApplicantConfig `mapstructure:"applicant"`
	AI        *AIConfig       `mapstructure:"ai"`
}

type HTTPConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	UserAgent         string        `mapstructure:"user_agent"`
}

type GitHubConfig struct {
	Repo                string   `mapstructure:"repo"`
	APIURL              string   `mapstructure:"api_url"`
	Token               string   `mapstructure:"token"`
	TokenFile           string   `mapstructure:"token_file"`
	TokenKeyringAccount string   `mapstructure:"token_keyring_account"`
	Labels              []string `mapstructure:"labels"`
	ApprovalLabel       string   `mapstructure:"approval_label"`
	MaterialsLabel      string   `mapstructure:"materials_label"`
}

type ApplicantConfig struct {
	Name     string `mapstructure:"name"`
	Headline string `mapstructure:"headline"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api_key_file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	MaxLogLength int    `mapstructure:"max_log_length"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("max_results", DefaultMaxResults)
	v.SetDefault("stats_file", DefaultStatsFile)
	v.SetDefault("keywords_file", "keywords.txt")
	v.SetDefault("http.timeout", DefaultTimeout)
	v.SetDefault("http.retry_delay", DefaultRetryDelay)
	v.SetDefault("http.requests_per_second", DefaultRequestsPerSec)
	v.SetDefault("http.user_agent", DefaultUserAgent)
	v.SetDefault("github.api_url", DefaultGitHubAPIURL)
	v.SetDefault("github.labels", []string{DefaultDigestLabel})
	v.SetDefault("github.approval_label", DefaultApprovalLabel)
	v.SetDefault("github.materials_label", DefaultMaterialsLabel)
}

// Decode unmarshals v into a Config. It does not validate.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, serrors.Wrap(serrors.ErrConfig, err, "decoding config")
	}

	return &cfg, nil
}

// PriorityOrder returns the source ids, in the order used to break score
// ties. Entries that do not parse are skipped; Validate reports them.
func (c *Config) PriorityOrder() []string {
	raw := c.SourcePriority
	if len(raw) == 0 {
		raw = c.Sources
	}

	ids := make([]string, 0, len(raw))
	for _, r := range raw {
		src, err := sources.ParseSource(r)
		if err != nil {
			continue
		}
		ids = append(ids, src.ID())
	}
	return ids
}

// NoSponsorshipList returns the configured rejection phrases or nil to use
// the defaults.
func (c *Config) NoSponsorshipList() []string {
	if len(c.NoSponsorshipPhrases) == 0 {
		return nil
	}
	return c.NoSponsorshipPhrases
}
