package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const defaultExternalHTTPTimeout = 90 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

const (
	DataSourceFile   = "file"
	DataSourceSQLite = "sqlite"
)

var defaultDataPaths = []string{
	"./output_classified_split_with_actions.xlsx",
	"../output_classified_split_with_actions.xlsx",
}

type Config struct {
	DataSource string   `yaml:"data_source"`
	DataPaths  []string `yaml:"data_paths"`
	DataSheet  string   `yaml:"data_sheet"`
	DBPath     string   `yaml:"db_path"`

	ListenAddr                 string `yaml:"listen_addr"`
	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds"`

	SlackBotToken   string `yaml:"slack_bot_token"`
	DigestChannelID string `yaml:"digest_channel_id"`
	DigestSchedule  string `yaml:"digest_schedule"`
	DigestTopN      int    `yaml:"digest_top_n"`
	Timezone        string `yaml:"timezone"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

// LoadConfig reads CONFIG_PATH (default config.yaml) and exits the process
// on invalid configuration.
func LoadConfig() Config {
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	return cfg
}

// Load reads the YAML file at path if it exists, applies env overrides and
// defaults, and validates the result.
func Load(configPath string) (Config, error) {
	var cfg Config

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	envOverride(&cfg.DataSource, "DATA_SOURCE")
	envOverride(&cfg.DataSheet, "DATA_SHEET")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.ListenAddr, "LISTEN_ADDR")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.DigestChannelID, "DIGEST_CHANNEL_ID")
	envOverrideAllowEmpty(&cfg.DigestSchedule, "DIGEST_SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")
	if err := envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS"); err != nil {
		return Config{}, err
	}
	if err := envOverrideInt(&cfg.DigestTopN, "DIGEST_TOP_N"); err != nil {
		return Config{}, err
	}
	if paths := os.Getenv("DATA_PATHS"); paths != "" {
		cfg.DataPaths = splitList(paths)
	}

	if cfg.DataSource == "" {
		cfg.DataSource = DataSourceFile
	}
	if len(cfg.DataPaths) == 0 {
		cfg.DataPaths = append([]string(nil), defaultDataPaths...)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./findingboard.db"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":5000"
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if cfg.DigestTopN == 0 {
		cfg.DigestTopN = 10
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	switch cfg.DataSource {
	case DataSourceFile, DataSourceSQLite:
	default:
		return Config{}, fmt.Errorf("data_source must be '%s' or '%s', got '%s'", DataSourceFile, DataSourceSQLite, cfg.DataSource)
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return Config{}, fmt.Errorf("invalid timezone '%s': %w", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if cfg.ExternalHTTPTimeoutSeconds < 5 {
		return Config{}, fmt.Errorf("invalid external_http_timeout_seconds '%d': must be >= 5", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.DigestTopN < 1 {
		return Config{}, fmt.Errorf("invalid digest_top_n '%d': must be >= 1", cfg.DigestTopN)
	}
	if schedule := strings.TrimSpace(cfg.DigestSchedule); schedule != "" {
		if _, err := ParseSchedule(schedule); err != nil {
			return Config{}, fmt.Errorf("invalid digest_schedule '%s': %w", schedule, err)
		}
		if cfg.SlackBotToken == "" || cfg.DigestChannelID == "" {
			log.Printf("WARNING: digest_schedule is set but slack_bot_token or digest_channel_id is missing. Digest disabled.")
		}
	}

	return cfg, nil
}

// ParseSchedule parses a standard 5-field cron expression
// (minute hour day-of-month month day-of-week).
func ParseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(expr)
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) DigestEnabled() bool {
	return strings.TrimSpace(c.DigestSchedule) != "" && c.SlackBotToken != "" && c.DigestChannelID != ""
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.DigestChannelID != ""
}
