// Package config provides YAML-based configuration loading for Mission Control.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the top-level Mission Control configuration, loaded from
// missionctl.yaml with MC_* environment overrides applied on top.
type Config struct {
	Environment string       `yaml:"environment" envconfig:"ENVIRONMENT"`
	Paths       PathsConfig  `yaml:"paths"`
	DB          DBConfig     `yaml:"db"`
	Ingest      IngestConfig `yaml:"ingest"`
	Notify      NotifyConfig `yaml:"notify"`
}

// PathsConfig locates the openclaw files the ingestion service watches.
type PathsConfig struct {
	OpenclawConfig string `yaml:"openclaw_config" envconfig:"OPENCLAW_CONFIG"`
	GatewayLog     string `yaml:"gateway_log" envconfig:"GATEWAY_LOG"`
	WatchdogLog    string `yaml:"watchdog_log" envconfig:"WATCHDOG_LOG"`
	SessionsLog    string `yaml:"sessions_log" envconfig:"SESSIONS_LOG"`
	TaskQueueMD    string `yaml:"task_queue_md" envconfig:"TASK_QUEUE_MD"`
	CronJobsJSON   string `yaml:"cron_jobs_json" envconfig:"CRON_JOBS_JSON"`
}

// DBConfig holds connection settings for the mission control store.
// Driver "sqlite" uses Path; driver "mysql" uses Host/Port/Database.
type DBConfig struct {
	Driver   string `yaml:"driver" envconfig:"DB_DRIVER"`
	Path     string `yaml:"path" envconfig:"DB_PATH"`
	Host     string `yaml:"host" envconfig:"DB_HOST"`
	Port     int    `yaml:"port" envconfig:"DB_PORT"`
	User     string `yaml:"user" envconfig:"DB_USER"`
	Password string `yaml:"password" envconfig:"DB_PASSWORD"`
	Database string `yaml:"database" envconfig:"DB_DATABASE"`
}

// IngestConfig configures the HTTP ingest API.
type IngestConfig struct {
	Port   int    `yaml:"port" envconfig:"INGEST_PORT"`
	APIKey string `yaml:"api_key" envconfig:"INGEST_API_KEY"`
}

// NotifyConfig configures alert delivery. A notifier is enabled when its
// token and channel are both set.
type NotifyConfig struct {
	SlackToken     string `yaml:"slack_token" envconfig:"SLACK_TOKEN"`
	SlackChannel   string `yaml:"slack_channel" envconfig:"SLACK_CHANNEL"`
	DiscordToken   string `yaml:"discord_token" envconfig:"DISCORD_TOKEN"`
	DiscordChannel string `yaml:"discord_channel" envconfig:"DISCORD_CHANNEL"`
}

// Load reads a YAML config file from path, applies MC_* environment
// overrides, and returns a validated Config. A missing file is not an error:
// defaults plus environment variables are a complete configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			data = nil
		} else {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config with environment
// overrides applied.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse: %w", err)
		}
	}
	if err := envconfig.Process("mc", &cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	home, _ := os.UserHomeDir()
	claw := filepath.Join(home, ".openclaw")

	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Paths.OpenclawConfig == "" {
		c.Paths.OpenclawConfig = filepath.Join(claw, "openclaw.json")
	}
	if c.Paths.GatewayLog == "" {
		c.Paths.GatewayLog = filepath.Join(claw, "logs", "gateway.log")
	}
	if c.Paths.WatchdogLog == "" {
		c.Paths.WatchdogLog = filepath.Join(claw, "logs", "watchdog.log")
	}
	if c.Paths.SessionsLog == "" {
		c.Paths.SessionsLog = filepath.Join(claw, "logs", "sessions.jsonl")
	}
	if c.Paths.TaskQueueMD == "" {
		c.Paths.TaskQueueMD = filepath.Join(claw, "task-queue.md")
	}
	if c.Paths.CronJobsJSON == "" {
		c.Paths.CronJobsJSON = filepath.Join(claw, "cron", "jobs.json")
	}
	if c.DB.Driver == "" {
		c.DB.Driver = "sqlite"
	}
	if c.DB.Path == "" {
		c.DB.Path = filepath.Join(claw, "missionctl.db")
	}
	if c.DB.Host == "" {
		c.DB.Host = "127.0.0.1"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.DB.User == "" {
		c.DB.User = "root"
	}
	if c.DB.Database == "" {
		c.DB.Database = "missionctl"
	}
	if c.Ingest.Port == 0 {
		c.Ingest.Port = 8090
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.DB.Driver {
	case "sqlite":
		if c.DB.Path == "" {
			errs = append(errs, "db.path is required for the sqlite driver")
		}
	case "mysql":
		if c.DB.Database == "" {
			errs = append(errs, "db.database is required for the mysql driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("db.driver %q is not supported (sqlite or mysql)", c.DB.Driver))
	}
	if (c.Notify.SlackToken == "") != (c.Notify.SlackChannel == "") {
		errs = append(errs, "notify.slack_token and notify.slack_channel must be set together")
	}
	if (c.Notify.DiscordToken == "") != (c.Notify.DiscordChannel == "") {
		errs = append(errs, "notify.discord_token and notify.discord_channel must be set together")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SlackEnabled reports whether Slack alert delivery is configured.
func (c *Config) SlackEnabled() bool {
	return c.Notify.SlackToken != "" && c.Notify.SlackChannel != ""
}

// DiscordEnabled reports whether Discord alert delivery is configured.
func (c *Config) DiscordEnabled() bool {
	return c.Notify.DiscordToken != "" && c.Notify.DiscordChannel != ""
}
