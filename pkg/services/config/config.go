package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "REVOPS"

type Config struct {
	Database Database `mapstructure:"database"`
	// State holds canonical_pipeline and run history when Database is a remote warehouse
	State State `mapstructure:"state"`
	// Sources is the path of the ini file describing each source's table and field names
	Sources string `mapstructure:"sources"`
	Sheets  Sheets `mapstructure:"sheets"`
	LLM     LLM    `mapstructure:"llm"`
	Slack   Slack  `mapstructure:"slack"`
	Report  Report `mapstructure:"report"`
	Server  Server `mapstructure:"server"`
}

// Database selects where raw deal tables live. Driver is one of duckdb, sqlite, snowflake, databricks.
type Database struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	DSN       string `mapstructure:"dsn"`
	Account   string `mapstructure:"account"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	Warehouse string `mapstructure:"warehouse"`
	Database  string `mapstructure:"database"`
	Schema    string `mapstructure:"schema"`
	Role      string `mapstructure:"role"`
	Host      string `mapstructure:"host"`
	Token     string `mapstructure:"token"`
	HTTPPath  string `mapstructure:"http_path"`
	Catalog   string `mapstructure:"catalog"`
}

type State struct {
	Path string `mapstructure:"path"`
}

// Sheets points at an .xlsx spreadsheet export that replaces the spreadsheet source table
type Sheets struct {
	Path   string `mapstructure:"path"`
	Sheet  string `mapstructure:"sheet"`
	Source string `mapstructure:"source"`
}

type LLM struct {
	Model  string `mapstructure:"model"`
	APIKey string `mapstructure:"api_key"`
	Prompt string `mapstructure:"prompt"`
}

type Slack struct {
	Webhook string `mapstructure:"webhook"`
}

type Report struct {
	StaleDays   int  `mapstructure:"stale_days"`
	TopRisks    int  `mapstructure:"top_risks"`
	SkipInvalid bool `mapstructure:"skip_invalid"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "duckdb")
	v.SetDefault("database.path", "revops-pilot.db")
	v.SetDefault("state.path", "revops-state.db")
	for _, key := range []string{
		"database.dsn", "database.account", "database.user", "database.password", "database.warehouse",
		"database.database", "database.schema", "database.role", "database.host",
		"database.token", "database.http_path", "database.catalog",
		"sources", "sheets.path", "sheets.sheet", "llm.prompt",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("sheets.source", "sheets")
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("report.stale_days", 30)
	v.SetDefault("report.top_risks", 5)
	v.SetDefault("report.skip_invalid", false)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
}

// LoadConfig reads the optional YAML file at path and applies REVOPS_* environment overrides.
// SLACK_WEBHOOK and GEMINI_API_KEY are honoured as well.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("slack.webhook", envPrefix+"_SLACK_WEBHOOK", "SLACK_WEBHOOK")
	_ = v.BindEnv("llm.api_key", envPrefix+"_LLM_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse revops config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Database.Driver == "" {
		errs = append(errs, errors.New("database.driver is required"))
	}
	if c.Report.StaleDays < 0 {
		errs = append(errs, errors.New("report.stale_days must not be negative"))
	}
	if c.Report.TopRisks <= 0 {
		errs = append(errs, errors.New("report.top_risks must be positive"))
	}
	return errors.Join(errs...)
}
