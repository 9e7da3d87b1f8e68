package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/angas/wattwindow-go/logging"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16
	// If not assigned, the server will serve embedded files.
	// If assigned, the server will serve files from the directory,
	// that must contain a "static" and "templates" directory.
	// This is useful for development.
	WwwDir *string `mapstructure:"www_dir"`
}

type AppConfigDatabase struct {
	Path string
	// How many days price data should be stored in database before it gets purged
	DataRetentionDays *int `mapstructure:"data_retention_days"`
	// How many days daily backup files should be stored before they gets deleted
	BackupRetentionDays *int `mapstructure:"backup_retention_days"`
}

func (d AppConfigDatabase) GetDataRetentionDays() int {
	if d.DataRetentionDays == nil {
		return 90
	}
	return *d.DataRetentionDays
}

func (d AppConfigDatabase) GetBackupRetentionDays() int {
	if d.BackupRetentionDays == nil {
		return 90
	}
	return *d.BackupRetentionDays
}

type AppConfigPriceFeed struct {
	Area  string `mapstructure:"area"`   // Price area, e.g. "FI"
	RunAt string `mapstructure:"run_at"` // Cron expression for the refresh task
	// Max requests per second against the upstream feed, default: 2
	RequestsPerSec *int `mapstructure:"requests_per_sec"`
}

func (p AppConfigPriceFeed) GetRequestsPerSec() int {
	if p.RequestsPerSec == nil {
		return 2
	}
	return *p.RequestsPerSec
}

// ApplianceProfile describes one appliance the announcer publishes
// recommended start windows for.
type ApplianceProfile struct {
	Name            string  `mapstructure:"name"`
	DurationMinutes int     `mapstructure:"duration_minutes"`
	PowerKw         float64 `mapstructure:"power_kw"`
	// How far ahead to search for a window in hours, default: 24
	HorizonHours *int `mapstructure:"horizon_hours"`
}

func (a ApplianceProfile) GetHorizonHours() int {
	if a.HorizonHours == nil {
		return 24
	}
	return *a.HorizonHours
}

type AppConfigMqtt struct {
	Host     string // Leave empty to disable the announcer
	Port     int16
	Username string
	Password string
	// Topic prefix, default: "wattwindow"
	TopicPrefix *string            `mapstructure:"topic_prefix"`
	RunAt       string             `mapstructure:"run_at"`
	Appliances  []ApplianceProfile `mapstructure:"appliances"`
}

func (m AppConfigMqtt) GetTopicPrefix() string {
	if m.TopicPrefix == nil {
		return "wattwindow"
	}
	return *m.TopicPrefix
}

func (m AppConfigMqtt) Enabled() bool {
	return m.Host != ""
}

type AppConfigGui struct {
	// Timezone for displaying times in the GUI, default: UTC
	Timezone *string `mapstructure:"timezone"`
}

func (g AppConfigGui) GetTimezone() string {
	if g.Timezone == nil {
		return "UTC"
	}
	return *g.Timezone
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return "JSON"
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return "TEXT"
	}
	return "JSON"
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Api       AppConfigApi
	Database  AppConfigDatabase
	PriceFeed AppConfigPriceFeed `mapstructure:"price_feed"`
	Mqtt      AppConfigMqtt      `mapstructure:"mqtt"`
	Gui       AppConfigGui       `mapstructure:"gui"`
	Logging   AppConfigLogging   `mapstructure:"logging"`
}

func Load(path string) (*AppConfig, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("config")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c AppConfig

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	return &c, nil
}
