// Package core contains the business logic of swarm: the card filter and
// ranking pipeline, the overview aggregation, task lookup, the action
// submission service and configuration loading.
package core

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
	"github.com/valter-silva-au/swarm/pkg/models"
)

// ConfigFileName is the name of the YAML configuration file in the base dir.
const ConfigFileName = ".swarmconfig"

// ConfigurationManager loads and validates configuration from .swarmconfig
// and the environment.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	basePath string
	env      models.EnvConfig
}

// NewConfigurationManager creates a ConfigurationManager that reads
// .swarmconfig from basePath. Relative directories in the file are resolved
// against basePath. The ACTIONS_DIR override in envCfg takes precedence over
// the file.
func NewConfigurationManager(basePath string, envCfg models.EnvConfig) ConfigurationManager {
	return &viperConfigManager{basePath: basePath, env: envCfg}
}

// LoadEnvConfig parses the environment overrides.
func LoadEnvConfig() (models.EnvConfig, error) {
	var cfg models.EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return models.EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func defaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		DataDir:            "data",
		FallbackActionsDir: "/tmp",
		InboxLimit:         DefaultInboxLimit,
		DefaultMinScore:    DefaultMinScore,
		TopCapabilities:    DefaultTopCapabilities,
		ServerAddr:         "127.0.0.1:8501",
		AlertFailedActions: 1,
		AlertWindow:        24 * time.Hour,
		AlertStaleDays:     7,
	}
}

// LoadGlobalConfig reads .swarmconfig from the base path. A missing file
// yields the defaults.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := defaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("data.dir", cfg.DataDir)
	v.SetDefault("actions.dir", "")
	v.SetDefault("actions.fallback_dir", cfg.FallbackActionsDir)
	v.SetDefault("inbox.limit", cfg.InboxLimit)
	v.SetDefault("filters.min_score", cfg.DefaultMinScore)
	v.SetDefault("overview.top_capabilities", cfg.TopCapabilities)
	v.SetDefault("server.addr", cfg.ServerAddr)
	v.SetDefault("alerts.failed_actions", cfg.AlertFailedActions)
	v.SetDefault("alerts.window", cfg.AlertWindow)
	v.SetDefault("alerts.stale_days", cfg.AlertStaleDays)
	v.SetDefault("alerts.slack_webhook", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
		}
	}

	cfg.DataDir = cm.resolve(v.GetString("data.dir"))
	cfg.ActionsDir = v.GetString("actions.dir")
	cfg.FallbackActionsDir = cm.resolve(v.GetString("actions.fallback_dir"))
	cfg.InboxLimit = v.GetInt("inbox.limit")
	cfg.DefaultMinScore = v.GetInt("filters.min_score")
	cfg.TopCapabilities = v.GetInt("overview.top_capabilities")
	cfg.ServerAddr = v.GetString("server.addr")
	cfg.AlertFailedActions = v.GetInt("alerts.failed_actions")
	cfg.AlertWindow = v.GetDuration("alerts.window")
	cfg.AlertStaleDays = v.GetInt("alerts.stale_days")
	cfg.SlackWebhookURL = v.GetString("alerts.slack_webhook")
	if cm.env.SlackWebhookURL != "" {
		cfg.SlackWebhookURL = cm.env.SlackWebhookURL
	}

	// Precedence: ACTIONS_DIR > actions.dir > data dir.
	switch {
	case cm.env.ActionsDir != "":
		cfg.ActionsDir = cm.env.ActionsDir
	case cfg.ActionsDir == "":
		cfg.ActionsDir = cfg.DataDir
	}
	cfg.ActionsDir = cm.resolve(cfg.ActionsDir)

	return cfg, nil
}

func (cm *viperConfigManager) resolve(dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(cm.basePath, dir)
}

// ValidateConfig checks the configuration for invalid values and reports
// every problem at once.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.DataDir == "" {
		errs = append(errs, "data.dir must not be empty")
	}
	if cfg.FallbackActionsDir == "" {
		errs = append(errs, "actions.fallback_dir must not be empty")
	}
	if cfg.InboxLimit <= 0 {
		errs = append(errs, fmt.Sprintf("inbox.limit must be positive, got %d", cfg.InboxLimit))
	}
	if cfg.DefaultMinScore < 0 || cfg.DefaultMinScore > 100 {
		errs = append(errs, fmt.Sprintf("filters.min_score %d is invalid, must be between 0 and 100", cfg.DefaultMinScore))
	}
	if cfg.TopCapabilities <= 0 {
		errs = append(errs, fmt.Sprintf("overview.top_capabilities must be positive, got %d", cfg.TopCapabilities))
	}
	if cfg.ServerAddr == "" {
		errs = append(errs, "server.addr must not be empty")
	}
	if cfg.AlertFailedActions < 0 {
		errs = append(errs, fmt.Sprintf("alerts.failed_actions must not be negative, got %d", cfg.AlertFailedActions))
	}
	if cfg.AlertWindow <= 0 {
		errs = append(errs, fmt.Sprintf("alerts.window must be positive, got %s", cfg.AlertWindow))
	}
	if cfg.AlertStaleDays < 0 {
		errs = append(errs, fmt.Sprintf("alerts.stale_days must not be negative, got %d", cfg.AlertStaleDays))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
