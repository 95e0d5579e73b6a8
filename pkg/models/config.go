package models

import "time"

// GlobalConfig holds system-wide settings read from .swarmconfig via Viper.
type GlobalConfig struct {
	DataDir            string `yaml:"data_dir" mapstructure:"data_dir"`
	ActionsDir         string `yaml:"actions_dir" mapstructure:"actions_dir"`
	FallbackActionsDir string `yaml:"fallback_actions_dir" mapstructure:"fallback_actions_dir"`
	InboxLimit         int    `yaml:"inbox_limit" mapstructure:"inbox_limit"`
	DefaultMinScore    int    `yaml:"default_min_score" mapstructure:"default_min_score"`
	TopCapabilities    int    `yaml:"top_capabilities" mapstructure:"top_capabilities"`
	ServerAddr         string `yaml:"server_addr" mapstructure:"server_addr"`

	// Alerting over the event log. A zero count or day threshold disables
	// that alert.
	AlertFailedActions int           `yaml:"alert_failed_actions" mapstructure:"alert_failed_actions"`
	AlertWindow        time.Duration `yaml:"alert_window" mapstructure:"alert_window"`
	AlertStaleDays     int           `yaml:"alert_stale_days" mapstructure:"alert_stale_days"`
	SlackWebhookURL    string        `yaml:"slack_webhook_url" mapstructure:"slack_webhook_url"`
}

// EnvConfig holds the environment overrides, parsed with caarlos0/env.
type EnvConfig struct {
	Home       string `env:"SWARM_HOME"`
	ActionsDir string `env:"ACTIONS_DIR"`
	// SlackWebhookURL overrides alerts.slack_webhook.
	SlackWebhookURL string `env:"SWARM_SLACK_WEBHOOK"`
}
