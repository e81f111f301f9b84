package config

import (
	"strings"
	"time"
)

const defaultObservabilityName = "promptwait"

// ObservabilityConfig groups configuration that controls metrics and outcome fan-out.
type ObservabilityConfig struct {
	Metrics       ObservabilityMetricsConfig
	Notifications ObservabilityNotificationsConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
	c.Notifications.Sanitize()
}

// ObservabilityMetricsConfig controls emission of metrics to external sinks such as StatsD.
type ObservabilityMetricsConfig struct {
	Enabled       bool   `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string `env:"OBSERVABILITY_METRICS_PREFIX"         envDefault:"promptwait"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	if c.StatsdAddress == "" {
		c.Enabled = false
	}
	c.Prefix = strings.TrimSpace(c.Prefix)
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}

// ObservabilityNotificationsConfig controls outbound job outcome notifications.
type ObservabilityNotificationsConfig struct {
	Enabled    bool                      `env:"NOTIFY_ENABLED"     envDefault:"false"`
	Timeout    time.Duration             `env:"NOTIFY_TIMEOUT"     envDefault:"30s"`
	RetryLimit int                       `env:"NOTIFY_RETRY_LIMIT" envDefault:"0"`
	// States limits which outcomes are delivered (completed, failed, timed_out). Empty means all.
	States     []string                  `env:"NOTIFY_STATES"      envSeparator:","`
	Webhook    WebhookNotificationConfig `                                            envPrefix:"NOTIFY_WEBHOOK_"`
	Slack      SlackNotificationConfig   `                                            envPrefix:"NOTIFY_SLACK_"`
	Redis      RedisNotificationConfig   `                                            envPrefix:"NOTIFY_REDIS_"`
}

// Sanitize normalises notification configuration values.
func (c *ObservabilityNotificationsConfig) Sanitize() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RetryLimit < 0 {
		c.RetryLimit = 0
	}

	states := c.States[:0]
	for _, st := range c.States {
		if st = strings.ToLower(strings.TrimSpace(st)); st != "" {
			states = append(states, st)
		}
	}
	c.States = states

	c.Webhook.sanitize()
	c.Slack.sanitize()
	c.Redis.sanitize()

	if !c.Enabled {
		c.Webhook.Enabled = false
		c.Slack.Enabled = false
		c.Redis.Enabled = false
		return
	}

	if c.Webhook.Enabled && c.Webhook.URL == "" {
		c.Webhook.Enabled = false
	}
	if c.Slack.Enabled && c.Slack.WebhookURL == "" {
		c.Slack.Enabled = false
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		c.Redis.Enabled = false
	}
}

// WebhookNotificationConfig controls the generic JSON webhook sink.
type WebhookNotificationConfig struct {
	Enabled   bool   `env:"ENABLED"    envDefault:"false"`
	URL       string `env:"URL"`
	APIKey    string `env:"API_KEY"`
	UserAgent string `env:"USER_AGENT" envDefault:"promptwait/1.0"`
}

func (c *WebhookNotificationConfig) sanitize() {
	c.URL = strings.TrimSpace(c.URL)
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.UserAgent = strings.TrimSpace(c.UserAgent); c.UserAgent == "" {
		c.UserAgent = defaultObservabilityName
	}
}

// SlackNotificationConfig controls Slack webhook fan-out.
type SlackNotificationConfig struct {
	Enabled    bool   `env:"ENABLED"     envDefault:"false"`
	WebhookURL string `env:"WEBHOOK_URL"`
	Channel    string `env:"CHANNEL"`
	Username   string `env:"USERNAME"    envDefault:"promptwait"`
}

func (c *SlackNotificationConfig) sanitize() {
	c.WebhookURL = strings.TrimSpace(c.WebhookURL)
	c.Channel = strings.TrimSpace(c.Channel)
	if c.Username = strings.TrimSpace(c.Username); c.Username == "" {
		c.Username = defaultObservabilityName
	}
}

// RedisNotificationConfig controls publishing outcomes to a Redis pub/sub channel.
type RedisNotificationConfig struct {
	Enabled  bool   `env:"ENABLED"  envDefault:"false"`
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB"       envDefault:"0"`
	Channel  string `env:"CHANNEL"  envDefault:"promptwait:outcomes"`
}

func (c *RedisNotificationConfig) sanitize() {
	c.Addr = strings.TrimSpace(c.Addr)
	if c.Channel = strings.TrimSpace(c.Channel); c.Channel == "" {
		c.Channel = defaultObservabilityName + ":outcomes"
	}
	if c.DB < 0 {
		c.DB = 0
	}
}
