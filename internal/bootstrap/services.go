package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/promptwait/config"
	"github.com/target/promptwait/internal/comfy"
	"github.com/target/promptwait/internal/observability/notify/redispub"
	"github.com/target/promptwait/internal/observability/notify/slack"
	"github.com/target/promptwait/internal/observability/notify/webhook"
	"github.com/target/promptwait/internal/observability/statsd"
	"github.com/target/promptwait/internal/poll"
	"github.com/target/promptwait/internal/service"
	"github.com/target/promptwait/internal/service/notifier"
)

// Container holds the long-lived collaborators of one CLI invocation.
type Container struct {
	Config        config.AppConfig
	Logger        *slog.Logger
	Comfy         *comfy.Client
	Observability ObservabilityContainer

	redis redis.UniversalClient
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink *statsd.Client
	Notifier    *notifier.Service
}

// NewContainer wires the service client and observability from cfg.
// Notification sinks that cannot be initialised are logged and skipped.
func NewContainer(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := buildComfyClient(cfg.Comfy, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, Logger: logger, Comfy: client}
	c.Observability = c.buildObservability(ctx)
	return c, nil
}

func buildComfyClient(cfg config.ComfyConfig, logger *slog.Logger) (*comfy.Client, error) {
	hc, err := BuildHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	fields, err := comfy.ParseStatsFields(cfg.StatsFields)
	if err != nil {
		return nil, fmt.Errorf("parse stats fields: %w", err)
	}
	client, err := comfy.NewClient(comfy.Config{
		BaseURL:      cfg.BaseURL,
		ClientID:     cfg.ClientID,
		ProbeTimeout: cfg.ProbeTimeout,
		HTTPClient:   hc,
		Logger:       logger.With("component", "comfy_client"),
		Stats:        fields,
	})
	if err != nil {
		return nil, fmt.Errorf("create service client: %w", err)
	}
	return client, nil
}

// buildObservability configures metrics and notification adapters.
func (c *Container) buildObservability(ctx context.Context) ObservabilityContainer {
	cfg := c.Config.Observability

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  c.Logger,
		})
		if err != nil {
			c.Logger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink: metricsSink,
		Notifier:    c.buildNotifier(ctx, cfg.Notifications),
	}
}

func (c *Container) buildNotifier(ctx context.Context, cfg config.ObservabilityNotificationsConfig) *notifier.Service {
	logger := c.Logger.With("component", "outcome_notifier")
	if !cfg.Enabled {
		return notifier.NewService(notifier.Options{Logger: logger})
	}

	sinks := make([]notifier.SinkRegistration, 0, 3)

	if cfg.Webhook.Enabled {
		client, err := webhook.NewClient(webhook.Config{
			URL:        cfg.Webhook.URL,
			APIKey:     cfg.Webhook.APIKey,
			UserAgent:  cfg.Webhook.UserAgent,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			c.Logger.Error("failed to initialise webhook notifier", "error", err)
		} else {
			sinks = append(sinks, notifier.SinkRegistration{Name: "webhook", Sink: client})
		}
	}

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.Slack.WebhookURL,
			Channel:    cfg.Slack.Channel,
			Username:   cfg.Slack.Username,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			c.Logger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, notifier.SinkRegistration{Name: "slack", Sink: client})
		}
	}

	if cfg.Redis.Enabled {
		if pub, err := c.buildRedisPublisher(ctx, cfg.Redis); err != nil {
			c.Logger.Error("failed to initialise redis notifier", "error", err)
		} else {
			sinks = append(sinks, notifier.SinkRegistration{Name: "redis", Sink: pub})
		}
	}

	return notifier.NewService(notifier.Options{
		Logger: logger,
		Sinks:  sinks,
		States: cfg.States,
	})
}

func (c *Container) buildRedisPublisher(ctx context.Context, cfg config.RedisNotificationConfig) (*redispub.Publisher, error) {
	client, err := ConnectRedis(ctx, cfg, c.Logger)
	if err != nil {
		return nil, err
	}
	pub, err := redispub.NewPublisher(client, cfg.Channel)
	if err != nil {
		return nil, errors.Join(err, client.Close())
	}
	c.redis = client
	return pub, nil
}

// NewRunner builds a runner bounded by wait. Callers pass the config's Wait
// section after applying flag overrides.
func (c *Container) NewRunner(wait config.WaitConfig) (*service.Runner, error) {
	observers := service.RunnerObservers{
		Logger:   c.Logger.With("component", "runner"),
		Notifier: c.Observability.Notifier,
	}
	if c.Observability.MetricsSink != nil {
		observers.Metrics = c.Observability.MetricsSink
	}
	return service.NewRunner(service.RunnerOptions{
		API: c.Comfy,
		Config: service.RunnerConfig{
			OutputDir: c.Config.Comfy.OutputDir,
			Wait:      poll.Options{Interval: wait.Interval, MaxWait: wait.Max},
			Metadata:  map[string]string{"base_url": c.Comfy.BaseURL()},
		},
		Observers: observers,
	})
}

// Close releases network resources held by observability sinks.
func (c *Container) Close() error {
	var errs []error
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis client: %w", err))
		}
	}
	if err := c.Observability.MetricsSink.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close statsd client: %w", err))
	}
	return errors.Join(errs...)
}
