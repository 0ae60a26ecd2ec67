package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/nixlim/hva-top/internal/activity"
	"github.com/nixlim/hva-top/internal/burnrate"
	"github.com/nixlim/hva-top/internal/channel"
	"github.com/nixlim/hva-top/internal/config"
	"github.com/nixlim/hva-top/internal/control"
	"github.com/nixlim/hva-top/internal/logbuf"
	"github.com/nixlim/hva-top/internal/notice"
	"github.com/nixlim/hva-top/internal/observability"
	"github.com/nixlim/hva-top/internal/status"
	"github.com/nixlim/hva-top/internal/tui"
)

// app holds what every command needs: the effective config, the logger and
// the backend API client.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	logs    *logbuf.Store
	api     *control.Client
	tracing observability.TracingShutdown
	closeFn func() error
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(flags *globalFlags, stderr io.Writer) (config.Config, error) {
	path := flags.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	res, err := config.LoadFrom(path)
	if err != nil {
		return config.Config{}, err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "hva-top: config warning: %s\n", w)
	}

	cfg := res.Config
	if flags.url != "" {
		cfg.Channel.URL = flags.url
	}
	if flags.apiURL != "" {
		cfg.Control.BaseURL = flags.apiURL
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newApp builds the logger, tracing and API client. With interactive set the
// stderr sink is off because the dashboard owns the terminal.
func newApp(ctx context.Context, flags *globalFlags, stderr io.Writer, interactive bool) (*app, error) {
	cfg, err := loadConfig(flags, stderr)
	if err != nil {
		return nil, err
	}

	logs := logbuf.NewStore(cfg.Logs.MaxEntries)
	logger, closeLog, err := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
		Stderr: !interactive,
		Extra:  []io.Writer{logs.Writer()},
	})
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	shutdown, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     version,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("tracing initialization failed")
	}

	return &app{
		cfg:     cfg,
		log:     logger,
		logs:    logs,
		api:     control.New(cfg.Control.BaseURL,
			control.WithTimeout(cfg.Control.Timeout()),
			control.WithLogger(logger),
		),
		tracing: shutdown,
		closeFn: closeLog,
	}, nil
}

// shutdownManager returns the teardown for this run. t may be nil for
// commands that never open the channel.
func (a *app) shutdownManager(t *telemetry) *tui.ShutdownManager {
	sm := tui.NewShutdownManager()
	if t != nil {
		sm.Unsubscribe = t.unsubs
		sm.Disconnect = t.shared.Manager().Disconnect
	}
	if a.tracing != nil {
		sm.FlushTracing = a.tracing
	}
	sm.Cleanup = a.closeFn
	return sm
}

// telemetry is the channel plus the subscribers that fold its frames.
type telemetry struct {
	shared   *channel.Shared
	activity *activity.Log
	status   *status.Indicator
	cost     *burnrate.Tracker
	notices  *notice.Board
	toggler  *control.Toggler
	unsubs   []func()
}

func (a *app) newTelemetry(activityOpts ...activity.Option) *telemetry {
	dialer := channel.WebsocketDialer{
		Timeout:   a.cfg.Channel.DialTimeout(),
		ReadLimit: a.cfg.Channel.ReadLimitBytes,
	}
	mgr := channel.NewManager(a.cfg.Channel.URL, dialer,
		channel.WithReconnectDelay(a.cfg.Channel.ReconnectDelay()),
		channel.WithLogger(a.log),
	)

	t := &telemetry{
		shared:   channel.NewShared(mgr),
		activity: activity.NewLog(a.cfg.Activity.MaxEntries, activityOpts...),
		status:   status.NewIndicator(),
		cost: burnrate.NewTracker(burnrate.Thresholds{
			GreenBelow:  a.cfg.Display.CostColorGreenBelow,
			YellowBelow: a.cfg.Display.CostColorYellowBelow,
		}),
		notices: notice.NewBoard(notice.NewPlatformNotifier(a.cfg.Notifications.SystemNotify, a.log)),
	}
	t.toggler = control.NewToggler(a.api, t.status, t.notices, a.log)
	return t
}

// start registers the subscribers. The first subscription opens the
// channel.
func (t *telemetry) start() {
	t.unsubs = append(t.unsubs,
		t.shared.Manager().OnStateChange(t.status.SetChannelState),
		t.shared.Subscribe(t.status.Fold),
		t.shared.Subscribe(t.activity.Fold),
		t.shared.Subscribe(t.cost.Fold),
	)
}

// seedBaseline loads historical spend into the cost tracker. Failures only
// cost the baseline.
func (a *app) seedBaseline(ctx context.Context, tracker *burnrate.Tracker) {
	days := a.cfg.Control.UsageDays
	u, err := a.api.UsageStats(ctx, days)
	if err != nil {
		a.log.Warn().Err(err).Msg("usage stats unavailable")
		return
	}
	tracker.SetBaseline(burnrate.Baseline{
		TotalCost:   u.TotalCost,
		TotalTokens: u.TotalTokens,
		Days:        days,
	})
}
