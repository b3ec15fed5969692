package app

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"bmcd/pkg/api"
	"bmcd/pkg/config"
	"bmcd/pkg/eventlog"
	"bmcd/pkg/logger"
	"bmcd/pkg/models"
	"bmcd/pkg/notify"
	"bmcd/pkg/response"
	"bmcd/pkg/retention"
	"bmcd/pkg/sensor"
)

// App encapsulates the daemon components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string

	sender        *notify.Sender
	hostSensor    *sensor.Sensor
	stopRetention context.CancelFunc

	servers []server
}

// New initializes resources that do not require a running context: the
// logger, the event log store, stream buffer sizing and the subscriber
// sender. It does not start the HTTP listener; call Run to start it and
// block until shutdown.
func New(eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	// validate effective config early and fail fast
	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	logger.Init(eff.Config.Logging.Level)

	if n := eff.Config.Stream.BufferCapacity.Int64(); n > 0 {
		response.SetStreamCapacity(n)
	}

	if err := eventlog.Open(eff.DBPath); err != nil {
		return nil, fmt.Errorf("failed to open event log at %s: %w", eff.DBPath, err)
	}

	a := &App{eff: eff, version: version, commit: commit, buildDate: buildDate}
	a.setupNotify()

	a.hostSensor = sensor.New(5 * time.Second)
	api.UseSensor(a.hostSensor)
	return a, nil
}

// setupNotify wires subscriber delivery to event log appends.
func (a *App) setupNotify() {
	cfg := a.eff.Config.Notify
	if len(cfg.Subscribers) == 0 {
		return
	}
	var opts []notify.Option
	if cfg.MaxAttempts > 0 || cfg.RetryDelay.Duration() > 0 {
		opts = append(opts, notify.WithRetry(cfg.MaxAttempts, cfg.RetryDelay.Duration()))
	}
	a.sender = notify.NewSender(cfg.Subscribers, opts...)
	eventlog.SetNotifier(func(ev models.Event) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := a.sender.Send(ctx, ev); err != nil {
				logger.Warn("event_notify_failed", "event", ev.ID, "error", err)
			}
		}()
	})
	logger.Info("notify_enabled", "subscribers", len(cfg.Subscribers))
}

// Run starts the retention scheduler and the HTTP server, and blocks
// until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	stop, err := retention.Start(ctx, retention.Config{
		Enabled: a.eff.Config.Retention.Enabled,
		Cron:    a.eff.Config.Retention.Cron,
		Period:  a.eff.Config.Retention.Period.Duration(),
	})
	if err != nil {
		return fmt.Errorf("start retention: %w", err)
	}
	a.stopRetention = stop

	a.hostSensor.Start()

	a.printBanner()

	errCh := a.startHTTP()

	select {
	case <-ctx.Done():
		return a.Close()
	case err := <-errCh:
		return multierr.Append(err, a.Close())
	}
}

// Close stops the listeners and releases held resources. Safe to call
// once after Run returns a server error.
func (a *App) Close() error {
	var errs error
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, s := range a.servers {
		errs = multierr.Append(errs, s.Shutdown(shutdownCtx))
	}
	a.servers = nil
	if a.stopRetention != nil {
		a.stopRetention()
		a.stopRetention = nil
	}
	if a.hostSensor != nil {
		a.hostSensor.Stop()
		a.hostSensor = nil
	}
	eventlog.SetNotifier(nil)
	errs = multierr.Append(errs, eventlog.Close())
	return errs
}
