package cmd

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smazurov/sidecar/internal/config"
	"github.com/smazurov/sidecar/internal/events"
	"github.com/smazurov/sidecar/internal/logging"
	"github.com/smazurov/sidecar/internal/metrics/collectors"
	"github.com/smazurov/sidecar/internal/metrics/exporters"
	"github.com/smazurov/sidecar/internal/process"
	"github.com/smazurov/sidecar/internal/supervisor"
	"github.com/smazurov/sidecar/internal/systemd"
	"github.com/smazurov/sidecar/internal/version"
)

// stopEventTimeout bounds how long shutdown waits for the collector to see
// the final BackendStoppedEvent.
const stopEventTimeout = time.Second

// service is the headless host: the supervisor plus the settings watcher and
// metrics around it. It implements host.Lifecycle.
type service struct {
	opts   *Options
	logger logging.Logger

	collector *collectors.EventCollector
	sup       *supervisor.Supervisor
	metrics   *exporters.Server
	watcher   *config.Watcher[logging.Config]

	ctx    context.Context
	cancel context.CancelFunc
}

func newService(opts *Options) *service {
	logger := logging.GetLogger("main")
	eventBus := events.New()

	s := &service{
		opts:      opts,
		logger:    logger,
		collector: collectors.NewEventCollector(eventBus),
		sup: supervisor.New(supervisor.Options{
			Resolver: opts.newResolver(logging.GetLogger("config"), config.CurrentPlatform()),
			Launcher: process.NewLauncher(logging.GetLogger("process"), process.WithEventBus(eventBus)),
			Logger:   logging.GetLogger("supervisor"),
			Bus:      eventBus,
			Notifier: systemd.NewNotifier(logger),
		}),
	}
	if opts.MetricsAddr != "" {
		s.metrics = exporters.NewServer(opts.MetricsAddr)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// OnSetupComplete starts the plumbing and then the backend.
func (s *service) OnSetupComplete() {
	s.watcher = watchSettings(s.opts.Config, s.logger)

	if err := s.collector.Start(s.ctx); err != nil {
		s.logger.Warn("Failed to start metrics collector", "error", err)
	}

	if s.metrics != nil {
		if err := prometheus.Register(s.collector.ProcessCollector()); err != nil {
			s.logger.Warn("Failed to register backend process metrics", "error", err)
		}
		s.metrics.Start()
	}

	s.logger.Info("Starting sidecar", "version", version.String(), "platform", config.CurrentPlatform(), "launch_config", s.opts.launchConfigPath())
	s.sup.OnSetupComplete()
}

// OnExitRequested kills the backend and then tears the plumbing down.
func (s *service) OnExitRequested() {
	s.sup.OnExitRequested()

	if s.sup.State() == supervisor.StateReaped {
		ctx, cancel := context.WithTimeout(s.ctx, stopEventTimeout)
		if err := s.collector.WaitStopped(ctx); err != nil {
			s.logger.Debug("Backend stop not recorded in metrics", "error", err)
		}
		cancel()
	}
	s.collector.Stop()

	if s.metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.metrics.Stop(shutdownCtx); err != nil {
			s.logger.Warn("Error stopping metrics server", "error", err)
		}
		cancel()
	}
	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.cancel()

	s.logger.Info("Sidecar stopped", "backend_state", s.sup.State())
}

// watchSettings re-applies logging levels when the settings file changes. It
// returns nil when the file cannot be watched.
func watchSettings(path string, logger logging.Logger) *config.Watcher[logging.Config] {
	if path == "" {
		return nil
	}

	w := config.NewWatcher(path, config.LoadLoggingConfig, logging.GetLogger("config"))
	w.OnReload(func(cfg logging.Config) {
		logging.Reconfigure(cfg)
		logger.Info("Logging configuration reloaded", "level", cfg.Level)
	})
	if err := w.Start(); err != nil {
		logger.Debug("Settings file not watched", "path", path, "error", err)
		return nil
	}
	return w
}
