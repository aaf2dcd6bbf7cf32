package cmd

import (
	"github.com/smazurov/sidecar/internal/config"
	"github.com/smazurov/sidecar/internal/logging"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to settings file" short:"c" default:"sidecar.toml"`

	// Backend settings
	BackendConfig string `help:"Backend launch configuration, relative to the build root" default:"backend.json" toml:"backend.config" env:"BACKEND_CONFIG"`
	BackendFormat string `help:"Launch configuration format (json, toml); default by extension" toml:"backend.format" env:"BACKEND_FORMAT"`
	BuildRoot     string `help:"Directory relative launch configuration paths are resolved against" toml:"backend.build_root" env:"BACKEND_BUILD_ROOT"`

	// Metrics settings
	MetricsAddr string `help:"Serve Prometheus metrics on this address; disabled when empty" toml:"metrics.addr" env:"METRICS_ADDR"`

	// Logging settings
	LoggingLevel      string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat     string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingSupervisor string `help:"Supervisor logging level" default:"info" toml:"logging.supervisor" env:"LOGGING_SUPERVISOR"`
	LoggingProcess    string `help:"Process launcher logging level" default:"info" toml:"logging.process" env:"LOGGING_PROCESS"`
	LoggingConfig     string `help:"Configuration logging level" default:"info" toml:"logging.config" env:"LOGGING_CONFIG"`
	LoggingMetrics    string `help:"Metrics logging level" default:"info" toml:"logging.metrics" env:"LOGGING_METRICS"`
}

func (o *Options) loggingConfig() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Modules: map[string]string{
			"supervisor": o.LoggingSupervisor,
			"process":    o.LoggingProcess,
			"config":     o.LoggingConfig,
			"metrics":    o.LoggingMetrics,
		},
	}
}

func (o *Options) launchConfigPath() string {
	return config.ResolveLaunchConfigPath(config.ResolveBuildRoot(o.BuildRoot), o.BackendConfig)
}

func (o *Options) newResolver(logger logging.Logger, platform config.Platform) *config.Resolver {
	opts := []config.ResolverOption{config.WithPlatform(platform)}
	if o.BackendFormat != "" {
		opts = append(opts, config.WithFormat(config.Format(o.BackendFormat)))
	}
	return config.NewResolver(o.launchConfigPath(), logger, opts...)
}
