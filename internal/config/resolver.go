package config

import (
	"os"

	"github.com/smazurov/sidecar/internal/logging"
)

// Resolver loads the launch configuration file and picks the entry for one
// platform. It never fails: every problem is logged and degrades to an empty
// LaunchSpec so the host keeps running without a backend.
type Resolver struct {
	path     string
	format   Format
	platform Platform
	logger   logging.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithPlatform overrides the build-time platform.
func WithPlatform(p Platform) ResolverOption {
	return func(r *Resolver) {
		r.platform = p
	}
}

// WithFormat overrides the extension-based format detection.
func WithFormat(f Format) ResolverOption {
	return func(r *Resolver) {
		r.format = f
	}
}

// NewResolver creates a resolver for the launch configuration at path.
func NewResolver(path string, logger logging.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		path:     path,
		format:   FormatForPath(path),
		platform: CurrentPlatform(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the configuration file the resolver reads.
func (r *Resolver) Path() string {
	return r.path
}

// Platform returns the entry key the resolver selects.
func (r *Resolver) Platform() Platform {
	return r.platform
}

// Resolve reads and parses the configuration file.
func (r *Resolver) Resolve() LaunchSpec {
	empty := LaunchSpec{Args: []string{}}

	data, err := os.ReadFile(r.path)
	if err != nil {
		r.logger.Error("Failed to read backend launch config", "path", r.path, "error", err)
		return empty
	}

	spec, err := ParseLaunchConfig(data, r.format, r.platform)
	if err != nil {
		r.logger.Error("Failed to parse backend launch config", "path", r.path, "format", r.format, "error", err)
		return empty
	}

	if !r.platform.Supported() {
		r.logger.Warn("No backend launch config entry for this operating system", "path", r.path)
	} else if spec.Empty() {
		r.logger.Warn("Backend launch config has no command for platform", "path", r.path, "platform", r.platform)
	} else {
		r.logger.Debug("Resolved backend launch spec", "platform", r.platform, "command", spec.Command, "args", spec.Args)
	}

	return spec
}
