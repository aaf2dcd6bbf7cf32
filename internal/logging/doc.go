// Package logging provides structured logging with per-module log levels.
//
// Records go to stdout (text or JSON) and, when journald is listening, to the
// systemd journal as well. Each module gets its own *slog.Logger tagged with a
// "module" attribute and backed by a slog.LevelVar, so levels can be changed
// while the process runs.
//
// Initialize once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"process": "debug",
//		},
//	})
//
// Then ask for a module logger:
//
//	logger := logging.GetLogger("supervisor")
//	logger.Info("Backend process started", "pid", pid)
//
// Reconfigure swaps levels in place, which is what the settings file watcher
// calls after sidecar.toml changes:
//
//	logging.Reconfigure(logging.Config{Level: "debug"})
//
// Journal entries are tagged with SYSLOG_IDENTIFIER=sidecar:
//
//	journalctl -t sidecar -f
//	journalctl -t sidecar MODULE=process
package logging
