package config

import (
	"os"
	"path/filepath"
)

// DefaultLaunchConfig is the launch configuration file name looked up beside
// the build root.
const DefaultLaunchConfig = "backend.json"

// BuildRoot is the directory the launch configuration is resolved against.
// Packagers set it at link time:
//
//	go build -ldflags "-X github.com/smazurov/sidecar/internal/config.BuildRoot=/opt/app"
var BuildRoot = ""

// ResolveBuildRoot returns override if set, then BuildRoot, then the directory
// holding the running executable, then the working directory.
func ResolveBuildRoot(override string) string {
	if override != "" {
		return override
	}
	if BuildRoot != "" {
		return BuildRoot
	}
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// ResolveLaunchConfigPath joins a relative path onto root. Absolute paths are
// returned unchanged and an empty path means DefaultLaunchConfig.
func ResolveLaunchConfigPath(root, path string) string {
	if path == "" {
		path = DefaultLaunchConfig
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
