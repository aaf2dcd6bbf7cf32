// Package cmd holds the sidecar command line.
package cmd

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/sidecar/internal/config"
	"github.com/smazurov/sidecar/internal/host"
	"github.com/smazurov/sidecar/internal/logging"
)

// app carries the parsed options to the subcommands. humacli fills opts
// before any command runs.
type app struct {
	opts *Options
}

// NewCLI creates the sidecar command line. The root command starts the
// backend once setup is done and kills it on SIGINT or SIGTERM.
func NewCLI() humacli.CLI {
	a := &app{}

	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		a.opts = opts

		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}
		logging.Initialize(opts.loggingConfig())

		host.Bind(hooks, newService(opts))
	})

	root := cli.Root()
	root.Use = "sidecar"
	root.Short = "Keep a backend process alive for as long as the host runs"
	root.Long = `Starts the backend described by the launch configuration once the host is up ` +
		`and kills it when the host exits. The launch configuration holds one entry per ` +
		`operating system (windows, macos, linux) with a command and its arguments.`

	root.AddCommand(
		newResolveCmd(a),
		newValidateCmd(a),
		newVersionCmd(),
	)
	return cli
}

// Execute runs the command line.
func Execute() {
	NewCLI().Run()
}
