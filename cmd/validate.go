package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/smazurov/sidecar/internal/config"
	"github.com/spf13/cobra"
)

// errNoEntry is returned by validate when the current platform has no command.
var errNoEntry = errors.New("no backend command for this platform")

func newValidateCmd(a *app) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a launch configuration file",
		Long: `Parses the launch configuration and reports the command found for every platform. ` +
			`Unlike starting the sidecar, a malformed file or a missing entry for the current platform is an error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			opts := a.opts

			path := opts.launchConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			format := config.FormatForPath(path)
			if opts.BackendFormat != "" {
				format = config.Format(opts.BackendFormat)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read launch config: %w", err)
			}

			out := c.OutOrStdout()
			current := config.CurrentPlatform()
			var currentSpec config.LaunchSpec

			for _, p := range config.Platforms() {
				spec, err := config.ParseLaunchConfig(data, format, p)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if p == current {
					currentSpec = spec
				}
				if quiet {
					continue
				}
				if spec.Empty() {
					fmt.Fprintf(out, "%-8s (none)\n", p)
				} else {
					fmt.Fprintf(out, "%-8s %s %v\n", p, spec.Command, spec.Args)
				}
			}

			if currentSpec.Empty() {
				return fmt.Errorf("%s: %w (%s)", path, errNoEntry, current)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only report errors")
	return cmd
}
