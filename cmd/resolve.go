package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/smazurov/sidecar/internal/config"
	"github.com/smazurov/sidecar/internal/logging"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

type resolvedSpec struct {
	Path     string          `json:"path"`
	Platform config.Platform `json:"platform"`
	Command  string          `json:"command"`
	Args     []string        `json:"args"`
}

func newResolveCmd(a *app) *cobra.Command {
	var platform string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the backend command for this platform",
		Long: `Reads the launch configuration exactly as the sidecar would and prints the resulting ` +
			`command and arguments. Problems are logged and produce an empty command.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			opts := a.opts

			p := config.CurrentPlatform()
			if platform != "" {
				p = config.Platform(platform)
			}
			resolver := opts.newResolver(logging.GetLogger("config"), p)
			spec := resolver.Resolve()

			out, err := json.Marshal(resolvedSpec{
				Path:     resolver.Path(),
				Platform: resolver.Platform(),
				Command:  spec.Command,
				Args:     spec.Args,
			})
			if err != nil {
				return fmt.Errorf("encode launch spec: %w", err)
			}
			_, err = c.OutOrStdout().Write(pretty.Pretty(out))
			return err
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "Resolve the entry for another platform (windows, macos, linux)")
	return cmd
}
