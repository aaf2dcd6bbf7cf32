package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/smazurov/sidecar/internal/version"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			info := version.Get()
			if !asJSON {
				_, err := fmt.Fprintln(c.OutOrStdout(), info.String())
				return err
			}
			out, err := json.Marshal(info)
			if err != nil {
				return err
			}
			_, err = c.OutOrStdout().Write(pretty.Pretty(out))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
