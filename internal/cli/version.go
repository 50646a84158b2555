package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/contextref/pkg/contextref"
)

const modulePath = "github.com/mesh-intelligence/contextref"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the contextref version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "contextref v%s\nmodule: %s\n", contextref.Version, modulePath)
			return nil
		},
	}
}
