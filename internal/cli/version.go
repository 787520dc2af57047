package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=...".
var Version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tradeplan version %s\n", Version)
		},
	}
}
