package cli

import (
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print a snapshot header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := readHeaderFile(args[0])
			if err != nil {
				return err
			}
			renderHeader(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
