package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/longkey1/xhsnote/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), version.GetFull())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
