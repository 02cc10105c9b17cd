package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the investflow CLI.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "investflow version %s\n", version)
		fmt.Fprintln(cmd.OutOrStdout(), "A paper-trading portfolio and gold savings simulator")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
