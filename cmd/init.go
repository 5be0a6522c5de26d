package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/physio-intake/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with an interactive wizard",
	Long:  `Runs an interactive wizard to pick the LLM provider, quality tier, conversation store and server port, and writes the result to --config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
