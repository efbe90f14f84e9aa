package cmd

import (
	"github.com/spf13/cobra"

	"github.com/BhavyaPagadala/urbix/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize urbix configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the AI provider, storage backend and server settings, and writes a .urbix.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
