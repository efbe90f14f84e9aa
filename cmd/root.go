package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "urbix",
	Short: "Civic issue reporting with AI-assisted triage",
	Long: `Urbix collects citizen reports about urban problems, classifies them
with an AI model, tracks their resolution lifecycle, and gives
administrators live statistics and a one-sentence pulse of the city.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".urbix.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
