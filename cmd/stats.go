package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BhavyaPagadala/urbix/internal/report"
	"github.com/BhavyaPagadala/urbix/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print report statistics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer a.Close()

		all := a.store.List(report.Filter{})
		snap := stats.Compute(filterFromFlags(cmd).Apply(all), a.loc)
		snap.Localities = stats.Localities(all)
		return printJSON(snap)
	},
}

var pulseCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Print the one-sentence urban health summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.analyzer.Enabled() {
			return fmt.Errorf("no AI provider is configured; set provider in %s", cfgFile)
		}
		p := a.pulse.Refresh(ctx, a.store.Version(), a.store.List(report.Filter{}))
		if p.Summary == "" {
			return fmt.Errorf("the pulse summary could not be generated")
		}
		fmt.Println(p.Summary)
		return nil
	},
}

func init() {
	addFilterFlags(statsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(pulseCmd)
}
