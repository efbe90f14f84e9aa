package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BhavyaPagadala/urbix/internal/progress"
)

var reanalyzeCmd = &cobra.Command{
	Use:   "reanalyze [id...]",
	Short: "Re-run AI classification for reports",
	Long:  `Re-runs the analysis for the given reports, or for every report matching the filter flags when no ids are given. Failed analyses store the fallback classification.`,
	RunE:  runReanalyze,
}

func init() {
	addFilterFlags(reanalyzeCmd)
	rootCmd.AddCommand(reanalyzeCmd)
}

func runReanalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.analyzer.Enabled() {
		return fmt.Errorf("no AI provider is configured; set provider in %s", cfgFile)
	}

	ids := args
	if len(ids) == 0 {
		for _, r := range a.store.List(filterFromFlags(cmd)) {
			ids = append(ids, r.ID)
		}
	}
	if len(ids) == 0 {
		fmt.Println("No reports to reanalyze.")
		return nil
	}

	reporter := progress.NewReporter("Reanalyzing reports")
	reporter.Start(len(ids))
	var failed int
	for i, id := range ids {
		if _, err := a.engine.Reanalyze(ctx, id); err != nil {
			failed++
			if verbose {
				fmt.Fprintf(os.Stderr, "  %s: %v\n", id, err)
			}
		}
		reporter.Update(i+1, id)
	}
	reporter.Finish()

	fmt.Printf("Reanalyzed %d of %d report(s).\n", len(ids)-failed, len(ids))
	if failed > 0 {
		return fmt.Errorf("%d report(s) could not be updated", failed)
	}
	return nil
}
