package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/BhavyaPagadala/urbix/internal/analysis"
	"github.com/BhavyaPagadala/urbix/internal/briefing"
	"github.com/BhavyaPagadala/urbix/internal/report"
)

var briefingCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Write a governance brief as HTML or Markdown",
	Long:  `Builds a brief with key figures, distributions, daily volume, open critical reports and the pulse summary. HTML is written unless --format markdown is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		locality, _ := cmd.Flags().GetString("locality")
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		if format != "html" && format != "markdown" {
			return fmt.Errorf("invalid format %q: must be html or markdown", format)
		}

		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var p analysis.Pulse
		if a.analyzer.Enabled() {
			p = a.pulse.Refresh(ctx, a.store.Version(), a.store.List(report.Filter{}))
		}
		b := briefing.Build(a.store.List(report.Filter{Locality: locality}), locality, p, time.Now(), a.loc)

		var data []byte
		if format == "markdown" {
			data = []byte(b.Markdown())
		} else if data, err = b.HTML(); err != nil {
			return err
		}

		if out == "" || out == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("writing brief: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Brief written to %s\n", out)
		return nil
	},
}

func init() {
	briefingCmd.Flags().String("locality", "", "Restrict the brief to one locality")
	briefingCmd.Flags().String("format", "html", "Output format: html or markdown")
	briefingCmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(briefingCmd)
}
