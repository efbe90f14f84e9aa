package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/BhavyaPagadala/urbix/internal/audit"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the report audit trail, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAudit(); err != nil {
			return err
		}

		var filter audit.QueryFilter
		filter.ReportID, _ = cmd.Flags().GetString("report")
		filter.Actor, _ = cmd.Flags().GetString("actor")
		action, _ := cmd.Flags().GetString("action")
		filter.Action = audit.Action(action)
		filter.Limit, _ = cmd.Flags().GetInt("limit")
		if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
			t := time.Now().Add(-since)
			filter.Since = &t
		}

		entries, err := a.audit.Query(ctx, filter)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No audit entries found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tREPORT\tACTION\tACTOR\tSUMMARY")
		for _, e := range entries {
			summary := e.Summary
			if len(summary) > 60 {
				summary = summary[:57] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.Timestamp.In(a.loc).Format("2006-01-02 15:04:05"), e.ReportID, e.Action, e.Actor, summary)
		}
		return w.Flush()
	},
}

func init() {
	auditCmd.Flags().String("report", "", "Only entries for this report id")
	auditCmd.Flags().String("actor", "", "Only entries by this actor")
	auditCmd.Flags().String("action", "", "Only entries with this action, e.g. status_changed")
	auditCmd.Flags().Int("limit", 50, "Maximum number of entries")
	auditCmd.Flags().Duration("since", 0, "Only entries newer than this, e.g. 24h")
	rootCmd.AddCommand(auditCmd)
}
