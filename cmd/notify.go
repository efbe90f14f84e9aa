package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/BhavyaPagadala/urbix/internal/notifications"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Manage department notifications",
}

var notifySubscribeCmd = &cobra.Command{
	Use:   "subscribe <department>",
	Short: "Subscribe a department to report notifications",
	Long: `Subscribes a department to notifications about reports routed to it.
With --webhook the notifications are POSTed as JSON; without it they are
only kept for the dashboard.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		webhook, _ := cmd.Flags().GetString("webhook")
		severity, _ := cmd.Flags().GetString("severity")
		sev, ok := notifications.ParseSeverity(severity)
		if !ok {
			return fmt.Errorf("invalid severity %q: want info, warning or critical", severity)
		}

		sub := notifications.Subscription{
			Department:     args[0],
			Channel:        notifications.ChannelDashboard,
			SeverityFilter: sev,
		}
		if webhook != "" {
			sub.Channel = notifications.ChannelWebhook
			sub.WebhookURL = webhook
		}

		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireNotifications(); err != nil {
			return err
		}

		if err := a.notify.Subscribe(ctx, sub); err != nil {
			return err
		}
		fmt.Printf("Subscribed %s via %s (severity >= %s)\n", sub.Department, sub.Channel, sub.SeverityFilter)
		return nil
	},
}

var notifyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireNotifications(); err != nil {
			return err
		}

		var filter notifications.ListFilter
		filter.Department, _ = cmd.Flags().GetString("department")
		filter.Limit, _ = cmd.Flags().GetInt("limit")
		if pending, _ := cmd.Flags().GetBool("pending"); pending {
			delivered := false
			filter.Delivered = &delivered
		}

		list, err := a.notify.List(ctx, filter)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No notifications found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tDEPARTMENT\tSEVERITY\tDELIVERED\tTITLE")
		for _, n := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n",
				n.CreatedAt.In(a.loc).Format("2006-01-02 15:04:05"), n.Department, n.Severity, n.Delivered, n.Title)
		}
		return w.Flush()
	},
}

var notifyDigestCmd = &cobra.Command{
	Use:   "digest <department>",
	Short: "Summarise a department's recent notifications",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireNotifications(); err != nil {
			return err
		}

		since, _ := cmd.Flags().GetDuration("since")
		now := time.Now()
		digest, err := a.dispatch.GenerateDigest(ctx, args[0], now.Add(-since), now)
		if err != nil {
			return err
		}

		fmt.Println(digest.Summary)
		for _, n := range digest.Notifications {
			fmt.Printf("  [%s] %s\n", n.Severity, n.Title)
		}
		return nil
	},
}

func init() {
	notifySubscribeCmd.Flags().String("webhook", "", "Webhook URL to POST notifications to")
	notifySubscribeCmd.Flags().String("severity", "info", "Minimum severity: info, warning or critical")

	notifyListCmd.Flags().String("department", "", "Only notifications for this department")
	notifyListCmd.Flags().Bool("pending", false, "Only undelivered notifications")
	notifyListCmd.Flags().Int("limit", 50, "Maximum number of notifications")

	notifyDigestCmd.Flags().Duration("since", 24*time.Hour, "How far back the digest reaches")

	notifyCmd.AddCommand(notifySubscribeCmd, notifyListCmd, notifyDigestCmd)
	rootCmd.AddCommand(notifyCmd)
}
