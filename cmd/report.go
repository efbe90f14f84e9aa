package cmd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BhavyaPagadala/urbix/internal/lifecycle"
	"github.com/BhavyaPagadala/urbix/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Submit, inspect and triage civic issue reports",
}

var reportSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a new report",
	Long:  `Creates a pending report and waits for its AI classification before printing it.`,
	RunE:  runReportSubmit,
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports, newest first",
	RunE:  runReportList,
}

var reportShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a report with its history",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportShow,
}

var reportStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Move a report to pending, reviewing, resolved or dismissed",
	Args:  cobra.ExactArgs(2),
	RunE:  runReportStatus,
}

var reportDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportDelete,
}

func init() {
	reportSubmitCmd.Flags().String("title", "", "Short title of the issue")
	reportSubmitCmd.Flags().String("description", "", "What is wrong and where")
	reportSubmitCmd.Flags().String("category", "", "Category value or label (optional)")
	reportSubmitCmd.Flags().String("locality", "", "Neighbourhood or area (default \"Main Area\")")
	reportSubmitCmd.Flags().String("address", "", "Street address")
	reportSubmitCmd.Flags().Float64("lat", 0, "Latitude")
	reportSubmitCmd.Flags().Float64("lng", 0, "Longitude")
	reportSubmitCmd.Flags().String("image", "", "Path to a photo of the issue")
	reportSubmitCmd.Flags().String("reporter", "", "Username of the reporter (default \"user\")")

	addFilterFlags(reportListCmd)
	reportListCmd.Flags().Bool("json", false, "Print JSON instead of a table")

	reportStatusCmd.Flags().String("actor", "", "Who is making the change (default \"admin\")")
	reportDeleteCmd.Flags().String("actor", "", "Who is deleting the report (default \"admin\")")

	reportCmd.AddCommand(reportSubmitCmd)
	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportStatusCmd)
	reportCmd.AddCommand(reportDeleteCmd)
	rootCmd.AddCommand(reportCmd)
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("locality", "", "Filter by locality")
	cmd.Flags().String("category", "", "Filter by category")
	cmd.Flags().String("sentiment", "", "Filter by sentiment")
	cmd.Flags().String("status", "", "Filter by status")
	cmd.Flags().String("reporter", "", "Filter by reporter")
}

func filterFromFlags(cmd *cobra.Command) report.Filter {
	var f report.Filter
	f.Locality, _ = cmd.Flags().GetString("locality")
	f.Category, _ = cmd.Flags().GetString("category")
	f.Sentiment, _ = cmd.Flags().GetString("sentiment")
	f.Status, _ = cmd.Flags().GetString("status")
	f.Reporter, _ = cmd.Flags().GetString("reporter")
	return f
}

func runReportSubmit(cmd *cobra.Command, args []string) error {
	var sub lifecycle.Submission
	sub.Title, _ = cmd.Flags().GetString("title")
	sub.Description, _ = cmd.Flags().GetString("description")
	sub.Category, _ = cmd.Flags().GetString("category")
	sub.Location.Locality, _ = cmd.Flags().GetString("locality")
	sub.Location.Address, _ = cmd.Flags().GetString("address")
	if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")
		sub.Location.Lat, sub.Location.Lng = &lat, &lng
	}
	if path, _ := cmd.Flags().GetString("image"); path != "" {
		uri, err := imageDataURI(path)
		if err != nil {
			return err
		}
		sub.Image = uri
	}
	reporter, _ := cmd.Flags().GetString("reporter")

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := a.engine.Create(ctx, sub, reporter)
	if err != nil {
		return err
	}
	if a.analyzer.Enabled() {
		fmt.Fprintf(os.Stderr, "Report %s submitted, waiting for analysis...\n", rep.ID)
	}
	a.engine.Wait()

	if enriched, err := a.store.Get(rep.ID); err == nil {
		rep = enriched
	}
	return printJSON(withoutImage(rep))
}

// imageDataURI reads a photo and encodes it as a data: URI.
func imageDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	mime := http.DetectContentType(data)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func runReportList(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	reports := a.store.List(filterFromFlags(cmd))
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		out := make([]report.Report, len(reports))
		for i, r := range reports {
			out[i] = withoutImage(r)
		}
		return printJSON(out)
	}

	if len(reports) == 0 {
		fmt.Println("No reports found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tCATEGORY\tSENTIMENT\tLOCALITY\tCREATED\tTITLE")
	for _, r := range reports {
		title := r.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Status, r.Category.Label(), r.Sentiment, r.Location.Locality,
			r.CreatedAt.In(a.loc).Format("2006-01-02 15:04"), title)
	}
	return w.Flush()
}

func runReportShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := a.store.Get(args[0])
	if err != nil {
		return err
	}
	return printJSON(withoutImage(rep))
}

func runReportStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	actor, _ := cmd.Flags().GetString("actor")
	rep, err := a.engine.Transition(ctx, args[0], args[1], actor)
	if err != nil {
		return err
	}
	fmt.Printf("Report %s is now %s.\n", rep.ID, rep.Status.Label())
	return nil
}

func runReportDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	actor, _ := cmd.Flags().GetString("actor")
	if err := a.engine.Delete(ctx, args[0], actor); err != nil {
		return err
	}
	fmt.Printf("Report %s deleted.\n", args[0])
	return nil
}

// withoutImage drops the photo so printed reports stay readable.
func withoutImage(r report.Report) report.Report {
	if r.Image != "" {
		r.Image = "(image omitted)"
	}
	return r
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
