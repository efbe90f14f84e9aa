package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/BhavyaPagadala/urbix/internal/report"
	"github.com/BhavyaPagadala/urbix/internal/stats"
)

const defaultListLimit = 20

func (s *Server) handleListReports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}

	filter := report.Filter{
		Locality:  request.GetString("locality", ""),
		Category:  request.GetString("category", ""),
		Sentiment: request.GetString("sentiment", ""),
		Status:    request.GetString("status", ""),
		Reporter:  request.GetString("reporter", ""),
	}
	reports := s.engine.Store().List(filter)
	if len(reports) == 0 {
		return mcp.NewToolResultText("No reports match the given filters."), nil
	}

	return mcp.NewToolResultText(formatReports(reports, limit)), nil
}

func (s *Server) handleGetReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	rep, err := s.engine.Store().Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("No report found with id %q.", id)), nil
	}
	rep.Image = ""

	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshaling report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleGetStatistics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := report.Filter{Locality: request.GetString("locality", "")}
	snap := stats.Compute(s.engine.Store().List(filter), s.loc)
	return mcp.NewToolResultText(formatSnapshot(snap)), nil
}

func (s *Server) handleUpdateReportStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	status, err := request.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: status"), nil
	}

	rep, err := s.engine.Transition(ctx, id, status, request.GetString("actor", ""))
	switch {
	case errors.Is(err, report.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("No report found with id %q.", id)), nil
	case errors.Is(err, report.ErrUnknownStatus), errors.Is(err, report.ErrTerminalState):
		return mcp.NewToolResultError(err.Error()), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("updating status: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Report %s is now %s. Re-analysis has been scheduled.", rep.ID, rep.Status)), nil
}

func (s *Server) handleGetPulse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.pulse == nil {
		return mcp.NewToolResultError("No analysis provider is configured, so no pulse summary is available."), nil
	}
	store := s.engine.Store()
	p := s.pulse.Refresh(ctx, store.Version(), store.List(report.Filter{}))
	if p.Summary == "" {
		return mcp.NewToolResultError("The pulse summary is not available yet."), nil
	}
	if p.Stale {
		return mcp.NewToolResultText(p.Summary + "\n\n(This summary predates the latest reports.)"), nil
	}
	return mcp.NewToolResultText(p.Summary), nil
}

// formatReports renders reports as compact text for agent consumption.
func formatReports(reports []report.Report, limit int) string {
	var sb strings.Builder
	shown := min(limit, len(reports))
	sb.WriteString(fmt.Sprintf("Found %d report(s), showing %d:\n", len(reports), shown))

	for _, r := range reports[:shown] {
		sb.WriteString(fmt.Sprintf("\n--- %s ---\n", r.ID))
		sb.WriteString(fmt.Sprintf("Title: %s\n", r.Title))
		sb.WriteString(fmt.Sprintf("Status: %s\n", r.Status))
		sb.WriteString(fmt.Sprintf("Category: %s\n", r.Category.Label()))
		if r.Priority != "" {
			sb.WriteString(fmt.Sprintf("Priority: %s\n", r.Priority))
		}
		if r.Location.Locality != "" {
			sb.WriteString(fmt.Sprintf("Locality: %s\n", r.Location.Locality))
		}
		sb.WriteString(fmt.Sprintf("Reported: %s by %s\n", r.CreatedAt.Format("2006-01-02 15:04"), r.Reporter))
		if r.AIInsights != "" {
			sb.WriteString(fmt.Sprintf("Insights: %s\n", r.AIInsights))
		}
	}
	return sb.String()
}

func formatSnapshot(snap stats.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total reports: %d\n", snap.Total))
	sb.WriteString(fmt.Sprintf("Pending: %d, Reviewing: %d, Resolved: %d, Dismissed: %d\n",
		snap.Pending, snap.Reviewing, snap.Resolved, snap.Dismissed))
	sb.WriteString(fmt.Sprintf("Critical (negative sentiment): %d\n", snap.Critical))
	sb.WriteString(fmt.Sprintf("Resolution rate: %.0f%%\n", snap.ResolutionRate*100))

	sb.WriteString("\nSentiment:\n")
	for _, c := range snap.Sentiment {
		sb.WriteString(fmt.Sprintf("- %s: %d\n", c.Label, c.Value))
	}
	if len(snap.Categories) > 0 {
		sb.WriteString("\nCategories:\n")
		for _, c := range snap.Categories {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", c.Label, c.Value))
		}
	}
	if len(snap.Trends) > 0 {
		sb.WriteString("\nDaily trend:\n")
		for _, p := range snap.Trends {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", p.Date, p.Count))
		}
	}
	return sb.String()
}
