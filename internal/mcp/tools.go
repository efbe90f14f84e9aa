package mcp

import "github.com/mark3labs/mcp-go/mcp"

var statusValues = []string{"pending", "reviewing", "resolved", "dismissed"}

var listReportsTool = mcp.NewTool("list_reports",
	mcp.WithDescription("List civic issue reports, newest first. Filters are optional; \"All\" matches everything."),
	mcp.WithString("locality",
		mcp.Description("Only reports from this locality"),
	),
	mcp.WithString("category",
		mcp.Description("Category value or label, e.g. roads_infrastructure"),
	),
	mcp.WithString("sentiment",
		mcp.Description("Reporter sentiment"),
		mcp.Enum("positive", "neutral", "negative"),
	),
	mcp.WithString("status",
		mcp.Description("Lifecycle status"),
		mcp.Enum(statusValues...),
	),
	mcp.WithString("reporter",
		mcp.Description("Only reports filed by this username"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of reports to return (default 20)"),
	),
)

var getReportTool = mcp.NewTool("get_report",
	mcp.WithDescription("Get a report with its analysis insights and full status history."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Report id, e.g. rep-1"),
	),
)

var getStatisticsTool = mcp.NewTool("get_statistics",
	mcp.WithDescription("Get sentiment, category, status and daily trend statistics for the reports."),
	mcp.WithString("locality",
		mcp.Description("Restrict statistics to one locality"),
	),
)

var updateReportStatusTool = mcp.NewTool("update_report_status",
	mcp.WithDescription("Move a report to a new status. Resolved and dismissed reports are final."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Report id"),
	),
	mcp.WithString("status",
		mcp.Required(),
		mcp.Description("Target status"),
		mcp.Enum(statusValues...),
	),
	mcp.WithString("actor",
		mcp.Description("Who is making the change (default admin)"),
	),
)

var getPulseTool = mcp.NewTool("get_pulse",
	mcp.WithDescription("Get the one-sentence urban health summary of recent reports."),
)
