package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/BhavyaPagadala/urbix/internal/analysis"
	"github.com/BhavyaPagadala/urbix/internal/lifecycle"
	"github.com/BhavyaPagadala/urbix/internal/report"
)

// stubAnalyzer implements lifecycle.Analyzer; re-analysis always fails so
// reports keep their fields.
type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(ctx context.Context, description, image string) analysis.Result {
	return analysis.Fallback()
}

func (stubAnalyzer) TryAnalyze(ctx context.Context, description, image string) (analysis.Result, error) {
	return analysis.Result{}, errors.New("offline")
}

type stubSummarizer struct {
	summary string
	err     error
}

func (s stubSummarizer) SummarizePulse(ctx context.Context, reports []report.Report) (string, error) {
	return s.summary, s.err
}

func newTestServer(t *testing.T, pulse *analysis.PulseTracker) (*Server, *lifecycle.Engine) {
	t.Helper()
	store := report.NewStore(report.NewMemoryRepository())
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	engine := lifecycle.NewEngine(store, stubAnalyzer{}, lifecycle.Options{Timeout: time.Second})
	t.Cleanup(engine.Wait)
	return NewServer(engine, pulse, time.UTC), engine
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sb strings.Builder
	for _, c := range result.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			sb.WriteString(tc.Text)
		case *mcp.TextContent:
			sb.WriteString(tc.Text)
		}
	}
	return sb.String(), result.IsError
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"list_reports", listReportsTool, "list_reports"},
		{"get_report", getReportTool, "get_report"},
		{"get_statistics", getStatisticsTool, "get_statistics"},
		{"update_report_status", updateReportStatusTool, "update_report_status"},
		{"get_pulse", getPulseTool, "get_pulse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv, engine := newTestServer(t, nil)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.engine != engine {
		t.Error("engine not set correctly")
	}
}

func TestHandleListReports(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	t.Run("all", func(t *testing.T) {
		text, isErr := call(t, srv.handleListReports, map[string]any{})
		if isErr {
			t.Fatalf("unexpected tool error: %s", text)
		}
		if !strings.Contains(text, "Found 2 report(s)") || !strings.Contains(text, "rep-1") {
			t.Errorf("unexpected output:\n%s", text)
		}
	})

	t.Run("filtered", func(t *testing.T) {
		text, _ := call(t, srv.handleListReports, map[string]any{"locality": "Sunnydale"})
		if strings.Contains(text, "rep-1") || !strings.Contains(text, "rep-2") {
			t.Errorf("filter not applied:\n%s", text)
		}
	})

	t.Run("limit", func(t *testing.T) {
		text, _ := call(t, srv.handleListReports, map[string]any{"limit": 1})
		if !strings.Contains(text, "showing 1") {
			t.Errorf("limit not applied:\n%s", text)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		text, isErr := call(t, srv.handleListReports, map[string]any{"status": "dismissed"})
		if isErr || !strings.Contains(text, "No reports") {
			t.Errorf("unexpected output: %s", text)
		}
	})
}

func TestHandleGetReport(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	text, isErr := call(t, srv.handleGetReport, map[string]any{"id": "rep-2"})
	if isErr {
		t.Fatalf("unexpected tool error: %s", text)
	}
	if !strings.Contains(text, "Beautiful New Park Equipment") || !strings.Contains(text, `"history"`) {
		t.Errorf("unexpected output:\n%s", text)
	}

	if _, isErr := call(t, srv.handleGetReport, map[string]any{"id": "rep-404"}); !isErr {
		t.Error("expected error for unknown id")
	}
	if _, isErr := call(t, srv.handleGetReport, map[string]any{}); !isErr {
		t.Error("expected error for missing id")
	}
}

func TestHandleGetStatistics(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	text, _ := call(t, srv.handleGetStatistics, map[string]any{})
	for _, want := range []string{"Total reports: 2", "Resolution rate: 50%", "Negative: 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	text, _ = call(t, srv.handleGetStatistics, map[string]any{"locality": "Downtown"})
	if !strings.Contains(text, "Total reports: 1") {
		t.Errorf("locality filter not applied:\n%s", text)
	}
}

func TestHandleUpdateReportStatus(t *testing.T) {
	srv, engine := newTestServer(t, nil)

	text, isErr := call(t, srv.handleUpdateReportStatus, map[string]any{"id": "rep-1", "status": "reviewing", "actor": "agent"})
	if isErr {
		t.Fatalf("unexpected tool error: %s", text)
	}
	rep, _ := engine.Store().Get("rep-1")
	if rep.Status != report.StatusReviewing || rep.History[len(rep.History)-1].Actor != "agent" {
		t.Errorf("transition not applied: %+v", rep)
	}

	tests := []struct {
		name string
		args map[string]any
	}{
		{"terminal", map[string]any{"id": "rep-2", "status": "pending"}},
		{"unknown status", map[string]any{"id": "rep-1", "status": "archived"}},
		{"unknown id", map[string]any{"id": "rep-404", "status": "resolved"}},
		{"missing status", map[string]any{"id": "rep-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, isErr := call(t, srv.handleUpdateReportStatus, tt.args); !isErr {
				t.Error("expected tool error")
			}
		})
	}
}

func TestHandleGetPulse(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	if _, isErr := call(t, srv.handleGetPulse, nil); !isErr {
		t.Error("expected error without a pulse tracker")
	}

	srv, _ = newTestServer(t, analysis.NewPulseTracker(stubSummarizer{summary: "Downtown roads need repair."}))
	text, isErr := call(t, srv.handleGetPulse, nil)
	if isErr || text != "Downtown roads need repair." {
		t.Errorf("got %q (error %v)", text, isErr)
	}

	srv, _ = newTestServer(t, analysis.NewPulseTracker(stubSummarizer{err: errors.New("quota")}))
	if _, isErr := call(t, srv.handleGetPulse, nil); !isErr {
		t.Error("expected error when no summary was ever produced")
	}
}
