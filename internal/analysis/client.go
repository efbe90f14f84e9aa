// Package analysis classifies civic reports with an LLM and summarizes the
// collection for the dashboard pulse.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/BhavyaPagadala/urbix/internal/llm"
	"github.com/BhavyaPagadala/urbix/internal/report"
)

// Options configures a Client.
type Options struct {
	// Model overrides the provider default for Analyze.
	Model string
	// PulseModel is used by SummarizePulse; empty falls back to Model.
	PulseModel string
	// Timeout bounds each LLM call. Zero means no additional bound.
	Timeout time.Duration
}

// Client runs report analysis against an llm.Provider. A nil provider is
// valid and makes every analysis fail.
type Client struct {
	provider llm.Provider
	opts     Options
}

func NewClient(provider llm.Provider, opts Options) *Client {
	if opts.PulseModel == "" {
		opts.PulseModel = opts.Model
	}
	return &Client{provider: provider, opts: opts}
}

// Enabled reports whether a provider is configured.
func (c *Client) Enabled() bool {
	return c.provider != nil
}

// Analyze classifies a report and never fails: any error yields Fallback.
func (c *Client) Analyze(ctx context.Context, description, image string) Result {
	res, err := c.TryAnalyze(ctx, description, image)
	if err != nil {
		log.Printf("analysis: %v; using fallback", err)
		return Fallback()
	}
	return res
}

// TryAnalyze classifies a report, returning an error wrapping
// ErrAnalysisFailed on transport, timeout, or schema failure.
func (c *Client) TryAnalyze(ctx context.Context, description, image string) (Result, error) {
	if c.provider == nil {
		return Result{}, fmt.Errorf("%w: no AI provider configured", ErrAnalysisFailed)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model:          c.opts.Model,
		Messages:       buildAnalysisMessages(description, image),
		MaxTokens:      2048,
		Temperature:    0.2,
		JSONMode:       true,
		ResponseSchema: responseSchema(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: llm completion: %v", ErrAnalysisFailed, err)
	}
	c.logUsage("analyze", resp)

	res, err := parseResult(resp.Content)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	return res, nil
}

// SummarizePulse produces a one-sentence health summary of the most recent
// reports. reports must be ordered newest first.
func (c *Client) SummarizePulse(ctx context.Context, reports []report.Report) (string, error) {
	if len(reports) == 0 {
		return "", ErrNothingToSummarize
	}
	if c.provider == nil {
		return "", fmt.Errorf("%w: no AI provider configured", ErrAnalysisFailed)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model:       c.opts.PulseModel,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildPulsePrompt(reports)}},
		MaxTokens:   256,
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("%w: pulse completion: %v", ErrAnalysisFailed, err)
	}
	c.logUsage("pulse", resp)

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", fmt.Errorf("%w: empty pulse summary", ErrAnalysisFailed)
	}
	return summary, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opts.Timeout)
}

func (c *Client) logUsage(op string, resp *llm.CompletionResponse) {
	cost := llm.EstimateCost(resp.Model, resp.InputTokens, resp.OutputTokens)
	log.Printf("analysis: %s via %s/%s used %d in, %d out tokens (~$%.4f)",
		op, c.provider.Name(), resp.Model, resp.InputTokens, resp.OutputTokens, cost)
}

// parseResult decodes an LLM JSON response and coerces it to the closed enums.
func parseResult(raw string) (Result, error) {
	raw = strings.TrimSpace(raw)

	// Strip markdown code fences if present.
	if strings.HasPrefix(raw, "```") {
		lines := strings.Split(raw, "\n")
		if len(lines) >= 2 {
			end := len(lines)
			if strings.TrimSpace(lines[end-1]) == "```" {
				end--
			}
			raw = strings.Join(lines[1:end], "\n")
		}
	}
	if raw == "" {
		return Result{}, fmt.Errorf("empty response")
	}

	var r rawResult
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Result{}, fmt.Errorf("json parse: %w", err)
	}

	fields := map[string]string{
		"title": r.Title, "description": r.Description, "category": r.Category,
		"department": r.Department, "sentiment": r.Sentiment, "summary": r.Summary,
		"priority": r.Priority,
	}
	for _, name := range resultFields {
		if strings.TrimSpace(fields[name]) == "" {
			return Result{}, fmt.Errorf("response missing %q", name)
		}
	}

	return Result{
		Title:       r.Title,
		Description: r.Description,
		Category:    report.Category(r.Category),
		Department:  r.Department,
		Sentiment:   report.Sentiment(r.Sentiment),
		Summary:     r.Summary,
		Priority:    report.Priority(r.Priority),
	}.Normalize(), nil
}
