package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BhavyaPagadala/urbix/internal/llm"
	"github.com/BhavyaPagadala/urbix/internal/report"
)

// fakeProvider returns canned content and records requests.
type fakeProvider struct {
	mu      sync.Mutex
	content string
	err     error
	delay   time.Duration
	calls   []llm.CompletionRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	content, err, delay := f.content, f.err, f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Content: content, Model: "fake-model", InputTokens: 5, OutputTokens: 5}, nil
}

func (f *fakeProvider) lastCall(t *testing.T) llm.CompletionRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("provider was not called")
	}
	return f.calls[len(f.calls)-1]
}

const validJSON = `{
  "title": "Burst Water Main",
  "description": "Water is flooding the street from a broken pipe.",
  "category": "Water Supply",
  "department": "Water Works",
  "sentiment": "negative",
  "summary": "Urgent leak wasting water and blocking traffic.",
  "priority": "High"
}`

func TestTryAnalyzeParsesResponse(t *testing.T) {
	p := &fakeProvider{content: validJSON}
	c := NewClient(p, Options{Model: "m"})

	res, err := c.TryAnalyze(context.Background(), "pipe burst", "")
	if err != nil {
		t.Fatalf("TryAnalyze: %v", err)
	}
	want := Result{
		Title:       "Burst Water Main",
		Description: "Water is flooding the street from a broken pipe.",
		Category:    report.CategoryWater,
		Department:  "Water Works",
		Sentiment:   report.SentimentNegative,
		Summary:     "Urgent leak wasting water and blocking traffic.",
		Priority:    report.PriorityHigh,
	}
	if res != want {
		t.Errorf("result = %+v\nwant %+v", res, want)
	}

	req := p.lastCall(t)
	if !req.JSONMode || req.ResponseSchema == nil {
		t.Fatal("expected JSON mode with a response schema")
	}
	if len(req.ResponseSchema.Required) != 7 || len(req.ResponseSchema.Properties) != 7 {
		t.Errorf("schema should require exactly 7 fields, got %+v", req.ResponseSchema)
	}
	if req.Model != "m" {
		t.Errorf("model = %q", req.Model)
	}
	if len(req.Messages) != 1 || len(req.Messages[0].Images) != 0 {
		t.Errorf("unexpected messages: %+v", req.Messages)
	}
	if !strings.Contains(req.Messages[0].Content, "Use the text provided for analysis.") {
		t.Error("text-only prompt should not prioritize a photo")
	}
}

func TestTryAnalyzeStripsCodeFences(t *testing.T) {
	p := &fakeProvider{content: "```json\n" + validJSON + "\n```"}
	c := NewClient(p, Options{})
	if _, err := c.TryAnalyze(context.Background(), "x", ""); err != nil {
		t.Fatalf("TryAnalyze: %v", err)
	}
}

func TestTryAnalyzeCoercesUnknownEnums(t *testing.T) {
	p := &fakeProvider{content: `{"title":"t","description":"d","category":"Aliens","department":"x",
		"sentiment":"ecstatic","summary":"s","priority":"urgent"}`}
	c := NewClient(p, Options{})

	res, err := c.TryAnalyze(context.Background(), "x", "")
	if err != nil {
		t.Fatalf("TryAnalyze: %v", err)
	}
	if res.Category != report.CategoryOther {
		t.Errorf("category = %q, want other", res.Category)
	}
	if res.Sentiment != report.SentimentNeutral {
		t.Errorf("sentiment = %q, want neutral", res.Sentiment)
	}
	if res.Priority != report.PriorityMedium {
		t.Errorf("priority = %q, want medium", res.Priority)
	}
}

func TestTryAnalyzeFailures(t *testing.T) {
	tests := []struct {
		name     string
		provider llm.Provider
	}{
		{"nil provider", nil},
		{"transport error", &fakeProvider{err: errors.New("connection refused")}},
		{"not json", &fakeProvider{content: "I think it is a pothole."}},
		{"empty", &fakeProvider{content: ""}},
		{"missing field", &fakeProvider{content: `{"title":"t","description":"d","category":"other","department":"x","sentiment":"neutral","summary":"s"}`}},
		{"blank field", &fakeProvider{content: `{"title":" ","description":"d","category":"other","department":"x","sentiment":"neutral","summary":"s","priority":"low"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.provider, Options{})
			_, err := c.TryAnalyze(context.Background(), "x", "")
			if !errors.Is(err, ErrAnalysisFailed) {
				t.Errorf("expected ErrAnalysisFailed, got %v", err)
			}
			if got := c.Analyze(context.Background(), "x", ""); got != Fallback() {
				t.Errorf("Analyze() = %+v, want fallback", got)
			}
		})
	}
}

func TestTryAnalyzeTimeout(t *testing.T) {
	p := &fakeProvider{content: validJSON, delay: time.Second}
	c := NewClient(p, Options{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := c.TryAnalyze(context.Background(), "x", "")
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Errorf("expected ErrAnalysisFailed, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("timeout was not applied")
	}
}

func TestFallbackValues(t *testing.T) {
	f := Fallback()
	if f.Title != "Identified Urban Issue" ||
		f.Description != "An issue has been flagged and requires manual verification." ||
		f.Category != report.CategoryOther ||
		f.Department != "General City Services" ||
		f.Sentiment != report.SentimentNeutral ||
		f.Summary != "AI analysis encountered an error. Human review required." ||
		f.Priority != report.PriorityMedium {
		t.Errorf("unexpected fallback: %+v", f)
	}
}

func TestImageIsSentWithMIMEType(t *testing.T) {
	tests := []struct {
		image    string
		wantMIME string
		wantData string
	}{
		{"data:image/png;base64,iVBORw0", "image/png", "iVBORw0"},
		{"data:image/svg+xml;base64,PHN2Zz4=", "image/svg+xml", "PHN2Zz4="},
		{"/9j/4AAQSkZJRg", "image/jpeg", "/9j/4AAQSkZJRg"},
	}
	for _, tt := range tests {
		p := &fakeProvider{content: validJSON}
		c := NewClient(p, Options{})
		c.Analyze(context.Background(), "", tt.image)

		req := p.lastCall(t)
		imgs := req.Messages[0].Images
		if len(imgs) != 1 {
			t.Fatalf("%s: expected one image, got %d", tt.image, len(imgs))
		}
		if imgs[0].MIMEType != tt.wantMIME || imgs[0].Data != tt.wantData {
			t.Errorf("%s: image = %+v", tt.image, imgs[0])
		}
		prompt := req.Messages[0].Content
		if !strings.Contains(prompt, "If the text and photo disagree, trust the photo.") {
			t.Error("photo prompt should prioritize visual evidence")
		}
		if !strings.Contains(prompt, "No text provided.") {
			t.Error("empty description should be replaced in the prompt")
		}
	}
}

func TestPromptListsCategoryLabels(t *testing.T) {
	prompt := buildAnalysisPrompt("x", false)
	if !strings.Contains(prompt, "Roads & Infrastructure, Water Supply") ||
		!strings.Contains(prompt, "Healthcare, or Other") {
		t.Errorf("category list missing from prompt:\n%s", prompt)
	}
}

func pulseReports(n int) []report.Report {
	out := make([]report.Report, n)
	for i := range out {
		out[i] = report.Report{
			ID:        "r",
			Category:  report.CategoryRoads,
			Status:    report.StatusPending,
			Sentiment: report.SentimentNegative,
		}
	}
	out[0].Category = report.CategoryParks
	out[0].Status = report.StatusResolved
	out[0].Sentiment = report.SentimentPositive
	return out
}

func TestSummarizePulse(t *testing.T) {
	p := &fakeProvider{content: "  The city is mostly healthy.  "}
	c := NewClient(p, Options{Model: "pro", PulseModel: "flash"})

	summary, err := c.SummarizePulse(context.Background(), pulseReports(12))
	if err != nil {
		t.Fatalf("SummarizePulse: %v", err)
	}
	if summary != "The city is mostly healthy." {
		t.Errorf("summary = %q", summary)
	}

	req := p.lastCall(t)
	if req.Model != "flash" {
		t.Errorf("pulse model = %q, want flash", req.Model)
	}
	prompt := req.Messages[0].Content
	if !strings.HasPrefix(prompt, "Urban Data Stream: Public Parks (resolved): positive, Roads & Infrastructure (pending): negative") {
		t.Errorf("unexpected prompt: %s", prompt)
	}
	if n := strings.Count(prompt, "(pending)") + strings.Count(prompt, "(resolved)"); n != 10 {
		t.Errorf("digest should include 10 reports, got %d", n)
	}
	if !strings.HasSuffix(prompt, "Synthesize a high-level, 1-sentence urban health summary.") {
		t.Errorf("unexpected prompt suffix: %s", prompt)
	}
}

func TestSummarizePulseErrors(t *testing.T) {
	c := NewClient(&fakeProvider{content: "x"}, Options{})
	if _, err := c.SummarizePulse(context.Background(), nil); !errors.Is(err, ErrNothingToSummarize) {
		t.Errorf("expected ErrNothingToSummarize, got %v", err)
	}

	c = NewClient(&fakeProvider{err: errors.New("boom")}, Options{})
	if _, err := c.SummarizePulse(context.Background(), pulseReports(1)); !errors.Is(err, ErrAnalysisFailed) {
		t.Errorf("expected ErrAnalysisFailed, got %v", err)
	}
}

func TestPulseTrackerKeepsPreviousSummaryOnFailure(t *testing.T) {
	p := &fakeProvider{content: "All calm."}
	tr := NewPulseTracker(NewClient(p, Options{}))
	ctx := context.Background()

	if got := tr.Refresh(ctx, 1, pulseReports(2)); got.Summary != "All calm." || got.Stale {
		t.Fatalf("first refresh = %+v", got)
	}

	// Same version: no new call.
	tr.Refresh(ctx, 1, pulseReports(2))
	if n := len(p.calls); n != 1 {
		t.Errorf("expected 1 call for unchanged version, got %d", n)
	}

	p.mu.Lock()
	p.err = errors.New("quota exceeded")
	p.mu.Unlock()

	got := tr.Refresh(ctx, 2, pulseReports(3))
	if got.Summary != "All calm." {
		t.Errorf("summary = %q, previous summary should be kept", got.Summary)
	}
	if !got.Stale {
		t.Error("failed refresh should mark the summary stale")
	}
	if tr.Current().Summary != "All calm." {
		t.Error("Current() lost the previous summary")
	}
}

func TestNormalize(t *testing.T) {
	got := Result{
		Title:      "  Pothole ",
		Category:   "public parks",
		Sentiment:  "POSITIVE",
		Priority:   "Low",
		Department: "  ",
	}.Normalize()
	if got.Title != "Pothole" || got.Category != report.CategoryParks ||
		got.Sentiment != report.SentimentPositive || got.Priority != report.PriorityLow {
		t.Errorf("Normalize = %+v", got)
	}
	if got.Department != report.DefaultDepartment {
		t.Errorf("department = %q, want %q", got.Department, report.DefaultDepartment)
	}

	if fb := Fallback(); fb.Normalize() != fb {
		t.Error("Fallback should already be normalized")
	}
}

// gatedSummarizer blocks every call until release is closed.
type gatedSummarizer struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedSummarizer) SummarizePulse(ctx context.Context, reports []report.Report) (string, error) {
	g.started <- struct{}{}
	<-g.release
	return fmt.Sprintf("%d reports", len(reports)), nil
}

func TestPulseTrackerDoesNotBlockDuringRefresh(t *testing.T) {
	g := &gatedSummarizer{started: make(chan struct{}, 2), release: make(chan struct{})}
	tr := NewPulseTracker(g)
	ctx := context.Background()

	done := make(chan Pulse, 2)
	go func() { done <- tr.Refresh(ctx, 1, pulseReports(1)) }()
	<-g.started

	quick := make(chan Pulse, 2)
	go func() {
		quick <- tr.Current()
		quick <- tr.Refresh(ctx, 1, pulseReports(1))
	}()
	for i := 0; i < 2; i++ {
		select {
		case p := <-quick:
			if p.Summary != "" {
				t.Errorf("expected no summary yet, got %q", p.Summary)
			}
		case <-time.After(time.Second):
			t.Fatal("pulse reads blocked behind an in-flight refresh")
		}
	}

	go func() { done <- tr.Refresh(ctx, 2, pulseReports(2)) }()
	<-g.started
	close(g.release)
	<-done
	<-done

	if got := tr.Current().Summary; got != "2 reports" {
		t.Errorf("summary = %q, want the newer version's result", got)
	}
}
