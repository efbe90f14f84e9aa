// Package briefing renders a governance brief of the report collection as
// Markdown or as a standalone HTML page.
package briefing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/BhavyaPagadala/urbix/internal/analysis"
	"github.com/BhavyaPagadala/urbix/internal/report"
	"github.com/BhavyaPagadala/urbix/internal/stats"
)

// maxCritical caps the open critical reports listed in a brief.
const maxCritical = 10

// Brief is everything a governance brief shows.
type Brief struct {
	GeneratedAt time.Time
	Locality    string
	Pulse       analysis.Pulse
	Snapshot    stats.Snapshot
	// Critical holds open reports with negative sentiment, newest first.
	Critical []report.Report
}

// Build assembles a brief for reports, which should already be filtered
// to the locality the brief covers.
func Build(reports []report.Report, locality string, pulse analysis.Pulse, now time.Time, loc *time.Location) Brief {
	if loc == nil {
		loc = time.UTC
	}
	if locality == "" {
		locality = report.All
	}

	b := Brief{
		GeneratedAt: now.In(loc),
		Locality:    locality,
		Pulse:       pulse,
		Snapshot:    stats.Compute(reports, loc),
	}
	for _, r := range reports {
		if r.Sentiment == report.SentimentNegative && !r.Status.Terminal() {
			b.Critical = append(b.Critical, r)
			if len(b.Critical) == maxCritical {
				break
			}
		}
	}
	return b
}

// Markdown renders the brief as GitHub-flavored Markdown.
func (b Brief) Markdown() string {
	var sb strings.Builder
	snap := b.Snapshot

	sb.WriteString("# Urbix Governance Brief\n\n")
	sb.WriteString(fmt.Sprintf("Generated %s for **%s**.\n\n", b.GeneratedAt.Format("Jan 2, 2006 15:04 MST"), escape(b.Locality)))

	if b.Pulse.Summary != "" {
		sb.WriteString("> " + escape(b.Pulse.Summary) + "\n")
		if b.Pulse.Stale {
			sb.WriteString(">\n> _This summary predates the latest reports._\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Key figures\n\n")
	sb.WriteString("| Metric | Value |\n|---|---|\n")
	sb.WriteString(fmt.Sprintf("| Total reports | %d |\n", snap.Total))
	sb.WriteString(fmt.Sprintf("| Pending | %d |\n", snap.Pending))
	sb.WriteString(fmt.Sprintf("| Reviewing | %d |\n", snap.Reviewing))
	sb.WriteString(fmt.Sprintf("| Resolved | %d |\n", snap.Resolved))
	sb.WriteString(fmt.Sprintf("| Dismissed | %d |\n", snap.Dismissed))
	sb.WriteString(fmt.Sprintf("| Critical | %d |\n", snap.Critical))
	sb.WriteString(fmt.Sprintf("| Resolution rate | %.0f%% |\n\n", snap.ResolutionRate*100))

	sb.WriteString("## Sentiment\n\n")
	for _, c := range snap.Sentiment {
		sb.WriteString(fmt.Sprintf("- %s: %d\n", c.Label, c.Value))
	}
	sb.WriteString("\n")

	if len(snap.Categories) > 0 {
		sb.WriteString("## Categories\n\n")
		sb.WriteString("| Category | Reports |\n|---|---|\n")
		for _, c := range snap.Categories {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", escape(c.Label), c.Value))
		}
		sb.WriteString("\n")
	}

	if len(snap.Trends) > 0 {
		sb.WriteString("## Daily volume\n\n")
		for _, p := range snap.Trends {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", p.Date, p.Count))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Open critical reports\n\n")
	if len(b.Critical) == 0 {
		sb.WriteString("None.\n")
	}
	for _, r := range b.Critical {
		line := fmt.Sprintf("- **%s** (%s, %s)", escape(r.Title), r.ID, r.Status.Label())
		if r.Location.Locality != "" {
			line += " in " + escape(r.Location.Locality)
		}
		if r.AIInsights != "" {
			line += ": " + escape(r.AIInsights)
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

var page = template.Must(template.New("brief").Parse(pageTemplate))

// HTML renders the brief as a standalone HTML page. Raw HTML in report
// text is not passed through.
func (b Brief) HTML() ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(b.Markdown()), &body); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	var out bytes.Buffer
	err := page.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{
		Title: "Urbix Governance Brief: " + b.Locality,
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return out.Bytes(), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "|", `\|`,
	"[", `\[`, "]", `\]`, "<", `\<`, "\n", " ",
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.8rem; text-align: left; }
blockquote { border-left: 4px solid #4a90d9; margin-left: 0; padding-left: 1rem; color: #333; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`
