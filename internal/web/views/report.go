// Package views renders the HTML audit report.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/crashaudit/internal/core"
)

// ReportData is everything the report page shows for one session.
type ReportData struct {
	SessionID string
	Dataset   string
	Report    *core.AuditReport
	Insight   string
	History   []core.TransformationLogEntry
}

// Report renders a standalone HTML page for d.
func Report(d ReportData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<title>Data Quality Audit - `)
		p.text(d.Dataset)
		p.raw(`</title></head><body class="report">`)

		p.raw(`<header><h1>Data Quality Audit</h1><p class="meta">Dataset `)
		p.text(d.Dataset)
		p.raw(` &middot; session <code>`)
		p.text(d.SessionID)
		p.raw(`</code></p></header>`)

		if r := d.Report; r != nil {
			writeScores(p, r)
			writeSummary(p, r.Summary)
			writeColumns(p, r.ColumnStats)
		}
		if d.Insight != "" {
			writeInsight(p, d.Insight)
		}
		writeHistory(p, d.History)

		p.raw(`</body></html>`)
		return p.err
	})
}

func writeScores(p *printer, r *core.AuditReport) {
	p.raw(`<section class="scores"><h2>Health Score `)
	p.text(fmt.Sprintf("%.2f", r.HealthScore))
	p.raw(`</h2><dl>`)
	for _, d := range r.Dimensions {
		p.raw(`<dt>`)
		p.text(titleCase(string(d.Dimension)))
		p.raw(`</dt><dd>`)
		if d.Scored {
			p.text(fmt.Sprintf("%.2f", d.Score))
		} else {
			p.text("not scored")
		}
		p.raw(`</dd>`)
	}
	p.raw(`</dl><p>Rows `)
	p.text(fmt.Sprint(r.RowCount))
	p.raw(`, columns `)
	p.text(fmt.Sprint(r.ColumnCount))
	p.raw(`, latest record `)
	p.text(r.LatestTimestampLabel())
	p.raw(`</p></section>`)
}

func writeSummary(p *printer, summary []string) {
	p.raw(`<section class="summary"><h2>Findings</h2>`)
	if len(summary) == 0 {
		p.raw(`<p>No issues found.</p></section>`)
		return
	}
	p.raw(`<ul>`)
	for _, s := range summary {
		p.raw(`<li>`)
		p.text(s)
		p.raw(`</li>`)
	}
	p.raw(`</ul></section>`)
}

func writeColumns(p *printer, stats []core.ColumnStat) {
	p.raw(`<section class="columns"><h2>Columns</h2><table><thead><tr>`)
	p.raw(`<th>Column</th><th>Type</th><th>Missing</th><th>Unique</th><th>Status</th>`)
	p.raw(`</tr></thead><tbody>`)
	for _, s := range stats {
		p.raw(`<tr class="status-`)
		p.text(strings.ToLower(string(s.Status)))
		p.raw(`"><td>`)
		p.text(s.Column)
		p.raw(`</td><td>`)
		p.text(s.Type)
		p.raw(`</td><td>`)
		p.text(s.MissingLabel)
		p.raw(`</td><td>`)
		p.text(fmt.Sprint(s.UniqueCount))
		p.raw(`</td><td>`)
		p.text(string(s.Status))
		p.raw(`</td></tr>`)
	}
	p.raw(`</tbody></table></section>`)
}

// writeInsight renders the markdown insight as plain paragraphs; only the
// heading and bullet markers are interpreted.
func writeInsight(p *printer, insight string) {
	p.raw(`<section class="insight">`)
	inList := false
	closeList := func() {
		if inList {
			p.raw(`</ul>`)
			inList = false
		}
	}
	for _, line := range strings.Split(insight, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "### "):
			closeList()
			p.raw(`<h2>`)
			p.text(strings.TrimPrefix(line, "### "))
			p.raw(`</h2>`)
		case strings.HasPrefix(line, "* "):
			if !inList {
				p.raw(`<ul>`)
				inList = true
			}
			p.raw(`<li>`)
			p.text(strings.ReplaceAll(strings.TrimPrefix(line, "* "), "**", ""))
			p.raw(`</li>`)
		case line != "":
			closeList()
			p.raw(`<p>`)
			p.text(line)
			p.raw(`</p>`)
		}
	}
	closeList()
	p.raw(`</section>`)
}

func writeHistory(p *printer, history []core.TransformationLogEntry) {
	p.raw(`<section class="history"><h2>Cleaning History</h2>`)
	if len(history) == 0 {
		p.raw(`<p>No cleaning steps applied.</p></section>`)
		return
	}
	p.raw(`<ol>`)
	for _, e := range history {
		p.raw(`<li><time>`)
		p.text(e.Timestamp.Format(core.TimestampLayout))
		p.raw(`</time> `)
		p.text(e.Operation)
		p.raw(`: `)
		p.text(e.Impact)
		p.raw(`</li>`)
	}
	p.raw(`</ol></section>`)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// printer keeps the first write error so rendering code stays linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}
