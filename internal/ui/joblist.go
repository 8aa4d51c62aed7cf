// Package ui renders the server's HTML pages.
package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// JobListItem is one row of the job list page.
type JobListItem struct {
	ID         string
	State      string
	Equation   string
	N          int
	NPart      int
	Iterations int
	Distance   float64
	Residual   float64
	Converged  bool
	StartTime  time.Time
	EndTime    *time.Time
	Error      string
}

// Elapsed is the run time of the job so far.
func (j JobListItem) Elapsed() time.Duration {
	if j.EndTime != nil {
		return j.EndTime.Sub(j.StartTime)
	}
	return time.Since(j.StartTime)
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Cauchy solver</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
th, td { padding: 0.3rem 0.8rem; border-bottom: 1px solid #ddd; text-align: left; }
td.num { text-align: right; font-variant-numeric: tabular-nums; }
.state-completed { color: #1a7f37; }
.state-failed { color: #cf222e; }
.state-cancelled { color: #6e7781; }
</style>
</head>
<body>
<h1>Solves</h1>
`

const pageTail = `</body>
</html>
`

// JobList renders the list of solve jobs.
func JobList(jobs []JobListItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(pageHead)

		if len(jobs) == 0 {
			b.WriteString("<p>No solves yet. POST to <code>/api/v1/solves</code> to start one.</p>\n")
		} else {
			b.WriteString("<table>\n<tr><th>ID</th><th>Equation</th><th>State</th><th>N</th><th>Terms</th>" +
				"<th>Iterations</th><th>Distance</th><th>Residual</th><th>Elapsed</th></tr>\n")
			for _, job := range jobs {
				writeJobRow(&b, job)
			}
			b.WriteString("</table>\n")
		}

		b.WriteString(pageTail)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeJobRow(b *strings.Builder, job JobListItem) {
	id := templ.EscapeString(job.ID)
	state := templ.EscapeString(job.State)

	fmt.Fprintf(b, `<tr><td><a href="/api/v1/solves/%s">%s</a></td>`, id, id)
	fmt.Fprintf(b, "<td>%s</td>", templ.EscapeString(job.Equation))
	fmt.Fprintf(b, `<td class="state-%s">%s`, state, state)
	if job.Error != "" {
		fmt.Fprintf(b, ` <span title="%s">(error)</span>`, templ.EscapeString(job.Error))
	}
	b.WriteString("</td>")
	fmt.Fprintf(b, `<td class="num">%d</td><td class="num">%d</td><td class="num">%d</td>`, job.N, job.NPart, job.Iterations)
	fmt.Fprintf(b, `<td class="num">%.3e</td><td class="num">%.3e</td>`, job.Distance, job.Residual)
	fmt.Fprintf(b, `<td class="num">%s</td></tr>`+"\n", job.Elapsed().Round(time.Millisecond))
}
