// Package templates holds the HTML pages of the web UI as templ components.
package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datadash/internal/core"
)

// ChartJSURL is the Chart.js bundle the dashboard page loads.
const ChartJSURL = "https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"

// page accumulates markup and writes it in one go.
type page struct {
	bytes.Buffer
}

func (p *page) raw(s string)  { p.WriteString(s) }
func (p *page) text(s string) { p.WriteString(templ.EscapeString(s)) }

func (p *page) attr(name, value string) {
	p.raw(" " + name + `="`)
	p.text(value)
	p.raw(`"`)
}

func component(build func(p *page)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var p page
		build(&p)
		_, err := w.Write(p.Bytes())
		return err
	})
}

func layout(p *page, title string, scripts []string, body func(p *page)) {
	p.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	p.raw("<title>")
	p.text(title)
	p.raw("</title>\n<style>")
	p.raw(styles)
	p.raw("</style>\n")
	for _, src := range scripts {
		p.raw("<script")
		p.attr("src", src)
		p.raw("></script>\n")
	}
	p.raw("</head>\n<body>\n<main>\n")
	body(p)
	p.raw("</main>\n</body>\n</html>\n")
}

// ErrorAlert renders an error message with its suggested action and code.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(p *page) { errorAlert(p, message, action, code) })
}

func errorAlert(p *page, message, action, code string) {
	p.raw(`<div class="alert" role="alert"><strong>`)
	p.text(message)
	p.raw("</strong>")
	if action != "" {
		p.raw(" <span>")
		p.text(action)
		p.raw("</span>")
	}
	if code != "" {
		p.raw(` <small>(`)
		p.text(code)
		p.raw(")</small>")
	}
	p.raw("</div>\n")
}

// Index is the upload page. A non-empty message is shown above the form.
func Index(message string) templ.Component {
	return component(func(p *page) {
		layout(p, "datadash", nil, func(p *page) {
			p.raw("<h1>Upload a data file</h1>\n")
			if message != "" {
				errorAlert(p, message, "", "")
			}
			p.raw(`<form method="post" action="/upload" enctype="multipart/form-data">` + "\n")
			p.raw(`<input type="file" name="file" accept=".csv,.xlsx,.xls,.parquet" required>` + "\n")
			p.raw(`<button type="submit">Upload</button>` + "\n</form>\n")
			p.raw(`<p class="hint">CSV, Excel (.xlsx, .xls) and Parquet files are supported.</p>` + "\n")
		})
	})
}

// DashboardData is what the dashboard page shows after an upload.
type DashboardData struct {
	Handle   string
	Filename string
	Rows     int
	Profile  *core.Profile
}

// Dashboard renders the profile of an upload and the chart builder.
func Dashboard(d DashboardData) templ.Component {
	return component(func(p *page) {
		layout(p, d.Filename+" | datadash", []string{ChartJSURL}, func(p *page) {
			p.raw("<h1>")
			p.text(d.Filename)
			p.raw("</h1>\n<p>")
			p.text(strconv.Itoa(d.Rows) + " rows, " + strconv.Itoa(len(d.Profile.Columns.All)) + " columns.")
			p.raw(` <a href="/">Upload another file</a></p>` + "\n")

			chartBuilder(p, d)
			numericSummary(p, d.Profile.Summary)
			categoricalSamples(p, d.Profile.Summary, d.Profile.Columns.All)
			sampleRows(p, d.Profile)

			p.raw("<script>")
			p.raw(dashboardScript)
			p.raw("</script>\n")
		})
	})
}

func options(p *page, values []string, withNone bool) {
	if withNone {
		p.raw(`<option value="">(none)</option>`)
	}
	for _, v := range values {
		p.raw("<option")
		p.attr("value", v)
		p.raw(">")
		p.text(v)
		p.raw("</option>")
	}
}

func chartBuilder(p *page, d DashboardData) {
	cols := d.Profile.Columns
	p.raw("<section>\n<h2>Chart</h2>\n")
	p.raw(`<form id="chart-form">`)
	p.raw(`<input type="hidden" name="handle"`)
	p.attr("value", d.Handle)
	p.raw(">\n")

	p.raw(`<label>Type <select name="chart_type">`)
	options(p, []string{"bar", "line", "radar", "pie", "doughnut"}, false)
	p.raw("</select></label>\n")

	p.raw(`<label>X <select name="x_col">`)
	options(p, cols.All, true)
	p.raw("</select></label>\n")

	p.raw(`<label>Y <select name="y_col">`)
	options(p, cols.Numeric, true)
	p.raw("</select></label>\n")

	p.raw(`<label>Aggregate <select name="agg">`)
	options(p, []string{"sum", "mean", "count", "min", "max"}, false)
	p.raw("</select></label>\n")

	p.raw(`<button type="submit">Draw</button></form>` + "\n")
	p.raw(`<p id="chart-status" class="hint"></p>` + "\n")
	p.raw(`<canvas id="chart" height="120"></canvas>` + "\n")

	p.raw(`<form id="save-form"><label>Dashboard name <input name="name" required></label>`)
	p.raw(`<button type="submit">Save dashboard</button></form>` + "\n")
	p.raw(`<h3>Saved dashboards</h3><ul id="dashboards"></ul>` + "\n")
	p.raw("</section>\n")
}

func formatStat(s core.Stat) string {
	if s.IsNaN() {
		return "n/a"
	}
	b, _ := json.Marshal(s)
	return string(b)
}

func numericSummary(p *page, s core.Summary) {
	if len(s.Numeric) == 0 {
		return
	}
	p.raw("<section>\n<h2>Numeric columns</h2>\n<table>\n<tr><th>column</th>")
	for _, h := range []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"} {
		p.raw("<th>" + h + "</th>")
	}
	p.raw("</tr>\n")
	for _, name := range sortedKeys(s.Numeric) {
		n := s.Numeric[name]
		p.raw("<tr><td>")
		p.text(name)
		p.raw("</td>")
		for _, v := range []core.Stat{n.Count, n.Mean, n.Std, n.Min, n.P25, n.P50, n.P75, n.Max} {
			p.raw("<td>")
			p.text(formatStat(v))
			p.raw("</td>")
		}
		p.raw("</tr>\n")
	}
	p.raw("</table>\n</section>\n")
}

func categoricalSamples(p *page, s core.Summary, order []string) {
	if len(s.CategoricalSampleValues) == 0 {
		return
	}
	p.raw("<section>\n<h2>Other columns</h2>\n<dl>\n")
	for _, name := range order {
		values, ok := s.CategoricalSampleValues[name]
		if !ok {
			continue
		}
		p.raw("<dt>")
		p.text(name)
		p.raw("</dt><dd>")
		for i, v := range values {
			if i > 0 {
				p.raw(", ")
			}
			p.text(v.String())
		}
		p.raw("</dd>\n")
	}
	p.raw("</dl>\n</section>\n")
}

func sampleRows(p *page, prof *core.Profile) {
	p.raw("<section>\n<h2>Sample</h2>\n<div class=\"scroll\"><table>\n<tr>")
	for _, name := range prof.Columns.All {
		p.raw("<th>")
		p.text(name)
		p.raw("</th>")
	}
	p.raw("</tr>\n")
	for _, rec := range prof.Sample {
		p.raw("<tr>")
		for _, name := range prof.Columns.All {
			p.raw("<td>")
			if v, ok := rec.Get(name); ok {
				p.text(v.String())
			}
			p.raw("</td>")
		}
		p.raw("</tr>\n")
	}
	p.raw("</table></div>\n</section>\n")
}
