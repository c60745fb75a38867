package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/datadash/internal/core"
	"github.com/JonMunkholm/datadash/internal/table"
)

func renderString(t *testing.T, build func(*bytes.Buffer) error) string {
	t.Helper()
	var buf bytes.Buffer
	if err := build(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestIndex(t *testing.T) {
	ctx := context.Background()

	plain := renderString(t, func(b *bytes.Buffer) error { return Index("").Render(ctx, b) })
	if !strings.Contains(plain, `action="/upload"`) || strings.Contains(plain, `class="alert"`) {
		t.Errorf("unexpected index page:\n%s", plain)
	}

	msg := renderString(t, func(b *bytes.Buffer) error {
		return Index("Unsupported file format. Upload CSV or Excel.").Render(ctx, b)
	})
	if !strings.Contains(msg, "Unsupported file format. Upload CSV or Excel.") {
		t.Errorf("message missing from page")
	}
}

func TestErrorAlert_Escapes(t *testing.T) {
	out := renderString(t, func(b *bytes.Buffer) error {
		return ErrorAlert("<b>bad</b>", "retry", "ERR000").Render(context.Background(), b)
	})
	if strings.Contains(out, "<b>bad</b>") {
		t.Errorf("message not escaped: %s", out)
	}
	if !strings.Contains(out, "&lt;b&gt;bad&lt;/b&gt;") || !strings.Contains(out, "(ERR000)") {
		t.Errorf("unexpected alert: %s", out)
	}
}

func TestDashboard(t *testing.T) {
	tbl, err := table.New(
		[]string{"region", "sales"},
		[][]table.Value{
			{table.Text("east"), table.Text("<west>")},
			{table.Number(1), table.Number(2)},
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	out := renderString(t, func(b *bytes.Buffer) error {
		return Dashboard(DashboardData{
			Handle:   "h-1",
			Filename: "sales.csv",
			Rows:     2,
			Profile:  core.BuildProfile(tbl),
		}).Render(context.Background(), b)
	})

	for _, want := range []string{
		"<h1>sales.csv</h1>",
		`name="handle" value="h-1"`,
		`<option value="sales">sales</option>`,
		"&lt;west&gt;",
		ChartJSURL,
		"/generate_chart",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestFormatStat(t *testing.T) {
	if got := formatStat(core.NaN); got != "n/a" {
		t.Errorf("formatStat(NaN) = %q", got)
	}
	if got := formatStat(core.Stat(2.5)); got != "2.5" {
		t.Errorf("formatStat(2.5) = %q", got)
	}
}
