package ingest

// cells.go turns grids of raw strings (CSV rows, spreadsheet rows) into typed
// columns.
//
// Rules:
//   - a cell equal to one of naTokens is missing
//   - a column where every non-missing cell is a plain decimal number becomes
//     numeric; otherwise every cell of the column stays text
//   - blank header names become "Unnamed: <i>", repeated names get ".1", ".2"

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/JonMunkholm/datadash/internal/table"
)

// numericRegex matches integers, decimals and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var naTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// isNA reports whether a raw cell denotes a missing value.
func isNA(s string) bool {
	return naTokens[s] || strings.TrimSpace(s) == ""
}

// parseNumber parses a plain decimal number, ignoring surrounding spaces.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// normalizeHeader fills blank names and de-duplicates repeated ones.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			for {
				n++
				candidate := fmt.Sprintf("%s.%d", name, n)
				if _, taken := seen[candidate]; !taken {
					seen[name] = n
					name = candidate
					break
				}
			}
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}

// buildTable types a header + rows grid. Short rows are padded with missing
// cells and cells beyond the header are ignored.
func buildTable(header []string, rows [][]string) (*table.Table, error) {
	names := normalizeHeader(header)
	values := make([][]table.Value, len(names))

	for c := range names {
		raw := make([]string, len(rows))
		for r, row := range rows {
			if c < len(row) {
				raw[r] = row[c]
			}
		}
		values[c] = typeColumn(raw)
	}

	return table.New(names, values)
}

// typeColumn converts one column of raw strings.
func typeColumn(raw []string) []table.Value {
	out := make([]table.Value, len(raw))

	numeric := true
	for i, s := range raw {
		if isNA(s) {
			continue
		}
		f, ok := parseNumber(s)
		if !ok {
			numeric = false
			break
		}
		out[i] = table.Number(f)
	}
	if numeric {
		return out
	}

	for i, s := range raw {
		if isNA(s) {
			out[i] = table.Missing()
			continue
		}
		out[i] = table.Text(s)
	}
	return out
}
