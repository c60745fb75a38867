package core

import (
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/JonMunkholm/datadash/internal/table"
)

// PieLimit caps the number of slices in a pie or doughnut chart.
const PieLimit = 10

// ChartType selects how a chart query is answered.
type ChartType string

const (
	ChartBar      ChartType = "bar"
	ChartLine     ChartType = "line"
	ChartRadar    ChartType = "radar"
	ChartPie      ChartType = "pie"
	ChartDoughnut ChartType = "doughnut"
)

// ParseChartType recognizes the five chart kinds, case-insensitively.
func ParseChartType(s string) (ChartType, bool) {
	ct := ChartType(strings.ToLower(strings.TrimSpace(s)))
	switch ct {
	case ChartBar, ChartLine, ChartRadar, ChartPie, ChartDoughnut:
		return ct, true
	}
	return ct, false
}

// AggFunc reduces the y values of one group.
type AggFunc string

const (
	AggSum   AggFunc = "sum"
	AggMean  AggFunc = "mean"
	AggCount AggFunc = "count"
	AggMin   AggFunc = "min"
	AggMax   AggFunc = "max"
)

// ParseAggFunc returns the named aggregation, or AggSum for anything it
// does not recognize.
func ParseAggFunc(s string) AggFunc {
	agg := AggFunc(strings.ToLower(strings.TrimSpace(s)))
	switch agg {
	case AggSum, AggMean, AggCount, AggMin, AggMax:
		return agg
	}
	return AggSum
}

// ChartQuery names the columns and reduction of one chart. An empty column
// name means the axis is absent.
type ChartQuery struct {
	X    string    `json:"x_col"`
	Y    string    `json:"y_col"`
	Type ChartType `json:"chart_type"`
	Agg  AggFunc   `json:"agg"`
}

// ChartResult is a label/value series; Labels[i] belongs to Values[i].
//
// Labels use [table.Value.String]: numbers in their shortest decimal form, so
// a whole number is "2" and never "2.0", and times as "2006-01-02 15:04:05".
type ChartResult struct {
	Labels []string `json:"labels"`
	Values []Stat   `json:"values"`
}

func emptyResult() ChartResult {
	return ChartResult{Labels: []string{}, Values: []Stat{}}
}

// PrepareChart answers q against t. Columns that are not in t are treated
// as absent, and an unknown chart type yields an empty result.
func PrepareChart(t *table.Table, q ChartQuery) ChartResult {
	x, hasX := t.Column(q.X)
	y, hasY := t.Column(q.Y)

	switch q.Type {
	case ChartBar, ChartLine, ChartRadar:
		switch {
		case hasX && hasY:
			return groupAggregate(x, y, ParseAggFunc(string(q.Agg)))
		case hasY:
			return passThrough(y)
		}
	case ChartPie, ChartDoughnut:
		switch {
		case hasX:
			return topFrequencies(x, PieLimit)
		case hasY:
			return passThrough(y)
		}
	}
	return emptyResult()
}

type group struct {
	label   table.Value
	numbers []float64
	present int
}

// groupAggregate groups y by x, drops rows whose x is missing, and reduces
// each group with agg. Groups come out in ascending x order.
func groupAggregate(x, y table.Column, agg AggFunc) ChartResult {
	index := make(map[table.Key]int)
	var groups []*group

	for i := 0; i < x.Len(); i++ {
		xv := x.At(i)
		if xv.IsMissing() {
			continue
		}
		k := xv.Key()
		gi, ok := index[k]
		if !ok {
			gi = len(groups)
			index[k] = gi
			groups = append(groups, &group{label: xv})
		}
		g := groups[gi]

		yv := y.At(i)
		if yv.IsMissing() {
			continue
		}
		g.present++
		if f, ok := yv.Float(); ok {
			g.numbers = append(g.numbers, f)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return table.Compare(groups[i].label, groups[j].label) < 0
	})

	res := ChartResult{
		Labels: make([]string, len(groups)),
		Values: make([]Stat, len(groups)),
	}
	for i, g := range groups {
		res.Labels[i] = g.label.String()
		res.Values[i] = reduce(g, agg)
	}
	return res
}

func reduce(g *group, agg AggFunc) Stat {
	if agg == AggCount {
		return Stat(g.present)
	}
	if agg == AggSum {
		return Stat(floats.Sum(g.numbers))
	}
	if len(g.numbers) == 0 {
		return NaN
	}
	switch agg {
	case AggMean:
		return Stat(stat.Mean(g.numbers, nil))
	case AggMin:
		return Stat(floats.Min(g.numbers))
	case AggMax:
		return Stat(floats.Max(g.numbers))
	}
	return Stat(floats.Sum(g.numbers))
}

// passThrough labels each row by its index and copies the raw y values.
// Cells that are not numbers come out as NaN.
func passThrough(y table.Column) ChartResult {
	res := ChartResult{
		Labels: make([]string, y.Len()),
		Values: make([]Stat, y.Len()),
	}
	for i := 0; i < y.Len(); i++ {
		res.Labels[i] = strconv.Itoa(i)
		if f, ok := y.At(i).Float(); ok {
			res.Values[i] = Stat(f)
		} else {
			res.Values[i] = NaN
		}
	}
	return res
}

// topFrequencies counts each distinct non-missing value and keeps the limit
// most frequent, highest first. Equal counts keep first-encounter order.
func topFrequencies(col table.Column, limit int) ChartResult {
	type freq struct {
		label string
		count int
	}
	index := make(map[table.Key]int)
	var counts []freq

	for i := 0; i < col.Len(); i++ {
		v := col.At(i)
		if v.IsMissing() {
			continue
		}
		k := v.Key()
		if fi, ok := index[k]; ok {
			counts[fi].count++
			continue
		}
		index[k] = len(counts)
		counts = append(counts, freq{label: v.String(), count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}

	res := ChartResult{
		Labels: make([]string, len(counts)),
		Values: make([]Stat, len(counts)),
	}
	for i, f := range counts {
		res.Labels[i] = f.label
		res.Values[i] = Stat(f.count)
	}
	return res
}
