package core

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/JonMunkholm/datadash/internal/table"
)

const (
	// SampleLimit caps the distinct sample values kept per categorical column.
	SampleLimit = 10

	// ProfileSampleRows is how many leading rows a profile carries.
	ProfileSampleRows = 100
)

// NumericSummary is the count/mean/std/five-number summary of one column.
type NumericSummary struct {
	Count Stat `json:"count"`
	Mean  Stat `json:"mean"`
	Std   Stat `json:"std"`
	Min   Stat `json:"min"`
	P25   Stat `json:"25%"`
	P50   Stat `json:"50%"`
	P75   Stat `json:"75%"`
	Max   Stat `json:"max"`
}

// Summary holds the descriptive statistics of a table.
type Summary struct {
	Numeric                 map[string]NumericSummary `json:"numeric"`
	CategoricalSampleValues map[string][]table.Value  `json:"categorical_sample_values"`
}

// Profile is what a consumer sees right after ingestion.
type Profile struct {
	Columns ColumnSet      `json:"columns"`
	Summary Summary        `json:"summary"`
	Sample  []table.Record `json:"sample"`
}

// BuildProfile infers column types, summarizes t and keeps the first
// ProfileSampleRows rows as records.
func BuildProfile(t *table.Table) *Profile {
	return &Profile{
		Columns: InferColumns(t),
		Summary: Summarize(t),
		Sample:  t.Head(ProfileSampleRows).Records(),
	}
}

// Summarize computes numeric statistics for numeric columns and distinct
// sample values for all other columns.
func Summarize(t *table.Table) Summary {
	s := Summary{
		Numeric:                 make(map[string]NumericSummary),
		CategoricalSampleValues: make(map[string][]table.Value),
	}
	for i := 0; i < t.NumColumns(); i++ {
		col := t.ColumnAt(i)
		if col.Kind == table.KindNumber {
			s.Numeric[col.Name] = Describe(col.Floats())
			continue
		}
		s.CategoricalSampleValues[col.Name] = DistinctSample(col, SampleLimit)
	}
	return s
}

// Describe summarizes values. With no values every statistic except the
// count is NaN; with one value the sample standard deviation is NaN.
func Describe(values []float64) NumericSummary {
	n := len(values)
	if n == 0 {
		return NumericSummary{Count: 0, Mean: NaN, Std: NaN, Min: NaN, P25: NaN, P50: NaN, P75: NaN, Max: NaN}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if n == 1 {
		std = math.NaN()
	}

	return NumericSummary{
		Count: Stat(n),
		Mean:  Stat(mean),
		Std:   Stat(std),
		Min:   Stat(sorted[0]),
		P25:   Stat(Percentile(sorted, 0.25)),
		P50:   Stat(Percentile(sorted, 0.50)),
		P75:   Stat(Percentile(sorted, 0.75)),
		Max:   Stat(sorted[n-1]),
	}
}

// Percentile interpolates linearly between the order statistics of an
// ascending slice: h = (n-1)p, x[floor(h)] + (h-floor(h))(x[floor(h)+1]-x[floor(h)]).
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	if lo < 0 {
		return sorted[0]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// DistinctSample returns up to limit distinct non-missing values in order of
// first appearance.
func DistinctSample(col table.Column, limit int) []table.Value {
	out := make([]table.Value, 0, limit)
	seen := make(map[table.Key]bool)
	for i := 0; i < col.Len() && len(out) < limit; i++ {
		v := col.At(i)
		if v.IsMissing() {
			continue
		}
		k := v.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}
