package core

import (
	"github.com/araddon/dateparse"

	"github.com/JonMunkholm/datadash/internal/table"
)

const (
	// DateSampleSize is how many non-missing values are tried as dates.
	DateSampleSize = 10

	// DateMinMatches is how many of them must parse for a datetime column.
	DateMinMatches = 3
)

// ColumnSet groups column names by inferred type. Numeric and Datetime are
// subsets of All offered to the chart UI as axis choices, not a partition.
type ColumnSet struct {
	All      []string `json:"all"`
	Numeric  []string `json:"numeric"`
	Datetime []string `json:"datetime"`
}

// ColumnType is the semantic type of a single column.
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeDatetime    ColumnType = "datetime"
	TypeCategorical ColumnType = "categorical"
)

// InferColumns classifies every column of t.
func InferColumns(t *table.Table) ColumnSet {
	set := ColumnSet{
		All:      t.Columns(),
		Numeric:  []string{},
		Datetime: []string{},
	}
	for i := 0; i < t.NumColumns(); i++ {
		col := t.ColumnAt(i)
		switch InferType(col) {
		case TypeNumeric:
			set.Numeric = append(set.Numeric, col.Name)
		case TypeDatetime:
			set.Datetime = append(set.Datetime, col.Name)
		}
	}
	return set
}

// InferType returns the semantic type of one column.
func InferType(col table.Column) ColumnType {
	switch col.Kind {
	case table.KindNumber:
		return TypeNumeric
	case table.KindTime:
		return TypeDatetime
	}
	if looksLikeDates(col) {
		return TypeDatetime
	}
	return TypeCategorical
}

// looksLikeDates tries the first DateSampleSize non-missing values as dates.
func looksLikeDates(col table.Column) bool {
	sampled, parsed := 0, 0
	for i := 0; i < col.Len() && sampled < DateSampleSize; i++ {
		v := col.At(i)
		if v.IsMissing() {
			continue
		}
		sampled++
		if parsesAsDate(v.String()) {
			parsed++
			if parsed >= DateMinMatches {
				return true
			}
		}
	}
	return false
}

// parsesAsDate reports success or failure only; the parse error itself is
// of no interest.
func parsesAsDate(s string) bool {
	_, err := dateparse.ParseAny(s)
	return err == nil
}
