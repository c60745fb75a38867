package table

import (
	"fmt"
	"time"
)

// ColumnSchema names a column and the kind of its cells.
type ColumnSchema struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Snapshot is the serialized form of a table. JSON strings carry no type, so
// the schema is what lets time columns come back as times.
type Snapshot struct {
	Columns []ColumnSchema `json:"columns"`
	Records []Record       `json:"records"`
}

// Snapshot captures the schema and rows of t.
func (t *Table) Snapshot() Snapshot {
	cols := make([]ColumnSchema, len(t.cols))
	for i, c := range t.cols {
		cols[i] = ColumnSchema{Name: c.Name, Kind: c.Kind}
	}
	return Snapshot{Columns: cols, Records: t.Records()}
}

// FromSnapshot rebuilds a table from s. Columns follow the schema order, then
// record keys in order of first appearance; a key absent from a record is a
// missing cell. Text cells of a time column that parse as RFC 3339 become
// times again.
func FromSnapshot(s Snapshot) *Table {
	var names []string
	pos := make(map[string]int)
	add := func(name string) {
		if _, ok := pos[name]; !ok && name != "" {
			pos[name] = len(names)
			names = append(names, name)
		}
	}
	for _, c := range s.Columns {
		add(c.Name)
	}
	for _, rec := range s.Records {
		for _, f := range rec {
			add(f.Name)
		}
	}

	values := make([][]Value, len(names))
	for i := range values {
		values[i] = make([]Value, len(s.Records))
	}
	for r, rec := range s.Records {
		for _, f := range rec {
			if i, ok := pos[f.Name]; ok {
				values[i][r] = f.Value
			}
		}
	}

	for _, c := range s.Columns {
		i, ok := pos[c.Name]
		if !ok || c.Kind != KindTime {
			continue
		}
		for r, v := range values[i] {
			if v.Kind() != KindText {
				continue
			}
			if ts, err := time.Parse(time.RFC3339Nano, v.str); err == nil {
				values[i][r] = Time(ts)
			}
		}
	}

	t, _ := New(names, values) // names are unique and non-empty by construction
	return t
}

// MarshalText writes the kind name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a name written by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "number":
		*k = KindNumber
	case "time":
		*k = KindTime
	case "text":
		*k = KindText
	case "missing":
		*k = KindMissing
	default:
		return fmt.Errorf("unknown column kind %q", text)
	}
	return nil
}
