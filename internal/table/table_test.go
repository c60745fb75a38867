package table

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func mustTable(t *testing.T, names []string, values [][]Value) *Table {
	t.Helper()
	tbl, err := New(names, values)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tbl
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		values  [][]Value
		wantErr error
	}{
		{
			name:    "duplicate column",
			names:   []string{"a", "a"},
			values:  [][]Value{{Number(1)}, {Number(2)}},
			wantErr: ErrDuplicateColumn,
		},
		{
			name:    "empty name",
			names:   []string{""},
			values:  [][]Value{{Number(1)}},
			wantErr: ErrEmptyColumnName,
		},
		{
			name:    "ragged columns",
			names:   []string{"a", "b"},
			values:  [][]Value{{Number(1)}, {Number(1), Number(2)}},
			wantErr: ErrRaggedColumns,
		},
		{
			name:    "name count mismatch",
			names:   []string{"a"},
			values:  [][]Value{{Number(1)}, {Number(2)}},
			wantErr: ErrRaggedColumns,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.names, tt.values)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestColumnKind(t *testing.T) {
	ts := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		values []Value
		want   Kind
	}{
		{"all numbers", []Value{Number(1), Missing(), Number(2.5)}, KindNumber},
		{"all missing counts as numeric", []Value{Missing(), Missing()}, KindNumber},
		{"empty column", nil, KindNumber},
		{"text wins", []Value{Number(1), Text("x")}, KindText},
		{"all times", []Value{Time(ts), Missing()}, KindTime},
		{"time and number mix", []Value{Time(ts), Number(1)}, KindText},
		{"number then time", []Value{Number(1), Time(ts)}, KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := columnKind(tt.values); got != tt.want {
				t.Errorf("columnKind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHead(t *testing.T) {
	tbl := mustTable(t, []string{"n"}, [][]Value{{Number(1), Number(2), Number(3)}})

	head := tbl.Head(2)
	if head.NumRows() != 2 {
		t.Fatalf("Head(2).NumRows() = %d, want 2", head.NumRows())
	}
	if tbl.NumRows() != 3 {
		t.Errorf("original table changed: NumRows() = %d", tbl.NumRows())
	}
	if got := tbl.Head(10).NumRows(); got != 3 {
		t.Errorf("Head(10).NumRows() = %d, want 3", got)
	}
	if got := tbl.Head(-1).NumRows(); got != 0 {
		t.Errorf("Head(-1).NumRows() = %d, want 0", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	oslo := time.FixedZone("CET", 3600)
	tbl := mustTable(t,
		[]string{"city", "sales", "note", "day"},
		[][]Value{
			{Text("Oslo"), Text("Bergen"), Text("Oslo")},
			{Number(10), Missing(), Number(2.5)},
			{Missing(), Text("late"), Text("")},
			{
				Time(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
				Time(time.Date(2024, 1, 16, 9, 30, 0, 250, oslo)),
				Missing(),
			},
		},
	)

	data, err := json.Marshal(tbl.Head(2).Snapshot())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	got := FromSnapshot(snap)

	wantCols := []string{"city", "sales", "note", "day"}
	gotCols := got.Columns()
	if len(gotCols) != len(wantCols) {
		t.Fatalf("Columns() = %v, want %v", gotCols, wantCols)
	}
	for i := range wantCols {
		if gotCols[i] != wantCols[i] {
			t.Errorf("Columns()[%d] = %q, want %q", i, gotCols[i], wantCols[i])
		}
	}
	if got.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", got.NumRows())
	}
	for _, name := range wantCols {
		want, _ := tbl.Column(name)
		have, _ := got.Column(name)
		if have.Kind != want.Kind {
			t.Errorf("%s kind = %v, want %v", name, have.Kind, want.Kind)
		}
		for r := 0; r < 2; r++ {
			if !want.At(r).Equal(have.At(r)) {
				t.Errorf("%s[%d] = %v, want %v", name, r, have.At(r), want.At(r))
			}
			if have.At(r).String() != want.At(r).String() {
				t.Errorf("%s[%d] label = %q, want %q", name, r, have.At(r).String(), want.At(r).String())
			}
		}
	}
}

func TestFromSnapshot_TimeLookingText(t *testing.T) {
	snap := Snapshot{
		Columns: []ColumnSchema{{Name: "stamp", Kind: KindText}, {Name: "empty", Kind: KindNumber}},
		Records: []Record{{{Name: "stamp", Value: Text("2024-01-15T00:00:00Z")}}},
	}

	tbl := FromSnapshot(snap)
	stamp, _ := tbl.Column("stamp")
	if stamp.Kind != KindText || stamp.At(0).String() != "2024-01-15T00:00:00Z" {
		t.Errorf("stamp = %v %q, want text kept as is", stamp.Kind, stamp.At(0).String())
	}
	if empty, ok := tbl.Column("empty"); !ok || !empty.At(0).IsMissing() {
		t.Errorf("schema column without cells should exist and be missing")
	}
}

func TestKindText(t *testing.T) {
	for _, k := range []Kind{KindMissing, KindNumber, KindTime, KindText} {
		text, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error = %v", k, err)
		}
		var back Kind
		if err := back.UnmarshalText(text); err != nil || back != k {
			t.Errorf("UnmarshalText(%q) = %v, %v; want %v", text, back, err, k)
		}
	}
	var k Kind
	if err := k.UnmarshalText([]byte("blob")); err == nil {
		t.Error("UnmarshalText(blob) should fail")
	}
}

func TestRecordJSONKeepsKeyOrder(t *testing.T) {
	in := `{"z":1,"a":"x","m":null}`

	var rec Record
	if err := json.Unmarshal([]byte(in), &rec); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(rec) != 3 || rec[0].Name != "z" || rec[1].Name != "a" || rec[2].Name != "m" {
		t.Fatalf("record order = %+v", rec)
	}
	if !rec[2].Value.IsMissing() {
		t.Errorf("null should decode as missing, got %v", rec[2].Value)
	}

	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != in {
		t.Errorf("Marshal() = %s, want %s", out, in)
	}
}

func TestFromSnapshot_SparseKeys(t *testing.T) {
	records := []Record{
		{{Name: "a", Value: Number(1)}},
		{{Name: "b", Value: Text("x")}, {Name: "a", Value: Number(2)}},
	}

	tbl := FromSnapshot(Snapshot{Records: records})
	cols := tbl.Columns()
	if len(cols) != 2 || cols[0] != "a" || cols[1] != "b" {
		t.Fatalf("Columns() = %v, want [a b]", cols)
	}
	b, _ := tbl.Column("b")
	if !b.At(0).IsMissing() {
		t.Errorf("b[0] = %v, want missing", b.At(0))
	}
	a, _ := tbl.Column("a")
	if a.Kind != KindNumber {
		t.Errorf("a.Kind = %v, want number", a.Kind)
	}
}

func TestCompare(t *testing.T) {
	early := Time(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	late := Time(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"numbers numerically", Number(9), Number(10), -1},
		{"text lexicographically", Text("10"), Text("9"), -1},
		{"times chronologically", late, early, 1},
		{"number before text", Number(100), Text("a"), -1},
		{"equal text", Text("a"), Text("a"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Number(3), "3"},
		{Number(2.5), "2.5"},
		{Number(-0.125), "-0.125"},
		{Text("A"), "A"},
		{Time(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)), "2024-03-01 12:30:00"},
		{Missing(), ""},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestValueJSON(t *testing.T) {
	vals := []Value{Number(1.5), Text("hi"), Missing(),
		Time(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))}
	data, err := json.Marshal(vals)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `[1.5,"hi",null,"2024-01-02T03:04:05Z"]`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
