package ingest

import (
	"bytes"
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/JonMunkholm/datadash/internal/table"
)

// decodeParquet loads a Parquet file into an Arrow table and copies every
// column into cells. Parquet carries real types, so timestamps and dates
// arrive as time cells rather than text.
func decodeParquet(ctx context.Context, data []byte) (*table.Table, error) {
	pf, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: FormatParquet, Err: fmt.Errorf("open parquet: %w", err)}
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, &DecodeError{Format: FormatParquet, Err: fmt.Errorf("arrow reader: %w", err)}
	}

	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, &DecodeError{Format: FormatParquet, Err: fmt.Errorf("read table: %w", err)}
	}
	defer tbl.Release()

	header := make([]string, tbl.NumCols())
	values := make([][]table.Value, tbl.NumCols())
	for i := range header {
		col := tbl.Column(i)
		header[i] = col.Name()

		cells := make([]table.Value, 0, col.Len())
		for _, chunk := range col.Data().Chunks() {
			for j := 0; j < chunk.Len(); j++ {
				cells = append(cells, arrowValue(chunk, j))
			}
		}
		values[i] = cells
	}

	t, err := table.New(normalizeHeader(header), values)
	if err != nil {
		return nil, &DecodeError{Format: FormatParquet, Err: err}
	}
	return t, nil
}

// arrowValue converts the i-th element of an Arrow array.
func arrowValue(arr arrow.Array, i int) table.Value {
	if arr.IsNull(i) {
		return table.Missing()
	}

	switch a := arr.(type) {
	case *array.Float64:
		return table.Number(a.Value(i))
	case *array.Float32:
		return table.Number(float64(a.Value(i)))
	case *array.Int64:
		return table.Number(float64(a.Value(i)))
	case *array.Int32:
		return table.Number(float64(a.Value(i)))
	case *array.Int16:
		return table.Number(float64(a.Value(i)))
	case *array.Int8:
		return table.Number(float64(a.Value(i)))
	case *array.Uint64:
		return table.Number(float64(a.Value(i)))
	case *array.Uint32:
		return table.Number(float64(a.Value(i)))
	case *array.Uint16:
		return table.Number(float64(a.Value(i)))
	case *array.Uint8:
		return table.Number(float64(a.Value(i)))
	case *array.String:
		return table.Text(a.Value(i))
	case *array.LargeString:
		return table.Text(a.Value(i))
	case *array.Boolean:
		if a.Value(i) {
			return table.Text("True")
		}
		return table.Text("False")
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return table.Time(a.Value(i).ToTime(unit).UTC())
	case *array.Date32:
		return table.Time(a.Value(i).ToTime().UTC())
	case *array.Date64:
		return table.Time(a.Value(i).ToTime().UTC())
	default:
		return table.Text(arr.ValueStr(i))
	}
}
