package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/datadash/internal/table"
)

// newCSVReader strips a UTF-8 BOM and replaces invalid UTF-8 with U+FFFD
// before the bytes reach the CSV parser.
func newCSVReader(data []byte) *csv.Reader {
	sanitized := transform.NewReader(bytes.NewReader(data),
		unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(sanitized)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false
	return cr
}

func decodeCSV(data []byte) (*table.Table, error) {
	cr := newCSVReader(data)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &DecodeError{Format: FormatCSV, Err: ErrEmptyFile}
	}
	if err != nil {
		return nil, &DecodeError{Format: FormatCSV, Err: fmt.Errorf("read header: %w", err)}
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &DecodeError{Format: FormatCSV, Err: fmt.Errorf("read row: %w", err)}
		}
		rows = append(rows, rec)
	}

	t, err := buildTable(header, rows)
	if err != nil {
		return nil, &DecodeError{Format: FormatCSV, Err: err}
	}
	return t, nil
}
