// Package ingest turns uploaded bytes into a table.Table.
//
// The format is picked from the file name extension, the same way the data
// browser picks a loader:
//
//	.csv      comma separated text
//	.xlsx     Office Open XML workbook (first sheet)
//	.xls      legacy BIFF workbook (first sheet)
//	.parquet  Apache Parquet, read through Arrow
//
// Anything else is decoded as CSV. Every decoder either returns a complete
// table or an error; partial tables are never returned.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/datadash/internal/table"
)

var (
	// ErrUnsupportedFormat means the bytes match none of the known layouts.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrDecode matches every *DecodeError.
	ErrDecode = errors.New("decode error")

	// ErrEmptyFile is the cause of a DecodeError for input with no header row.
	ErrEmptyFile = errors.New("empty file")
)

// Format names a supported file layout.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatXLS     Format = "xls"
	FormatParquet Format = "parquet"
)

// DecodeError reports structurally malformed input of a recognized format.
type DecodeError struct {
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDecode) match any DecodeError.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// magic numbers used to reject files whose content contradicts the extension
var (
	zipMagic     = []byte("PK\x03\x04")
	oleMagic     = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	parquetMagic = []byte("PAR1")
)

// sniffLen is how much of the input is inspected for binary content.
const sniffLen = 8192

// DetectFormat maps a file name to the decoder used for it.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	case ".parquet":
		return FormatParquet
	default:
		return FormatCSV
	}
}

// Decode reads r completely and decodes it according to filename.
func Decode(ctx context.Context, filename string, r io.Reader) (*table.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return DecodeBytes(ctx, filename, data)
}

// DecodeBytes is Decode for input already in memory.
func DecodeBytes(ctx context.Context, filename string, data []byte) (*table.Table, error) {
	format := DetectFormat(filename)
	if len(data) == 0 {
		return nil, &DecodeError{Format: format, Err: ErrEmptyFile}
	}
	if err := sniff(format, data); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		t   *table.Table
		err error
	)
	switch format {
	case FormatXLSX:
		t, err = decodeXLSX(data)
	case FormatXLS:
		t, err = decodeXLS(data)
	case FormatParquet:
		t, err = decodeParquet(ctx, data)
	default:
		t, err = decodeCSV(data)
	}
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) || errors.Is(err, ErrUnsupportedFormat) {
			return nil, err
		}
		return nil, &DecodeError{Format: format, Err: err}
	}
	return t, nil
}

// sniff rejects content that cannot be the format the extension claims.
func sniff(format Format, data []byte) error {
	var ok bool
	switch format {
	case FormatXLSX:
		ok = bytes.HasPrefix(data, zipMagic)
	case FormatXLS:
		ok = bytes.HasPrefix(data, oleMagic)
	case FormatParquet:
		ok = bytes.HasPrefix(data, parquetMagic)
	default:
		head := data
		if len(head) > sniffLen {
			head = head[:sniffLen]
		}
		ok = bytes.IndexByte(head, 0) < 0
	}
	if !ok {
		return fmt.Errorf("%s content not recognized: %w", format, ErrUnsupportedFormat)
	}
	return nil
}
