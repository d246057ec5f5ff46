package schema

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/kerem-kaynak/kolektor/internal/entity"
	"github.com/xuri/excelize/v2"
)

// DefaultPeekBytes bounds how much of an uploaded file is read when looking
// for a CSV header line.
const DefaultPeekBytes = 10 * 1024

// Extract reads just enough of an uploaded file to name its columns. It
// never fails hard: when the header cannot be read the generic fallback
// columns are returned together with a non-nil error the caller may log.
// Column types are always the VARCHAR placeholder, real typing happens in
// the engine after submission.
func Extract(r io.Reader, filename string, peekBytes int) ([]entity.Column, error) {
	if peekBytes <= 0 {
		peekBytes = DefaultPeekBytes
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return extractCSV(r, peekBytes)
	case ".xlsx":
		return extractWorkbook(r)
	case ".xls":
		// Legacy binary workbooks are accepted but not parsed here.
		return FallbackColumns(), fmt.Errorf("cannot extract header from legacy workbook %q", filename)
	default:
		return FallbackColumns(), fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
}

// FallbackColumns is the generic schema used whenever header extraction
// fails. Uploads must never be blocked by an unreadable header.
func FallbackColumns() []entity.Column {
	return []entity.Column{
		{Name: "id", Type: entity.DefaultColumnType},
		{Name: "column1", Type: entity.DefaultColumnType},
		{Name: "column2", Type: entity.DefaultColumnType},
	}
}

// DeriveTableName turns an uploaded filename into the table name registered
// in the wizard, e.g. "data/customers.csv" becomes "customers".
func DeriveTableName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func extractCSV(r io.Reader, peekBytes int) ([]entity.Column, error) {
	buf := make([]byte, peekBytes)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return FallbackColumns(), fmt.Errorf("failed to read file header: %w", err)
	}

	header := strings.TrimPrefix(string(buf[:n]), "\uFEFF")
	if i := strings.IndexAny(header, "\r\n"); i >= 0 {
		header = header[:i]
	}

	names := splitHeaderLine(header)
	if len(names) == 0 {
		return FallbackColumns(), fmt.Errorf("file has no header fields")
	}

	columns := make([]entity.Column, 0, len(names))
	for _, name := range names {
		columns = append(columns, entity.Column{Name: name, Type: entity.DefaultColumnType})
	}
	return columns, nil
}

// splitHeaderLine applies the same naive header parse the upload screen has
// always used: split on commas, trim whitespace and surrounding quotes.
// Quoted commas are intentionally not handled.
func splitHeaderLine(line string) []string {
	parts := strings.Split(line, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		name = strings.Trim(name, `"'`)
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

func extractWorkbook(r io.Reader) ([]entity.Column, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return FallbackColumns(), fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return FallbackColumns(), fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return FallbackColumns(), fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	defer rows.Close()

	if !rows.Next() {
		return FallbackColumns(), fmt.Errorf("sheet %q is empty", sheets[0])
	}
	cells, err := rows.Columns()
	if err != nil {
		return FallbackColumns(), fmt.Errorf("failed to read header row: %w", err)
	}

	columns := make([]entity.Column, 0, len(cells))
	for _, cell := range cells {
		name := strings.TrimSpace(cell)
		if name == "" {
			continue
		}
		columns = append(columns, entity.Column{Name: name, Type: entity.DefaultColumnType})
	}
	if len(columns) == 0 {
		return FallbackColumns(), fmt.Errorf("workbook header row is empty")
	}
	return columns, nil
}
