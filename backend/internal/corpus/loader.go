package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for corpus files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported corpus format")

// ErrMissingMessageColumn is returned when the header has no message_text column.
var ErrMissingMessageColumn = errors.New("corpus header has no " + ColMessageText + " column")

// Format identifies a tabular source encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// LoadStats reports what happened while reading a corpus source.
type LoadStats struct {
	Rows    int `json:"rows"`
	Skipped int `json:"skipped"`
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".tsv", ".tab":
		return FormatTSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadFile reads a corpus from a file on disk.
func LoadFile(path string) (*Corpus, LoadStats, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, LoadStats{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()

	return Parse(f, format)
}

// Parse reads a corpus in the given format.
func Parse(r io.Reader, format Format) (*Corpus, LoadStats, error) {
	switch format {
	case FormatCSV:
		return parseDelimited(r, ',')
	case FormatTSV:
		return parseDelimited(r, '\t')
	case FormatXLSX:
		return ParseXLSX(r)
	default:
		return nil, LoadStats{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ParseCSV reads a comma separated corpus with a header row.
func ParseCSV(r io.Reader) (*Corpus, LoadStats, error) {
	return parseDelimited(r, ',')
}

func parseDelimited(r io.Reader, comma rune) (*Corpus, LoadStats, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Empty(), LoadStats{}, nil
		}
		return nil, LoadStats{}, fmt.Errorf("reading corpus header: %w", err)
	}

	b, err := newBuilder(header)
	if err != nil {
		return nil, LoadStats{}, err
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			b.stats.Skipped++
			continue
		}
		if err != nil {
			return nil, b.stats, fmt.Errorf("reading corpus row: %w", err)
		}
		b.add(record)
	}

	return b.corpus(), b.stats, nil
}

// ParseXLSX reads the first worksheet of an Excel workbook. The first row
// is the header.
func ParseXLSX(r io.Reader) (*Corpus, LoadStats, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Empty(), LoadStats{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return Empty(), LoadStats{}, nil
	}

	b, err := newBuilder(rows[0])
	if err != nil {
		return nil, LoadStats{}, err
	}
	for _, record := range rows[1:] {
		b.add(record)
	}

	return b.corpus(), b.stats, nil
}

// builder maps header positions to row fields and collects rows.
type builder struct {
	columns []string
	rows    []Row
	stats   LoadStats
}

func newBuilder(header []string) (*builder, error) {
	columns := make([]string, len(header))
	hasMessage := false
	for i, h := range header {
		name := normalizeColumn(h)
		columns[i] = name
		if name == ColMessageText {
			hasMessage = true
		}
	}
	if !hasMessage {
		return nil, ErrMissingMessageColumn
	}
	return &builder{columns: columns}, nil
}

// add converts one record. Records with no message text are skipped;
// short records leave the trailing fields empty.
func (b *builder) add(record []string) {
	var row Row
	for i, value := range record {
		if i >= len(b.columns) {
			break
		}
		row.set(b.columns[i], strings.TrimSpace(value))
	}
	if row.MessageText == "" {
		b.stats.Skipped++
		return
	}
	b.rows = append(b.rows, row)
	b.stats.Rows++
}

func (b *builder) corpus() *Corpus {
	return &Corpus{rows: b.rows}
}

func normalizeColumn(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}
