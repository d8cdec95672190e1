package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"

	"storefront/internal/domain"
)

// Columns is the header row shared by imports and exports.
var Columns = []string{"name", "description", "price", "originalPrice", "imageUrl", "category", "stock", "isNewArrival"}

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// RowReader yields one record per call and io.EOF when done. *csv.Reader satisfies it.
type RowReader interface {
	Read() ([]string, error)
}

// Importer reads catalog rows and upserts them by (name, category).
type Importer struct {
	rows        RowReader
	productRepo ProductWriter
}

func New(rows RowReader, repo ProductWriter) *Importer {
	return &Importer{rows: rows, productRepo: repo}
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *Importer {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return New(csvr, repo)
}

// NewXLSXImporter reads the first sheet of a workbook.
func NewXLSXImporter(r io.ReaderAt, size int64, repo ProductWriter) (*Importer, error) {
	f, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if len(f.Sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return New(&sheetReader{sheet: f.Sheets[0]}, repo), nil
}

// NewXLSXImporterFromBytes is NewXLSXImporter for an in-memory workbook.
func NewXLSXImporterFromBytes(data []byte, repo ProductWriter) (*Importer, error) {
	return NewXLSXImporter(bytes.NewReader(data), int64(len(data)), repo)
}

type sheetReader struct {
	sheet *xlsx.Sheet
	next  int
}

func (s *sheetReader) Read() ([]string, error) {
	if s.next >= len(s.sheet.Rows) {
		return nil, io.EOF
	}
	row := s.sheet.Rows[s.next]
	s.next++
	if row == nil {
		return nil, nil
	}
	out := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		out[i] = c.String()
	}
	return out, nil
}

// Run upserts every data row and returns how many were saved. It stops at
// the first invalid row; rows before it stay imported.
func (i *Importer) Run(ctx context.Context) (int, error) {
	headers, err := i.rows.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"name", "price", "category"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing required column %q", required)
		}
	}

	imported := 0
	for line := 2; ; line++ {
		record, err := i.rows.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		p, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if _, err := i.productRepo.Upsert(ctx, p); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", p.Name, err)
		}
		imported++
	}
	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	p := domain.Product{
		Name:        pick(record, index, "name"),
		Description: pick(record, index, "description"),
		ImageURL:    pick(record, index, "imageUrl"),
		Category:    pick(record, index, "category"),
	}
	if p.Name == "" {
		return p, errors.New("name is required")
	}
	if !domain.IsCategory(p.Category) {
		return p, fmt.Errorf("unknown category %q", p.Category)
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil || price.IsNegative() {
		return p, fmt.Errorf("invalid price %q", pick(record, index, "price"))
	}
	p.Price = price

	if v := pick(record, index, "originalPrice"); v != "" {
		op, err := decimal.NewFromString(v)
		if err != nil || op.IsNegative() {
			return p, fmt.Errorf("invalid originalPrice %q", v)
		}
		p.OriginalPrice = &op
	}

	if v := pick(record, index, "stock"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil || stock < 0 {
			return p, fmt.Errorf("invalid stock %q", v)
		}
		p.Stock = stock
	}

	if v := pick(record, index, "isNewArrival"); v != "" {
		b, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return p, fmt.Errorf("invalid isNewArrival %q", v)
		}
		p.IsNewArrival = b
	}
	return p, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
