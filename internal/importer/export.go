package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tealeg/xlsx"

	"storefront/internal/domain"
)

func exportRecord(p domain.Product) []string {
	original := ""
	if p.OriginalPrice != nil {
		original = p.OriginalPrice.StringFixed(2)
	}
	return []string{
		p.Name,
		p.Description,
		p.Price.StringFixed(2),
		original,
		p.ImageURL,
		p.Category,
		strconv.Itoa(p.Stock),
		strconv.FormatBool(p.IsNewArrival),
	}
}

// WriteXLSX writes products as a single-sheet workbook readable by NewXLSXImporter.
func WriteXLSX(w io.Writer, products []domain.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range Columns {
		header.AddCell().SetString(h)
	}
	for _, p := range products {
		row := sheet.AddRow()
		for _, v := range exportRecord(p) {
			row.AddCell().SetString(v)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteCSV writes products in the CSV layout NewCSVImporter reads.
func WriteCSV(w io.Writer, products []domain.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, p := range products {
		if err := cw.Write(exportRecord(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
