// Package export renders profitability reports as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"campos/internal/core/types"
	"campos/internal/domain/profitability"
)

// ContentTypeXLSX is the MIME type of the rendered workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheetName = "Profitability"

var header = []any{
	"Field", "Crop", "Area (ha)", "Income", "Labor", "Inputs", "Other",
	"Total cost", "Margin", "Margin %", "Margin / ha",
}

// numFmt 4 is the builtin "#,##0.00".
const numFmt = 4

// Filename returns the attachment name for a report.
func Filename(r *profitability.Report) string {
	return fmt.Sprintf("profitability_%d.xlsx", r.Year)
}

// WriteXLSX writes r as a single-sheet workbook: one row per field in report order
// followed by a totals row.
func WriteXLSX(w io.Writer, r *profitability.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range r.ByField {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := recordRow(rec)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write field %d: %w", rec.FieldID, err)
		}
	}

	totalRow := len(r.ByField) + 2
	totalCell, err := excelize.CoordinatesToCellName(1, totalRow)
	if err != nil {
		return err
	}
	totals := []any{
		"Total", "", nil,
		types.Float64(r.Total.Income), nil, nil, nil,
		types.Float64(r.Total.TotalCost),
		types.Float64(r.Total.Margin),
		types.Float64(r.Total.MarginPercent),
		nil,
	}
	if err := f.SetSheetRow(sheetName, totalCell, &totals); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}

	if err := applyStyles(f, totalRow); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func recordRow(rec profitability.Record) []any {
	var area, perHectare any
	if rec.Area != nil {
		area = *rec.Area
		if *rec.Area > 0 {
			perHectare = types.Float64(rec.Margin.Div(types.NewMoney(*rec.Area)).Round(2))
		}
	}
	return []any{
		rec.FieldName,
		rec.CropName,
		area,
		types.Float64(rec.Income),
		types.Float64(rec.Costs.Labor),
		types.Float64(rec.Costs.Inputs),
		types.Float64(rec.Costs.Other),
		types.Float64(rec.Costs.Total),
		types.Float64(rec.Margin),
		types.Float64(rec.MarginPercent),
		perHectare,
	}
}

func applyStyles(f *excelize.File, totalRow int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	number, err := f.NewStyle(&excelize.Style{NumFmt: numFmt})
	if err != nil {
		return fmt.Errorf("number style: %w", err)
	}
	boldNumber, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: numFmt})
	if err != nil {
		return fmt.Errorf("totals style: %w", err)
	}

	last := fmt.Sprintf("K%d", totalRow)
	steps := []struct {
		from, to string
		style    int
	}{
		{"C2", last, number},
		{"A1", "K1", bold},
		{fmt.Sprintf("A%d", totalRow), last, boldNumber},
	}
	for _, s := range steps {
		if err := f.SetCellStyle(sheetName, s.from, s.to, s.style); err != nil {
			return fmt.Errorf("style %s:%s: %w", s.from, s.to, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "B", 24); err != nil {
		return err
	}
	return f.SetColWidth(sheetName, "C", "K", 14)
}
