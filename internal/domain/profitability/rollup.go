package profitability

import (
	"sort"

	"campos/internal/core/types"
)

// BuildReport turns per-field metrics into ranked records and company totals.
// Records are sorted by margin descending; equal margins keep input order.
// Totals are sums of the records, never an independent query.
func BuildReport(rows []FieldMetrics) Report {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, buildRecord(row))
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Margin.GreaterThan(records[j].Margin)
	})

	total := CompanyTotal{
		Income:    types.Zero(),
		TotalCost: types.Zero(),
		Margin:    types.Zero(),
	}
	for _, r := range records {
		total.Income = total.Income.Add(r.Income)
		total.TotalCost = total.TotalCost.Add(r.Costs.Total)
		total.Margin = total.Margin.Add(r.Margin)
	}
	total.MarginPercent = types.PercentOf(total.Margin, total.Income)

	return Report{ByField: records, Total: total}
}

func buildRecord(row FieldMetrics) Record {
	m := row.Metrics
	costs := Costs{
		Labor:  m.Labor,
		Inputs: m.Inputs,
		Other:  m.Other,
		Total:  m.TotalCost(),
	}
	margin := m.Income.Sub(costs.Total)

	return Record{
		FieldID:       row.Field.ID,
		FieldName:     row.Field.Name,
		CropName:      row.Field.CropLabel,
		Area:          row.Field.Area(),
		Income:        m.Income,
		Costs:         costs,
		Margin:        margin,
		MarginPercent: types.PercentOf(margin, m.Income),
	}
}
