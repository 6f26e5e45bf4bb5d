// Package profitability computes per-field income, cost breakdown and margin
// for a company and year, ranked by margin.
package profitability

import (
	"campos/internal/core/types"
)

// Field is a company-owned land parcel (cuartel).
type Field struct {
	ID        int64
	CompanyID int64
	Name      string
	// AreaHectares is nil when no area has been recorded.
	AreaHectares *float64
}

// PlantingCrop is a planting joined with the crop naming data used for its label.
// CropID is nil when the planting has no crop assigned.
type PlantingCrop struct {
	PlantingID  int64
	FieldID     int64
	Season      string
	CropID      *int64
	CropName    string
	CropVariety string
	SpeciesName string
	VarietyName string
}

// ResolvedField is a field in scope together with its display crop label.
type ResolvedField struct {
	Field
	CropLabel string
}

// Area returns the field area, nil when unknown.
func (r ResolvedField) Area() *float64 {
	return r.AreaHectares
}

// Metrics holds the raw sums for one field and year. Zero when nothing matched.
type Metrics struct {
	Income types.Money
	Labor  types.Money
	Inputs types.Money
	Other  types.Money
}

// TotalCost returns labor + inputs + other.
func (m Metrics) TotalCost() types.Money {
	return types.Sum(m.Labor, m.Inputs, m.Other)
}

// FieldMetrics is the rollup input for one field.
type FieldMetrics struct {
	Field   ResolvedField
	Metrics Metrics
}

// Costs is the cost breakdown of a record.
type Costs struct {
	Labor  types.Money
	Inputs types.Money
	Other  types.Money
	Total  types.Money
}

// Record is the profitability of one field.
type Record struct {
	FieldID       int64
	FieldName     string
	CropName      string
	Area          *float64
	Income        types.Money
	Costs         Costs
	Margin        types.Money
	MarginPercent types.Money
}

// CompanyTotal sums the per-field records.
type CompanyTotal struct {
	Income        types.Money
	TotalCost     types.Money
	Margin        types.Money
	MarginPercent types.Money
}

// Report is the ranked result for one company and year.
type Report struct {
	CompanyID int64
	Year      int
	ByField   []Record
	Total     CompanyTotal
}

// Query selects what to report on.
// A nil FieldIDs means every field of the company.
type Query struct {
	CompanyID int64
	Year      int
	FieldIDs  []int64
}
