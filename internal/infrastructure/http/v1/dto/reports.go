// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strconv"
	"strings"

	"campos/internal/core/apperror"
	"campos/internal/core/types"
	"campos/internal/domain/profitability"
)

// ProfitabilityReportRequest is the query string of the profitability endpoints.
// Field ids may be repeated (field_id=1&field_id=2) or comma separated (field_ids=1,2).
type ProfitabilityReportRequest struct {
	Year     string   `form:"year"`
	FieldID  []string `form:"field_id"`
	FieldIDs string   `form:"field_ids"`
}

// ToQuery validates the request and scopes it to companyID.
func (r ProfitabilityReportRequest) ToQuery(companyID int64) (profitability.Query, error) {
	q := profitability.Query{CompanyID: companyID}

	year := strings.TrimSpace(r.Year)
	if year == "" {
		return q, apperror.NewValidation("year is required").WithDetail("param", "year")
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return q, apperror.NewValidation("year must be an integer").
			WithDetail("param", "year").
			WithDetail("value", r.Year)
	}
	q.Year = y

	raw := append([]string{}, r.FieldID...)
	if r.FieldIDs != "" {
		raw = append(raw, strings.Split(r.FieldIDs, ",")...)
	}
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return q, apperror.NewValidation("field ids must be integers").
				WithDetail("param", "field_id").
				WithDetail("value", s)
		}
		q.FieldIDs = append(q.FieldIDs, id)
	}
	return q, nil
}

// ProfitabilityReportResponse is the JSON profitability report.
type ProfitabilityReportResponse struct {
	ByField []ProfitabilityRecordResponse `json:"by_field"`
	Total   CompanyTotalResponse          `json:"total"`
}

// ProfitabilityRecordResponse is one field of the report.
type ProfitabilityRecordResponse struct {
	FieldID       int64         `json:"field_id"`
	FieldName     string        `json:"field_name"`
	CropName      string        `json:"crop_name"`
	Area          *float64      `json:"area"`
	Income        float64       `json:"income"`
	Costs         CostsResponse `json:"costs"`
	Margin        float64       `json:"margin"`
	MarginPercent float64       `json:"margin_percent"`
}

// CostsResponse is the cost breakdown of a field.
type CostsResponse struct {
	Labor  float64 `json:"labor"`
	Inputs float64 `json:"inputs"`
	Other  float64 `json:"other"`
	Total  float64 `json:"total"`
}

// CompanyTotalResponse holds company-wide totals.
type CompanyTotalResponse struct {
	Income        float64 `json:"income"`
	TotalCost     float64 `json:"total_cost"`
	Margin        float64 `json:"margin"`
	MarginPercent float64 `json:"margin_percent"`
}

// FromProfitabilityReport converts domain report to response DTO.
func FromProfitabilityReport(r *profitability.Report) *ProfitabilityReportResponse {
	resp := &ProfitabilityReportResponse{
		ByField: make([]ProfitabilityRecordResponse, len(r.ByField)),
		Total: CompanyTotalResponse{
			Income:        types.Float64(r.Total.Income),
			TotalCost:     types.Float64(r.Total.TotalCost),
			Margin:        types.Float64(r.Total.Margin),
			MarginPercent: types.Float64(r.Total.MarginPercent),
		},
	}

	for i, rec := range r.ByField {
		resp.ByField[i] = ProfitabilityRecordResponse{
			FieldID:   rec.FieldID,
			FieldName: rec.FieldName,
			CropName:  rec.CropName,
			Area:      rec.Area,
			Income:    types.Float64(rec.Income),
			Costs: CostsResponse{
				Labor:  types.Float64(rec.Costs.Labor),
				Inputs: types.Float64(rec.Costs.Inputs),
				Other:  types.Float64(rec.Costs.Other),
				Total:  types.Float64(rec.Costs.Total),
			},
			Margin:        types.Float64(rec.Margin),
			MarginPercent: types.Float64(rec.MarginPercent),
		}
	}
	return resp
}
