package handlers

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"campos/internal/core/apperror"
	"campos/internal/domain/profitability"
	"campos/internal/infrastructure/export"
	"campos/internal/infrastructure/http/v1/dto"
)

// ProfitabilityGenerator produces profitability reports.
type ProfitabilityGenerator interface {
	GenerateReport(ctx context.Context, q profitability.Query) (*profitability.Report, error)
}

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service ProfitabilityGenerator
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service ProfitabilityGenerator) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetProfitability handles GET /reports/profitability
func (h *ReportsHandler) GetProfitability(c *gin.Context) {
	report, ok := h.generate(c)
	if !ok {
		return
	}
	h.OK(c, dto.FromProfitabilityReport(report))
}

// ExportProfitability handles GET /reports/profitability/export
func (h *ReportsHandler) ExportProfitability(c *gin.Context) {
	report, ok := h.generate(c)
	if !ok {
		return
	}

	// Render fully before writing so a failure still yields a JSON error.
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, report); err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(report)+`"`)
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}

func (h *ReportsHandler) generate(c *gin.Context) (*profitability.Report, bool) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return nil, false
	}

	var req dto.ProfitabilityReportRequest
	if !h.BindQuery(c, &req) {
		return nil, false
	}

	q, err := req.ToQuery(companyID)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}

	report, err := h.service.GenerateReport(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return report, true
}
