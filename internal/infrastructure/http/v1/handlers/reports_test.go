package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"campos/internal/core/apperror"
	appctx "campos/internal/core/context"
	"campos/internal/core/types"
	"campos/internal/domain/profitability"
	"campos/internal/infrastructure/export"
	"campos/internal/infrastructure/http/v1/middleware"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateReport(ctx context.Context, q profitability.Query) (*profitability.Report, error) {
	args := m.Called(ctx, q)
	report, _ := args.Get(0).(*profitability.Report)
	return report, args.Error(1)
}

func sampleReport() *profitability.Report {
	area := 2.0
	r := profitability.BuildReport([]profitability.FieldMetrics{{
		Field: profitability.ResolvedField{
			Field:     profitability.Field{ID: 1, Name: "Field F", AreaHectares: &area},
			CropLabel: "Apple (Fuji)",
		},
		Metrics: profitability.Metrics{
			Income: types.MustMoney("2500"),
			Labor:  types.MustMoney("300"),
			Inputs: types.MustMoney("200"),
			Other:  types.MustMoney("50"),
		},
	}})
	r.Year = 2024
	return &r
}

// newTestRouter mounts the report routes behind a fake authenticated user of companyID.
func newTestRouter(gen ProfitabilityGenerator, companyID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		if companyID > 0 {
			user := &appctx.UserContext{UserID: "u", CompanyID: companyID}
			c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), user))
		}
		c.Next()
	})
	h := NewReportsHandler(NewBaseHandler(), gen)
	r.GET("/reports/profitability", h.GetProfitability)
	r.GET("/reports/profitability/export", h.ExportProfitability)
	return r
}

func get(r http.Handler, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestGetProfitability_OK(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("GenerateReport", mock.Anything, profitability.Query{CompanyID: 7, Year: 2024, FieldIDs: []int64{1, 2}}).
		Return(sampleReport(), nil).Once()

	w := get(newTestRouter(gen, 7), "/reports/profitability?year=2024&field_id=1&field_ids=2")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	rows := body["by_field"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "Apple (Fuji)", row["crop_name"])
	assert.Equal(t, 78.0, row["margin_percent"])
	assert.Equal(t, 550.0, row["costs"].(map[string]any)["total"])
	assert.Equal(t, 1950.0, body["total"].(map[string]any)["margin"])

	gen.AssertExpectations(t)
}

func TestGetProfitability_CompanyComesFromSession(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("GenerateReport", mock.Anything, mock.MatchedBy(func(q profitability.Query) bool {
		return q.CompanyID == 7
	})).Return(sampleReport(), nil).Once()

	w := get(newTestRouter(gen, 7), "/reports/profitability?year=2024&company_id=99")
	assert.Equal(t, http.StatusOK, w.Code)
	gen.AssertExpectations(t)
}

func TestGetProfitability_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		companyID  int64
		url        string
		wantStatus int
		wantCode   string
	}{
		{"no session", 0, "/reports/profitability?year=2024", http.StatusUnauthorized, apperror.CodeUnauthorized},
		{"missing year", 7, "/reports/profitability", http.StatusBadRequest, apperror.CodeValidation},
		{"non numeric year", 7, "/reports/profitability?year=abc", http.StatusBadRequest, apperror.CodeValidation},
		{"non numeric field", 7, "/reports/profitability?year=2024&field_id=x", http.StatusBadRequest, apperror.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(mockGenerator)
			w := get(newTestRouter(gen, tt.companyID), tt.url)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["code"])
			gen.AssertNotCalled(t, "GenerateReport", mock.Anything, mock.Anything)
		})
	}
}

func TestGetProfitability_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"foreign field", apperror.NewValidation("unknown field ids").WithDetail("unknown_field_ids", []int64{9}), http.StatusBadRequest},
		{"store down", apperror.NewDatabase(errors.New("dial tcp: refused")), http.StatusInternalServerError},
		{"store timeout", apperror.NewDatabase(context.DeadlineExceeded), http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(mockGenerator)
			gen.On("GenerateReport", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := get(newTestRouter(gen, 7), "/reports/profitability?year=2024&field_id=9")
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotContains(t, w.Body.String(), "by_field")
			assert.NotContains(t, w.Body.String(), "dial tcp")
		})
	}
}

func TestExportProfitability(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("GenerateReport", mock.Anything, profitability.Query{CompanyID: 7, Year: 2024}).
		Return(sampleReport(), nil)

	w := get(newTestRouter(gen, 7), "/reports/profitability/export?year=2024")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "profitability_2024.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	name, err := f.GetCellValue("Profitability", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Field F", name)
}
