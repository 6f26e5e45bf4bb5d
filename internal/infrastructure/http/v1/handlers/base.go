package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campos/internal/core/apperror"
	appctx "campos/internal/core/context"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers err on the gin context and aborts the request.
// The JSON body is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// CompanyID returns the authenticated caller's company.
// It aborts with 401 and returns false when the request carries none.
func (h *BaseHandler) CompanyID(c *gin.Context) (int64, bool) {
	companyID, ok := appctx.GetCompanyID(c.Request.Context())
	if !ok {
		h.Error(c, apperror.NewUnauthorized("company scope is required"))
		return 0, false
	}
	return companyID, true
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
