package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campos/internal/core/apperror"
	appctx "campos/internal/core/context"
)

type stubValidator struct {
	user *appctx.UserContext
	err  error
}

func (s stubValidator) ValidateToken(string) (*appctx.UserContext, error) {
	return s.user, s.err
}

func newEngine(v JWTValidator, perm string, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Trace(), ErrorHandler(), Recovery())
	r.GET("/x", Auth(v), RequirePermission(perm), handler)
	return r
}

func do(t *testing.T, r http.Handler, header string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func okHandler(c *gin.Context) {
	companyID, _ := appctx.GetCompanyID(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"company_id": companyID})
}

func TestAuth(t *testing.T) {
	reader := &appctx.UserContext{UserID: "u", CompanyID: 9, Permissions: []string{"report:read"}}

	tests := []struct {
		name       string
		validator  stubValidator
		header     string
		wantStatus int
		wantCode   string
	}{
		{"missing header", stubValidator{user: reader}, "", http.StatusUnauthorized, apperror.CodeUnauthorized},
		{"not bearer", stubValidator{user: reader}, "Basic abc", http.StatusUnauthorized, apperror.CodeUnauthorized},
		{"invalid token", stubValidator{err: errors.New("bad")}, "Bearer x", http.StatusUnauthorized, apperror.CodeUnauthorized},
		{"token without company", stubValidator{user: &appctx.UserContext{UserID: "u"}}, "Bearer x", http.StatusUnauthorized, apperror.CodeUnauthorized},
		{"missing permission", stubValidator{user: &appctx.UserContext{UserID: "u", CompanyID: 9}}, "Bearer x", http.StatusForbidden, apperror.CodeForbidden},
		{"admin bypass", stubValidator{user: &appctx.UserContext{UserID: "a", CompanyID: 9, IsAdmin: true}}, "bearer x", http.StatusOK, ""},
		{"granted", stubValidator{user: reader}, "Bearer x", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, newEngine(tt.validator, "report:read", okHandler), tt.header)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["code"])
			} else {
				assert.Equal(t, float64(9), body["company_id"])
			}
		})
	}
}

func TestErrorHandler_HidesInternalCauses(t *testing.T) {
	v := stubValidator{user: &appctx.UserContext{UserID: "a", CompanyID: 1, IsAdmin: true}}
	r := newEngine(v, "p", func(c *gin.Context) {
		_ = c.Error(apperror.NewDatabase(errors.New("password authentication failed for user campos")))
		c.Abort()
	})

	w, body := do(t, r, "Bearer x")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeDatabase, body["code"])
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestErrorHandler_PlainErrorBecomesInternal(t *testing.T) {
	v := stubValidator{user: &appctx.UserContext{UserID: "a", CompanyID: 1, IsAdmin: true}}
	r := newEngine(v, "p", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.Abort()
	})

	w, body := do(t, r, "Bearer x")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, body["code"])
}

func TestRecovery(t *testing.T) {
	v := stubValidator{user: &appctx.UserContext{UserID: "a", CompanyID: 1, IsAdmin: true}}
	r := newEngine(v, "p", func(c *gin.Context) { panic("nil map") })

	w, body := do(t, r, "Bearer x")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, body["code"])
}

func TestTrace_EchoesIncomingRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Trace())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, appctx.GetRequestID(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(HeaderTraceID))
}
