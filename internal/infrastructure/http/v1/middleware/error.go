package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campos/internal/core/apperror"
	"campos/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		ctx := c.Request.Context()

		appErr, ok := apperror.AsAppError(err)
		if !ok {
			logger.Error(ctx, "unhandled error", "error", err)
			appErr = apperror.NewInternal(err)
		} else if appErr.Err != nil {
			logger.Error(ctx, "request error",
				"code", appErr.Code,
				"cause", appErr.Err,
			)
		}

		details := appErr.Details
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			details = map[string]any{"request_id": c.GetString("request_id")}
		}

		c.JSON(appErr.HTTPStatus, gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
			"details": details,
		})
	}
}
