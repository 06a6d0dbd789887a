package dispatch

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"axd/internal/apperrors"
)

// envelope is the uniform response shape: success is always present, error
// accompanies failures, handler-specific fields are merged in via gin.H.
func respondOK(c *gin.Context, status int, fields gin.H) {
	out := gin.H{"success": true}
	for k, v := range fields {
		out[k] = v
	}
	c.JSON(status, out)
}

// respondErr renders an *apperrors.Error using its documented HTTP status
// and a success:false envelope carrying a plain "error" string.
func respondErr(c *gin.Context, err *apperrors.Error) {
	c.JSON(err.Status, gin.H{"success": false, "error": err.Message})
}

// respondValidation is a convenience for the common 400 case.
func respondValidation(c *gin.Context, format string, args ...any) {
	respondErr(c, apperrors.Validationf(format, args...))
}

// internalError renders the documented generic 500 body for truly
// unexpected failures (the recovery middleware writes the same body inline).
func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "code": 500})
}
