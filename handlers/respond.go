package handlers

import (
	"net/http"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/pkg/logger"
	"github.com/gin-gonic/gin"
)

// fail replies {"success": false, "message": ...}. Errors that do not map to a
// client status are logged and hidden behind a generic message.
func fail(c *gin.Context, err error) {
	status := apperrors.Status(err)
	msg := err.Error()
	if !apperrors.Public(err) {
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		_ = c.Error(err)
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": msg})
}

// chain prepends the non-nil guards to h.
func chain(h gin.HandlerFunc, guards ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(guards)+1)
	for _, g := range guards {
		if g != nil {
			out = append(out, g)
		}
	}
	return append(out, h)
}
