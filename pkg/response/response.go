package response

import (
	"net/http"

	"anoa.com/confessionwall/internal/logger"
	"anoa.com/confessionwall/pkg/apperror"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResponseError standardized error response. Internal failure detail is
// logged, never echoed verbatim to the caller.
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		logger.Log.Error("internal error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(code, gin.H{"error": apperror.ErrInternal.Error()})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
