package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/response"
)

// Recovery turns panics into the generic internal error envelope.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		err := appErrors.Wrap(fmt.Errorf("panic: %v", recovered), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
		response.Abort(c, err)
	})
}

// NotFound answers requests that match no route.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Error(c, appErrors.New(appErrors.ErrNotFound.Code, http.StatusNotFound,
			fmt.Sprintf("Can't find %s on this server", c.Request.URL.RequestURI())))
	}
}
