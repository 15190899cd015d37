package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/response"
)

type windowCounter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

type rejectionRecorder interface {
	RecordRateLimitRejection()
}

// RateLimitOptions configures the fixed-window limiter.
type RateLimitOptions struct {
	Requests   int
	Window     time.Duration
	Rejections rejectionRecorder
	Logger     *zap.Logger
}

// RateLimit caps mutating requests per client IP. Reads pass through, and the
// limiter fails open when the counter store is unreachable.
func RateLimit(counter windowCounter, opts RateLimitOptions) gin.HandlerFunc {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if counter == nil || opts.Requests <= 0 || !mutating(c.Request.Method) {
			c.Next()
			return
		}

		count, err := counter.Increment(c.Request.Context(), c.ClientIP(), opts.Window)
		if err != nil {
			logger.Warn("rate limit counter unavailable", zap.Error(err))
			c.Next()
			return
		}

		remaining := int64(opts.Requests) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(opts.Requests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(opts.Requests) {
			if opts.Rejections != nil {
				opts.Rejections.RecordRateLimitRejection()
			}
			c.Header("Retry-After", strconv.Itoa(int(opts.Window.Seconds())))
			response.Abort(c, appErrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
