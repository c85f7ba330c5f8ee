package handlers

import (
	"log/slog"
	"net/http"

	"task-signup/backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Options control how non-error outcomes map to status codes.
type Options struct {
	// StrictStatusCodes answers duplicates with 409 and unknown users with
	// 404 instead of 200.
	StrictStatusCodes bool
	Logger            *slog.Logger
}

type outcomes struct {
	conflict int
	notFound int
	logger   *slog.Logger
}

func newOutcomes(opts Options) outcomes {
	o := outcomes{conflict: http.StatusOK, notFound: http.StatusOK, logger: opts.Logger}
	if opts.StrictStatusCodes {
		o.conflict = http.StatusConflict
		o.notFound = http.StatusNotFound
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

func (o outcomes) requestLogger(c *gin.Context) *slog.Logger {
	return o.logger.With(
		"request_id", c.GetString(middleware.RequestIDKey),
		"method", c.Request.Method,
		"path", c.FullPath(),
	)
}

func (o outcomes) storeFailure(c *gin.Context, err error, message string) {
	o.requestLogger(c).Error(message, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
