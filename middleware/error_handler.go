package middleware

import (
	"lifeline/utils"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorHandler recovers panics and answers errors attached with c.Error
// that no handler has written yet.
type ErrorHandler struct {
	environment string
	logger      *logrus.Logger
}

func NewErrorHandler(environment string, logger *logrus.Logger) *ErrorHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ErrorHandler{
		environment: environment,
		logger:      logger,
	}
}

func (eh *ErrorHandler) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				eh.handlePanic(c, err)
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			lastError := c.Errors.Last()
			eh.logger.WithFields(logrus.Fields{
				"request_id": c.GetString(RequestIDKey),
				"path":       c.Request.URL.Path,
				"error":      lastError.Error(),
			}).Error("Unhandled request error")
			utils.HandleServiceError(c, lastError.Err)
		}
	}
}

func (eh *ErrorHandler) handlePanic(c *gin.Context, err interface{}) {
	fields := logrus.Fields{
		"panic":      err,
		"request_id": c.GetString(RequestIDKey),
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
	}
	if eh.environment == "development" {
		fields["stack"] = string(debug.Stack())
	}
	eh.logger.WithFields(fields).Error("Panic recovered")

	if !c.Writer.Written() {
		utils.InternalServerErrorResponse(c, "Internal server error")
	}
	c.Abort()
}
