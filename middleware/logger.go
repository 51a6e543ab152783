package middleware

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Logger            *logrus.Logger
	EnableRequestBody bool
	MaxBodySize       int64
	SkipPaths         []string
	SkipUserAgents    []string
}

// LoggerMiddleware tags every request with an id and logs it once it
// completes, at a level picked from the status code.
func LoggerMiddleware(config LoggerConfig) gin.HandlerFunc {
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	if config.MaxBodySize == 0 {
		config.MaxBodySize = 4096
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		if shouldSkip(c.Request.URL.Path, c.GetHeader("User-Agent"), config) {
			c.Next()
			return
		}

		startTime := time.Now()

		var requestBody []byte
		if config.EnableRequestBody {
			requestBody = captureRequestBody(c, config.MaxBodySize)
		}

		c.Next()

		duration := time.Since(startTime)
		c.Header("X-Response-Time", fmt.Sprintf("%.0fms", math.Ceil(float64(duration.Nanoseconds())/1e6)))

		logRequest(config.Logger, c.Writer.Status(), duration, createLogFields(c, duration, requestID, requestBody))
	}
}

// DefaultLoggerMiddleware picks the logger settings for the environment.
// Request bodies are only logged outside production since SOS payloads carry
// locations and vitals.
func DefaultLoggerMiddleware(environment string) gin.HandlerFunc {
	return LoggerMiddleware(LoggerConfig{
		Logger:            logrus.StandardLogger(),
		EnableRequestBody: environment == "development",
		MaxBodySize:       4096,
		SkipPaths:         []string{"/health", "/favicon.ico"},
		SkipUserAgents:    []string{"kube-probe", "GoogleHC"},
	})
}

func captureRequestBody(c *gin.Context, maxSize int64) []byte {
	if c.Request.Body == nil {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSize))
	if err != nil {
		return nil
	}
	rest := c.Request.Body
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), rest))

	return body
}

func createLogFields(c *gin.Context, duration time.Duration, requestID string, requestBody []byte) logrus.Fields {
	fields := logrus.Fields{
		"request_id":    requestID,
		"method":        c.Request.Method,
		"path":          c.Request.URL.Path,
		"route":         c.FullPath(),
		"query":         c.Request.URL.RawQuery,
		"status":        c.Writer.Status(),
		"latency":       duration.String(),
		"latency_ms":    float64(duration.Nanoseconds()) / 1e6,
		"ip":            c.ClientIP(),
		"user_agent":    c.GetHeader("User-Agent"),
		"response_size": c.Writer.Size(),
	}

	if emergencyID := c.Param("emergencyId"); emergencyID != "" {
		fields["emergency_id"] = emergencyID
	}
	if operator := c.GetString(OperatorIDKey); operator != "" {
		fields["operator_id"] = operator
	}
	if len(requestBody) > 0 && strings.Contains(c.GetHeader("Content-Type"), "json") {
		fields["request_body"] = string(requestBody)
	}
	if len(c.Errors) > 0 {
		fields["errors"] = c.Errors.Errors()
	}

	return fields
}

func logRequest(logger *logrus.Logger, statusCode int, duration time.Duration, fields logrus.Fields) {
	message := fmt.Sprintf("%s %s %d %s", fields["method"], fields["path"], statusCode, duration)

	switch {
	case statusCode >= 500:
		logger.WithFields(fields).Error(message)
	case statusCode >= 400:
		logger.WithFields(fields).Warn(message)
	case duration > 5*time.Second:
		logger.WithFields(fields).Warn(message + " (slow request)")
	default:
		logger.WithFields(fields).Info(message)
	}
}

func shouldSkip(path, userAgent string, config LoggerConfig) bool {
	for _, skipPath := range config.SkipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	for _, skipUA := range config.SkipUserAgents {
		if strings.Contains(userAgent, skipUA) {
			return true
		}
	}
	return false
}
