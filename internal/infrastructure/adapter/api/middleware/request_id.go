package middleware

import (
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

type contextKey string

const (
	loggerKey    = contextKey("logger")
	requestIDKey = contextKey("request_id")
)

// maxRequestIDLength bounds client-supplied IDs before they reach the logs
const maxRequestIDLength = 64

// RequestID assigns every request an ID, reusing a sane client-supplied one,
// and stores a request-scoped logger in the gin context
func RequestID(baseLogger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		c.Header(RequestIDHeader, requestID)
		c.Set(string(requestIDKey), requestID)
		c.Set(string(loggerKey), baseLogger.With(map[string]any{
			"request_id": requestID,
		}))

		// the database logger reads the ID from the request context
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}

// GetRequestID returns the ID assigned by RequestID, or an empty string
func GetRequestID(c *gin.Context) string {
	return c.GetString(string(requestIDKey))
}

// GetLoggerFromContext retrieves the request-scoped logger, or fallback when RequestID did not run
func GetLoggerFromContext(c *gin.Context, fallback coreport.Logger) coreport.Logger {
	value, exists := c.Get(string(loggerKey))
	if !exists {
		return fallback
	}
	scoped, ok := value.(coreport.Logger)
	if !ok {
		return fallback
	}
	return scoped
}
