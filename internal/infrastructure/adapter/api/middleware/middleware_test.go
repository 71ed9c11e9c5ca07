package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domainerr "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(middleware.RequestID(logger.NewNoopLogger()))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "%s|%s", middleware.GetRequestID(c), logger.RequestIDFromContext(c.Request.Context()))
	})

	t.Run("generates an ID", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/ping", nil))

		id := w.Header().Get(middleware.RequestIDHeader)
		require.Len(t, id, 36)
		assert.Equal(t, id+"|"+id, w.Body.String())
	})

	t.Run("reuses the client ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(middleware.RequestIDHeader, "client-42")

		w := serve(router, req)

		assert.Equal(t, "client-42", w.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "client-42|client-42", w.Body.String())
	})

	t.Run("replaces an oversized ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(middleware.RequestIDHeader, strings.Repeat("x", 200))

		w := serve(router, req)

		assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 36)
	})
}

func TestGetLoggerFromContext_Fallback(t *testing.T) {
	fallback := logger.NewNoopLogger()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Same(t, fallback, middleware.GetLoggerFromContext(c, fallback))
}

func TestErrorHandler_RecoversPanic(t *testing.T) {
	router := gin.New()
	router.Use(middleware.ErrorHandler(logger.NewNoopLogger()))
	router.GET("/boom", func(*gin.Context) { panic("boom") })

	w := serve(router, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domainerr.CodeInternalServer, resp.Code)
	assert.Equal(t, "Internal server error", resp.Error)
}

func TestRateLimit(t *testing.T) {
	limiterInstance, err := middleware.NewRateLimiter("2-M")
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware.RateLimit(limiterInstance, logger.NewNoopLogger()))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := serve(router, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domainerr.CodeRateLimited, resp.Code)
}

func TestNewRateLimiter_InvalidRate(t *testing.T) {
	_, err := middleware.NewRateLimiter("lots")
	assert.Error(t, err)
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    string
	}{
		{"wildcard", []string{"*"}, "http://anywhere.test", "*"},
		{"listed origin", []string{"http://app.test"}, "http://app.test", "http://app.test"},
		{"unlisted origin", []string{"http://app.test"}, "http://evil.test", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(middleware.CORS(tt.origins))
			router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Origin", tt.origin)
			w := serve(router, req)

			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
