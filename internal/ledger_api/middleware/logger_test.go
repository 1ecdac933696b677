package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{name: "SuccessLogsInfo", status: http.StatusOK, wantLevel: `"level":"INFO"`},
		{name: "ClientErrorLogsWarn", status: http.StatusNotFound, wantLevel: `"level":"WARN"`},
		{name: "ServerErrorLogsError", status: http.StatusInternalServerError, wantLevel: `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuffer bytes.Buffer
			testLogger := slog.New(slog.NewJSONHandler(&logBuffer, &slog.HandlerOptions{Level: slog.LevelDebug}))

			router := gin.New()
			router.Use(CorrelationID())
			router.Use(Logger(testLogger))
			router.GET("/api/v1/receivables/:id", func(c *gin.Context) {
				c.Status(tt.status)
			})

			req, _ := http.NewRequest(http.MethodGet, "/api/v1/receivables/42?status=pending", nil)
			req.Header.Set("User-Agent", "test-agent")
			req.Header.Set(CorrelationIDHeader, "corr-1")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			logOutput := logBuffer.String()
			assert.Contains(t, logOutput, tt.wantLevel)
			assert.Contains(t, logOutput, `"msg":"HTTP request"`)
			assert.Contains(t, logOutput, `"method":"GET"`)
			assert.Contains(t, logOutput, `"path":"/api/v1/receivables/42?status=pending"`)
			assert.Contains(t, logOutput, `"route":"/api/v1/receivables/:id"`)
			assert.Contains(t, logOutput, `"user_agent":"test-agent"`)
			assert.Contains(t, logOutput, `"correlation_id":"corr-1"`)
		})
	}
}
