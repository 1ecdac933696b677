package ledger_api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flowi-ledger/internal/config"
	"github.com/flowi-ledger/internal/ledger_api/handler"
	"github.com/flowi-ledger/internal/ledger_api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testConfig() *config.Config {
	return &config.Config{
		Application: config.ApplicationConfig{Env: "test"},
		Server: config.ServerConfig{
			Port:            8080,
			ShutdownTimeout: time.Second,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

func TestServer_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	down := handler.HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("refused") }}
	srv := NewServer(logger, testConfig(), Services{})
	degraded := NewServer(logger, testConfig(), Services{}, down)

	tests := []struct {
		name       string
		server     *Server
		method     string
		path       string
		headers    map[string]string
		wantStatus int
	}{
		{name: "HealthOK", server: srv, method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "HealthDegraded", server: degraded, method: http.MethodGet, path: "/health", wantStatus: http.StatusServiceUnavailable},
		{name: "UnknownRoute", server: srv, method: http.MethodGet, path: "/api/v1/ledger", wantStatus: http.StatusNotFound},
		{name: "InvalidReceivableID", server: srv, method: http.MethodGet, path: "/api/v1/receivables/nope", wantStatus: http.StatusBadRequest},
		{name: "InvalidPayableID", server: srv, method: http.MethodPost, path: "/api/v1/payables/nope/pay", wantStatus: http.StatusBadRequest},
		{
			name:   "CORSPreflight",
			server: srv,
			method: http.MethodOptions,
			path:   "/api/v1/exchange-rate",
			headers: map[string]string{
				"Origin":                        "http://localhost:5173",
				"Access-Control-Request-Method": http.MethodPut,
			},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			tt.server.Handler().ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.method != http.MethodOptions {
				assert.NotEmpty(t, rr.Header().Get(middleware.CorrelationIDHeader))
			}
		})
	}
}

func TestServer_StopBeforeStart(t *testing.T) {
	srv := NewServer(slog.New(slog.NewJSONHandler(io.Discard, nil)), testConfig(), Services{})
	assert.NoError(t, srv.Stop(context.Background()))
}
