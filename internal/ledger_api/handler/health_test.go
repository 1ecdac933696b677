package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     []HealthCheck
		wantStatus int
		wantDeps   map[string]interface{}
	}{
		{
			name:       "AllConnected",
			checks:     []HealthCheck{{Name: "postgres", Check: ok}, {Name: "mongodb", Check: ok}},
			wantStatus: http.StatusOK,
			wantDeps:   map[string]interface{}{"postgres": "connected", "mongodb": "connected"},
		},
		{
			name:       "OneDown",
			checks:     []HealthCheck{{Name: "postgres", Check: ok}, {Name: "redis", Check: down}},
			wantStatus: http.StatusServiceUnavailable,
			wantDeps:   map[string]interface{}{"postgres": "connected", "redis": "error"},
		},
		{
			name:       "NoChecks",
			wantStatus: http.StatusOK,
			wantDeps:   map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.GET("/health", Health(tt.checks...))

			req, _ := http.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus == http.StatusOK, body["ok"])
			assert.Equal(t, tt.wantDeps, body["dependencies"])
			assert.NotContains(t, rr.Body.String(), "connection refused")
		})
	}
}
