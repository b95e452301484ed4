package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/annel0/mmo-collision/internal/auth"
	"github.com/annel0/mmo-collision/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestLoggerSetsTraceID(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(NewRequestLogger(logging.NewWriterLogger("api", &buf, logging.INFO)).Handler())
	r.GET("/ping", func(c *gin.Context) {
		id, ok := c.Get(TraceIDKey)
		assert.True(t, ok)
		assert.NotEmpty(t, id)
		c.Status(http.StatusOK)
	})

	w := perform(r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Trace-Id"))
	assert.Contains(t, buf.String(), "/ping 200")
}

func TestPrometheusMiddlewareCountsErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPrometheusMiddleware("debug_api", reg)
	r := gin.New()
	r.Use(pm.Handler())
	pm.RegisterMetricsEndpoint(r)
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	perform(r, http.MethodGet, "/fail", "")
	perform(r, http.MethodGet, "/nowhere", "")

	w := perform(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `debug_api_http_request_errors_total{method="GET",path="/fail",status="400"} 1`)
	assert.Contains(t, body, `path="unmatched"`, "неизвестные пути сворачиваются в одну метку")
}

func TestOperatorAuth(t *testing.T) {
	issuer, err := auth.NewTokenIssuer("", time.Hour)
	require.NoError(t, err)
	editor, err := issuer.Issue("alice", true)
	require.NoError(t, err)
	viewer, err := issuer.Issue("bob", false)
	require.NoError(t, err)

	r := gin.New()
	r.POST("/edit", OperatorAuth(issuer), RequireEdit(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodPost, "/edit", "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodPost, "/edit", editor).Code, "без префикса Bearer")
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodPost, "/edit", "Bearer garbage").Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodPost, "/edit", "Bearer "+viewer).Code)

	w := perform(r, http.MethodPost, "/edit", "Bearer "+editor)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, strings.Contains(w.Body.String(), "success"))
}

func TestRequireEditWithoutAuth(t *testing.T) {
	r := gin.New()
	r.POST("/edit", RequireEdit(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusInternalServerError, perform(r, http.MethodPost, "/edit", "").Code)
}
