package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/projects/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/api/projects/a", "/api/projects/b", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	m.ObserveUpload(2048)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := w.Body.String()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, `devdoc_http_requests_total{method="GET",route="/api/projects/:id",status="404"} 2`)
	assert.Contains(t, body, `devdoc_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, body, `devdoc_http_request_duration_seconds_count{method="GET",route="/api/projects/:id"} 2`)
	assert.Contains(t, body, "devdoc_uploaded_bytes_total 2048")
	assert.Contains(t, body, "go_goroutines")
}
