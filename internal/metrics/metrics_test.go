package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareCountsMatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Middleware())
	router.GET("/games/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", Handler())

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues(http.MethodGet, "/games/:id", "200"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/games/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	after := testutil.ToFloat64(HTTPRequests.WithLabelValues(http.MethodGet, "/games/:id", "200"))
	assert.Equal(t, before+1, after)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gamestore_http_requests_total")
}
