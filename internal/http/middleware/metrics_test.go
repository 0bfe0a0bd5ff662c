package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RouteLabelsAndInflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/matches/:id", func(c *gin.Context) { c.String(http.StatusOK, "match") })
	r.DELETE("/matches/:id/availability/:slotId", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	ok := httpRequests.WithLabelValues("GET", "/matches/:id", "200")
	gone := httpRequests.WithLabelValues("DELETE", "/matches/:id/availability/:slotId", "204")
	miss := httpRequests.WithLabelValues("GET", unmatchedRoute, "404")
	baseOK, baseGone, baseMiss := testutil.ToFloat64(ok), testutil.ToFloat64(gone), testutil.ToFloat64(miss)

	for _, p := range []string{"/matches/1", "/matches/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/matches/1/availability/4", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/wp-admin/setup.php", nil))

	assert.Equal(t, baseOK+2, testutil.ToFloat64(ok))
	assert.Equal(t, baseGone+1, testutil.ToFloat64(gone))
	assert.Equal(t, baseMiss+1, testutil.ToFloat64(miss))
	assert.Zero(t, testutil.ToFloat64(httpInflight))
}
