package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/invoices/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/invoices/:id", "200"))

	for _, id := range []string{"1", "2", "3"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/invoices/"+id, nil))
	}

	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/invoices/:id", "200"))
	assert.Equal(t, 3.0, after-before)
}

func TestMiddleware_Unmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "unmatched", "404"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "unmatched", "404"))-before)
}

func TestCacheResult(t *testing.T) {
	hits := testutil.ToFloat64(CacheLookups.WithLabelValues("clients", "hit"))
	misses := testutil.ToFloat64(CacheLookups.WithLabelValues("clients", "miss"))

	CacheResult("clients", true)
	CacheResult("clients", false)
	CacheResult("clients", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(CacheLookups.WithLabelValues("clients", "hit"))-hits)
	assert.Equal(t, 2.0, testutil.ToFloat64(CacheLookups.WithLabelValues("clients", "miss"))-misses)
}

func TestHandler_Exposition(t *testing.T) {
	InvoicesCreated.Inc()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "invoices_created_total"))
}
