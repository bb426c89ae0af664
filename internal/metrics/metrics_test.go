package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGinMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(requestTotal.WithLabelValues(http.MethodGet, "/ping", "204"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(requestTotal.WithLabelValues(http.MethodGet, "/ping", "204")))
}

func TestIngestionStarted(t *testing.T) {
	before := testutil.ToFloat64(uploadsTotal.WithLabelValues("parsed"))

	done := IngestionStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(ingestionInProgress))
	done("parsed")

	assert.Equal(t, 0.0, testutil.ToFloat64(ingestionInProgress))
	assert.Equal(t, before+1, testutil.ToFloat64(uploadsTotal.WithLabelValues("parsed")))
}

func TestSearchRequest(t *testing.T) {
	okBefore := testutil.ToFloat64(searchRequests.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(searchRequests.WithLabelValues("error"))

	SearchRequest(nil)
	SearchRequest(errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(searchRequests.WithLabelValues("ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(searchRequests.WithLabelValues("error")))
}
