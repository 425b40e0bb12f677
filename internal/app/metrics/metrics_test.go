package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverCounters(t *testing.T) {
	m := New()
	m.Shortened(true)
	m.Shortened(false)
	m.Shortened(false)
	m.TokenCollision()
	m.RaceLost()
	m.RaceLost()
	m.AttemptsExhausted()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.shortened.WithLabelValues("created")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.shortened.WithLabelValues("existing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.collisions))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.racesLost))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exhausted))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/r/:token", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for _, tok := range []string{"aaaaaa", "bbbbbb"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/r/"+tok, nil))
		require.Equal(t, http.StatusNotFound, w.Code)
	}

	assert.Equal(t, 1, testutil.CollectAndCount(m.requests))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	res := w.Result()
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, strings.Contains(string(body), `shortener_http_request_duration_seconds_count{method="GET",route="/r/:token",status="404"} 2`))
}
