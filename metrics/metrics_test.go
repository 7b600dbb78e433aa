package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddleware_LabelsByRoute(t *testing.T) {
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/salaries/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/salaries/1", "/api/salaries/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/salaries/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
}

func TestDomainCounters(t *testing.T) {
	m := New()

	m.SalaryOp("create", nil)
	m.SalaryOp("create", errors.New("boom"))
	m.AuthAttempt("login", nil)
	m.EventPublished("created", nil)
	m.FeedClientsAdd(2)
	m.FeedClientsAdd(-1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.salaryOps.WithLabelValues("create", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.salaryOps.WithLabelValues("create", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authAttempts.WithLabelValues("login", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsSent.WithLabelValues("created", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.feedClients))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SalaryOp("create", nil)
		m.AuthAttempt("login", nil)
		m.EventPublished("created", nil)
		m.FeedClientsAdd(1)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.AuthAttempt("signup", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `salary_auth_attempts_total{op="signup",outcome="success"} 1`))
	assert.Contains(t, body, "go_goroutines")
}
