package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New("classroom")

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/quizzes/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/quizzes/1", "/quizzes/2", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/quizzes/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "classroom_http_requests_total")
}

func TestNew_IndependentRegistries(t *testing.T) {
	a := New("classroom")
	b := New("classroom")

	a.ScheduleConflicts.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.ScheduleConflicts))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ScheduleConflicts))
}

func TestRecorders_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSubmission("submitted")
		m.RecordScheduleConflict()
		m.RecordPush("sent")
	})

	live := New("classroom")
	live.RecordSubmission("pending_grading")
	assert.Equal(t, 1.0, testutil.ToFloat64(live.Submissions.WithLabelValues("pending_grading")))
}
