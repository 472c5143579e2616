package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Submission("customer")
	m.Submission("customer")
	m.Submission("employee")
	m.ChatReply(OutcomeEscalated)
	m.TicketAnswered()
	m.Request("GET", 200)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("customer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("employee")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chatReplies.WithLabelValues(OutcomeEscalated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticketsAnswered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "200")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `iffashion_submissions_total{kind="customer"} 2`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Submission("customer")
		m.ChatReply(OutcomeAnswered)
		m.TicketAnswered()
		m.Request("POST", 500)
	})
}
