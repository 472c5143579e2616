// Package metrics exposes Prometheus counters for the site. A nil *Metrics
// is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Chat outcomes.
const (
	OutcomeAnswered  = "answered"
	OutcomeEscalated = "escalated"
)

type Metrics struct {
	registry        *prometheus.Registry
	submissions     *prometheus.CounterVec
	chatReplies     *prometheus.CounterVec
	ticketsAnswered prometheus.Counter
	httpRequests    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "iffashion_submissions_total",
			Help: "Customer submissions and employee applications received.",
		}, []string{"kind"}),
		chatReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "iffashion_chat_replies_total",
			Help: "Chat messages by outcome.",
		}, []string{"outcome"}),
		ticketsAnswered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "iffashion_tickets_answered_total",
			Help: "Chat tickets answered by the admin.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "iffashion_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
	}
	m.registry.MustRegister(
		m.submissions,
		m.chatReplies,
		m.ticketsAnswered,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Submission(kind string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(kind).Inc()
}

func (m *Metrics) ChatReply(outcome string) {
	if m == nil {
		return
	}
	m.chatReplies.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TicketAnswered() {
	if m == nil {
		return
	}
	m.ticketsAnswered.Inc()
}

func (m *Metrics) Request(method string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
