package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/amoylab/huddle/internal/common/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the chat counters
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
)

type Metrics struct {
	registry   *prometheus.Registry
	httpReqCnt *prometheus.CounterVec
	httpDur    *prometheus.HistogramVec
	httpInfl   *prometheus.GaugeVec

	sessions      prometheus.Gauge
	online        prometheus.Gauge
	registrations *prometheus.CounterVec
	messages      *prometheus.CounterVec
	departures    *prometheus.CounterVec
	broadcastDur  prometheus.Histogram
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry:   r,
		httpReqCnt: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"}),
		httpDur:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: buckets}, []string{"method", "route", "status"}),
		httpInfl:   prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"}),

		sessions:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: ns, Name: "sessions_open", Help: "Connections currently attached to the dispatcher."}),
		online:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: ns, Name: "users_online", Help: "Names in the presence registry after the last change."}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "registrations_total"}, []string{"result"}),
		messages:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "messages_total"}, []string{"result"}),
		departures:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "departures_total"}, []string{"reason"}),
		broadcastDur:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: ns, Name: "broadcast_duration_seconds", Buckets: buckets}),
	}
	r.MustRegister(m.httpReqCnt, m.httpDur, m.httpInfl)
	r.MustRegister(m.sessions, m.online, m.registrations, m.messages, m.departures, m.broadcastDur)
	return m
}

func (m *Metrics) SessionOpened() { m.sessions.Inc() }

func (m *Metrics) SessionClosed() { m.sessions.Dec() }

// SetOnline records the size of the presence snapshot just broadcast
func (m *Metrics) SetOnline(n int) { m.online.Set(float64(n)) }

func (m *Metrics) Registration(accepted bool) {
	m.registrations.WithLabelValues(result(accepted)).Inc()
}

func (m *Metrics) Message(accepted bool) {
	m.messages.WithLabelValues(result(accepted)).Inc()
}

// Departure counts a registered user leaving, labelled voluntary or idle_timeout
func (m *Metrics) Departure(reason string) {
	m.departures.WithLabelValues(reason).Inc()
}

func (m *Metrics) BroadcastDone(since time.Time) {
	m.broadcastDur.Observe(time.Since(since).Seconds())
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(accepted bool) string {
	if accepted {
		return ResultAccepted
	}
	return ResultRejected
}
