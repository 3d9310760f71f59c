// Package metrics collects service counters and exposes them for Prometheus
// to scrape.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	surveysCreated  prometheus.Counter
	responses       prometheus.Counter
	registrations   prometheus.Counter
	logins          *prometheus.CounterVec
}

// NewCollector creates the collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waterlily_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "waterlily_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		surveysCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waterlily_surveys_created_total",
			Help: "Surveys created.",
		}),
		responses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waterlily_responses_submitted_total",
			Help: "Survey responses recorded.",
		}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waterlily_registrations_total",
			Help: "Users registered.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waterlily_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.surveysCreated,
		c.responses,
		c.registrations,
		c.logins,
	)

	return c
}

func (c *Collector) RecordRequest(method, route string, status int, d time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (c *Collector) RecordSurveyCreated() {
	c.surveysCreated.Inc()
}

func (c *Collector) RecordResponseSubmitted() {
	c.responses.Inc()
}

func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordLogin counts a login attempt; outcome is "success" or "failure".
func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

// Handler serves the gathered metrics in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
