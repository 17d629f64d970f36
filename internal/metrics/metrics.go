// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crm_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	InvoicesRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_invoice_pdf_rendered_total",
		Help: "Invoice PDFs rendered, by result (ok, approximated, failed).",
	}, []string{"result"})

	InvoiceEmails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_invoice_emails_total",
		Help: "Invoice emails attempted, by result.",
	}, []string{"result"})

	ViewCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_view_cache_lookups_total",
		Help: "View cache lookups by result (hit, miss).",
	}, []string{"result"})

	Revalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_revalidations_total",
		Help: "Revalidated view paths.",
	}, []string{"path"})

	RealtimeClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crm_realtime_clients",
		Help: "Connected websocket subscribers.",
	})
)
