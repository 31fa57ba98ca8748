package monitoring

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	nuts "github.com/vaudience/go-nuts"
)

const namespace = "sbsbs"

// Service records hub events as prometheus metrics
type Service struct {
	registry   *prometheus.Registry
	events     *prometheus.CounterVec
	detections *prometheus.CounterVec
	uploads    *prometheus.CounterVec
	stored     prometheus.Gauge
}

// NewService creates a monitoring service with its own registry
func NewService() *Service {
	s := &Service{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Service events by name.",
		}, []string{"event"}),
		detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sms_received_total",
			Help:      "Inbound station messages by outcome.",
		}, []string{"outcome"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_uploads_total",
			Help:      "Drive report uploads by result.",
		}, []string{"result"}),
		stored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "detections_stored",
			Help:      "Detections currently held in storage.",
		}),
	}
	s.registry.MustRegister(
		s.events,
		s.detections,
		s.uploads,
		s.stored,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return s
}

// RecordEvent records a monitored event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	s.events.WithLabelValues(eventName).Inc()
	nuts.L.Debugf("[Monitoring] Event %s recorded with labels: %s", eventName, formatLabels(labels))
}

// RecordMessage counts an inbound message by outcome (stored, rejected, duplicate, incomplete)
func (s *Service) RecordMessage(outcome string) {
	s.detections.WithLabelValues(outcome).Inc()
}

// RecordUpload counts a report upload attempt
func (s *Service) RecordUpload(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	s.uploads.WithLabelValues(result).Inc()
}

// SetStored publishes the number of stored detections
func (s *Service) SetStored(n int) {
	s.stored.Set(float64(n))
}

// Handler exposes the registry in the prometheus text format
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

func formatLabels(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + labels[k]
	}
	return strings.Join(parts, ",")
}
