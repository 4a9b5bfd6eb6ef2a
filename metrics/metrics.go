// Package metrics wraps the Prometheus counters and histograms the
// rest of httpcored increments: route cache hit/miss, route lookup
// latency, decorator creation errors and short-circuits, ingress
// errors, and per-request duration.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "httpcored"

// Registry holds every metric httpcored exposes, each registered
// against its own prometheus.Registry so multiple Registry instances
// (e.g. in tests) never collide on the global default registry.
type Registry struct {
	registry *prometheus.Registry

	routeCacheHits       prometheus.Counter
	routeCacheMisses     prometheus.Counter
	routeLookupDuration  prometheus.Histogram
	decoratorCreateError *prometheus.CounterVec
	decoratorShortCircuit *prometheus.CounterVec
	ingressErrors        *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
}

// New builds a Registry with all metrics registered.
func New() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.routeCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "route_cache_hits_total", Help: "Route match cache hits.",
	})
	r.routeCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "route_cache_misses_total", Help: "Route match cache misses.",
	})
	r.routeLookupDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Name: "route_lookup_duration_seconds", Help: "Time to find a matching route.",
		Buckets: prometheus.DefBuckets,
	})
	r.decoratorCreateError = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "decorator_create_error_total", Help: "Decorator construction failures by decorator name.",
	}, []string{"decorator"})
	r.decoratorShortCircuit = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "decorator_short_circuit_total", Help: "Requests short-circuited by a decorator, by decorator name.",
	}, []string{"decorator"})
	r.ingressErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "ingress_error_total", Help: "HTTP/2 ingress errors by kind.",
	}, []string{"kind"})
	r.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "request_duration_seconds", Help: "End-to-end request duration by status class.",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	r.registry.MustRegister(
		r.routeCacheHits,
		r.routeCacheMisses,
		r.routeLookupDuration,
		r.decoratorCreateError,
		r.decoratorShortCircuit,
		r.ingressErrors,
		r.requestDuration,
	)

	return r
}

func (r *Registry) IncRouteCacheHit()  { r.routeCacheHits.Inc() }
func (r *Registry) IncRouteCacheMiss() { r.routeCacheMisses.Inc() }

func (r *Registry) MeasureRouteLookup(start time.Time) {
	r.routeLookupDuration.Observe(time.Since(start).Seconds())
}

func (r *Registry) IncDecoratorCreateError(name string) {
	r.decoratorCreateError.WithLabelValues(name).Inc()
}

func (r *Registry) IncDecoratorShortCircuit(name string) {
	r.decoratorShortCircuit.WithLabelValues(name).Inc()
}

func (r *Registry) IncIngressError(kind string) {
	r.ingressErrors.WithLabelValues(kind).Inc()
}

func (r *Registry) MeasureRequest(statusClass string, start time.Time) {
	r.requestDuration.WithLabelValues(statusClass).Observe(time.Since(start).Seconds())
}

// Handler exposes the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
