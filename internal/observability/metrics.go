package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "congress_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard service.
type Metrics struct {
	GeoLoads       *prometheus.CounterVec // labels: outcome={success,error}
	GeoDataLoaded  prometheus.Gauge
	ActiveSessions prometheus.Gauge

	// Reference data cache.
	CacheLookups *prometheus.CounterVec // labels: resource, result={hit,miss,stale,error,invalidated}

	// Upstream congress API.
	UpstreamRequests *prometheus.CounterVec   // labels: resource, outcome={success,error,pending}
	UpstreamDuration *prometheus.HistogramVec // labels: resource

	// View state machine.
	Transitions              *prometheus.CounterVec // labels: kind={select_state,select_district,reset,back_to_state}
	LookupMisses             *prometheus.CounterVec // labels: kind={click,point,state,district}
	InvalidGeometries        prometheus.Counter
	DistrictNumberMismatches prometheus.Counter
	DistrictNumberFallbacks  prometheus.Counter
	OrphanDistricts          prometheus.Counter

	// View event publishing.
	EventsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.GeoLoads,
		m.GeoDataLoaded,
		m.ActiveSessions,
		m.CacheLookups,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.Transitions,
		m.LookupMisses,
		m.InvalidGeometries,
		m.DistrictNumberMismatches,
		m.DistrictNumberFallbacks,
		m.OrphanDistricts,
		m.EventsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		GeoLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geo_loads_total",
			Help:      "Geographic reference data loads by outcome.",
		}, []string{"outcome"}),
		GeoDataLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geo_data_loaded",
			Help:      "1 once states and districts are loaded, 0 otherwise.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of dashboard sessions holding a view state.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Reference data cache lookups by resource and result.",
		}, []string{"resource", "result"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Congress API requests by resource and outcome.",
		}, []string{"resource", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Congress API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"resource"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_transitions_total",
			Help:      "Applied view state transitions by kind.",
		}, []string{"kind"}),
		LookupMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_misses_total",
			Help:      "Selections that matched no known feature.",
		}, []string{"kind"}),
		InvalidGeometries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_geometries_total",
			Help:      "Camera fits that fell back to a zeroed bounding box.",
		}),
		DistrictNumberMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "district_number_mismatches_total",
			Help:      "Districts whose DISTRICT property disagrees with the OFFICE_ID suffix.",
		}),
		DistrictNumberFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "district_number_fallbacks_total",
			Help:      "Districts whose number was taken from the OFFICE_ID suffix.",
		}),
		OrphanDistricts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphan_districts_total",
			Help:      "Loaded districts whose OFFICE_ID prefix names no loaded state.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_events_published_total",
			Help:      "View events written to Kafka by outcome.",
		}, []string{"outcome"}),
	}
}
