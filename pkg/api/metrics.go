package api

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsRegistry holds this shard's Prometheus collectors, mirroring the
// teacher's pkg/metrics + GetStatistics() idiom but trimmed to the counters
// this engine actually has.
type metricsRegistry struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	nodesCreated prometheus.Counter
	nodesDeleted prometheus.Counter
	edgesCreated prometheus.Counter
	edgesRemoved prometheus.Counter
	bytesWritten prometheus.Counter
}

func newMetricsRegistry(shardName string) *metricsRegistry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	labels := prometheus.Labels{"shard": shardName}

	return &metricsRegistry{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "clusograph",
			Subsystem:   "shard",
			Name:        "requests_total",
			Help:        "Total RPC requests handled by this shard, by route and status.",
			ConstLabels: labels,
		}, []string{"route", "status"}),
		nodesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "clusograph", Subsystem: "shard", Name: "nodes_created_total",
			Help: "Total nodes created.", ConstLabels: labels,
		}),
		nodesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "clusograph", Subsystem: "shard", Name: "nodes_deleted_total",
			Help: "Total nodes deleted.", ConstLabels: labels,
		}),
		edgesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "clusograph", Subsystem: "shard", Name: "edges_created_total",
			Help: "Total edges created.", ConstLabels: labels,
		}),
		edgesRemoved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "clusograph", Subsystem: "shard", Name: "edges_removed_total",
			Help: "Total edges removed.", ConstLabels: labels,
		}),
		bytesWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "clusograph", Subsystem: "shard", Name: "bytes_appended_total",
			Help: "Total bytes appended to property records.", ConstLabels: labels,
		}),
	}
}

func (m *metricsRegistry) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metricsRegistry) observeRequest(route, status string) {
	m.requests.WithLabelValues(route, status).Inc()
}

// syncFromStatistics copies the engine's monotonic counters into the
// corresponding Prometheus counters. Prometheus counters can only go up, so
// this is safe to call repeatedly as long as the underlying statistics are
// themselves monotonic (they are: storage.Statistics never decreases).
func (m *metricsRegistry) syncFromStatistics(nodesCreated, nodesDeleted, edgesCreated, edgesRemoved, bytesAppended uint64, prev *snapshotted) {
	prev.mu.Lock()
	defer prev.mu.Unlock()

	m.nodesCreated.Add(float64(nodesCreated - prev.nodesCreated))
	m.nodesDeleted.Add(float64(nodesDeleted - prev.nodesDeleted))
	m.edgesCreated.Add(float64(edgesCreated - prev.edgesCreated))
	m.edgesRemoved.Add(float64(edgesRemoved - prev.edgesRemoved))
	m.bytesWritten.Add(float64(bytesAppended - prev.bytesAppended))

	prev.nodesCreated = nodesCreated
	prev.nodesDeleted = nodesDeleted
	prev.edgesCreated = edgesCreated
	prev.edgesRemoved = edgesRemoved
	prev.bytesAppended = bytesAppended
}

// snapshotted tracks the last values synced into the Prometheus counters, so
// syncFromStatistics can compute the delta since the last sync. Guarded by mu
// since recordMetrics runs concurrently for every in-flight RPC.
type snapshotted struct {
	mu                         sync.Mutex
	nodesCreated, nodesDeleted uint64
	edgesCreated, edgesRemoved uint64
	bytesAppended              uint64
}
