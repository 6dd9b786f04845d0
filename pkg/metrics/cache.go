package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CacheMetrics tracks thumbnail cache activity.
//
// A nil *CacheMetrics is valid and records nothing.
type CacheMetrics struct {
	hits         prometheus.Counter
	misses       prometheus.Counter
	stale        prometheus.Counter
	bytesWritten prometheus.Counter
	prunedBytes  prometheus.Counter
}

// NewCacheMetrics creates Prometheus-backed cache metrics.
// Returns nil when metrics are disabled.
func NewCacheMetrics() *CacheMetrics {
	reg := GetRegistry()
	if reg == nil {
		return nil
	}

	return &CacheMetrics{
		hits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "rlens_thumbcache_hits_total",
			Help: "Thumbnail cache hits (fresh artifact reused)",
		}),
		misses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "rlens_thumbcache_misses_total",
			Help: "Thumbnail cache misses (no artifact on disk)",
		}),
		stale: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "rlens_thumbcache_stale_total",
			Help: "Artifacts discarded because the source was newer",
		}),
		bytesWritten: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "rlens_thumbcache_written_bytes_total",
			Help: "Bytes written to the thumbnail cache",
		}),
		prunedBytes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "rlens_thumbcache_pruned_bytes_total",
			Help: "Bytes reclaimed by cache pruning",
		}),
	}
}

// RecordHit records a fresh artifact reuse.
func (m *CacheMetrics) RecordHit() {
	if m != nil {
		m.hits.Inc()
	}
}

// RecordMiss records an absent artifact.
func (m *CacheMetrics) RecordMiss() {
	if m != nil {
		m.misses.Inc()
	}
}

// RecordStale records an artifact rejected by the staleness check.
func (m *CacheMetrics) RecordStale() {
	if m != nil {
		m.stale.Inc()
	}
}

// RecordWrite records bytes written to the cache.
func (m *CacheMetrics) RecordWrite(bytes int64) {
	if m != nil {
		m.bytesWritten.Add(float64(bytes))
	}
}

// RecordPruned records bytes reclaimed by pruning.
func (m *CacheMetrics) RecordPruned(bytes int64) {
	if m != nil {
		m.prunedBytes.Add(float64(bytes))
	}
}
