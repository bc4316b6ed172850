package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram slot.
type MetricID uint16

const (
	MetricRegisterSuccess MetricID = iota
	MetricRegisterDuplicate
	MetricLoginSuccess
	MetricLoginFailure
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricLogout
	MetricVerifyLatency

	// MetricIDCount is the number of defined metric slots.
	MetricIDCount
)

// Histogram bucket upper bounds; the last bucket is +Inf.
var latencyBuckets = [...]time.Duration{
	5 * time.Microsecond,
	25 * time.Microsecond,
	100 * time.Microsecond,
	500 * time.Microsecond,
	2 * time.Millisecond,
	10 * time.Millisecond,
	50 * time.Millisecond,
}

const bucketCount = len(latencyBuckets) + 1

// Config controls which storage is active.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// paddedCounter keeps each counter on its own cache line to avoid false
// sharing between hot-path increments.
type paddedCounter struct {
	value uint64
	_     [56]byte
}

// Metrics holds atomic counters and, optionally, latency histograms.
// A nil Metrics is a no-op.
type Metrics struct {
	cfg        Config
	counters   [MetricIDCount]paddedCounter
	histograms [MetricIDCount][bucketCount]paddedCounter
}

// Snapshot is a point-in-time deep copy of all metrics.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// New creates a Metrics instance. When cfg.Enabled is false all operations
// are no-ops and Snapshot returns empty maps.
func New(cfg Config) *Metrics {
	return &Metrics{cfg: cfg}
}

// Inc atomically increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.cfg.Enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// LatencyEnabled reports whether Observe does anything.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.cfg.Enabled && m.cfg.EnableLatency
}

// Observe records d into the histogram for id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if !m.LatencyEnabled() || id >= MetricIDCount {
		return
	}
	bucket := len(latencyBuckets)
	for i, bound := range latencyBuckets {
		if d <= bound {
			bucket = i
			break
		}
	}
	atomic.AddUint64(&m.histograms[id][bucket].value, 1)
}

// Snapshot copies every non-zero counter and histogram into fresh maps.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil || !m.cfg.Enabled {
		return snap
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		if v := atomic.LoadUint64(&m.counters[id].value); v > 0 {
			snap.Counters[id] = v
		}
	}
	if m.cfg.EnableLatency {
		for id := MetricID(0); id < MetricIDCount; id++ {
			var buckets []uint64
			nonZero := false
			for b := 0; b < bucketCount; b++ {
				v := atomic.LoadUint64(&m.histograms[id][b].value)
				if v > 0 {
					nonZero = true
				}
				buckets = append(buckets, v)
			}
			if nonZero {
				snap.Histograms[id] = buckets
			}
		}
	}

	return snap
}
