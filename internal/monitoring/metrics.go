package monitoring

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application counters. All counters are updated atomically so
// concurrent analyses never contend on a lock.
type Metrics struct {
	RequestCount       int64
	ErrorCount         int64
	AnalysisCount      int64
	BatchCount         int64
	InsufficientCount  int64
	CacheHits          int64
	CacheMisses        int64
	DegradedSignals    int64
	DetectorExclusions int64
	RateLimitBlocks    int64
	StartTime          time.Time

	responseTimes   []time.Duration
	responseTimesMu sync.RWMutex
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:     time.Now(),
		responseTimes: make([]time.Duration, 0, 1000),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementAnalysis increments the completed analysis count
func (m *Metrics) IncrementAnalysis() {
	atomic.AddInt64(&m.AnalysisCount, 1)
}

// IncrementBatch increments the batch analysis count
func (m *Metrics) IncrementBatch() {
	atomic.AddInt64(&m.BatchCount, 1)
}

// IncrementInsufficient counts analyses that ended with no usable signal
func (m *Metrics) IncrementInsufficient() {
	atomic.AddInt64(&m.InsufficientCount, 1)
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// AddDegradedSignals counts signals that degraded during an analysis
func (m *Metrics) AddDegradedSignals(n int) {
	atomic.AddInt64(&m.DegradedSignals, int64(n))
}

// IncrementDetectorExclusion counts detectors excluded from an ensemble vote
func (m *Metrics) IncrementDetectorExclusion() {
	atomic.AddInt64(&m.DetectorExclusions, 1)
}

// IncrementRateLimitBlock increments the rate limit rejection count
func (m *Metrics) IncrementRateLimitBlock() {
	atomic.AddInt64(&m.RateLimitBlocks, 1)
}

// RecordResponseTime records a request duration for the rolling window
func (m *Metrics) RecordResponseTime(d time.Duration) {
	m.responseTimesMu.Lock()
	defer m.responseTimesMu.Unlock()

	if len(m.responseTimes) >= 1000 {
		m.responseTimes = m.responseTimes[1:]
	}
	m.responseTimes = append(m.responseTimes, d)
}

// GetStats returns a snapshot of all counters
func (m *Metrics) GetStats() map[string]interface{} {
	m.responseTimesMu.RLock()
	var totalNs int64
	for _, d := range m.responseTimes {
		totalNs += d.Nanoseconds()
	}
	sampleCount := len(m.responseTimes)
	m.responseTimesMu.RUnlock()

	avgMs := 0.0
	if sampleCount > 0 {
		avgMs = float64(totalNs) / float64(sampleCount) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds":       time.Since(m.StartTime).Seconds(),
		"request_count":        atomic.LoadInt64(&m.RequestCount),
		"error_count":          atomic.LoadInt64(&m.ErrorCount),
		"analysis_count":       atomic.LoadInt64(&m.AnalysisCount),
		"batch_count":          atomic.LoadInt64(&m.BatchCount),
		"insufficient_count":   atomic.LoadInt64(&m.InsufficientCount),
		"cache_hits":           atomic.LoadInt64(&m.CacheHits),
		"cache_misses":         atomic.LoadInt64(&m.CacheMisses),
		"degraded_signals":     atomic.LoadInt64(&m.DegradedSignals),
		"detector_exclusions":  atomic.LoadInt64(&m.DetectorExclusions),
		"rate_limit_blocks":    atomic.LoadInt64(&m.RateLimitBlocks),
		"avg_response_time_ms": avgMs,
	}
}
