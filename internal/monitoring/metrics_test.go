package monitoring

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrementRequest()
	m.IncrementRequest()
	m.IncrementError()
	m.IncrementAnalysis()
	m.IncrementBatch()
	m.IncrementInsufficient()
	m.IncrementCacheHit()
	m.IncrementCacheMiss()
	m.AddDegradedSignals(3)
	m.IncrementDetectorExclusion()
	m.IncrementRateLimitBlock()

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats["request_count"])
	assert.Equal(t, int64(1), stats["error_count"])
	assert.Equal(t, int64(1), stats["analysis_count"])
	assert.Equal(t, int64(1), stats["batch_count"])
	assert.Equal(t, int64(1), stats["insufficient_count"])
	assert.Equal(t, int64(1), stats["cache_hits"])
	assert.Equal(t, int64(1), stats["cache_misses"])
	assert.Equal(t, int64(3), stats["degraded_signals"])
	assert.Equal(t, int64(1), stats["detector_exclusions"])
	assert.Equal(t, int64(1), stats["rate_limit_blocks"])
}

func TestMetricsResponseTimes(t *testing.T) {
	m := NewMetrics()

	assert.Equal(t, 0.0, m.GetStats()["avg_response_time_ms"])

	m.RecordResponseTime(10 * time.Millisecond)
	m.RecordResponseTime(30 * time.Millisecond)

	assert.InDelta(t, 20.0, m.GetStats()["avg_response_time_ms"], 1e-9)
}

func TestMetricsConcurrentUpdates(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.IncrementAnalysis()
				m.RecordResponseTime(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), m.GetStats()["analysis_count"])
}
