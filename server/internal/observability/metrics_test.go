package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(10)

	m.RecordGeneration("problem-discovery")
	m.RecordGeneration("problem-discovery")
	m.RecordGeneration("icp")
	m.RecordFallback("icp")
	m.RecordFailure()
	m.RecordDuration("icp", 50*time.Millisecond)

	total, failed, fallback := m.Snapshot()
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(1), failed)
	assert.Equal(t, int64(1), fallback)

	generations, fallbacks := m.StageSnapshot("problem-discovery")
	assert.Equal(t, int64(2), generations)
	assert.Equal(t, int64(0), fallbacks)

	generations, fallbacks = m.StageSnapshot("icp")
	assert.Equal(t, int64(1), generations)
	assert.Equal(t, int64(1), fallbacks)

	generations, fallbacks = m.StageSnapshot("never-seen")
	assert.Equal(t, int64(0), generations)
	assert.Equal(t, int64(0), fallbacks)
}

func TestMetricsDurationWindow(t *testing.T) {
	m := NewMetrics(2)

	for i := 0; i < 5; i++ {
		m.RecordDuration("icp", time.Duration(i)*time.Millisecond)
	}
	// The window keeps only the most recent entries; counters are unaffected.
	total, _, _ := m.Snapshot()
	assert.Equal(t, int64(0), total)
}

func TestRequestContextDuration(t *testing.T) {
	r := &RequestContext{StartTime: time.Now().Add(-20 * time.Millisecond)}
	assert.GreaterOrEqual(t, r.DurationMs(), int64(20))
}
