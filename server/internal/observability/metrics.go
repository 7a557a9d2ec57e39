package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics counts generation outcomes per stage. The fallback counter is kept
// separate from failures so a degraded (default-valued) artifact is visible
// even though the caller never sees an error.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64
	fallbackTotal atomic.Int64

	stageMetrics map[string]*StageMetrics

	durations    []time.Duration
	maxDurations int
}

// StageMetrics represents metrics for a specific wizard stage.
type StageMetrics struct {
	generationCount atomic.Int64
	fallbackCount   atomic.Int64
	totalDurationMs atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		stageMetrics: make(map[string]*StageMetrics),
		durations:    make([]time.Duration, 0, maxDurations),
		maxDurations: maxDurations,
	}
}

// Global metrics instance.
var globalMetrics = NewMetrics(1000)

// GlobalMetrics returns the global metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordGeneration records a generation request for a stage.
func (m *Metrics) RecordGeneration(stage string) {
	m.requestTotal.Add(1)
	m.getStageMetrics(stage).generationCount.Add(1)
}

// RecordFallback records a generation that degraded to the static fallback.
func (m *Metrics) RecordFallback(stage string) {
	m.fallbackTotal.Add(1)
	m.getStageMetrics(stage).fallbackCount.Add(1)
}

// RecordFailure records a hard failure (request never produced an artifact).
func (m *Metrics) RecordFailure() {
	m.requestFailed.Add(1)
}

// RecordDuration records a generation duration for a stage.
func (m *Metrics) RecordDuration(stage string, duration time.Duration) {
	m.mu.Lock()
	if len(m.durations) >= m.maxDurations {
		m.durations = m.durations[1:]
	}
	m.durations = append(m.durations, duration)
	m.mu.Unlock()

	m.getStageMetrics(stage).totalDurationMs.Add(duration.Milliseconds())
}

// Snapshot returns current counter values.
func (m *Metrics) Snapshot() (total, failed, fallback int64) {
	return m.requestTotal.Load(), m.requestFailed.Load(), m.fallbackTotal.Load()
}

// StageSnapshot returns per-stage counters.
func (m *Metrics) StageSnapshot(stage string) (generations, fallbacks int64) {
	sm := m.getStageMetrics(stage)
	return sm.generationCount.Load(), sm.fallbackCount.Load()
}

func (m *Metrics) getStageMetrics(stage string) *StageMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm, ok := m.stageMetrics[stage]
	if !ok {
		sm = &StageMetrics{}
		m.stageMetrics[stage] = sm
	}
	return sm
}
