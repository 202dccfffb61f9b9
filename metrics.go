package eos

import (
	"sync/atomic"
	"time"
)

// LatencyBuckets defines the READY-to-RUNNING dispatch latency histogram
// buckets in nanoseconds, covering 1us to 10s with logarithmic spacing.
var LatencyBuckets = []uint64{
	1_000,          // 1us
	10_000,         // 10us
	100_000,        // 100us
	1_000_000,      // 1ms
	10_000_000,     // 10ms
	100_000_000,    // 100ms
	1_000_000_000,  // 1s
	10_000_000_000, // 10s
}

const numLatencyBuckets = 8

// Metrics tracks kernel-wide operational statistics: scheduling activity,
// synchronization-primitive usage, and dispatch latency.
type Metrics struct {
	ContextSwitches atomic.Uint64 // total dispatches to a different task (redispatching the same task is not counted)
	TickCount       atomic.Uint64 // total system ticks processed
	PreemptionCount atomic.Uint64 // dispatches where the new task differs from a still-Running old one

	SemaphoreGives atomic.Uint64
	SemaphoreTakes atomic.Uint64
	SemaphoreFullTakeouts atomic.Uint64 // ISR-context Take that found value == 0

	QueueGives      atomic.Uint64
	QueueTakes      atomic.Uint64
	QueueFullEvents atomic.Uint64 // Give that found the queue full
	QueueEmptyEvents atomic.Uint64 // Take that found the queue empty

	ReadyDepthTotal atomic.Uint64 // cumulative ready-queue depth samples, all priorities
	ReadyDepthCount atomic.Uint64
	MaxReadyDepth   atomic.Uint32

	// Dispatch latency: time from a task becoming READY to its next
	// RUNNING dispatch.
	TotalLatencyNs atomic.Uint64
	LatencySamples atomic.Uint64
	LatencyBuckets [numLatencyBuckets]atomic.Uint64

	StartTime atomic.Int64
	StopTime  atomic.Int64
}

// NewMetrics creates a metrics instance with its clock started.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordContextSwitch records one scheduling decision. preempted indicates
// the previously RUNNING task was demoted to READY rather than having
// voluntarily blocked.
func (m *Metrics) RecordContextSwitch(preempted bool) {
	m.ContextSwitches.Add(1)
	if preempted {
		m.PreemptionCount.Add(1)
	}
}

// RecordTick records one system tick having been processed.
func (m *Metrics) RecordTick() {
	m.TickCount.Add(1)
}

// RecordSemaphoreGive records a Give call.
func (m *Metrics) RecordSemaphoreGive() {
	m.SemaphoreGives.Add(1)
}

// RecordSemaphoreTake records a Take call; full indicates an ISR-context
// Take that found the semaphore at zero (the non-blocking failure path).
func (m *Metrics) RecordSemaphoreTake(full bool) {
	m.SemaphoreTakes.Add(1)
	if full {
		m.SemaphoreFullTakeouts.Add(1)
	}
}

// RecordQueueGive records a queue Give; full indicates it found the queue
// at capacity (only possible from ISR context, per spec).
func (m *Metrics) RecordQueueGive(full bool) {
	m.QueueGives.Add(1)
	if full {
		m.QueueFullEvents.Add(1)
	}
}

// RecordQueueTake records a queue Take; empty indicates it found the
// queue with no elements (only possible from ISR context).
func (m *Metrics) RecordQueueTake(empty bool) {
	m.QueueTakes.Add(1)
	if empty {
		m.QueueEmptyEvents.Add(1)
	}
}

// RecordReadyDepth samples the total number of READY tasks across all
// priority levels at one instant.
func (m *Metrics) RecordReadyDepth(depth uint32) {
	m.ReadyDepthTotal.Add(uint64(depth))
	m.ReadyDepthCount.Add(1)
	for {
		current := m.MaxReadyDepth.Load()
		if depth <= current {
			break
		}
		if m.MaxReadyDepth.CompareAndSwap(current, depth) {
			break
		}
	}
}

// RecordDispatchLatency records the time between a task becoming READY and
// its next dispatch to RUNNING.
func (m *Metrics) RecordDispatchLatency(latencyNs uint64) {
	m.TotalLatencyNs.Add(latencyNs)
	m.LatencySamples.Add(1)
	for i, bucket := range LatencyBuckets {
		if latencyNs <= bucket {
			m.LatencyBuckets[i].Add(1)
		}
	}
}

// Stop marks the kernel as stopped, for uptime calculation.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time, lock-free copy of Metrics with
// derived statistics computed.
type MetricsSnapshot struct {
	ContextSwitches uint64
	TickCount       uint64
	PreemptionCount uint64

	SemaphoreGives        uint64
	SemaphoreTakes        uint64
	SemaphoreFullTakeouts uint64

	QueueGives       uint64
	QueueTakes       uint64
	QueueFullEvents  uint64
	QueueEmptyEvents uint64

	AvgReadyDepth float64
	MaxReadyDepth uint32

	AvgLatencyNs uint64
	UptimeNs     uint64

	LatencyP50Ns  uint64
	LatencyP99Ns  uint64
	LatencyP999Ns uint64

	LatencyHistogram [numLatencyBuckets]uint64

	SwitchesPerSecond float64
}

// Snapshot creates a point-in-time snapshot with derived rates and
// percentiles computed.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		ContextSwitches:       m.ContextSwitches.Load(),
		TickCount:             m.TickCount.Load(),
		PreemptionCount:       m.PreemptionCount.Load(),
		SemaphoreGives:        m.SemaphoreGives.Load(),
		SemaphoreTakes:        m.SemaphoreTakes.Load(),
		SemaphoreFullTakeouts: m.SemaphoreFullTakeouts.Load(),
		QueueGives:            m.QueueGives.Load(),
		QueueTakes:            m.QueueTakes.Load(),
		QueueFullEvents:       m.QueueFullEvents.Load(),
		QueueEmptyEvents:      m.QueueEmptyEvents.Load(),
		MaxReadyDepth:         m.MaxReadyDepth.Load(),
	}

	readyTotal := m.ReadyDepthTotal.Load()
	readyCount := m.ReadyDepthCount.Load()
	if readyCount > 0 {
		snap.AvgReadyDepth = float64(readyTotal) / float64(readyCount)
	}

	totalLatencyNs := m.TotalLatencyNs.Load()
	samples := m.LatencySamples.Load()
	if samples > 0 {
		snap.AvgLatencyNs = totalLatencyNs / samples
	}

	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}

	if snap.UptimeNs > 0 {
		uptimeSeconds := float64(snap.UptimeNs) / 1e9
		snap.SwitchesPerSecond = float64(snap.ContextSwitches) / uptimeSeconds
	}

	for i := 0; i < numLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyBuckets[i].Load()
	}

	if samples > 0 {
		snap.LatencyP50Ns = m.calculatePercentile(0.50)
		snap.LatencyP99Ns = m.calculatePercentile(0.99)
		snap.LatencyP999Ns = m.calculatePercentile(0.999)
	}

	return snap
}

// calculatePercentile estimates the latency at the given percentile
// (0.0-1.0) using linear interpolation between histogram buckets.
func (m *Metrics) calculatePercentile(percentile float64) uint64 {
	totalSamples := m.LatencySamples.Load()
	if totalSamples == 0 {
		return 0
	}

	targetCount := uint64(float64(totalSamples) * percentile)

	prevBucket := uint64(0)
	for i, bucket := range LatencyBuckets {
		bucketCount := m.LatencyBuckets[i].Load()
		if bucketCount >= targetCount {
			prevCount := uint64(0)
			if i > 0 {
				prevCount = m.LatencyBuckets[i-1].Load()
			}
			if bucketCount == prevCount {
				return bucket
			}
			fraction := float64(targetCount-prevCount) / float64(bucketCount-prevCount)
			return prevBucket + uint64(fraction*float64(bucket-prevBucket))
		}
		prevBucket = bucket
	}

	return LatencyBuckets[numLatencyBuckets-1]
}

// Reset zeroes all counters, for test isolation.
func (m *Metrics) Reset() {
	m.ContextSwitches.Store(0)
	m.TickCount.Store(0)
	m.PreemptionCount.Store(0)
	m.SemaphoreGives.Store(0)
	m.SemaphoreTakes.Store(0)
	m.SemaphoreFullTakeouts.Store(0)
	m.QueueGives.Store(0)
	m.QueueTakes.Store(0)
	m.QueueFullEvents.Store(0)
	m.QueueEmptyEvents.Store(0)
	m.ReadyDepthTotal.Store(0)
	m.ReadyDepthCount.Store(0)
	m.MaxReadyDepth.Store(0)
	m.TotalLatencyNs.Store(0)
	m.LatencySamples.Store(0)
	for i := 0; i < numLatencyBuckets; i++ {
		m.LatencyBuckets[i].Store(0)
	}
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// Observer allows pluggable metrics collection, independent of the
// built-in Metrics type.
type Observer interface {
	ObserveContextSwitch(preempted bool)
	ObserveTick()
	ObserveSemaphoreGive()
	ObserveSemaphoreTake(full bool)
	ObserveQueueGive(full bool)
	ObserveQueueTake(empty bool)
	ObserveReadyDepth(depth uint32)
	ObserveDispatchLatency(latencyNs uint64)
}

// NoOpObserver discards every observation.
type NoOpObserver struct{}

func (NoOpObserver) ObserveContextSwitch(bool)      {}
func (NoOpObserver) ObserveTick()                   {}
func (NoOpObserver) ObserveSemaphoreGive()          {}
func (NoOpObserver) ObserveSemaphoreTake(bool)      {}
func (NoOpObserver) ObserveQueueGive(bool)          {}
func (NoOpObserver) ObserveQueueTake(bool)           {}
func (NoOpObserver) ObserveReadyDepth(uint32)        {}
func (NoOpObserver) ObserveDispatchLatency(uint64)   {}

// MetricsObserver implements Observer by recording into a Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer that records to m.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveContextSwitch(preempted bool) {
	o.metrics.RecordContextSwitch(preempted)
}
func (o *MetricsObserver) ObserveTick() { o.metrics.RecordTick() }
func (o *MetricsObserver) ObserveSemaphoreGive() { o.metrics.RecordSemaphoreGive() }
func (o *MetricsObserver) ObserveSemaphoreTake(full bool) { o.metrics.RecordSemaphoreTake(full) }
func (o *MetricsObserver) ObserveQueueGive(full bool)     { o.metrics.RecordQueueGive(full) }
func (o *MetricsObserver) ObserveQueueTake(empty bool)    { o.metrics.RecordQueueTake(empty) }
func (o *MetricsObserver) ObserveReadyDepth(depth uint32) { o.metrics.RecordReadyDepth(depth) }
func (o *MetricsObserver) ObserveDispatchLatency(latencyNs uint64) {
	o.metrics.RecordDispatchLatency(latencyNs)
}

var _ Observer = (*MetricsObserver)(nil)
