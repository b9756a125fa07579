package model

import (
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/arborist-labs/resmon/probe"
)

const gpuHistorySize = 300 // 5 minutes at 1 Hz, per spec §4.4

// GpuModel tracks previous counters per GpuId and derives PCIe
// throughput, memory-used%, and power-util% the same way SystemModel does
// for system-wide counters.
type GpuModel struct {
	probe  probe.GpuProbe
	logger logr.Logger

	mu         sync.RWMutex
	prev       map[GpuId]GpuCounters
	hasPrev    map[GpuId]bool
	prevAt     time.Time
	snapshots  []GpuSnapshot
	histories  map[GpuId]*History[GpuSnapshot]
	timestamps *History[float64]
}

// NewGpuModel constructs a GpuModel owning the given probe.
func NewGpuModel(p probe.GpuProbe, logger logr.Logger) *GpuModel {
	return &GpuModel{
		probe:      p,
		logger:     logger,
		prev:       make(map[GpuId]GpuCounters),
		hasPrev:    make(map[GpuId]bool),
		histories:  make(map[GpuId]*History[GpuSnapshot]),
		timestamps: NewHistory[float64](gpuHistorySize),
	}
}

// Refresh pulls one sample per GPU from the probe and updates the model.
func (m *GpuModel) Refresh() error {
	counters, err := m.probe.Enumerate()
	if err != nil {
		m.logger.Error(err, "gpu probe enumerate failed")
		return err
	}
	m.update(counters)
	return nil
}

func (m *GpuModel) update(counters []GpuCounters) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	var dWall float64
	if !m.prevAt.IsZero() {
		dWall = now.Sub(m.prevAt).Seconds()
	}

	snapshots := make([]GpuSnapshot, 0, len(counters))
	for _, cur := range counters {
		var snap GpuSnapshot
		snap.GpuId = cur.GpuId
		snap.UtilizationPercent = cur.UtilizationPercent
		snap.TemperatureC = cur.TemperatureC
		snap.PowerDrawWatts = cur.PowerDrawWatts
		if cur.MemoryTotalBytes > 0 {
			snap.MemoryUsedPercent = 100 * float64(cur.MemoryUsedBytes) / float64(cur.MemoryTotalBytes)
		}
		if cur.PowerLimitWatts > 0 {
			snap.PowerUtilPercent = 100 * cur.PowerDrawWatts / cur.PowerLimitWatts
		}

		if prev, ok := m.prev[cur.GpuId]; ok && m.hasPrev[cur.GpuId] && dWall > 0 {
			snap.PcieTxBytesPerSec = nonNegRate(cur.PcieTxBytes, prev.PcieTxBytes, dWall)
			snap.PcieRxBytesPerSec = nonNegRate(cur.PcieRxBytes, prev.PcieRxBytes, dWall)
		}

		ring, ok := m.histories[cur.GpuId]
		if !ok {
			ring = NewHistory[GpuSnapshot](gpuHistorySize)
			m.histories[cur.GpuId] = ring
		}
		ring.Push(snap)

		m.prev[cur.GpuId] = cur
		m.hasPrev[cur.GpuId] = true
		snapshots = append(snapshots, snap)
	}

	m.timestamps.Push(float64(now.Unix()))
	m.prevAt = now
	m.snapshots = snapshots
}

// Snapshots returns a copy of the latest per-GPU snapshots.
func (m *GpuModel) Snapshots() []GpuSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]GpuSnapshot, len(m.snapshots))
	copy(out, m.snapshots)
	return out
}

// Capabilities forwards the owning probe's capability descriptor.
func (m *GpuModel) Capabilities() GpuCapabilities {
	return m.probe.Capabilities()
}
