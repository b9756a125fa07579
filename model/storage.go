package model

import (
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/arborist-labs/resmon/probe"
	"github.com/arborist-labs/resmon/util"
)

// StorageModel derives per-device throughput and utilization from
// successive DiskProbe samples, the same pattern as SystemModel.
type StorageModel struct {
	probe  probe.DiskProbe
	logger logr.Logger

	mu        sync.RWMutex
	prev      map[DeviceName]StorageCounters
	prevAt    time.Time
	hasPrev   bool
	snapshots []StorageSnapshot
}

// NewStorageModel constructs a StorageModel owning the given probe.
func NewStorageModel(p probe.DiskProbe, logger logr.Logger) *StorageModel {
	return &StorageModel{
		probe:  p,
		logger: logger,
		prev:   make(map[DeviceName]StorageCounters),
	}
}

// Refresh pulls one sample per device from the probe and updates the
// model.
func (m *StorageModel) Refresh() error {
	counters, err := m.probe.Enumerate()
	if err != nil {
		m.logger.Error(err, "disk probe enumerate failed")
		return err
	}
	m.update(counters)
	return nil
}

func (m *StorageModel) update(counters []StorageCounters) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	var dWall float64
	if m.hasPrev {
		dWall = now.Sub(m.prevAt).Seconds()
	}

	newPrev := make(map[DeviceName]StorageCounters, len(counters))
	snapshots := make([]StorageSnapshot, 0, len(counters))

	for _, cur := range counters {
		var snap StorageSnapshot
		snap.Device = cur.Device

		if prev, ok := m.prev[cur.Device]; ok && dWall > 0 {
			snap.ReadBytesPerSec = nonNegRate(cur.ReadBytes, prev.ReadBytes, dWall)
			snap.WriteBytesPerSec = nonNegRate(cur.WriteBytes, prev.WriteBytes, dWall)
			snap.ReadOpsPerSec = nonNegRate(cur.ReadOps, prev.ReadOps, dWall)
			snap.WriteOpsPerSec = nonNegRate(cur.WriteOps, prev.WriteOps, dWall)
			snap.UtilizationPercent = util.RatePct(prev.TimeInIOMs, cur.TimeInIOMs, time.Duration(dWall*float64(time.Second)), 1000)
		}

		newPrev[cur.Device] = cur
		snapshots = append(snapshots, snap)
	}

	m.prev = newPrev
	m.prevAt = now
	m.hasPrev = true
	m.snapshots = snapshots
}

// Snapshots returns a copy of the latest per-device snapshots.
func (m *StorageModel) Snapshots() []StorageSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]StorageSnapshot, len(m.snapshots))
	copy(out, m.snapshots)
	return out
}
