package model

import (
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/arborist-labs/resmon/probe"
	"github.com/arborist-labs/resmon/util"
)

type prevProcessSample struct {
	counters  ProcessCounters
	sampledAt time.Time
}

// ProcessModel derives CPU%, I/O rates, power attribution, and
// per-process network bytes from successive ProcessProbe samples. All
// three pieces of mutable state (prev, prevTotalCPUTime, snapshots) are
// swapped together under the writer lock so a reader never observes a
// torn update.
type ProcessModel struct {
	probe  probe.ProcessProbe
	logger logr.Logger

	mu                  sync.RWMutex
	prev                map[ProcessIdentity]prevProcessSample
	prevTotalCPUTime    uint64
	prevSystemEnergyUj  uint64
	snapshots           []ProcessSnapshot
}

// NewProcessModel constructs a model owning the given probe exclusively.
func NewProcessModel(p probe.ProcessProbe, logger logr.Logger) *ProcessModel {
	return &ProcessModel{
		probe:  p,
		logger: logger,
		prev:   make(map[ProcessIdentity]prevProcessSample),
	}
}

// Refresh pulls a new sample from the probe and updates the model. A
// whole-batch failure (probe returns an error or nothing) leaves the
// previous snapshot intact.
func (m *ProcessModel) Refresh() error {
	counters, err := m.probe.Enumerate()
	if err != nil {
		m.logger.Error(err, "process probe enumerate failed")
		return err
	}
	if len(counters) == 0 {
		return nil
	}
	total, err := m.probe.TotalCPUTime()
	if err != nil {
		m.logger.Error(err, "process probe total cpu time failed")
		return err
	}
	m.UpdateFromCounters(counters, total, m.probe.SystemEnergyMicrojoules())
	return nil
}

// UpdateFromCounters runs the derivation pipeline against an explicit
// counters batch, useful for tests and for callers that already collected
// counters through some other path (e.g. the sampler). systemEnergyUj is
// the current cumulative RAPL energy reading in microjoules, or 0 if the
// platform exposes none; its delta is attributed across processes
// proportional to each process's share of the aggregate CPU-time delta
// (an accepted over/under-attribution limitation, not a correctness bug).
func (m *ProcessModel) UpdateFromCounters(counters []ProcessCounters, totalCPUTime uint64, systemEnergyUj uint64) {
	now := time.Now()
	ticksPerSec := m.probe.TicksPerSecond()
	sysMem := m.probe.SystemTotalMemoryBytes()

	m.mu.RLock()
	prev := m.prev
	prevTotal := m.prevTotalCPUTime
	prevEnergy := m.prevSystemEnergyUj
	m.mu.RUnlock()

	deltaTotal := int64(totalCPUTime) - int64(prevTotal)
	var systemEnergyDeltaUj uint64
	if systemEnergyUj >= prevEnergy {
		systemEnergyDeltaUj = systemEnergyUj - prevEnergy
	}

	newPrev := make(map[ProcessIdentity]prevProcessSample, len(counters))
	snapshots := make([]ProcessSnapshot, 0, len(counters))

	for _, cur := range counters {
		var snap ProcessSnapshot
		snap.Identity = cur.Identity
		snap.UniqueKey = cur.Identity.UniqueKey()
		snap.Name = cur.Name
		snap.User = cur.User
		snap.Command = cur.Command
		snap.DisplayState = DisplayState(cur.RawState, cur.Suspended)
		snap.RSSBytes = cur.RSSBytes
		snap.VirtualBytes = cur.VirtualBytes
		snap.ThreadCount = cur.ThreadCount
		snap.CPUAffinityMask = cur.CPUAffinityMask
		if ticksPerSec > 0 {
			snap.CPUTimeSeconds = float64(cur.UserTime+cur.SystemTime) / float64(ticksPerSec)
		}
		if sysMem > 0 {
			snap.MemoryPercent = 100 * float64(cur.RSSBytes) / float64(sysMem)
		}

		if p, ok := prev[cur.Identity]; ok && deltaTotal > 0 {
			dWall := now.Sub(p.sampledAt).Seconds()
			snap.CPUPercent = cpuDeltaPercent(cur.UserTime+cur.SystemTime, p.counters.UserTime+p.counters.SystemTime, deltaTotal)
			snap.CPUUserPercent = cpuDeltaPercent(cur.UserTime, p.counters.UserTime, deltaTotal)
			snap.CPUSystemPercent = cpuDeltaPercent(cur.SystemTime, p.counters.SystemTime, deltaTotal)
			if dWall > 0 {
				snap.IOReadBytesPerSec = nonNegRate(cur.ReadBytes, p.counters.ReadBytes, dWall)
				snap.IOWriteBytesPerSec = nonNegRate(cur.WriteBytes, p.counters.WriteBytes, dWall)
				snap.NetSentBytesPerSec = nonNegRate(cur.NetSentBytes, p.counters.NetSentBytes, dWall)
				snap.NetRecvBytesPerSec = nonNegRate(cur.NetReceivedBytes, p.counters.NetReceivedBytes, dWall)
				snap.PageFaultsPerSec = nonNegRate(cur.PageFaultCount, p.counters.PageFaultCount, dWall)
			}
			if dWall > 0 && deltaTotal > 0 && systemEnergyDeltaUj > 0 {
				procDelta := int64(cur.UserTime+cur.SystemTime) - int64(p.counters.UserTime+p.counters.SystemTime)
				if procDelta > 0 {
					share := float64(procDelta) / float64(deltaTotal)
					snap.PowerWatts = (float64(systemEnergyDeltaUj) / 1e6 * share) / dWall
				}
			}
		}

		snapshots = append(snapshots, snap)
		newPrev[cur.Identity] = prevProcessSample{counters: cur, sampledAt: now}
	}

	m.mu.Lock()
	m.prev = newPrev
	m.prevTotalCPUTime = totalCPUTime
	m.prevSystemEnergyUj = systemEnergyUj
	m.snapshots = snapshots
	m.mu.Unlock()
}

// cpuDeltaPercent computes 100 * (cur-prev)/deltaTotal, treating a
// negative counter delta (identity reused a PID or a wraparound-like
// anomaly) as zero rather than a phantom value.
func cpuDeltaPercent(cur, prev uint64, deltaTotal int64) float64 {
	d := int64(cur) - int64(prev)
	if d <= 0 || deltaTotal <= 0 {
		return 0
	}
	return 100 * float64(d) / float64(deltaTotal)
}

// nonNegRate computes (cur-prev)/dt, reporting zero for an apparent
// decrease instead of a negative rate. dt is in seconds; it is converted
// to a time.Duration to reuse util.Rate's shared per-second derivation.
func nonNegRate(cur, prev uint64, dtSeconds float64) float64 {
	if dtSeconds <= 0 {
		return 0
	}
	return util.Rate(prev, cur, time.Duration(dtSeconds*float64(time.Second)))
}

// Snapshots returns a copy of the latest per-process snapshots.
func (m *ProcessModel) Snapshots() []ProcessSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ProcessSnapshot, len(m.snapshots))
	copy(out, m.snapshots)
	return out
}

// ProcessCount returns the number of processes in the latest snapshot.
func (m *ProcessModel) ProcessCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}

// Capabilities forwards the owning probe's capability descriptor.
func (m *ProcessModel) Capabilities() ProcessCapabilities {
	return m.probe.Capabilities()
}
