package model

import (
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/arborist-labs/resmon/probe"
)

const defaultHistorySize = 120 // 2 minutes at 1 Hz, per spec default H

// SystemModel derives system-wide CPU/memory/swap/network percentages and
// owns the history rings backing them.
type SystemModel struct {
	probe  probe.SystemProbe
	logger logr.Logger

	mu          sync.RWMutex
	hasPrev     bool
	prev        SystemCounters
	prevAt      time.Time
	snapshot    SystemSnapshot
	historySize int

	cpuTotal  *History[float64]
	cpuUser   *History[float64]
	cpuSystem *History[float64]
	cpuIowait *History[float64]
	cpuIdle   *History[float64]
	memUsed   *History[float64]
	swapUsed  *History[float64]
	netRx     *History[float64]
	netTx     *History[float64]
	timestamps *History[float64]

	perCore []*History[float64]

	ifaceRx map[string]*History[float64]
	ifaceTx map[string]*History[float64]
}

// NewSystemModel constructs a SystemModel with history rings of the given
// capacity (spec default 120 samples at 1 Hz).
func NewSystemModel(p probe.SystemProbe, historySize int, logger logr.Logger) *SystemModel {
	if historySize < 1 {
		historySize = defaultHistorySize
	}
	return &SystemModel{
		probe:       p,
		logger:      logger,
		historySize: historySize,
		cpuTotal:    NewHistory[float64](historySize),
		cpuUser:     NewHistory[float64](historySize),
		cpuSystem:   NewHistory[float64](historySize),
		cpuIowait:   NewHistory[float64](historySize),
		cpuIdle:     NewHistory[float64](historySize),
		memUsed:     NewHistory[float64](historySize),
		swapUsed:    NewHistory[float64](historySize),
		netRx:       NewHistory[float64](historySize),
		netTx:       NewHistory[float64](historySize),
		timestamps:  NewHistory[float64](historySize),
		ifaceRx:     make(map[string]*History[float64]),
		ifaceTx:     make(map[string]*History[float64]),
	}
}

// Refresh pulls one sample from the probe and updates the model.
func (m *SystemModel) Refresh() error {
	cur, err := m.probe.Read()
	if err != nil {
		m.logger.Error(err, "system probe read failed")
		return err
	}
	m.update(cur)
	return nil
}

func (m *SystemModel) update(cur SystemCounters) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	var dWall float64
	if m.hasPrev {
		dWall = now.Sub(m.prevAt).Seconds()
	}

	var snap SystemSnapshot
	snap.UptimeSeconds = cur.UptimeSeconds
	snap.LoadAvg = cur.LoadAvg
	snap.Hostname = cur.Hostname
	snap.CPUModel = cur.CPUModel
	snap.CoreCount = cur.CoreCount
	snap.NetworkInterfaces = alignInterfaces(cur.NetworkInterfaces, m.prev.NetworkInterfaces, m.hasPrev, dWall)

	if m.hasPrev {
		deltaTotal := int64(cur.CPUTotal.Total()) - int64(m.prev.CPUTotal.Total())
		if deltaTotal > 0 {
			userPct := bucketPercent(cur.CPUTotal.User+cur.CPUTotal.Nice, m.prev.CPUTotal.User+m.prev.CPUTotal.Nice, deltaTotal)
			sysPct := bucketPercent(cur.CPUTotal.System, m.prev.CPUTotal.System, deltaTotal)
			idlePct := bucketPercent(cur.CPUTotal.Idle, m.prev.CPUTotal.Idle, deltaTotal)
			iowaitPct := bucketPercent(cur.CPUTotal.IOWait, m.prev.CPUTotal.IOWait, deltaTotal)
			snap.CPUUserPercent = userPct
			snap.CPUSystemPercent = sysPct
			snap.CPUIdlePercent = idlePct
			snap.CPUIowaitPercent = iowaitPct
			snap.CPUTotalPercent = clampPct(100 - idlePct)

			snap.CPUPerCorePercent = make([]float64, len(cur.CPUPerCore))
			for i, core := range cur.CPUPerCore {
				if i >= len(m.prev.CPUPerCore) {
					continue
				}
				cd := int64(core.Total()) - int64(m.prev.CPUPerCore[i].Total())
				if cd <= 0 {
					continue
				}
				snap.CPUPerCorePercent[i] = clampPct(100 - bucketPercent(core.Idle, m.prev.CPUPerCore[i].Idle, cd))
			}
		}

		var rxTotal, txTotal uint64
		var rxPrevTotal, txPrevTotal uint64
		for _, ni := range cur.NetworkInterfaces {
			if ni.Name == "lo" {
				continue
			}
			rxTotal += ni.RxBytes
			txTotal += ni.TxBytes
		}
		for _, ni := range m.prev.NetworkInterfaces {
			if ni.Name == "lo" {
				continue
			}
			rxPrevTotal += ni.RxBytes
			txPrevTotal += ni.TxBytes
		}
		var netRxRate, netTxRate float64
		if dWall > 0 {
			netRxRate = nonNegRate(rxTotal, rxPrevTotal, dWall)
			netTxRate = nonNegRate(txTotal, txPrevTotal, dWall)
		}

		memUsed, memPct := deriveMemory(cur.Memory)
		swapUsed, swapPct := deriveSwap(cur.Memory)
		snap.MemoryUsedBytes = memUsed
		snap.MemoryUsedPercent = memPct
		snap.SwapUsedBytes = swapUsed
		snap.SwapUsedPercent = swapPct

		ts := float64(now.Unix())
		m.cpuTotal.Push(snap.CPUTotalPercent)
		m.cpuUser.Push(snap.CPUUserPercent)
		m.cpuSystem.Push(snap.CPUSystemPercent)
		m.cpuIowait.Push(snap.CPUIowaitPercent)
		m.cpuIdle.Push(snap.CPUIdlePercent)
		m.memUsed.Push(memPct)
		m.swapUsed.Push(swapPct)
		m.netRx.Push(netRxRate)
		m.netTx.Push(netTxRate)
		m.timestamps.Push(ts)

		m.syncPerCoreRings(len(cur.CPUPerCore))
		for i, pct := range snap.CPUPerCorePercent {
			if i < len(m.perCore) {
				m.perCore[i].Push(pct)
			}
		}

		for i := range snap.NetworkInterfaces {
			ifc := &snap.NetworkInterfaces[i]
			rxRing := m.ifaceRingFor(m.ifaceRx, ifc.Name)
			txRing := m.ifaceRingFor(m.ifaceTx, ifc.Name)
			rxRing.Push(ifc.RxBytesPerSec)
			txRing.Push(ifc.TxBytesPerSec)
		}
	}

	m.prev = cur
	m.prevAt = now
	m.hasPrev = true
	m.snapshot = snap
}

// syncPerCoreRings creates per-core rings lazily and drops extras if the
// core count shrinks, per spec §4.3.
func (m *SystemModel) syncPerCoreRings(n int) {
	for len(m.perCore) < n {
		m.perCore = append(m.perCore, NewHistory[float64](m.historySize))
	}
	if len(m.perCore) > n {
		m.perCore = m.perCore[:n]
	}
}

func (m *SystemModel) ifaceRingFor(set map[string]*History[float64], name string) *History[float64] {
	r, ok := set[name]
	if !ok {
		r = NewHistory[float64](m.historySize)
		set[name] = r
	}
	return r
}

func bucketPercent(cur, prev uint64, deltaTotal int64) float64 {
	d := int64(cur) - int64(prev)
	if d < 0 || deltaTotal <= 0 {
		return 0
	}
	return clampPct(100 * float64(d) / float64(deltaTotal))
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// deriveMemory implements spec §4.3: used = total-available when the
// kernel exposes MemAvailable, else used = total-free-cached-buffers.
func deriveMemory(mem MemoryCounters) (usedBytes uint64, usedPercent float64) {
	if mem.AvailableBytes > 0 {
		if mem.TotalBytes > mem.AvailableBytes {
			usedBytes = mem.TotalBytes - mem.AvailableBytes
		}
	} else {
		used := int64(mem.TotalBytes) - int64(mem.FreeBytes) - int64(mem.CachedBytes) - int64(mem.BuffersBytes)
		if used > 0 {
			usedBytes = uint64(used)
		}
	}
	if mem.TotalBytes > 0 {
		usedPercent = 100 * float64(usedBytes) / float64(mem.TotalBytes)
	}
	return usedBytes, usedPercent
}

func deriveSwap(mem MemoryCounters) (usedBytes uint64, usedPercent float64) {
	if mem.SwapTotalBytes > mem.SwapFreeBytes {
		usedBytes = mem.SwapTotalBytes - mem.SwapFreeBytes
	}
	if mem.SwapTotalBytes > 0 {
		usedPercent = 100 * float64(usedBytes) / float64(mem.SwapTotalBytes)
	}
	return usedBytes, usedPercent
}

// alignInterfaces builds the rate-bearing NetworkInterfaceSnapshot list.
// An interface present now but absent previously reports a zero rate; an
// interface absent now is left out of the list, so its rings are not
// pushed and other interfaces' rings are unaffected.
func alignInterfaces(cur, prev []NetworkInterfaceCounters, hasPrev bool, dWall float64) []NetworkInterfaceSnapshot {
	prevByName := make(map[string]NetworkInterfaceCounters, len(prev))
	for _, p := range prev {
		prevByName[p.Name] = p
	}
	out := make([]NetworkInterfaceSnapshot, 0, len(cur))
	for _, c := range cur {
		snap := NetworkInterfaceSnapshot{
			Name:          c.Name,
			DisplayName:   c.DisplayName,
			IsUp:          c.IsUp,
			LinkSpeedMbps: c.LinkSpeedMbps,
		}
		if hasPrev && dWall > 0 {
			if p, ok := prevByName[c.Name]; ok {
				snap.RxBytesPerSec = nonNegRate(c.RxBytes, p.RxBytes, dWall)
				snap.TxBytesPerSec = nonNegRate(c.TxBytes, p.TxBytes, dWall)
			}
		}
		out = append(out, snap)
	}
	return out
}

// Snapshot returns the latest system snapshot.
func (m *SystemModel) Snapshot() SystemSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// CPUTotalHistory returns a copy of the total-CPU-percent history.
func (m *SystemModel) CPUTotalHistory() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]float64, m.cpuTotal.Size())
	m.cpuTotal.CopyTo(out, m.cpuTotal.Size())
	return out
}

// Timestamps returns a copy of the sample-time ring, aligned with the
// other history rings (spec §3 invariant: same Size() within one
// acquisition).
func (m *SystemModel) Timestamps() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]float64, m.timestamps.Size())
	m.timestamps.CopyTo(out, m.timestamps.Size())
	return out
}

// Capabilities forwards the owning probe's capability descriptor.
func (m *SystemModel) Capabilities() SystemCapabilities {
	return m.probe.Capabilities()
}
