package model

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborist-labs/resmon/probe"
)

// stubProcessProbe lets tests drive ProcessModel without touching /proc.
type stubProcessProbe struct {
	ticksPerSecond uint64
	totalMemBytes  uint64
}

func (s stubProcessProbe) Enumerate() ([]ProcessCounters, error) { return nil, nil }
func (s stubProcessProbe) TotalCPUTime() (uint64, error)         { return 0, nil }
func (s stubProcessProbe) TicksPerSecond() uint64                { return s.ticksPerSecond }
func (s stubProcessProbe) SystemTotalMemoryBytes() uint64        { return s.totalMemBytes }
func (s stubProcessProbe) SystemEnergyMicrojoules() uint64       { return 0 }
func (s stubProcessProbe) Capabilities() ProcessCapabilities     { return ProcessCapabilities{} }

var _ probe.ProcessProbe = stubProcessProbe{}

func TestProcessModel_FirstSampleHasZeroRates(t *testing.T) {
	m := NewProcessModel(stubProcessProbe{ticksPerSecond: 100, totalMemBytes: 1000}, logr.Discard())
	counters := []ProcessCounters{
		{Identity: ProcessIdentity{Pid: 1, StartTimeTicks: 10}, UserTime: 50, SystemTime: 10, RSSBytes: 100},
	}
	m.UpdateFromCounters(counters, 1000, 0)

	snaps := m.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, 0.0, snaps[0].CPUPercent)
	assert.Equal(t, 0.0, snaps[0].IOReadBytesPerSec)
	assert.InDelta(t, 10.0, snaps[0].MemoryPercent, 0.001) // 100/1000 * 100
}

func TestProcessModel_CPUPercentFromDelta(t *testing.T) {
	m := NewProcessModel(stubProcessProbe{ticksPerSecond: 100, totalMemBytes: 1000}, logr.Discard())
	id := ProcessIdentity{Pid: 42, StartTimeTicks: 7}

	m.UpdateFromCounters([]ProcessCounters{
		{Identity: id, UserTime: 100, SystemTime: 50},
	}, 1000, 0)

	// 200 total ticks elapsed system-wide, this process consumed 150 of them.
	m.UpdateFromCounters([]ProcessCounters{
		{Identity: id, UserTime: 200, SystemTime: 100},
	}, 1200, 0)

	snaps := m.Snapshots()
	require.Len(t, snaps, 1)
	assert.InDelta(t, 75.0, snaps[0].CPUPercent, 0.001)
}

func TestProcessModel_PidReuseResetsToZero(t *testing.T) {
	m := NewProcessModel(stubProcessProbe{ticksPerSecond: 100}, logr.Discard())
	oldID := ProcessIdentity{Pid: 9, StartTimeTicks: 1}
	newID := ProcessIdentity{Pid: 9, StartTimeTicks: 2} // same pid, later start time: different process

	m.UpdateFromCounters([]ProcessCounters{
		{Identity: oldID, UserTime: 500, SystemTime: 500},
	}, 10_000, 0)

	// The pid was reused by an unrelated process with a much lower tick count;
	// a naive delta against the old identity would go deeply negative.
	m.UpdateFromCounters([]ProcessCounters{
		{Identity: newID, UserTime: 5, SystemTime: 5},
	}, 10_100, 0)

	snaps := m.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, 0.0, snaps[0].CPUPercent)
}

func TestProcessModel_NegativeIOCounterDeltaClampsToZero(t *testing.T) {
	m := NewProcessModel(stubProcessProbe{ticksPerSecond: 100}, logr.Discard())
	id := ProcessIdentity{Pid: 3, StartTimeTicks: 1}

	m.UpdateFromCounters([]ProcessCounters{
		{Identity: id, ReadBytes: 1000},
	}, 100, 0)
	m.UpdateFromCounters([]ProcessCounters{
		{Identity: id, ReadBytes: 400}, // counter appears to have gone backwards
	}, 200, 0)

	snaps := m.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, 0.0, snaps[0].IOReadBytesPerSec)
}

func TestProcessModel_PowerAttributionProportionalToCPUShare(t *testing.T) {
	m := NewProcessModel(stubProcessProbe{ticksPerSecond: 100}, logr.Discard())
	a := ProcessIdentity{Pid: 1, StartTimeTicks: 1}
	b := ProcessIdentity{Pid: 2, StartTimeTicks: 1}

	m.UpdateFromCounters([]ProcessCounters{
		{Identity: a, UserTime: 0},
		{Identity: b, UserTime: 0},
	}, 0, 1_000_000)

	// a did 3x the work of b; energy should split 3:1.
	m.UpdateFromCounters([]ProcessCounters{
		{Identity: a, UserTime: 300},
		{Identity: b, UserTime: 100},
	}, 400, 5_000_000)

	snaps := m.Snapshots()
	require.Len(t, snaps, 2)
	byPid := map[Pid]ProcessSnapshot{}
	for _, s := range snaps {
		byPid[s.Identity.Pid] = s
	}
	assert.Greater(t, byPid[1].PowerWatts, byPid[2].PowerWatts)
}
