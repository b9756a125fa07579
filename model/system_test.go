package model

import (
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborist-labs/resmon/probe"
)

type stubSystemProbe struct {
	counters []SystemCounters
	idx      int
	failNext bool
}

func (s *stubSystemProbe) Read() (SystemCounters, error) {
	if s.failNext {
		s.failNext = false
		return SystemCounters{}, errors.New("probe read failed")
	}
	c := s.counters[s.idx]
	if s.idx < len(s.counters)-1 {
		s.idx++
	}
	return c, nil
}

func (s *stubSystemProbe) Capabilities() SystemCapabilities { return SystemCapabilities{} }

var _ probe.SystemProbe = (*stubSystemProbe)(nil)

func TestSystemModel_MemoryDerivation_WithMemAvailable(t *testing.T) {
	sp := &stubSystemProbe{counters: []SystemCounters{
		{Memory: MemoryCounters{TotalBytes: 1000, AvailableBytes: 400}},
		{Memory: MemoryCounters{TotalBytes: 1000, AvailableBytes: 400}},
	}}
	m := NewSystemModel(sp, 10, logr.Discard())
	require.NoError(t, m.Refresh())
	require.NoError(t, m.Refresh())

	snap := m.Snapshot()
	assert.Equal(t, uint64(600), snap.MemoryUsedBytes)
	assert.InDelta(t, 60.0, snap.MemoryUsedPercent, 0.001)
}

func TestSystemModel_MemoryDerivation_WithoutMemAvailable(t *testing.T) {
	mem := MemoryCounters{TotalBytes: 1000, FreeBytes: 200, CachedBytes: 150, BuffersBytes: 50}
	sp := &stubSystemProbe{counters: []SystemCounters{{Memory: mem}, {Memory: mem}}}
	m := NewSystemModel(sp, 10, logr.Discard())
	require.NoError(t, m.Refresh())
	require.NoError(t, m.Refresh())

	snap := m.Snapshot()
	// 1000 - 200 - 150 - 50 = 600
	assert.Equal(t, uint64(600), snap.MemoryUsedBytes)
	assert.InDelta(t, 60.0, snap.MemoryUsedPercent, 0.001)
}

func TestSystemModel_FailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	sp := &stubSystemProbe{counters: []SystemCounters{
		{Memory: MemoryCounters{TotalBytes: 1000, AvailableBytes: 500}},
	}}
	m := NewSystemModel(sp, 10, logr.Discard())
	require.NoError(t, m.Refresh())
	require.NoError(t, m.Refresh())
	before := m.Snapshot()

	sp.failNext = true
	assert.Error(t, m.Refresh())
	assert.Equal(t, before, m.Snapshot())
}

func TestSystemModel_CPUPercentIsHundredMinusIdle(t *testing.T) {
	sp := &stubSystemProbe{counters: []SystemCounters{
		{CPUTotal: CPUBuckets{User: 100, Idle: 900}},
		{CPUTotal: CPUBuckets{User: 200, Idle: 900}}, // +100 user, +0 idle over a +100 delta
	}}
	m := NewSystemModel(sp, 10, logr.Discard())
	require.NoError(t, m.Refresh())
	require.NoError(t, m.Refresh())

	snap := m.Snapshot()
	assert.InDelta(t, 100.0, snap.CPUTotalPercent, 0.001)
}
