package model

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGpuProbe struct{ batches [][]GpuCounters }

func (s *stubGpuProbe) Enumerate() ([]GpuCounters, error) {
	b := s.batches[0]
	if len(s.batches) > 1 {
		s.batches = s.batches[1:]
	}
	return b, nil
}
func (s *stubGpuProbe) Capabilities() GpuCapabilities { return GpuCapabilities{HasGPU: true} }

func TestGpuModel_PcieRateFromDelta(t *testing.T) {
	p := &stubGpuProbe{batches: [][]GpuCounters{
		{{GpuId: "0", PcieTxBytes: 1000, PcieRxBytes: 2000, MemoryTotalBytes: 100, MemoryUsedBytes: 25}},
		{{GpuId: "0", PcieTxBytes: 1500, PcieRxBytes: 2200, MemoryTotalBytes: 100, MemoryUsedBytes: 25}},
	}}
	m := NewGpuModel(p, logr.Discard())
	require.NoError(t, m.Refresh())
	require.NoError(t, m.Refresh())

	snaps := m.Snapshots()
	require.Len(t, snaps, 1)
	assert.Greater(t, snaps[0].PcieTxBytesPerSec, 0.0)
	assert.Greater(t, snaps[0].PcieRxBytesPerSec, 0.0)
	assert.InDelta(t, 25.0, snaps[0].MemoryUsedPercent, 0.001)
}

type stubDiskProbe struct{ batches [][]StorageCounters }

func (s *stubDiskProbe) Enumerate() ([]StorageCounters, error) {
	b := s.batches[0]
	if len(s.batches) > 1 {
		s.batches = s.batches[1:]
	}
	return b, nil
}

func TestStorageModel_RatesRequireTwoSamples(t *testing.T) {
	p := &stubDiskProbe{batches: [][]StorageCounters{
		{{Device: "sda", ReadBytes: 0, WriteBytes: 0}},
		{{Device: "sda", ReadBytes: 4096, WriteBytes: 8192}},
	}}
	m := NewStorageModel(p, logr.Discard())
	require.NoError(t, m.Refresh())

	first := m.Snapshots()
	require.Len(t, first, 1)
	assert.Equal(t, 0.0, first[0].ReadBytesPerSec)

	require.NoError(t, m.Refresh())
	second := m.Snapshots()
	require.Len(t, second, 1)
	assert.Greater(t, second[0].ReadBytesPerSec, 0.0)
	assert.Greater(t, second[0].WriteBytesPerSec, 0.0)
}
