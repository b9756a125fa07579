// Package model holds the raw counter records, capability descriptors, and
// derived snapshot types produced by the probe and model layers.
package model

// Pid is a signed process id, matching the OS representation on both
// Linux and Windows.
type Pid int32

// ProcessIdentity is a stable key for one process instance. Two processes
// that share a Pid (PID reuse) have different StartTimeTicks and therefore
// different identities.
type ProcessIdentity struct {
	Pid            Pid
	StartTimeTicks uint64
}

// UniqueKey mixes Pid and StartTimeTicks with a standard 64-bit combiner so
// that identity survives PID reuse without needing to carry the pair
// everywhere. The mixer itself is not meant to be stable across processes,
// only deterministic within one.
func (id ProcessIdentity) UniqueKey() uint64 {
	return hashCombine(uint64(uint32(id.Pid)), id.StartTimeTicks)
}

func hashCombine(x, y uint64) uint64 {
	x ^= y + 0x9e3779b9 + (x << 6) + (x >> 2)
	return x
}

// GpuId is an opaque per-GPU identifier: a PCI address or card index on
// Linux, a LUID-derived string on Windows.
type GpuId string

// DeviceName is a disk device name ("sda", "nvme0n1", ...).
type DeviceName string
