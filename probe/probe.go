// Package probe defines the capability-gated, stateless reader interfaces
// that translate OS-specific surfaces into the raw counter records in
// package model. Concrete implementations live in probe/linux and
// probe/windows.
package probe

import "github.com/arborist-labs/resmon/model"

// ProcessProbe enumerates every process the platform currently exposes.
// Implementations must be stateless with respect to derived values: no
// delta is computed inside a probe. A probe may own a cache (e.g. a
// username lookup cache) whose absence cannot make its output wrong.
type ProcessProbe interface {
	// Enumerate returns one ProcessCounters per live process. A process
	// whose detail files vanish mid-read is skipped, not reported as an
	// error for the whole batch.
	Enumerate() ([]model.ProcessCounters, error)

	// TotalCPUTime returns the system-wide cumulative CPU tick count used
	// as the delta denominator for per-process CPU percent.
	TotalCPUTime() (uint64, error)

	// TicksPerSecond returns the tick rate counters are expressed in
	// (sysconf(_SC_CLK_TCK) on Linux, a fixed 10,000,000 on Windows).
	TicksPerSecond() uint64

	// SystemTotalMemoryBytes is used to derive MemoryPercent; returns 0
	// if unavailable.
	SystemTotalMemoryBytes() uint64

	// SystemEnergyMicrojoules returns the current cumulative system-wide
	// energy counter (e.g. RAPL) in microjoules, or 0 if the platform
	// exposes none. Its delta across samples is attributed across
	// processes proportional to CPU-time share (spec §4.4/§9).
	SystemEnergyMicrojoules() uint64

	Capabilities() model.ProcessCapabilities
}

// SystemProbe reads system-wide CPU/memory/network counters.
type SystemProbe interface {
	Read() (model.SystemCounters, error)
	Capabilities() model.SystemCapabilities
}

// DiskProbe reads per-device storage counters.
type DiskProbe interface {
	Enumerate() ([]model.StorageCounters, error)
}

// GpuProbe reads per-GPU counters. A probe with no usable vendor library
// returns an empty slice and all-false capabilities rather than failing.
type GpuProbe interface {
	Enumerate() ([]model.GpuCounters, error)
	Capabilities() model.GpuCapabilities
}

// ActionResult is the outcome of a process control action.
type ActionResult struct {
	Success      bool
	ErrorMessage string
}

// ProcessActions is the thin OS wrapper for process control. Not part of
// the data pipeline's hard invariants; provided so probes have a single
// sibling surface for process control.
type ProcessActions interface {
	Terminate(pid model.Pid) ActionResult
	Kill(pid model.Pid) ActionResult
	Stop(pid model.Pid) ActionResult
	Resume(pid model.Pid) ActionResult
	Capabilities() model.ProcessActionCapabilities
}
