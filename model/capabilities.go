package model

// ProcessCapabilities describes which ProcessCounters fields the current
// probe can actually populate. A false flag means the model must report
// zero/none for that field rather than inventing a value.
type ProcessCapabilities struct {
	HasIOCounters      bool
	HasThreadCount     bool
	HasUser            bool
	HasPowerUsage      bool
	HasNetworkCounters bool
	HasCPUAffinity     bool
	HasCgroupState     bool
}

// SystemCapabilities describes which SystemCounters fields the current
// probe can populate.
type SystemCapabilities struct {
	HasPerCoreCPU   bool
	HasLoadAvg      bool
	HasCPUFreq      bool
	HasMemAvailable bool
}

// GpuCapabilities describes which GpuCounters fields a GPU vendor probe
// could resolve. All false means the probe found no usable vendor library.
type GpuCapabilities struct {
	HasGPU            bool
	HasPowerMetrics   bool
	HasFanSpeed       bool
	HasEncoderMetrics bool
	HasPerProcessMem  bool
}

// ProcessActionCapabilities describes which process control actions the
// current platform exposes (Windows only exposes Terminate/Kill).
type ProcessActionCapabilities struct {
	CanTerminate bool
	CanKill      bool
	CanStop      bool
	CanContinue  bool
}
