package model

// ProcessSnapshot is the immutable, UI-ready value produced per refresh
// for one process instance.
type ProcessSnapshot struct {
	Identity  ProcessIdentity
	UniqueKey uint64

	Name    string
	User    string
	Command string

	DisplayState string // human string translated from RawState

	CPUPercent       float64
	CPUUserPercent   float64
	CPUSystemPercent float64
	CPUTimeSeconds   float64

	MemoryPercent float64
	RSSBytes      uint64
	VirtualBytes  uint64

	IOReadBytesPerSec  float64
	IOWriteBytesPerSec float64

	NetSentBytesPerSec float64
	NetRecvBytesPerSec float64

	PageFaultsPerSec float64
	PowerWatts       float64

	ThreadCount     int
	CPUAffinityMask uint64

	PerGpuUsage []GpuUsageSnapshot
}

// GpuUsageSnapshot is the per-process slice of one GPU's utilization.
type GpuUsageSnapshot struct {
	GpuId              GpuId
	UtilizationPercent float64
	MemoryUsedBytes    uint64
}

// SystemSnapshot is the immutable, UI-ready value produced per
// SystemModel refresh.
type SystemSnapshot struct {
	CPUTotalPercent   float64
	CPUUserPercent    float64
	CPUSystemPercent  float64
	CPUIdlePercent    float64
	CPUIowaitPercent  float64
	CPUPerCorePercent []float64

	MemoryUsedBytes    uint64
	MemoryUsedPercent  float64
	SwapUsedBytes      uint64
	SwapUsedPercent    float64

	UptimeSeconds float64
	LoadAvg       LoadAvg

	Hostname  string
	CPUModel  string
	CoreCount int

	NetworkInterfaces []NetworkInterfaceSnapshot
}

// NetworkInterfaceSnapshot is the derived, rate-bearing view of one
// interface, aligned with SystemCounters.NetworkInterfaces by name.
type NetworkInterfaceSnapshot struct {
	Name          string
	DisplayName   string
	RxBytesPerSec float64
	TxBytesPerSec float64
	IsUp          bool
	LinkSpeedMbps int64
}

// GpuSnapshot is the derived, UI-ready view of one GPU sample.
type GpuSnapshot struct {
	GpuId GpuId

	UtilizationPercent float64
	MemoryUsedPercent  float64
	TemperatureC       float64
	PowerDrawWatts     float64
	PowerUtilPercent   float64
	PcieTxBytesPerSec  float64
	PcieRxBytesPerSec  float64
}

// StorageSnapshot is the derived, UI-ready view of one storage device.
type StorageSnapshot struct {
	Device DeviceName

	ReadBytesPerSec    float64
	WriteBytesPerSec   float64
	ReadOpsPerSec      float64
	WriteOpsPerSec     float64
	UtilizationPercent float64
}

// DisplayState translates a raw /proc/<pid>/stat state character into the
// human string the UI renders.
func DisplayState(raw byte, suspended bool) string {
	if suspended {
		return "Suspended"
	}
	switch raw {
	case 'R':
		return "Running"
	case 'S':
		return "Sleeping"
	case 'D':
		return "Disk Sleep"
	case 'Z':
		return "Zombie"
	case 'T':
		return "Stopped"
	case 't':
		return "Tracing"
	case 'X':
		return "Dead"
	case 'I':
		return "Idle"
	default:
		return "Unknown"
	}
}
