package model

// ProcessCounters is the raw, per-process record a ProcessProbe produces.
// All integer fields are either cumulative since process start or
// instantaneous; none are pre-derived into rates or percentages.
type ProcessCounters struct {
	Identity ProcessIdentity

	ParentPid Pid
	Name      string
	Command   string
	User      string
	RawState  byte // single character: 'R','S','D','Z','T','t','X','I', or other

	Nice         int
	BasePriority int

	UserTime   uint64 // ticks
	SystemTime uint64 // ticks

	RSSBytes     uint64
	PeakRSSBytes uint64
	VirtualBytes uint64
	SharedBytes  uint64

	ReadBytes  uint64
	WriteBytes uint64

	ThreadCount    int
	PageFaultCount uint64

	CPUAffinityMask uint64

	NetSentBytes     uint64
	NetReceivedBytes uint64

	EnergyMicrojoules uint64

	Suspended bool // true when a cgroup freezer reports FROZEN/FREEZING
}

// CPUBuckets holds the ten cumulative jiffy/tick buckets the kernel
// reports for one CPU (aggregate or per-core). Missing buckets on older
// kernels are left zero.
type CPUBuckets struct {
	User      uint64
	Nice      uint64
	System    uint64
	Idle      uint64
	IOWait    uint64
	IRQ       uint64
	SoftIRQ   uint64
	Steal     uint64
	Guest     uint64
	GuestNice uint64
}

// Total sums all ten buckets.
func (b CPUBuckets) Total() uint64 {
	return b.User + b.Nice + b.System + b.Idle + b.IOWait +
		b.IRQ + b.SoftIRQ + b.Steal + b.Guest + b.GuestNice
}

// MemoryCounters mirrors /proc/meminfo (or the Win32 equivalent), all in
// bytes.
type MemoryCounters struct {
	TotalBytes     uint64
	FreeBytes      uint64
	AvailableBytes uint64 // 0 if the platform/kernel does not expose it
	BuffersBytes   uint64
	CachedBytes    uint64
	SwapTotalBytes uint64
	SwapFreeBytes  uint64
}

// LoadAvg mirrors /proc/loadavg.
type LoadAvg struct {
	One, Five, Fifteen float64
}

// NetworkInterfaceCounters is one row of system-wide interface counters.
type NetworkInterfaceCounters struct {
	Name          string
	DisplayName   string
	RxBytes       uint64
	TxBytes       uint64
	IsUp          bool
	LinkSpeedMbps int64 // -1 == unknown
}

// SystemCounters is the raw, system-wide record a SystemProbe produces.
type SystemCounters struct {
	CPUTotal   CPUBuckets
	CPUPerCore []CPUBuckets

	Memory MemoryCounters

	UptimeSeconds float64
	LoadAvg       LoadAvg
	CPUFreqMHz    float64

	Hostname  string
	CPUModel  string
	CoreCount int

	NetworkInterfaces []NetworkInterfaceCounters
}

// GpuCounters is the raw, per-GPU record a GpuProbe produces.
type GpuCounters struct {
	GpuId GpuId

	UtilizationPercent float64
	MemoryUsedBytes    uint64
	MemoryTotalBytes   uint64

	TemperatureC    float64
	HotspotTempC    float64
	PowerDrawWatts  float64
	PowerLimitWatts float64

	GpuClockMHz    float64
	MemoryClockMHz float64
	FanSpeedPct    float64

	PcieTxBytes uint64
	PcieRxBytes uint64

	EncoderUtilPercent float64
	DecoderUtilPercent float64
}

// StorageCounters is the raw, per-device record a DiskProbe produces.
type StorageCounters struct {
	Device DeviceName

	ReadBytes  uint64
	WriteBytes uint64
	ReadOps    uint64
	WriteOps   uint64
	TimeInIOMs uint64
}
