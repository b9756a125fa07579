//go:build windows

package windows

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/go-logr/logr"
	"golang.org/x/sys/windows"

	"github.com/arborist-labs/resmon/model"
)

var kernel32            = windows.NewLazySystemDLL("kernel32.dll")
var procGetSystemTimes  = kernel32.NewProc("GetSystemTimes")
var procGlobalMemStatus = kernel32.NewProc("GlobalMemoryStatusEx")

// memoryStatusEx mirrors MEMORYSTATUSEX.
type memoryStatusEx struct {
	Length               uint32
	MemoryLoad           uint32
	TotalPhys            uint64
	AvailPhys            uint64
	TotalPageFile        uint64
	AvailPageFile        uint64
	TotalVirtual         uint64
	AvailVirtual         uint64
	AvailExtendedVirtual uint64
}

func windowsMemoryStatus() (memoryStatusEx, error) {
	var status memoryStatusEx
	status.Length = uint32(unsafe.Sizeof(status))
	r, _, err := procGlobalMemStatus.Call(uintptr(unsafe.Pointer(&status)))
	if r == 0 {
		return memoryStatusEx{}, fmt.Errorf("GlobalMemoryStatusEx: %w", err)
	}
	return status, nil
}

// readSystemTimes returns (idle, kernel, user) in 100ns ticks.
// GetSystemTimes reports kernel time inclusive of idle time, per spec §6.
func readSystemTimes() (idle, kernel, user uint64, err error) {
	var idleFt, kernelFt, userFt windows.Filetime
	r, _, callErr := procGetSystemTimes.Call(
		uintptr(unsafe.Pointer(&idleFt)),
		uintptr(unsafe.Pointer(&kernelFt)),
		uintptr(unsafe.Pointer(&userFt)),
	)
	if r == 0 {
		return 0, 0, 0, fmt.Errorf("GetSystemTimes: %w", callErr)
	}
	return filetimeToTicks(idleFt), filetimeToTicks(kernelFt), filetimeToTicks(userFt), nil
}

// SystemProbe reads system-wide CPU/memory counters via Win32, per
// spec §6.
type SystemProbe struct {
	logger logr.Logger
}

func NewSystemProbe(logger logr.Logger) *SystemProbe {
	return &SystemProbe{logger: logger}
}

func (s *SystemProbe) Capabilities() model.SystemCapabilities {
	return model.SystemCapabilities{
		HasPerCoreCPU:   false, // per-core requires NtQuerySystemInformation, not wired
		HasLoadAvg:      false, // Windows has no load-average concept
		HasCPUFreq:      false,
		HasMemAvailable: true,
	}
}

func (s *SystemProbe) Read() (model.SystemCounters, error) {
	var out model.SystemCounters

	idle, kernel, user, err := readSystemTimes()
	if err != nil {
		return out, err
	}
	out.CPUTotal = model.CPUBuckets{
		Idle:   idle,
		System: kernel - idle,
		User:   user,
	}

	status, err := windowsMemoryStatus()
	if err != nil {
		s.logger.Error(err, "GlobalMemoryStatusEx failed")
	} else {
		out.Memory = model.MemoryCounters{
			TotalBytes:     status.TotalPhys,
			FreeBytes:      status.AvailPhys,
			AvailableBytes: status.AvailPhys,
			SwapTotalBytes: status.TotalPageFile,
			SwapFreeBytes:  status.AvailPageFile,
		}
	}

	if hostname, err := os.Hostname(); err == nil {
		out.Hostname = hostname
	}
	out.CoreCount = int(windowsNumCPU())

	return out, nil
}

func windowsNumCPU() uint32 {
	var sysInfo windows.SystemInfo
	windows.GetSystemInfo(&sysInfo)
	return sysInfo.NumberOfProcessors
}
