//go:build linux

package linux

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/arborist-labs/resmon/model"
	"github.com/arborist-labs/resmon/util"
)

// SystemProbe reads /proc/stat, /proc/meminfo, /proc/loadavg, and
// /proc/net/dev plus /sys/class/net/<iface> link state.
type SystemProbe struct {
	procRoot string
	sysRoot  string
	logger   logr.Logger
}

func NewSystemProbe(procRoot, sysRoot string, logger logr.Logger) *SystemProbe {
	return &SystemProbe{procRoot: procRoot, sysRoot: sysRoot, logger: logger}
}

func (s *SystemProbe) Capabilities() model.SystemCapabilities {
	_, availErr := readMemAvailable(s.procRoot)
	return model.SystemCapabilities{
		HasPerCoreCPU:   true,
		HasLoadAvg:      true,
		HasCPUFreq:      false, // Read does not populate CPUFreqMHz
		HasMemAvailable: availErr == nil,
	}
}

func (s *SystemProbe) Read() (model.SystemCounters, error) {
	var out model.SystemCounters

	total, perCore, err := readCPUStat(s.procRoot)
	if err != nil {
		return out, fmt.Errorf("read /proc/stat: %w", err)
	}
	out.CPUTotal = total
	out.CPUPerCore = perCore
	out.CoreCount = len(perCore)

	mem, err := readMemInfo(s.procRoot)
	if err != nil {
		s.logger.Error(err, "read /proc/meminfo failed")
	}
	out.Memory = mem

	if load, err := readLoadAvg(s.procRoot); err == nil {
		out.LoadAvg = load
	}

	if hostname, err := os.Hostname(); err == nil {
		out.Hostname = hostname
	}

	ifaces, err := readNetDev(s.procRoot)
	if err != nil {
		s.logger.Error(err, "read /proc/net/dev failed")
	} else {
		for i := range ifaces {
			augmentInterfaceState(s.sysRoot, &ifaces[i])
		}
	}
	out.NetworkInterfaces = ifaces

	return out, nil
}

// readCPUStat parses /proc/stat: the aggregate "cpu " line, then one
// "cpuN" line per core, in the fixed ten-bucket order. Older kernels
// reporting fewer than ten fields leave the remainder zero.
func readCPUStat(procRoot string) (model.CPUBuckets, []model.CPUBuckets, error) {
	lines, err := util.ReadFileLines(procRoot + "/stat")
	if err != nil {
		return model.CPUBuckets{}, nil, err
	}
	var total model.CPUBuckets
	var perCore []model.CPUBuckets
	for _, line := range lines {
		if !strings.HasPrefix(line, "cpu") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		b := parseCPUBuckets(fields[1:])
		if fields[0] == "cpu" {
			total = b
		} else {
			perCore = append(perCore, b)
		}
	}
	return total, perCore, nil
}

func parseCPUBuckets(fields []string) model.CPUBuckets {
	get := func(i int) uint64 {
		if i >= len(fields) {
			return 0
		}
		return util.ParseUint64(fields[i])
	}
	return model.CPUBuckets{
		User:      get(0),
		Nice:      get(1),
		System:    get(2),
		Idle:      get(3),
		IOWait:    get(4),
		IRQ:       get(5),
		SoftIRQ:   get(6),
		Steal:     get(7),
		Guest:     get(8),
		GuestNice: get(9),
	}
}

// readAggregateCPU returns just the "cpu " total line, used for the
// per-process CPU% denominator.
func readAggregateCPU(procRoot string) (model.CPUBuckets, error) {
	total, _, err := readCPUStat(procRoot)
	return total, err
}

func readMemInfo(procRoot string) (model.MemoryCounters, error) {
	kv, err := util.ParseKeyValueFile(procRoot + "/meminfo")
	if err != nil {
		return model.MemoryCounters{}, err
	}
	kb := func(key string) uint64 { return util.ParseUint64(kv[key]) * 1024 }
	return model.MemoryCounters{
		TotalBytes:     kb("MemTotal"),
		FreeBytes:      kb("MemFree"),
		AvailableBytes: kb("MemAvailable"),
		BuffersBytes:   kb("Buffers"),
		CachedBytes:    kb("Cached"),
		SwapTotalBytes: kb("SwapTotal"),
		SwapFreeBytes:  kb("SwapFree"),
	}, nil
}

func readMemAvailable(procRoot string) (uint64, error) {
	kv, err := util.ParseKeyValueFile(procRoot + "/meminfo")
	if err != nil {
		return 0, err
	}
	if _, ok := kv["MemAvailable"]; !ok {
		return 0, fmt.Errorf("MemAvailable not present")
	}
	return util.ParseUint64(kv["MemAvailable"]) * 1024, nil
}

func readLoadAvg(procRoot string) (model.LoadAvg, error) {
	line, err := util.ReadFileString(procRoot + "/loadavg")
	if err != nil {
		return model.LoadAvg{}, err
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return model.LoadAvg{}, fmt.Errorf("malformed loadavg line")
	}
	return model.LoadAvg{
		One:     util.ParseFloat64(fields[0]),
		Five:    util.ParseFloat64(fields[1]),
		Fifteen: util.ParseFloat64(fields[2]),
	}, nil
}

// readNetDev parses /proc/net/dev: two header lines, then
// "<iface>: rxBytes rxPackets ... txBytes ...". "lo" is included in the
// per-interface list but excluded from system totals by the caller
// (model layer).
func readNetDev(procRoot string) ([]model.NetworkInterfaceCounters, error) {
	lines, err := util.ReadFileLines(procRoot + "/net/dev")
	if err != nil {
		return nil, err
	}
	var out []model.NetworkInterfaceCounters
	for i, line := range lines {
		if i < 2 {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(line[:idx])
		fields := strings.Fields(line[idx+1:])
		if len(fields) < 9 {
			continue
		}
		out = append(out, model.NetworkInterfaceCounters{
			Name:        name,
			DisplayName: name,
			RxBytes:     util.ParseUint64(fields[0]),
			TxBytes:     util.ParseUint64(fields[8]),
		})
	}
	return out, nil
}

func augmentInterfaceState(sysRoot string, iface *model.NetworkInterfaceCounters) {
	base := sysRoot + "/class/net/" + iface.Name
	if state, err := util.ReadFileString(base + "/operstate"); err == nil {
		iface.IsUp = strings.TrimSpace(state) == "up"
	}
	iface.LinkSpeedMbps = -1
	if speed, err := util.ReadFileString(base + "/speed"); err == nil {
		if v, err := strconv.ParseInt(strings.TrimSpace(speed), 10, 64); err == nil {
			iface.LinkSpeedMbps = v
		}
	}
}
