//go:build linux

package linux

import (
	"fmt"
	"strings"

	"github.com/arborist-labs/resmon/model"
	"github.com/arborist-labs/resmon/util"
)

// DiskProbe reads /proc/diskstats. Adapted from the teacher's
// DiskCollector, generalized to return StorageCounters.
type DiskProbe struct {
	procRoot string
}

func NewDiskProbe(procRoot string) *DiskProbe {
	return &DiskProbe{procRoot: procRoot}
}

func (d *DiskProbe) Enumerate() ([]model.StorageCounters, error) {
	lines, err := util.ReadFileLines(d.procRoot + "/diskstats")
	if err != nil {
		return nil, fmt.Errorf("read /proc/diskstats: %w", err)
	}

	var disks []model.StorageCounters
	for _, line := range lines {
		ds, ok := parseDiskstatLine(line)
		if !ok {
			continue
		}
		if isWholeDisk(string(ds.Device)) {
			disks = append(disks, ds)
		}
	}
	return disks, nil
}

// parseDiskstatLine parses one /proc/diskstats line:
// major minor name reads_completed reads_merged sectors_read read_time
// writes_completed writes_merged sectors_written write_time ios_in_progress io_time weighted_io_time
func parseDiskstatLine(line string) (model.StorageCounters, bool) {
	fields := strings.Fields(line)
	if len(fields) < 14 {
		return model.StorageCounters{}, false
	}
	const sectorSize = 512
	return model.StorageCounters{
		Device:     model.DeviceName(fields[2]),
		ReadOps:    util.ParseUint64(fields[3]),
		ReadBytes:  util.ParseUint64(fields[5]) * sectorSize,
		WriteOps:   util.ParseUint64(fields[7]),
		WriteBytes: util.ParseUint64(fields[9]) * sectorSize,
		TimeInIOMs: util.ParseUint64(fields[12]),
	}, true
}

// isWholeDisk filters out partitions, keeping whole block devices only.
func isWholeDisk(name string) bool {
	if strings.HasPrefix(name, "loop") {
		return false
	}
	if strings.HasPrefix(name, "nvme") {
		return !strings.Contains(name[4:], "p")
	}
	for _, prefix := range []string{"sd", "vd", "xvd", "hd"} {
		if strings.HasPrefix(name, prefix) {
			suffix := name[len(prefix):]
			return len(suffix) == 1 && suffix[0] >= 'a' && suffix[0] <= 'z'
		}
	}
	if strings.HasPrefix(name, "dm-") {
		return true
	}
	return false
}
