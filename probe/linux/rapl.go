//go:build linux

package linux

import (
	"path/filepath"

	"github.com/arborist-labs/resmon/util"
)

// ReadRAPLEnergyMicrojoules sums the energy_uj counters under every
// /sys/class/powercap/intel-rapl* domain. Returns 0 and no error when the
// platform exposes no RAPL domains (e.g. non-Intel hardware, VMs); the
// caller treats 0 as "no reading" rather than a real energy value.
func ReadRAPLEnergyMicrojoules(sysRoot string) uint64 {
	matches, err := filepath.Glob(sysRoot + "/class/powercap/intel-rapl*/energy_uj")
	if err != nil {
		return 0
	}
	var total uint64
	for _, path := range matches {
		s, err := util.ReadFileString(path)
		if err != nil {
			continue
		}
		total += util.ParseUint64(s)
	}
	return total
}

func raplAvailable(sysRoot string) bool {
	matches, err := filepath.Glob(sysRoot + "/class/powercap/intel-rapl*/energy_uj")
	return err == nil && len(matches) > 0
}
