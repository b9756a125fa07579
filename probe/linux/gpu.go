//go:build linux

package linux

import (
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"

	"github.com/arborist-labs/resmon/model"
	"github.com/arborist-labs/resmon/util"
)

// GpuProbe reports GPU counters reachable without a vendor dynamic
// library: DRM sysfs device/memory-info files (VRAM total and used). It
// does not load NVML or ROCm-SMI, so utilization, temperature, power,
// clocks and PCIe counters are always left zero, and cards without
// mem_info_vram_total are not reported.
type GpuProbe struct {
	sysRoot string
	logger  logr.Logger
}

func NewGpuProbe(sysRoot string, logger logr.Logger) *GpuProbe {
	return &GpuProbe{sysRoot: sysRoot, logger: logger}
}

func (g *GpuProbe) Capabilities() model.GpuCapabilities {
	cards, _ := filepath.Glob(g.sysRoot + "/class/drm/card*/device/mem_info_vram_total")
	return model.GpuCapabilities{
		HasGPU:            len(cards) > 0,
		HasPowerMetrics:   false,
		HasFanSpeed:       false,
		HasEncoderMetrics: false,
		HasPerProcessMem:  false,
	}
}

func (g *GpuProbe) Enumerate() ([]model.GpuCounters, error) {
	cards, err := filepath.Glob(g.sysRoot + "/class/drm/card*/device")
	if err != nil {
		return nil, err
	}
	var out []model.GpuCounters
	for _, dev := range cards {
		total, errTotal := util.ReadFileString(dev + "/mem_info_vram_total")
		if errTotal != nil {
			continue // not a GPU device node (could be a display-only card)
		}
		used, _ := util.ReadFileString(dev + "/mem_info_vram_used")
		id := filepath.Base(filepath.Dir(dev))
		out = append(out, model.GpuCounters{
			GpuId:            model.GpuId(strings.TrimPrefix(id, "card")),
			MemoryTotalBytes: util.ParseUint64(total),
			MemoryUsedBytes:  util.ParseUint64(used),
		})
	}
	return out, nil
}
