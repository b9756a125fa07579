//go:build windows

package windows

import "github.com/arborist-labs/resmon/model"

// GpuProbe would bind DXGI + NVML + D3DKMT for per-process GPU memory and
// utilization (spec §6). None of those vendor libraries are available to
// link against here; per spec §9 ("never crash on absent GPU vendor
// libraries") this probe reports itself fully unavailable rather than
// fabricating a binding.
type GpuProbe struct{}

func NewGpuProbe() *GpuProbe { return &GpuProbe{} }

func (g *GpuProbe) Capabilities() model.GpuCapabilities {
	return model.GpuCapabilities{}
}

func (g *GpuProbe) Enumerate() ([]model.GpuCounters, error) {
	return nil, nil
}
