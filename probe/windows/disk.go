//go:build windows

package windows

import "github.com/arborist-labs/resmon/model"

// DiskProbe would read per-device counters via PDH/WMI. Spec §6 does not
// name a Windows storage-counter surface the way it does for Linux
// /proc/diskstats, so this probe reports no devices rather than
// inventing a data source.
type DiskProbe struct{}

func NewDiskProbe() *DiskProbe { return &DiskProbe{} }

func (d *DiskProbe) Enumerate() ([]model.StorageCounters, error) {
	return nil, nil
}
