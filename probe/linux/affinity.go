//go:build linux

package linux

import "golang.org/x/sys/unix"

// readAffinity returns the process's CPU affinity mask truncated to 64
// bits, per spec §6. A sched_getaffinity failure (process exited,
// permission denied) yields mask 0, not an error.
func readAffinity(pid int) uint64 {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(pid, &set); err != nil {
		return 0
	}
	var mask uint64
	for cpu := 0; cpu < 64; cpu++ {
		if set.IsSet(cpu) {
			mask |= 1 << uint(cpu)
		}
	}
	return mask
}
