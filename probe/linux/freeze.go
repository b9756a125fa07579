//go:build linux

package linux

import (
	"strings"

	"github.com/arborist-labs/resmon/util"
)

// readFreezeState reports whether a process's cgroup freezer currently
// reports FROZEN or FREEZING, which the model surfaces as the
// "Suspended" display state rather than the raw stopped/tracing state.
// Both cgroup v1 (freezer.state == "FROZEN"/"FREEZING") and v2
// (cgroup.freeze == "1") layouts are checked; any failure to read is
// treated as "not suspended", never an error.
func readFreezeState(sysRoot, procDir string, pid int) bool {
	cgroupLine, err := util.ReadFileString(procDir + "/cgroup")
	if err != nil {
		return false
	}
	path := parseCgroupPath(cgroupLine)
	if path == "" {
		return false
	}

	if v2, err := util.ReadFileString(sysRoot + "/fs/cgroup" + path + "/cgroup.freeze"); err == nil {
		return strings.TrimSpace(v2) == "1"
	}
	if v1, err := util.ReadFileString(sysRoot + "/fs/cgroup/freezer" + path + "/freezer.state"); err == nil {
		state := strings.TrimSpace(v1)
		return state == "FROZEN" || state == "FREEZING"
	}
	return false
}

// parseCgroupPath extracts the path portion of the first line of
// /proc/<pid>/cgroup: "<hierarchy-id>:<controllers>:<path>".
func parseCgroupPath(cgroupFile string) string {
	line := strings.SplitN(cgroupFile, "\n", 2)[0]
	parts := strings.SplitN(line, ":", 3)
	if len(parts) != 3 {
		return ""
	}
	return parts[2]
}
