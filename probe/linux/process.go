//go:build linux

package linux

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/go-logr/logr"

	"github.com/arborist-labs/resmon/model"
	"github.com/arborist-labs/resmon/probe/linux/netlink"
	"github.com/arborist-labs/resmon/util"
)

var clockTicksPerSecond uint64 = 100 // sysconf(_SC_CLK_TCK) on nearly every Linux build

// ProcessProbe walks /proc/<pid>/* to produce raw ProcessCounters.
type ProcessProbe struct {
	procRoot string
	sysRoot  string
	logger   logr.Logger

	netlink *netlink.Client

	userCacheMu sync.Mutex
	userCache   map[uint32]string
}

// NewProcessProbe builds a probe rooted at the given /proc and /sys
// mount points (defaults let production code pass "/proc", "/sys"; tests
// can pass a fixture directory).
func NewProcessProbe(procRoot, sysRoot string, nl *netlink.Client, logger logr.Logger) *ProcessProbe {
	return &ProcessProbe{
		procRoot:  procRoot,
		sysRoot:   sysRoot,
		logger:    logger,
		netlink:   nl,
		userCache: make(map[uint32]string),
	}
}

func (p *ProcessProbe) TicksPerSecond() uint64 { return clockTicksPerSecond }

func (p *ProcessProbe) SystemTotalMemoryBytes() uint64 {
	mem, err := readMemInfo(p.procRoot)
	if err != nil {
		return 0
	}
	return mem.TotalBytes
}

// SystemEnergyMicrojoules sums the current RAPL energy_uj counters, or
// returns 0 on hardware with no powercap domains (spec §6/§9).
func (p *ProcessProbe) SystemEnergyMicrojoules() uint64 {
	return ReadRAPLEnergyMicrojoules(p.sysRoot)
}

func (p *ProcessProbe) Capabilities() model.ProcessCapabilities {
	return model.ProcessCapabilities{
		HasIOCounters:      true,
		HasThreadCount:     true,
		HasUser:            true,
		HasPowerUsage:      raplAvailable(p.sysRoot),
		HasNetworkCounters: p.netlink != nil && p.netlink.Available(),
		HasCPUAffinity:     true,
		HasCgroupState:     true,
	}
}

// TotalCPUTime returns the system-wide cumulative tick count (sum of the
// aggregate /proc/stat "cpu " line), the denominator for per-process CPU%.
func (p *ProcessProbe) TotalCPUTime() (uint64, error) {
	buckets, err := readAggregateCPU(p.procRoot)
	if err != nil {
		return 0, err
	}
	return buckets.Total(), nil
}

// Enumerate walks every numeric entry under procRoot and produces one
// ProcessCounters per process whose /proc/<pid>/stat could be read. A
// process that vanishes mid-walk is skipped, never treated as a batch
// failure.
func (p *ProcessProbe) Enumerate() ([]model.ProcessCounters, error) {
	entries, err := os.ReadDir(p.procRoot)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.procRoot, err)
	}

	var inodeToPid map[uint64]uint64
	var sockStats map[uint64]netlink.SocketBytes
	if p.netlink != nil && p.netlink.Available() {
		inodeToPid, err = netlink.BuildInodeToPidMap(p.procRoot)
		if err != nil {
			p.logger.V(1).Info("inode to pid map build failed", "error", err)
		}
		sockStats, err = p.netlink.QuerySockets()
		if err != nil {
			p.logger.V(1).Info("netlink socket query failed", "error", err)
		}
	}
	netByPid := netlink.AggregateByPid(sockStats, inodeToPid)

	out := make([]model.ProcessCounters, 0, len(entries))
	for _, e := range entries {
		pid, ok := parsePidName(e.Name())
		if !ok {
			continue
		}
		cur, ok := p.readProcess(pid)
		if !ok {
			continue
		}
		if agg, ok := netByPid[uint64(pid)]; ok {
			cur.NetReceivedBytes = agg.RxBytes
			cur.NetSentBytes = agg.TxBytes
		}
		out = append(out, cur)
	}
	return out, nil
}

func parsePidName(name string) (int, bool) {
	pid, err := strconv.Atoi(name)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func (p *ProcessProbe) readProcess(pid int) (model.ProcessCounters, bool) {
	dir := fmt.Sprintf("%s/%d", p.procRoot, pid)

	statLine, err := util.ReadFileString(dir + "/stat")
	if err != nil {
		return model.ProcessCounters{}, false
	}
	cur, ok := parseStat(statLine)
	if !ok {
		return model.ProcessCounters{}, false
	}

	if cmdline, err := util.ReadFileString(dir + "/cmdline"); err == nil {
		cur.Command = parseCmdline(cmdline, cur.Name)
	} else {
		cur.Command = "[" + cur.Name + "]"
	}

	if kv, err := util.ParseKeyValueFile(dir + "/status"); err == nil {
		if uidLine, ok := kv["Uid"]; ok {
			cur.User = p.resolveUser(uidLine)
		}
	}

	if kv, err := util.ParseKeyValueFile(dir + "/io"); err == nil {
		cur.ReadBytes = util.ParseUint64(kv["read_bytes"])
		cur.WriteBytes = util.ParseUint64(kv["write_bytes"])
	}

	cur.Suspended = readFreezeState(p.sysRoot, dir, pid)
	cur.CPUAffinityMask = readAffinity(pid)

	return cur, true
}

// parseCmdline recovers argv from the NUL-separated /proc/<pid>/cmdline
// file. An empty file denotes a kernel thread, rendered as "[name]".
func parseCmdline(raw string, name string) string {
	raw = strings.TrimRight(raw, "\x00")
	if raw == "" {
		return "[" + name + "]"
	}
	return strings.ReplaceAll(raw, "\x00", " ")
}

// parseStat parses one line of /proc/<pid>/stat. Field 2 (comm) is
// parenthesized and may itself contain spaces or parentheses, so the
// parser splits on the *last* ')' to recover the remaining fields
// reliably, per spec §6.
func parseStat(line string) (model.ProcessCounters, bool) {
	openParen := strings.IndexByte(line, '(')
	closeParen := strings.LastIndexByte(line, ')')
	if openParen < 0 || closeParen < 0 || closeParen < openParen {
		return model.ProcessCounters{}, false
	}
	pidField := strings.TrimSpace(line[:openParen])
	pid, err := strconv.Atoi(pidField)
	if err != nil {
		return model.ProcessCounters{}, false
	}
	name := line[openParen+1 : closeParen]
	rest := strings.Fields(line[closeParen+1:])
	if len(rest) < 22 {
		return model.ProcessCounters{}, false
	}

	var c model.ProcessCounters
	c.Identity.Pid = model.Pid(pid)
	c.Name = name
	if len(rest) > 0 {
		c.RawState = rest[0][0]
	}
	c.ParentPid = model.Pid(util.ParseInt(rest[1]))
	c.UserTime = util.ParseUint64(rest[11])
	c.SystemTime = util.ParseUint64(rest[12])
	c.Nice = util.ParseInt(rest[16])
	c.BasePriority = util.ParseInt(rest[15])
	c.ThreadCount = util.ParseInt(rest[17])
	c.Identity.StartTimeTicks = util.ParseUint64(rest[19])
	c.VirtualBytes = util.ParseUint64(rest[20])
	c.RSSBytes = util.ParseUint64(rest[21]) * pageSize
	return c, true
}

const pageSize = 4096

func (p *ProcessProbe) resolveUser(uidStatusLine string) string {
	fields := strings.Fields(uidStatusLine)
	if len(fields) == 0 {
		return ""
	}
	uid64, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return fields[0]
	}
	uid := uint32(uid64)

	p.userCacheMu.Lock()
	defer p.userCacheMu.Unlock()
	if name, ok := p.userCache[uid]; ok {
		return name
	}
	name := lookupUsername(uid)
	p.userCache[uid] = name
	return name
}
