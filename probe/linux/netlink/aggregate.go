//go:build linux

package netlink

// Aggregate is the summed rx/tx byte total attributed to one pid.
type Aggregate struct {
	RxBytes uint64
	TxBytes uint64
}

// AggregateByPid joins dumped sockets to their owning pid via
// inodeToPid, summing byte counters per pid in a single pass. Sockets
// whose inode has no entry in inodeToPid (kernel-owned or orphaned) are
// dropped, per spec §4.6 / testable property 6.
func AggregateByPid(sockets map[uint64]SocketBytes, inodeToPid map[uint64]uint64) map[uint64]Aggregate {
	out := make(map[uint64]Aggregate)
	for inode, sb := range sockets {
		pid, ok := inodeToPid[inode]
		if !ok {
			continue
		}
		agg := out[pid]
		agg.RxBytes += sb.BytesReceived
		agg.TxBytes += sb.BytesSent
		out[pid] = agg
	}
	return out
}
