//go:build linux

package netlink

import "encoding/binary"

// tcp_info field offsets within the INET_DIAG_INFO attribute payload, as
// laid out by the Linux kernel's struct tcp_info (include/uapi/linux/tcp.h).
// Both fields are 64-bit counters; a kernel older than the one that added
// them returns a shorter payload, which the length checks below catch.
const (
	tcpInfoBytesAckedOffset   = 120 // tcpi_bytes_acked
	tcpInfoBytesReceivedOffset = 128 // tcpi_bytes_received
)

// extractTCPInfoBytes reads bytesSent/bytesReceived from a tcp_info
// payload by explicit offset and length check, per spec §4.6: a short
// payload (older kernel, UDP socket with no tcp_info at all) simply
// leaves the corresponding field at zero rather than panicking.
func extractTCPInfoBytes(payload []byte, sb *SocketBytes) {
	if len(payload) >= tcpInfoBytesReceivedOffset+8 {
		sb.BytesReceived = binary.LittleEndian.Uint64(payload[tcpInfoBytesReceivedOffset : tcpInfoBytesReceivedOffset+8])
	}
	if len(payload) >= tcpInfoBytesAckedOffset+8 {
		sb.BytesSent = binary.LittleEndian.Uint64(payload[tcpInfoBytesAckedOffset : tcpInfoBytesAckedOffset+8])
	}
}
