//go:build linux

package netlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateByPid_SumsMultipleSocketsPerPid(t *testing.T) {
	sockets := map[uint64]SocketBytes{
		100: {Inode: 100, BytesReceived: 10, BytesSent: 5},
		101: {Inode: 101, BytesReceived: 20, BytesSent: 15},
		200: {Inode: 200, BytesReceived: 1, BytesSent: 1},
	}
	inodeToPid := map[uint64]uint64{
		100: 1,
		101: 1,
		200: 2,
	}

	out := AggregateByPid(sockets, inodeToPid)
	assert.Equal(t, Aggregate{RxBytes: 30, TxBytes: 20}, out[1])
	assert.Equal(t, Aggregate{RxBytes: 1, TxBytes: 1}, out[2])
}

func TestAggregateByPid_DropsOrphanedInodes(t *testing.T) {
	sockets := map[uint64]SocketBytes{
		999: {Inode: 999, BytesReceived: 50, BytesSent: 50},
	}
	out := AggregateByPid(sockets, map[uint64]uint64{})
	assert.Empty(t, out)
}

func TestAggregateByPid_EmptyInputs(t *testing.T) {
	out := AggregateByPid(nil, nil)
	assert.Empty(t, out)
}

func TestParseSocketInode(t *testing.T) {
	tests := []struct {
		target string
		want   uint64
		ok     bool
	}{
		{"socket:[12345]", 12345, true},
		{"socket:[0]", 0, true},
		{"/dev/null", 0, false},
		{"socket:[abc]", 0, false},
		{"socket:[12345", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseSocketInode(tt.target)
		assert.Equal(t, tt.ok, ok, tt.target)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.target)
		}
	}
}

func TestNlmAlign(t *testing.T) {
	assert.Equal(t, 0, nlmAlign(0))
	assert.Equal(t, 4, nlmAlign(1))
	assert.Equal(t, 4, nlmAlign(4))
	assert.Equal(t, 8, nlmAlign(5))
}

func TestExtractTCPInfoBytes_ShortPayloadLeavesZero(t *testing.T) {
	var sb SocketBytes
	extractTCPInfoBytes(make([]byte, 64), &sb)
	assert.Equal(t, uint64(0), sb.BytesSent)
	assert.Equal(t, uint64(0), sb.BytesReceived)
}
