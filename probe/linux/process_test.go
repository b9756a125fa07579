//go:build linux

package linux

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStat_CommWithSpacesAndParens(t *testing.T) {
	// comm can itself contain "(" and ")"; the parser must split on the
	// last ")" to find the real field boundary.
	line := buildStatLine("weird (name) proc", "S", 100, 50, 4, 5000)
	c, ok := parseStat(line)
	require.True(t, ok)
	assert.Equal(t, "weird (name) proc", c.Name)
	assert.Equal(t, byte('S'), c.RawState)
	assert.Equal(t, uint64(100), c.UserTime)
	assert.Equal(t, uint64(50), c.SystemTime)
	assert.Equal(t, 4, c.ThreadCount)
	assert.Equal(t, uint64(5000), c.Identity.StartTimeTicks)
}

func TestParseStat_TooFewFieldsIsRejected(t *testing.T) {
	_, ok := parseStat("1 (sh) S 1 1")
	assert.False(t, ok)
}

func TestParseStat_MalformedMissingParens(t *testing.T) {
	_, ok := parseStat("not a stat line at all")
	assert.False(t, ok)
}

func TestParseCmdline_EmptyIsKernelThread(t *testing.T) {
	assert.Equal(t, "[kworker/0:1]", parseCmdline("", "kworker/0:1"))
}

func TestParseCmdline_NulSeparatedArgv(t *testing.T) {
	raw := "bash\x00-c\x00echo hi\x00"
	assert.Equal(t, "bash -c echo hi", parseCmdline(raw, "bash"))
}

func TestParsePidName(t *testing.T) {
	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"1234", 1234, true},
		{"self", 0, false},
		{"net", 0, false},
		{"0", 0, false},
		{"-5", 0, false},
	}
	for _, tt := range tests {
		got, ok := parsePidName(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.name)
		}
	}
}

// buildStatLine constructs a syntactically valid /proc/<pid>/stat line,
// placing utime/stime/threads/starttime at the field indices parseStat
// actually reads (11, 12, 17, 19); the other fields are zero filler.
func buildStatLine(comm, state string, utime, stime, threads, startTicks int) string {
	rest := make([]string, 22)
	for i := range rest {
		rest[i] = "0"
	}
	rest[0] = state
	rest[1] = "1" // ppid
	rest[11] = strconv.Itoa(utime)
	rest[12] = strconv.Itoa(stime)
	rest[15] = "20" // priority
	rest[16] = "0"  // nice
	rest[17] = strconv.Itoa(threads)
	rest[19] = strconv.Itoa(startTicks)
	rest[20] = "1048576" // vsize
	rest[21] = "256"     // rss pages
	return "1 (" + comm + ") " + strings.Join(rest, " ")
}
