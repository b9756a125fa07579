package sampler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int64
}

func (c *countingSource) Refresh() error {
	atomic.AddInt64(&c.calls, 1)
	return nil
}

func (c *countingSource) count() int64 { return atomic.LoadInt64(&c.calls) }

func TestBackgroundSampler_RunsOnCadence(t *testing.T) {
	src := &countingSource{}
	s := New(src, 20*time.Millisecond, logr.Discard())
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return src.count() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestBackgroundSampler_SetIntervalTakesEffect(t *testing.T) {
	src := &countingSource{}
	s := New(src, time.Hour, logr.Discard())
	s.Start()
	defer s.Stop()

	// The initial interval is an hour; without SetInterval this test would
	// time out waiting for a second sample.
	s.SetInterval(10 * time.Millisecond)
	require.Eventually(t, func() bool { return src.count() >= 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, s.Interval())
}

func TestBackgroundSampler_RequestRefreshIsImmediate(t *testing.T) {
	src := &countingSource{}
	s := New(src, time.Hour, logr.Discard())
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return src.count() >= 1 }, time.Second, 5*time.Millisecond)
	before := src.count()
	s.RequestRefresh()
	require.Eventually(t, func() bool { return src.count() > before }, time.Second, 5*time.Millisecond)
}

func TestBackgroundSampler_StopIsIdempotent(t *testing.T) {
	src := &countingSource{}
	s := New(src, 5*time.Millisecond, logr.Discard())
	s.Start()
	require.Eventually(t, func() bool { return src.count() >= 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop() // must not block or panic the second time
}

func TestBackgroundSampler_StopBeforeStartIsNoop(t *testing.T) {
	s := New(&countingSource{}, time.Second, logr.Discard())
	s.Stop()
}

func TestBackgroundSampler_StopStopsFurtherSampling(t *testing.T) {
	src := &countingSource{}
	s := New(src, 5*time.Millisecond, logr.Discard())
	s.Start()
	require.Eventually(t, func() bool { return src.count() >= 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := src.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, src.count())
}
