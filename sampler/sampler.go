// Package sampler implements BackgroundSampler (spec §4.5): a dedicated
// worker that calls a Source's Refresh() on a cadence and supports
// interval change plus immediate refresh requests without a restart. The
// sampler itself does not call a probe or hand counters to a callback;
// each Source (a model) reads its own probe inside Refresh().
package sampler

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
)

// sleepSlice bounds the latency of stop()/requestRefresh() and interval
// changes: the long inter-sample sleep is broken into slices this long.
const sleepSlice = 50 * time.Millisecond

// Source is the minimal probe contract the sampler needs: pull one
// sample, deliver it. BackgroundSampler is generic over it so the same
// loop drives ProcessModel, SystemModel, GpuModel, or StorageModel
// refreshes interchangeably.
type Source interface {
	Refresh() error
}

// BackgroundSampler owns a Source and drives Refresh() on a cadence from
// a dedicated goroutine, matching the teacher's one-thread-per-sampler
// design (spec §5: one sampler thread per probe domain).
type BackgroundSampler struct {
	source Source
	logger logr.Logger

	intervalMs int64 // atomic

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
	refreshCh chan struct{}
}

// New constructs a sampler with the given initial interval.
func New(source Source, interval time.Duration, logger logr.Logger) *BackgroundSampler {
	s := &BackgroundSampler{
		source:    source,
		logger:    logger,
		refreshCh: make(chan struct{}, 1),
	}
	atomic.StoreInt64(&s.intervalMs, interval.Milliseconds())
	return s
}

// Interval returns the current interval. Reflects the most recent
// SetInterval call immediately, regardless of whether the worker loop
// has observed it yet (testable property 8).
func (s *BackgroundSampler) Interval() time.Duration {
	return time.Duration(atomic.LoadInt64(&s.intervalMs)) * time.Millisecond
}

// SetInterval changes the cadence. Takes effect by the next loop
// iteration without requiring a restart; the sleep is sliced at 50ms so
// latency is bounded (spec §4.5).
func (s *BackgroundSampler) SetInterval(interval time.Duration) {
	atomic.StoreInt64(&s.intervalMs, interval.Milliseconds())
}

// RequestRefresh short-circuits the current sleep so the probe is
// called immediately.
func (s *BackgroundSampler) RequestRefresh() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}

// Start spawns the dedicated worker goroutine. Calling Start while
// already running is a no-op.
func (s *BackgroundSampler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.loop(s.stopCh, s.doneCh)
}

// Stop is idempotent and safe to call from any goroutine; it blocks
// until the worker has exited (join semantics). Calling Stop before
// Start is a no-op (testable property 12).
func (s *BackgroundSampler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stopCh := s.stopCh
	doneCh := s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func (s *BackgroundSampler) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		t0 := time.Now()
		if err := s.source.Refresh(); err != nil {
			s.logger.Error(err, "sampler refresh failed")
		}
		drainRefreshRequest(s.refreshCh)

	sleep:
		for {
			// Re-read the interval every slice so SetInterval applies to the
			// sleep already in progress.
			remaining := s.Interval() - time.Since(t0)
			if remaining <= 0 {
				break
			}
			slice := sleepSlice
			if remaining < slice {
				slice = remaining
			}
			select {
			case <-stopCh:
				return
			case <-s.refreshCh:
				break sleep
			case <-time.After(slice):
			}
		}
	}
}

func drainRefreshRequest(ch chan struct{}) {
	select {
	case <-ch:
	default:
	}
}
