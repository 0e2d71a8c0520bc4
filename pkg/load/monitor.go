package load

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures the overload monitor. A zero limit disables the
// corresponding check, so the zero value yields a monitor that never
// reports overload.
type Options struct {
	// SampleInterval is how often scheduler delay and heap usage are
	// sampled. Default: 500ms.
	SampleInterval time.Duration

	// MaxHeapBytes reports overload once heap usage exceeds this limit.
	MaxHeapBytes uint64

	// MaxEventLoopDelay reports overload once the sampled scheduler
	// delay exceeds this limit.
	MaxEventLoopDelay time.Duration

	// MaxConcurrent reports overload once this many requests are in
	// flight.
	MaxConcurrent int64
}

// Snapshot is a point-in-time view of the measured load. It is attached
// to admission rejection responses as diagnostic payload.
type Snapshot struct {
	// Timestamp is when the sample was taken.
	Timestamp time.Time `json:"timestamp"`

	// HeapBytes is the sampled heap allocation.
	HeapBytes uint64 `json:"heap_bytes"`

	// EventLoopDelay is the sampled scheduler delay: how late the
	// sampling tick fired relative to its interval.
	EventLoopDelay time.Duration `json:"event_loop_delay_ns"`

	// Concurrent is the number of requests in flight.
	Concurrent int64 `json:"concurrent"`
}

// Monitor samples process load in the background and answers the
// admission question from the cached sample. Check never blocks and
// never measures; only the sampler goroutine touches the runtime.
type Monitor struct {
	opts Options

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	snap       atomic.Pointer[Snapshot]
	concurrent atomic.Int64
}

// New creates a monitor from the given options.
func New(opts Options) *Monitor {
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = 500 * time.Millisecond
	}
	m := &Monitor{opts: opts}
	m.snap.Store(&Snapshot{Timestamp: time.Now()})
	return m
}

// Start begins background sampling. Starting a running monitor is a
// no-op, so a server restart cycle never doubles the sampler.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})

	go m.sample(m.stopCh, m.doneCh)
}

// Stop halts background sampling and waits for the sampler to exit.
// Stopping a stopped monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// sample is the sampler goroutine. Scheduler delay is measured as how
// late each tick is delivered relative to the configured interval.
func (m *Monitor) sample(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(m.opts.SampleInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			delay := now.Sub(last) - m.opts.SampleInterval
			if delay < 0 {
				delay = 0
			}
			last = now

			var mem runtime.MemStats
			runtime.ReadMemStats(&mem)

			m.snap.Store(&Snapshot{
				Timestamp:      now,
				HeapBytes:      mem.HeapAlloc,
				EventLoopDelay: delay,
				Concurrent:     m.concurrent.Load(),
			})
		}
	}
}

// Check reports whether the server is currently overloaded. It reads the
// cached snapshot and compares it against the configured limits; it
// never performs a measurement itself.
func (m *Monitor) Check() bool {
	snap := m.snap.Load()

	if m.opts.MaxConcurrent > 0 && m.concurrent.Load() > m.opts.MaxConcurrent {
		return true
	}
	if m.opts.MaxHeapBytes > 0 && snap.HeapBytes > m.opts.MaxHeapBytes {
		return true
	}
	if m.opts.MaxEventLoopDelay > 0 && snap.EventLoopDelay > m.opts.MaxEventLoopDelay {
		return true
	}
	return false
}

// Snapshot returns the current load snapshot with an up-to-date
// in-flight count.
func (m *Monitor) Snapshot() Snapshot {
	snap := *m.snap.Load()
	snap.Concurrent = m.concurrent.Load()
	return snap
}

// Acquire records a request entering the server. The caller must pair it
// with Release when the request completes.
func (m *Monitor) Acquire() {
	m.concurrent.Add(1)
}

// Release records a request leaving the server.
func (m *Monitor) Release() {
	m.concurrent.Add(-1)
}
