package load

import (
	"testing"
	"time"
)

func TestMonitorZeroLimitsNeverOverloaded(t *testing.T) {
	m := New(Options{})
	m.Start()
	defer m.Stop()

	if m.Check() {
		t.Error("monitor with no limits should never report overload")
	}
}

func TestMonitorConcurrentLimit(t *testing.T) {
	m := New(Options{MaxConcurrent: 2})

	m.Acquire()
	m.Acquire()
	if m.Check() {
		t.Error("at the limit should not be overloaded")
	}

	m.Acquire()
	if !m.Check() {
		t.Error("above the limit should be overloaded")
	}

	m.Release()
	if m.Check() {
		t.Error("back at the limit should not be overloaded")
	}

	m.Release()
	m.Release()
}

func TestMonitorSnapshotTracksConcurrency(t *testing.T) {
	m := New(Options{})

	m.Acquire()
	defer m.Release()

	snap := m.Snapshot()
	if snap.Concurrent != 1 {
		t.Errorf("snapshot concurrent = %d, want 1", snap.Concurrent)
	}
}

func TestMonitorSampling(t *testing.T) {
	m := New(Options{SampleInterval: 10 * time.Millisecond})
	m.Start()
	defer m.Stop()

	before := m.Snapshot().Timestamp
	time.Sleep(50 * time.Millisecond)
	after := m.Snapshot()

	if !after.Timestamp.After(before) {
		t.Error("snapshot timestamp should advance while sampling")
	}
	if after.HeapBytes == 0 {
		t.Error("snapshot should carry heap usage")
	}
}

func TestMonitorStartStopIdempotent(t *testing.T) {
	m := New(Options{SampleInterval: 10 * time.Millisecond})

	m.Start()
	m.Start()
	m.Stop()
	m.Stop()

	// A fresh cycle must work after a stop.
	m.Start()
	m.Stop()
}
