package stats

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"vesper-hq/vesper/pkg/load"
)

// Source supplies the runtime figures included in each report. The
// server core implements it.
type Source interface {
	// ConnectionCount returns the number of live transport connections.
	ConnectionCount() int

	// LoadSnapshot returns the current load measurement.
	LoadSnapshot() load.Snapshot
}

// Reporter logs a runtime stats line on a cron schedule (e.g. hourly
// with "0 * * * *"). It exists for installations without a metrics
// scraper: the periodic log line is their only load record.
type Reporter struct {
	schedule string
	source   Source
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	entry   cron.EntryID
}

// NewReporter creates a reporter for the given cron schedule. An empty
// schedule produces a reporter whose Start is a no-op.
func NewReporter(schedule string, source Source) *Reporter {
	return &Reporter{
		schedule: schedule,
		source:   source,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "stats.reporter"),
	}
}

// Start begins scheduled reporting. Starting a running reporter is a
// no-op.
func (r *Reporter) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}
	if r.schedule == "" {
		r.logger.Info("stats schedule not configured, skipping reporter")
		return nil
	}

	if _, err := cron.ParseStandard(r.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", r.schedule, err)
	}

	entry, err := r.cron.AddFunc(r.schedule, r.report)
	if err != nil {
		return fmt.Errorf("failed to schedule stats report: %w", err)
	}
	r.entry = entry

	r.cron.Start()
	r.running = true

	r.logger.Info("stats reporter started", "schedule", r.schedule)
	return nil
}

// Stop halts scheduled reporting and waits for an in-progress report to
// finish. Stopping a stopped reporter is a no-op.
func (r *Reporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}

	ctx := r.cron.Stop()
	<-ctx.Done()

	// Remove the scheduled job so a later Start does not stack a
	// second one onto the same schedule.
	r.cron.Remove(r.entry)
	r.running = false

	r.logger.Info("stats reporter stopped")
}

// Report logs a stats line immediately, outside the schedule.
func (r *Reporter) Report() {
	r.report()
}

func (r *Reporter) report() {
	snap := r.source.LoadSnapshot()
	r.logger.Info("runtime stats",
		"connections", r.source.ConnectionCount(),
		"heap_bytes", snap.HeapBytes,
		"event_loop_delay", snap.EventLoopDelay,
		"concurrent", snap.Concurrent,
	)
}
