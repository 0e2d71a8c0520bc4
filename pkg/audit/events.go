package audit

import (
	"context"
	"log/slog"
	"time"

	"vesper-hq/vesper/pkg/load"
	"vesper-hq/vesper/pkg/server"
)

// recordTimeout bounds each audit write so a slow disk cannot stall
// the server's event callbacks.
const recordTimeout = 2 * time.Second

// Recorder adapts the store to the server's event observer. Failures
// are logged and dropped: auditing never interferes with serving.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder creates an event recorder backed by the store.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{
		store:  store,
		logger: slog.Default().With("component", "audit.recorder"),
	}
}

// ServerStarted implements server.Events.
func (r *Recorder) ServerStarted(info server.Info) {
	r.record(EventServerStarted, info.URI, info.Protocol, nil)
}

// ServerStopped implements server.Events.
func (r *Recorder) ServerStopped(info server.Info) {
	r.record(EventServerStopped, info.URI, info.Protocol, nil)
}

// RequestRejected implements server.Events.
func (r *Recorder) RequestRejected(snapshot load.Snapshot) {
	r.record(EventRequestRejected, "", "", snapshot)
}

func (r *Recorder) record(eventType, uri, protocol string, detail any) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := r.store.Record(ctx, eventType, uri, protocol, detail); err != nil {
		r.logger.Error("failed to record audit event",
			"event_type", eventType,
			"error", err,
		)
	}
}
