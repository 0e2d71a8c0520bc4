package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"vesper-hq/vesper/pkg/load"
)

// requestIDKey is the context key for the per-request identifier.
type requestIDKey struct{}

// RequestIDFrom returns the request identifier assigned at admission,
// or the empty string if the request did not pass through the server's
// dispatch path.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// rejection is the JSON body of an overload response. The load snapshot
// is attached as diagnostic payload.
type rejection struct {
	Message string        `json:"message"`
	Load    load.Snapshot `json:"load"`
}

// admit wraps the request pipeline with the overload gate. The check
// reads a cached load sample and never blocks; the rejection path
// produces a complete 503 response without touching the pipeline, and
// the admit path invokes the pipeline exactly once.
func (s *Server) admit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := uuid.NewString()
		req = req.WithContext(context.WithValue(req.Context(), requestIDKey{}, id))

		if s.monitor != nil && s.monitor.Check() {
			s.reject(w, req, id)
			return
		}

		if s.monitor != nil {
			s.monitor.Acquire()
			defer s.monitor.Release()
		}

		start := time.Now()
		rw := newResponseWriter(w, s.settings)
		next.ServeHTTP(rw, req)

		if s.metrics != nil {
			s.metrics.ObserveRequest(rw.Status(), time.Since(start))
		}
	})
}

// reject writes the overload response. This is the fast path: no route
// lookup, no header decoration, no payload read.
func (s *Server) reject(w http.ResponseWriter, req *http.Request, id string) {
	snap := load.Snapshot{}
	if s.monitor != nil {
		snap = s.monitor.Snapshot()
	}

	s.logger.Warn("request rejected under load",
		"request_id", id,
		"method", req.Method,
		"path", req.URL.Path,
		"heap_bytes", snap.HeapBytes,
		"event_loop_delay", snap.EventLoopDelay,
		"concurrent", snap.Concurrent,
	)

	if s.metrics != nil {
		s.metrics.RejectionObserved()
	}
	if s.events != nil {
		s.events.RequestRejected(snap)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusServiceUnavailable)
	json.NewEncoder(w).Encode(rejection{
		Message: "server is temporarily overloaded",
		Load:    snap,
	})
}
