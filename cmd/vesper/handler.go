package main

import (
	"encoding/json"
	"net/http"
	"time"

	"vesper-hq/vesper/pkg/server"
)

// newPipeline builds the default request pipeline: a health endpoint
// plus a root endpoint describing the instance. Deployments embed the
// server package and install their own handler instead.
func newPipeline(srv *server.Server) http.Handler {
	started := time.Now()

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":         "ok",
			"uptime_seconds": int(time.Since(started).Seconds()),
			"connections":    srv.ConnectionCount(),
			"load":           srv.LoadSnapshot(),
		})
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		info := srv.Info()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"server":     "vesper",
			"version":    Version,
			"protocol":   info.Protocol,
			"uri":        info.URI,
			"request_id": server.RequestIDFrom(req.Context()),
		})
	})

	return mux
}
