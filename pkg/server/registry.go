package server

import (
	"net"
	"net/http"
	"sync"
)

// Registry tracks live transport connections so that a bounded shutdown
// can force the stragglers closed. Entries are keyed by the remote
// address and removed as soon as the connection reaches a terminal
// state, so a handle is never closed twice through the registry.
type Registry struct {
	mu    sync.Mutex
	conns map[string]net.Conn
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]net.Conn),
	}
}

// connState is the net/http ConnState hook. New connections are
// registered; closed or hijacked ones are forgotten.
func (r *Registry) connState(conn net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		r.add(conn)
	case http.StateClosed, http.StateHijacked:
		r.remove(conn)
	}
}

func (r *Registry) add(conn net.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.RemoteAddr().String()] = conn
}

func (r *Registry) remove(conn net.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, conn.RemoteAddr().String())
}

// Len returns the number of tracked connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// CloseAll forcibly closes every tracked connection. Connections that
// closed concurrently have already left the map, and net.Conn.Close on
// an already-closed connection only returns an error, so the sweep is
// safe to run while traffic is still winding down.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := make([]net.Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	r.conns = make(map[string]net.Conn)
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

// Reset discards all entries without closing anything. Each listen
// cycle starts from an empty registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns = make(map[string]net.Conn)
}
