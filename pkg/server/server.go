package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"vesper-hq/vesper/pkg/config"
	"vesper-hq/vesper/pkg/load"
	"vesper-hq/vesper/pkg/telemetry/metrics"
)

// State is the lifecycle state of a server instance.
type State int

const (
	// StateConstructed means the server has never listened.
	StateConstructed State = iota

	// StateListening means the listener is bound and accepting.
	StateListening

	// StateStopped means the server stopped after listening. A stopped
	// server may be started again.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateListening:
		return "listening"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// DefaultStopTimeout bounds graceful shutdown when Stop is called
// without an explicit timeout.
const DefaultStopTimeout = 5 * time.Second

// Info describes the bound listener. It is populated once the OS
// confirms the socket, so ephemeral ports carry their actual value.
type Info struct {
	// Host is the configured host, or the socket path for UNIX
	// listeners.
	Host string

	// Port is the bound port. Zero for non-network listeners.
	Port int

	// Protocol is "http", "https", "unix" or "windows".
	Protocol string

	// URI is the fully composed server address.
	URI string
}

// Events receives lifecycle and admission notifications. All methods
// are called synchronously; implementations must not block.
type Events interface {
	// ServerStarted fires after the listener is bound.
	ServerStarted(info Info)

	// ServerStopped fires after shutdown completes.
	ServerStopped(info Info)

	// RequestRejected fires when admission turns a request away under
	// load.
	RequestRejected(snapshot load.Snapshot)
}

// StopOptions controls graceful shutdown.
type StopOptions struct {
	// Timeout bounds the drain: connections still open when it expires
	// are forcibly closed. Default: DefaultStopTimeout.
	Timeout time.Duration
}

// Server is a single HTTP(S) listener with admission control, bounded
// shutdown and precomputed response headers. Instances are reusable
// across repeated Start/Stop cycles.
type Server struct {
	settings *config.Settings
	host     string
	hostKind hostKind
	port     int
	pack     *Pack

	handler   http.Handler
	events    Events
	monitor   *load.Monitor
	metrics   *metrics.Collector
	tlsConfig *tls.Config
	registry  *Registry
	logger    *slog.Logger

	mu         sync.Mutex
	state      State
	httpServer *http.Server
	serveDone  chan struct{}
	info       Info
}

// New constructs a server from positional arguments. Any combination
// of a host string, a port (number or numeric string) and *config.Options
// is accepted, in any order; see classifyArgs for the exact rules. The
// options are resolved and validated here, so a returned server always
// carries usable settings.
func New(args ...any) (*Server, error) {
	classified, err := classifyArgs(args)
	if err != nil {
		return nil, err
	}

	settings, err := config.Resolve(classified.options)
	if err != nil {
		return nil, err
	}

	port := classified.port
	if !classified.portSet && classified.hostKind == hostNetwork {
		port = defaultPort(settings)
	}

	var monitorOpts load.Options
	if settings.Load != nil {
		monitorOpts = load.Options{
			SampleInterval:    settings.Load.SampleInterval,
			MaxHeapBytes:      settings.Load.MaxHeapBytes,
			MaxEventLoopDelay: settings.Load.MaxEventLoopDelay,
			MaxConcurrent:     settings.Load.MaxConcurrent,
		}
	}

	s := &Server{
		settings: settings,
		host:     classified.host,
		hostKind: classified.hostKind,
		port:     port,
		pack:     classified.pack,
		handler:  http.NotFoundHandler(),
		monitor:  load.New(monitorOpts),
		registry: NewRegistry(),
		logger:   slog.Default().With("component", "server"),
	}

	if classified.pack != nil {
		classified.pack.attach(s)
	}

	return s, nil
}

// SetHandler installs the request pipeline. Must be called before
// Start; requests are dispatched to the pipeline only after passing
// admission.
func (s *Server) SetHandler(handler http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if handler == nil {
		handler = http.NotFoundHandler()
	}
	s.handler = handler
}

// SetEvents installs the lifecycle observer. Must be called before
// Start.
func (s *Server) SetEvents(events Events) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
}

// SetMetrics attaches a metrics collector. Must be called before Start.
func (s *Server) SetMetrics(collector *metrics.Collector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = collector
}

// SetTLSConfig overrides the TLS configuration built from the settings,
// typically to attach a certificate reloader. Must be called before
// Start and has no effect unless TLS settings are present.
func (s *Server) SetTLSConfig(cfg *tls.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tlsConfig = cfg
}

// Settings returns the resolved immutable settings.
func (s *Server) Settings() *config.Settings {
	return s.settings
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Info returns the bound listener description. It is the zero value
// until the first successful Start.
func (s *Server) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Monitor returns the server's load monitor.
func (s *Server) Monitor() *load.Monitor {
	return s.monitor
}

// ConnectionCount returns the number of live tracked connections.
func (s *Server) ConnectionCount() int {
	return s.registry.Len()
}

// LoadSnapshot returns the monitor's current load sample.
func (s *Server) LoadSnapshot() load.Snapshot {
	return s.monitor.Snapshot()
}

// Start binds the listener and begins serving. Starting a listening
// server is a no-op. On a bind failure the server remains non-listening
// and Start may be retried.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.state == StateListening {
		s.mu.Unlock()
		return nil
	}

	ln, err := s.listen()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	// Each cycle starts from an empty registry; nothing is tracked
	// across restarts.
	s.registry.Reset()
	s.monitor.Start()

	srv := &http.Server{
		Handler:      s.admit(s.decorate(s.handler)),
		ConnState:    s.connState,
		IdleTimeout:  s.settings.Timeout.Socket,
		ReadTimeout:  s.settings.Timeout.Client,
		WriteTimeout: s.settings.Timeout.Server,
	}

	s.httpServer = srv
	s.serveDone = make(chan struct{})
	s.info = s.resolveInfo(ln.Addr())
	s.state = StateListening

	serveDone := s.serveDone
	go func() {
		defer close(serveDone)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve loop ended", "error", err)
		}
	}()

	info := s.info
	events := s.events
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ServerUp(true)
	}
	s.logger.Info("server started",
		"uri", info.URI,
		"protocol", info.Protocol,
	)
	if events != nil {
		events.ServerStarted(info)
	}
	return nil
}

// Stop gracefully shuts the server down. New connections are refused
// immediately; in-flight requests may finish until the drain timeout
// expires, after which the remaining connections are forcibly closed.
// Stop always completes within roughly the drain timeout. Stopping a
// non-listening server is a no-op.
func (s *Server) Stop(opts StopOptions) error {
	s.mu.Lock()
	if s.state != StateListening {
		s.mu.Unlock()
		return nil
	}
	s.state = StateStopped
	srv := s.httpServer
	serveDone := s.serveDone
	info := s.info
	events := s.events
	s.mu.Unlock()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultStopTimeout
	}

	s.monitor.Stop()

	// Shutdown closes the listener at once and then waits for the
	// tracked connections to finish. The drain timer races that wait:
	// if it fires first, the stragglers are destroyed so Stop never
	// hangs past the timeout.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		srv.Shutdown(context.Background())
	}()

	timer := time.NewTimer(timeout)
	select {
	case <-closed:
		timer.Stop()
	case <-timer.C:
		s.registry.CloseAll()
		<-closed
	}
	<-serveDone

	if s.metrics != nil {
		s.metrics.ServerUp(false)
	}
	s.logger.Info("server stopped", "uri", info.URI)
	if events != nil {
		events.ServerStopped(info)
	}
	return nil
}

// connState feeds connection transitions to the registry and the
// metrics collector.
func (s *Server) connState(conn net.Conn, state http.ConnState) {
	s.registry.connState(conn, state)

	if s.metrics != nil {
		switch state {
		case http.StateNew:
			s.metrics.ConnectionOpened()
		case http.StateClosed, http.StateHijacked:
			s.metrics.ConnectionClosed()
		}
	}
}

// resolveInfo composes the public listener description from the bound
// address.
func (s *Server) resolveInfo(addr net.Addr) Info {
	switch s.hostKind {
	case hostUnix:
		return Info{
			Host:     s.host,
			Protocol: "unix",
			URI:      "unix://" + s.host,
		}

	case hostPipe:
		return Info{
			Host:     s.host,
			Protocol: "windows",
			URI:      s.host,
		}

	default:
		protocol := "http"
		if s.settings.TLS != nil {
			protocol = "https"
		}

		port := s.port
		if tcp, ok := addr.(*net.TCPAddr); ok {
			port = tcp.Port
		}

		host := s.host
		if host == "" {
			host = "localhost"
		}

		return Info{
			Host:     host,
			Port:     port,
			Protocol: protocol,
			URI:      fmt.Sprintf("%s://%s:%d", protocol, host, port),
		}
	}
}
