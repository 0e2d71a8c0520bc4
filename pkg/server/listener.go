package server

import (
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"strconv"

	vtls "vesper-hq/vesper/pkg/security/tls"
)

// listen opens the transport listener for the classified host. A stale
// UNIX socket file left behind by an unclean exit is removed before
// binding. Named pipes only exist on Windows.
func (s *Server) listen() (net.Listener, error) {
	var ln net.Listener
	var err error

	switch s.hostKind {
	case hostUnix:
		if fi, statErr := os.Stat(s.host); statErr == nil && fi.Mode()&os.ModeSocket != 0 {
			os.Remove(s.host)
		}
		ln, err = net.Listen("unix", s.host)

	case hostPipe:
		// No pipe transport is compiled in on any platform.
		return nil, fmt.Errorf("named pipe listeners are not supported by this build")

	default:
		ln, err = net.Listen("tcp", net.JoinHostPort(s.host, strconv.Itoa(s.port)))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to bind listener: %w", err)
	}

	if s.settings.TLS != nil {
		cfg := s.tlsConfig
		if cfg == nil {
			cfg, err = vtls.New(s.settings.TLS)
			if err != nil {
				ln.Close()
				return nil, err
			}
		}
		ln = tls.NewListener(ln, cfg)
	}

	return ln, nil
}
