package server

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"vesper-hq/vesper/pkg/config"
)

// hostKind classifies the host argument into a transport family.
type hostKind int

const (
	// hostNetwork is a TCP hostname or address.
	hostNetwork hostKind = iota

	// hostUnix is a UNIX domain socket path.
	hostUnix

	// hostPipe is a Windows named pipe.
	hostPipe
)

// pipePrefix is the literal Windows named pipe prefix.
const pipePrefix = `\\.\pipe\`

// serverArgs holds the classified positional constructor arguments.
type serverArgs struct {
	host     string
	hostKind hostKind
	port     int
	portSet  bool
	options  *config.Options
	pack     *Pack
}

// classifyArgs maps positional constructor arguments onto their logical
// slots. Each argument's type selects exactly one slot: a string is the
// host (a numeric string is coerced to the port), an integer is the
// port, *config.Options is the options, and *Pack attaches the server
// to a composite. Filling a slot twice or passing any other type is an
// error.
func classifyArgs(args []any) (*serverArgs, error) {
	out := &serverArgs{}
	hostSet := false
	optionsSet := false

	for i, arg := range args {
		switch v := arg.(type) {
		case string:
			if port, err := strconv.Atoi(v); err == nil {
				if out.portSet {
					return nil, fmt.Errorf("argument %d: port already specified", i)
				}
				out.port = port
				out.portSet = true
				continue
			}
			if hostSet {
				return nil, fmt.Errorf("argument %d: host already specified", i)
			}
			out.host, out.hostKind = classifyHost(v)
			hostSet = true

		case int:
			if out.portSet {
				return nil, fmt.Errorf("argument %d: port already specified", i)
			}
			out.port = v
			out.portSet = true

		case *config.Options:
			if optionsSet {
				return nil, fmt.Errorf("argument %d: options already specified", i)
			}
			out.options = v
			optionsSet = true

		case *Pack:
			if out.pack != nil {
				return nil, fmt.Errorf("argument %d: pack already specified", i)
			}
			out.pack = v

		default:
			return nil, fmt.Errorf("argument %d: unsupported type %T", i, arg)
		}
	}

	if out.portSet && out.hostKind != hostNetwork {
		return nil, fmt.Errorf("cannot specify a port with a socket or pipe host")
	}

	return out, nil
}

// classifyHost determines the transport family of a host argument. A
// value containing a path separator is a UNIX socket path, the Windows
// pipe prefix selects a named pipe, and anything else is a network
// hostname, lower-cased for consistent comparison.
func classifyHost(host string) (string, hostKind) {
	if strings.HasPrefix(host, pipePrefix) {
		return host, hostPipe
	}
	if strings.Contains(host, "/") {
		if abs, err := filepath.Abs(host); err == nil {
			host = abs
		}
		return host, hostUnix
	}
	return strings.ToLower(host), hostNetwork
}

// defaultPort returns the port to bind when none was given: 443 with
// TLS configured, 80 otherwise.
func defaultPort(settings *config.Settings) int {
	if settings.TLS != nil {
		return 443
	}
	return 80
}
