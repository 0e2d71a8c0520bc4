package server

import (
	"strings"
	"testing"

	"vesper-hq/vesper/pkg/config"
)

func TestClassifyArgs(t *testing.T) {
	opts := &config.Options{}

	tests := []struct {
		name     string
		args     []any
		wantHost string
		wantPort int
		wantSet  bool
	}{
		{
			name:     "host port options",
			args:     []any{"example.com", 8080, opts},
			wantHost: "example.com",
			wantPort: 8080,
			wantSet:  true,
		},
		{
			name:     "port options",
			args:     []any{8080, opts},
			wantHost: "",
			wantPort: 8080,
			wantSet:  true,
		},
		{
			name:     "numeric string coerced to port",
			args:     []any{"8080", opts},
			wantHost: "",
			wantPort: 8080,
			wantSet:  true,
		},
		{
			name:     "no arguments",
			args:     nil,
			wantHost: "",
			wantPort: 0,
			wantSet:  false,
		},
		{
			name:     "order independent",
			args:     []any{opts, 9090, "example.com"},
			wantHost: "example.com",
			wantPort: 9090,
			wantSet:  true,
		},
		{
			name:     "hostname lower-cased",
			args:     []any{"EXAMPLE.com"},
			wantHost: "example.com",
			wantPort: 0,
			wantSet:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := classifyArgs(tt.args)
			if err != nil {
				t.Fatalf("classifyArgs() failed: %v", err)
			}
			if got.host != tt.wantHost {
				t.Errorf("host = %q, want %q", got.host, tt.wantHost)
			}
			if got.port != tt.wantPort {
				t.Errorf("port = %d, want %d", got.port, tt.wantPort)
			}
			if got.portSet != tt.wantSet {
				t.Errorf("portSet = %v, want %v", got.portSet, tt.wantSet)
			}
		})
	}
}

func TestClassifyArgs_Errors(t *testing.T) {
	opts := &config.Options{}

	tests := []struct {
		name string
		args []any
	}{
		{name: "duplicate port", args: []any{8080, 9090}},
		{name: "duplicate port via string", args: []any{8080, "9090"}},
		{name: "duplicate host", args: []any{"a.com", "b.com"}},
		{name: "duplicate options", args: []any{opts, opts}},
		{name: "unsupported type", args: []any{3.14}},
		{name: "port with socket host", args: []any{"/tmp/vesper.sock", 8080}},
		{name: "port with pipe host", args: []any{`\\.\pipe\vesper`, 8080}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := classifyArgs(tt.args); err == nil {
				t.Error("classifyArgs() should have failed")
			}
		})
	}
}

func TestClassifyHost(t *testing.T) {
	tests := []struct {
		input    string
		wantKind hostKind
	}{
		{input: "example.com", wantKind: hostNetwork},
		{input: "127.0.0.1", wantKind: hostNetwork},
		{input: "/tmp/vesper.sock", wantKind: hostUnix},
		{input: `\\.\pipe\vesper`, wantKind: hostPipe},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			host, kind := classifyHost(tt.input)
			if kind != tt.wantKind {
				t.Errorf("kind = %d, want %d", kind, tt.wantKind)
			}
			if tt.wantKind == hostUnix && !strings.HasPrefix(host, "/") {
				t.Errorf("socket path %q not absolute", host)
			}
		})
	}
}

func TestDefaultPort(t *testing.T) {
	plain, err := config.Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got := defaultPort(plain); got != 80 {
		t.Errorf("defaultPort without TLS = %d, want 80", got)
	}

	secure, err := config.Resolve(&config.Options{
		TLS: &config.TLSOptions{CertFile: "cert.pem", KeyFile: "key.pem"},
	})
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got := defaultPort(secure); got != 443 {
		t.Errorf("defaultPort with TLS = %d, want 443", got)
	}
}
