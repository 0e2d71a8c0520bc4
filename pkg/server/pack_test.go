package server

import (
	"net"
	"net/http"
	"testing"

	"vesper-hq/vesper/pkg/config"
)

func TestPack_AttachAndLabels(t *testing.T) {
	pack := NewPack()

	api, err := New("127.0.0.1", 0, &config.Options{Labels: config.Labels{"api"}}, pack)
	if err != nil {
		t.Fatalf("New(api) failed: %v", err)
	}
	admin, err := New("127.0.0.1", 0, &config.Options{Labels: config.Labels{"admin"}}, pack)
	if err != nil {
		t.Fatalf("New(admin) failed: %v", err)
	}

	if got := len(pack.Servers()); got != 2 {
		t.Fatalf("pack size = %d, want 2", got)
	}

	byLabel := pack.ByLabel("api")
	if len(byLabel) != 1 || byLabel[0] != api {
		t.Errorf("ByLabel(api) = %v", byLabel)
	}
	byLabel = pack.ByLabel("admin")
	if len(byLabel) != 1 || byLabel[0] != admin {
		t.Errorf("ByLabel(admin) = %v", byLabel)
	}
	if got := pack.ByLabel("missing"); got != nil {
		t.Errorf("ByLabel(missing) = %v, want nil", got)
	}
}

func TestPack_StartStop(t *testing.T) {
	pack := NewPack()
	for i := 0; i < 2; i++ {
		s, err := New("127.0.0.1", 0, pack)
		if err != nil {
			t.Fatalf("New() failed: %v", err)
		}
		s.SetHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {}))
	}

	if err := pack.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	for _, s := range pack.Servers() {
		if s.State() != StateListening {
			t.Errorf("member state = %v, want listening", s.State())
		}
		resp, err := http.Get(s.Info().URI)
		if err != nil {
			t.Fatalf("GET %s failed: %v", s.Info().URI, err)
		}
		resp.Body.Close()
	}

	if err := pack.Stop(StopOptions{}); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	for _, s := range pack.Servers() {
		if s.State() != StateStopped {
			t.Errorf("member state = %v, want stopped", s.State())
		}
	}
}

func TestPack_StartFailureRollsBack(t *testing.T) {
	blocker, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer blocker.Close()
	port := blocker.Addr().(*net.TCPAddr).Port

	pack := NewPack()
	if _, err := New("127.0.0.1", 0, pack); err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if _, err := New("127.0.0.1", port, pack); err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := pack.Start(); err == nil {
		pack.Stop(StopOptions{})
		t.Fatal("Start() should fail when a member cannot bind")
	}

	for _, s := range pack.Servers() {
		if s.State() == StateListening {
			t.Error("member left listening after failed pack start")
		}
	}
}
