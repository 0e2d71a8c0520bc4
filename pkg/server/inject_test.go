package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"vesper-hq/vesper/pkg/config"
)

func TestInject(t *testing.T) {
	s := newTestServer(t)
	s.SetHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("X-Echo-Method", req.Method)
		fmt.Fprintf(w, "path=%s", req.URL.Path)
	}))

	res, err := s.Inject(InjectOptions{Method: http.MethodPost, URL: "/items"})
	if err != nil {
		t.Fatalf("Inject() failed: %v", err)
	}

	if res.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", res.StatusCode)
	}
	if res.Headers.Get("X-Echo-Method") != http.MethodPost {
		t.Errorf("method header = %q, want POST", res.Headers.Get("X-Echo-Method"))
	}
	if res.Body != "path=/items" {
		t.Errorf("body = %q", res.Body)
	}
}

func TestInject_RequiresURL(t *testing.T) {
	s := newTestServer(t)
	if _, err := s.Inject(InjectOptions{}); err == nil {
		t.Fatal("Inject() without URL should fail")
	}
}

func TestInject_Payload(t *testing.T) {
	s := newTestServer(t)
	s.SetHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		buf := make([]byte, 64)
		n, _ := req.Body.Read(buf)
		w.Write(buf[:n])
	}))

	res, err := s.Inject(InjectOptions{
		Method:  http.MethodPost,
		URL:     "/echo",
		Payload: `{"name":"vesper"}`,
	})
	if err != nil {
		t.Fatalf("Inject() failed: %v", err)
	}
	if res.Body != `{"name":"vesper"}` {
		t.Errorf("body = %q", res.Body)
	}
}

func TestInject_Credentials(t *testing.T) {
	s := newTestServer(t)

	var got map[string]any
	s.SetHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		got = CredentialsFrom(req.Context())
	}))

	_, err := s.Inject(InjectOptions{
		URL:         "/private",
		Credentials: map[string]any{"user": "admin"},
	})
	if err != nil {
		t.Fatalf("Inject() failed: %v", err)
	}

	if got == nil || got["user"] != "admin" {
		t.Errorf("credentials = %v, want user=admin", got)
	}
}

func TestInject_NoCredentialsByDefault(t *testing.T) {
	s := newTestServer(t)

	var got map[string]any
	s.SetHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		got = CredentialsFrom(req.Context())
	}))

	if _, err := s.Inject(InjectOptions{URL: "/"}); err != nil {
		t.Fatalf("Inject() failed: %v", err)
	}
	if got != nil {
		t.Errorf("credentials = %v, want nil", got)
	}
}

func TestInject_AssignsRequestID(t *testing.T) {
	s := newTestServer(t)

	var id string
	s.SetHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id = RequestIDFrom(req.Context())
	}))

	if _, err := s.Inject(InjectOptions{URL: "/"}); err != nil {
		t.Fatalf("Inject() failed: %v", err)
	}
	if id == "" {
		t.Error("request id not assigned")
	}
}

func TestInject_OverloadRejection(t *testing.T) {
	s := newTestServer(t, "127.0.0.1", 0, &config.Options{
		Load: &config.LoadOptions{MaxConcurrent: 1},
	})

	invoked := 0
	s.SetHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		invoked++
		fmt.Fprint(w, "ok")
	}))
	events := &recordingEvents{}
	s.SetEvents(events)

	// Push the in-flight count over the limit so the cached check
	// reports overload.
	s.Monitor().Acquire()
	s.Monitor().Acquire()

	res, err := s.Inject(InjectOptions{URL: "/"})
	if err != nil {
		t.Fatalf("Inject() failed: %v", err)
	}

	if res.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", res.StatusCode)
	}
	if invoked != 0 {
		t.Error("pipeline invoked for a rejected request")
	}
	if res.Headers.Get("Retry-After") == "" {
		t.Error("rejection missing Retry-After")
	}
	if !strings.Contains(res.Body, `"load"`) {
		t.Errorf("rejection body missing load snapshot: %s", res.Body)
	}

	events.mu.Lock()
	rejections := len(events.rejected)
	events.mu.Unlock()
	if rejections != 1 {
		t.Errorf("rejection events = %d, want 1", rejections)
	}

	// Back under the limit the same request passes through exactly
	// once.
	s.Monitor().Release()
	s.Monitor().Release()

	res, err = s.Inject(InjectOptions{URL: "/"})
	if err != nil {
		t.Fatalf("Inject() failed: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", res.StatusCode)
	}
	if invoked != 1 {
		t.Errorf("pipeline invoked %d times, want 1", invoked)
	}
}
