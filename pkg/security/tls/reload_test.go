package tls

import (
	"crypto/tls"
	"crypto/x509"
	"path/filepath"
	"testing"
	"time"
)

func TestCertificateReloader_Start(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")
	writeTestKeyPair(t, certFile, keyFile, "localhost")

	r := NewCertificateReloader(certFile, keyFile)
	if err := r.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer r.Stop()

	cert, err := r.GetCertificate(&tls.ClientHelloInfo{})
	if err != nil {
		t.Fatalf("GetCertificate() failed: %v", err)
	}
	if len(cert.Certificate) == 0 {
		t.Fatal("certificate chain is empty")
	}
}

func TestCertificateReloader_Start_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	r := NewCertificateReloader(filepath.Join(dir, "cert.pem"), filepath.Join(dir, "key.pem"))
	if err := r.Start(); err == nil {
		t.Fatal("Start() should fail when the key pair does not exist")
	}
}

func TestCertificateReloader_StartIdempotent(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")
	writeTestKeyPair(t, certFile, keyFile, "localhost")

	r := NewCertificateReloader(certFile, keyFile)
	if err := r.Start(); err != nil {
		t.Fatalf("first Start() failed: %v", err)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("second Start() failed: %v", err)
	}
	r.Stop()
	r.Stop()
}

func TestCertificateReloader_GetCertificateBeforeStart(t *testing.T) {
	r := NewCertificateReloader("cert.pem", "key.pem")
	if _, err := r.GetCertificate(&tls.ClientHelloInfo{}); err == nil {
		t.Fatal("GetCertificate() should fail before Start()")
	}
}

func TestCertificateReloader_ReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")
	writeTestKeyPair(t, certFile, keyFile, "first.example.com")

	r := NewCertificateReloader(certFile, keyFile)
	if err := r.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer r.Stop()

	// Replace the key pair on disk and wait for the watcher to pick
	// it up.
	writeTestKeyPair(t, certFile, keyFile, "second.example.com")

	deadline := time.Now().Add(5 * time.Second)
	for {
		cert, err := r.GetCertificate(&tls.ClientHelloInfo{})
		if err != nil {
			t.Fatalf("GetCertificate() failed: %v", err)
		}
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			t.Fatalf("failed to parse served certificate: %v", err)
		}
		if leaf.Subject.CommonName == "second.example.com" {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("certificate not reloaded, still serving %q", leaf.Subject.CommonName)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
