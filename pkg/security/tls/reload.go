package tls

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// CertificateReloader watches certificate files and reloads them when
// they change on disk. This allows certificate renewal (e.g., Let's
// Encrypt) without a server restart.
type CertificateReloader struct {
	certFile string
	keyFile  string
	logger   *slog.Logger

	mu   sync.RWMutex
	cert *tls.Certificate

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// reloadDebounce coalesces the burst of filesystem events a renewal
// produces into a single reload.
const reloadDebounce = 100 * time.Millisecond

// NewCertificateReloader creates a reloader for the given key pair.
func NewCertificateReloader(certFile, keyFile string) *CertificateReloader {
	return &CertificateReloader{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   slog.Default().With("component", "tls.reloader"),
	}
}

// Start loads the initial certificate and begins watching the
// certificate directory for changes.
func (r *CertificateReloader) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	if err := r.reloadLocked(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create certificate watcher: %w", err)
	}

	// Watch the parent directories: renewals typically replace the file
	// (write to temp, rename), which drops a watch on the file itself.
	dirs := map[string]struct{}{
		filepath.Dir(r.certFile): {},
		filepath.Dir(r.keyFile):  {},
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	r.watcher = watcher
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.running = true

	go r.watch(watcher, r.stopCh, r.doneCh)

	r.logger.Info("certificate reloader started",
		"cert_file", r.certFile,
		"key_file", r.keyFile,
	)
	return nil
}

// Stop halts the watcher. Stopping a stopped reloader is a no-op.
func (r *CertificateReloader) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	stopCh, doneCh, watcher := r.stopCh, r.doneCh, r.watcher
	r.mu.Unlock()

	close(stopCh)
	watcher.Close()
	<-doneCh
}

// GetCertificate implements the crypto/tls.Config callback.
func (r *CertificateReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.cert == nil {
		return nil, fmt.Errorf("no certificate loaded")
	}
	return r.cert, nil
}

// watch processes filesystem events until stopped, debouncing reloads.
func (r *CertificateReloader) watch(watcher *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	var debounce *time.Timer
	debounceCh := make(chan struct{}, 1)

	for {
		select {
		case <-stopCh:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !r.relevant(event.Name) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				select {
				case debounceCh <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("certificate watcher error", "error", err)

		case <-debounceCh:
			r.mu.Lock()
			err := r.reloadLocked()
			r.mu.Unlock()
			if err != nil {
				r.logger.Error("failed to reload certificate", "error", err)
			} else {
				r.logger.Info("certificate reloaded", "cert_file", r.certFile)
			}
		}
	}
}

// relevant reports whether a filesystem event path concerns the watched
// key pair.
func (r *CertificateReloader) relevant(path string) bool {
	return filepath.Clean(path) == filepath.Clean(r.certFile) ||
		filepath.Clean(path) == filepath.Clean(r.keyFile)
}

// reloadLocked loads the key pair. Callers hold r.mu.
func (r *CertificateReloader) reloadLocked() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS key pair: %w", err)
	}
	r.cert = &cert
	return nil
}
