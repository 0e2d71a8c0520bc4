package server

import (
	"sync"
)

// Pack groups servers that are managed as one unit, such as an API
// listener and an admin listener in the same process. Servers join a
// pack by being constructed with it as an argument.
type Pack struct {
	mu      sync.Mutex
	servers []*Server
}

// NewPack creates an empty pack.
func NewPack() *Pack {
	return &Pack{}
}

// attach registers a member server. Called from New.
func (p *Pack) attach(s *Server) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.servers = append(p.servers, s)
}

// Servers returns the member servers in attachment order.
func (p *Pack) Servers() []*Server {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Server, len(p.servers))
	copy(out, p.servers)
	return out
}

// ByLabel returns the member servers carrying the given label.
func (p *Pack) ByLabel(label string) []*Server {
	var out []*Server
	for _, s := range p.Servers() {
		if s.Settings().HasLabel(label) {
			out = append(out, s)
		}
	}
	return out
}

// Start starts every member. If any member fails to bind, the members
// already started are stopped again and the error is returned.
func (p *Pack) Start() error {
	started := make([]*Server, 0, len(p.Servers()))
	for _, s := range p.Servers() {
		if err := s.Start(); err != nil {
			for _, prev := range started {
				prev.Stop(StopOptions{})
			}
			return err
		}
		started = append(started, s)
	}
	return nil
}

// Stop stops every member with the same drain options. The members
// drain concurrently so the pack honors the same shutdown bound as a
// single server.
func (p *Pack) Stop(opts StopOptions) error {
	servers := p.Servers()

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s *Server) {
			defer wg.Done()
			s.Stop(opts)
		}(s)
	}
	wg.Wait()
	return nil
}
