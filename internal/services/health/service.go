// Package health reports liveness and dependency readiness.
package health

import (
	"context"
	"sync"
	"time"
)

const defaultCheckTimeout = 2 * time.Second

// Check probes one dependency. A nil error means ready.
type Check func(ctx context.Context) error

// Service runs the registered readiness checks.
type Service struct {
	Timeout time.Duration

	mu     sync.RWMutex
	names  []string
	checks map[string]Check
}

// NewService constructs a health service with no checks.
func NewService() *Service {
	return &Service{Timeout: defaultCheckTimeout, checks: make(map[string]Check)}
}

// Register adds or replaces a named check.
func (s *Service) Register(name string, check Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checks[name]; !ok {
		s.names = append(s.names, name)
	}
	s.checks[name] = check
}

// Status returns a simple liveness payload.
func (s *Service) Status() map[string]bool {
	return map[string]bool{"ok": true}
}

// Ready runs every check concurrently and reports "ok" or the error text
// per dependency. ready is false when any check fails.
func (s *Service) Ready(ctx context.Context) (report map[string]string, ready bool) {
	s.mu.RLock()
	names := append([]string(nil), s.names...)
	checks := make([]Check, len(names))
	for i, n := range names {
		checks[i] = s.checks[n]
	}
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	results := make([]error, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(i int, check Check) {
			defer wg.Done()
			results[i] = check(ctx)
		}(i, check)
	}
	wg.Wait()

	report = make(map[string]string, len(names))
	ready = true
	for i, n := range names {
		if results[i] != nil {
			report[n] = results[i].Error()
			ready = false
			continue
		}
		report[n] = "ok"
	}
	return report, ready
}
