// Package health implements Kubernetes-style liveness and readiness probes.
//
// Checks are evaluated at request time, each under its own timeout. The
// service additionally carries a manual ready flag so it can be taken out
// of rotation during startup and graceful shutdown regardless of check
// results.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Check reports nil when the probed component is healthy.
type Check func(ctx context.Context) error

type namedCheck struct {
	name    string
	timeout time.Duration
	check   Check
}

// Service answers liveness and readiness probes.
type Service struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []namedCheck
	readiness []namedCheck
}

// NewService creates a Service in the not-ready state. Call SetReady(true)
// once initialization completes.
func NewService() *Service {
	return &Service{}
}

// AddLiveness registers a liveness check under the given name.
func (s *Service) AddLiveness(name string, timeout time.Duration, check Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, namedCheck{name: name, timeout: timeout, check: check})
}

// AddReadiness registers a readiness check under the given name.
func (s *Service) AddReadiness(name string, timeout time.Duration, check Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, namedCheck{name: name, timeout: timeout, check: check})
}

// SetReady flips the manual readiness flag. Set it to false before draining
// connections so load balancers stop sending new traffic.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// LiveEndpoint serves the liveness probe. 200 when every liveness check
// passes, 503 with per-check failures otherwise.
func (s *Service) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	checks := s.liveness
	s.mu.RUnlock()

	writeProbe(w, evaluate(r.Context(), checks))
}

// ReadyEndpoint serves the readiness probe. 200 only when the manual ready
// flag is set and every readiness check passes.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	checks := s.readiness
	s.mu.RUnlock()

	failures := evaluate(r.Context(), checks)
	if !s.ready.Load() {
		failures["_ready"] = "service is not ready"
	}
	writeProbe(w, failures)
}

func evaluate(ctx context.Context, checks []namedCheck) map[string]string {
	failures := make(map[string]string)
	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.check(checkCtx)
		cancel()
		if err != nil {
			failures[c.name] = err.Error()
		}
	}
	return failures
}

type probeResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func writeProbe(w http.ResponseWriter, failures map[string]string) {
	resp := probeResponse{Status: "ok"}
	status := http.StatusOK
	if len(failures) > 0 {
		resp = probeResponse{Status: "unhealthy", Checks: failures}
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
