// Package health exposes liveness and readiness endpoints over a set of
// named dependency checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// checkTimeout bounds the whole readiness probe so a wedged dependency
// cannot hang the kubelet's request.
const checkTimeout = 5 * time.Second

// Checker reports whether one dependency is usable.
type Checker func(ctx context.Context) error

// Status is the up/down verdict for a component or the whole service.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// CheckResult is one dependency's verdict.
type CheckResult struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Response is the body of both health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Handler runs registered checks and serves the two probe endpoints.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewHandler creates a handler with no checks registered.
func NewHandler() *Handler {
	return &Handler{checkers: map[string]Checker{}}
}

// Register adds or replaces the named check.
func (h *Handler) Register(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// LivenessHandler answers up whenever the process can serve HTTP at all;
// dependency state is readiness' concern.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs every registered check concurrently and reports 503
// with per-check detail if any dependency is down.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		h.mu.RLock()
		names := make([]string, 0, len(h.checkers))
		checkers := make([]Checker, 0, len(h.checkers))
		for name, c := range h.checkers {
			names = append(names, name)
			checkers = append(checkers, c)
		}
		h.mu.RUnlock()

		results := make([]CheckResult, len(checkers))
		var wg sync.WaitGroup
		for i, check := range checkers {
			wg.Add(1)
			go func(i int, check Checker) {
				defer wg.Done()
				if err := check(ctx); err != nil {
					results[i] = CheckResult{Status: StatusDown, Error: err.Error()}
					return
				}
				results[i] = CheckResult{Status: StatusUp}
			}(i, check)
		}
		wg.Wait()

		overall := StatusUp
		checks := make(map[string]CheckResult, len(names))
		for i, name := range names {
			checks[name] = results[i]
			if results[i].Status == StatusDown {
				overall = StatusDown
			}
		}

		code := http.StatusOK
		if overall == StatusDown {
			code = http.StatusServiceUnavailable
		}
		writeResponse(w, code, Response{
			Status:    overall,
			Timestamp: time.Now().UTC(),
			Checks:    checks,
		})
	}
}

func writeResponse(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
