package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	checkTimeout = 2 * time.Second
	statusUp     = "healthy"
	statusDown   = "unhealthy"
)

// HealthChecker is one dependency reported by /healthz and gated by /readyz.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to HealthChecker
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// DatabaseHealthChecker pings the snapshot store.
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

// UpstreamHealthChecker calls GET {BaseURL}/health on the assessment service.
type UpstreamHealthChecker struct {
	BaseURL string
	Client  *http.Client
}

func (u *UpstreamHealthChecker) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(u.BaseURL, "/")+"/health", nil)
	if err != nil {
		return err
	}
	cli := u.Client
	if cli == nil {
		cli = http.DefaultClient
	}
	resp, err := cli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream health returned %d", resp.StatusCode)
	}
	return nil
}

// HealthStatus is the /healthz body.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// runChecks runs every checker concurrently, each under its own timeout.
func runChecks(ctx context.Context, checkers map[string]HealthChecker) HealthStatus {
	hs := HealthStatus{Status: statusUp, Timestamp: time.Now(), Checks: make(map[string]CheckStatus, len(checkers))}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, c := range checkers {
		wg.Add(1)
		go func(name string, c HealthChecker) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			cs := CheckStatus{Status: statusUp}
			if err := c.Check(cctx); err != nil {
				cs = CheckStatus{Status: statusDown, Message: err.Error()}
			}
			mu.Lock()
			hs.Checks[name] = cs
			if cs.Status == statusDown {
				hs.Status = statusDown
			}
			mu.Unlock()
		}(name, c)
	}
	wg.Wait()
	return hs
}

// HealthHandler reports every dependency; 503 if any is down.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hs := runChecks(r.Context(), checkers)
		code := http.StatusOK
		if hs.Status == statusDown {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(hs)
	}
}

// ReadinessHandler returns 503 while any dependency check fails.
func ReadinessHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if runChecks(r.Context(), checkers).Status == statusDown {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ready"))
	}
}

// LivenessHandler only proves the process serves HTTP.
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}
