package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	JobsTracked        uint64
	JobsProcessing     uint64
	JobsComplete       uint64
	JobsFailed         uint64
	JobsCancelled      uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// IncrementRequests increments total request counter
func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

func IncrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
}

func DecrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))
}

func IncrementSuccess() {
	atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
}

func IncrementFailed() {
	atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
}

// RecordJobTracked is wired as tracking.Service.OnTracked.
func RecordJobTracked(domain.JobID) {
	atomic.AddUint64(&globalMetrics.JobsTracked, 1)
	atomic.AddUint64(&globalMetrics.JobsProcessing, 1)
}

// RecordJobTerminal is wired as tracking.Service.OnTerminal.
func RecordJobTerminal(j domain.Job) {
	atomic.AddUint64(&globalMetrics.JobsProcessing, ^uint64(0))
	switch j.Status {
	case domain.StatusComplete:
		atomic.AddUint64(&globalMetrics.JobsComplete, 1)
	case domain.StatusFailed:
		atomic.AddUint64(&globalMetrics.JobsFailed, 1)
	}
}

// RecordJobCancelled is wired as tracking.Service.OnCancelled.
func RecordJobCancelled(domain.JobID) {
	atomic.AddUint64(&globalMetrics.JobsProcessing, ^uint64(0))
	atomic.AddUint64(&globalMetrics.JobsCancelled, 1)
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"jobs_tracked":         atomic.LoadUint64(&globalMetrics.JobsTracked),
		"jobs_processing":      atomic.LoadUint64(&globalMetrics.JobsProcessing),
		"jobs_complete":        atomic.LoadUint64(&globalMetrics.JobsComplete),
		"jobs_failed":          atomic.LoadUint64(&globalMetrics.JobsFailed),
		"jobs_cancelled":       atomic.LoadUint64(&globalMetrics.JobsCancelled),
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
