package tracking

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bryanwahyu/automaton-trust/internal/application"
	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
)

// DefaultInterval is the pause between the end of one poll and the next.
const DefaultInterval = 3 * time.Second

// Option configures a Poller at creation time.
type Option func(*Poller)

// WithInterval sets the pause between polls. Non-positive values keep the default.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithClock injects the time source used for timers.
func WithClock(c application.Clock) Option {
	return func(p *Poller) { p.clock = c }
}

// WithLogger sets the logger for state transitions.
func WithLogger(l *log.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// WithOnTerminal registers a callback invoked once, after the job reaches
// Complete or Failed. A job that Cancel stopped never reaches a terminal
// state, so the callback and a successful Cancel exclude each other.
func WithOnTerminal(fn func(domain.Job)) Option {
	return func(p *Poller) { p.onTerminal = fn }
}

// Poller owns the submit → poll → terminal lifecycle of a single job. Polls
// run one at a time on a dedicated goroutine; the job state is only ever
// written by apply, under mu.
type Poller struct {
	id         domain.JobID
	transport  domain.Transport
	clock      application.Clock
	interval   time.Duration
	logger     *log.Logger
	onTerminal func(domain.Job)

	mu        sync.Mutex
	job       domain.Job
	started   bool
	cancelled bool
	cancel    context.CancelFunc
	timer     application.Timer
	done      chan struct{}
}

// NewPoller creates a Poller for id in the Processing state. Call Start to begin.
func NewPoller(id domain.JobID, transport domain.Transport, opts ...Option) *Poller {
	p := &Poller{
		id:        id,
		transport: transport,
		clock:     application.SystemClock{},
		interval:  DefaultInterval,
		logger:    log.Default(),
		done:      make(chan struct{}),
	}
	for _, o := range opts {
		o(p)
	}
	p.job = domain.Job{ID: id, Status: domain.StatusProcessing, UpdatedAt: p.clock.Now()}
	return p
}

// ID returns the tracked job id.
func (p *Poller) ID() domain.JobID { return p.id }

// Start issues the first poll immediately and keeps polling until the job is
// terminal, ctx is done, or Cancel is called. Calling Start twice is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.cancelled {
		p.mu.Unlock()
		return
	}
	p.started = true
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	go p.run(ctx)
}

// Cancel stops polling. The pending timer is stopped, the in-flight request
// context is cancelled, and a response that still arrives is discarded.
// It reports whether this call stopped a live job; cancelling a terminal or
// already cancelled job is a no-op.
func (p *Poller) Cancel() bool {
	p.mu.Lock()
	if p.cancelled || p.job.Status.Terminal() {
		p.mu.Unlock()
		return false
	}
	p.cancelled = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.cancel != nil {
		p.cancel()
	}
	started := p.started
	p.mu.Unlock()

	if !started {
		close(p.done)
	}
	p.logger.Printf("poller cancelled job_id=%s", p.id)
	return true
}

// Snapshot returns a copy of the current job state.
func (p *Poller) Snapshot() domain.Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.job
}

// Cancelled reports whether Cancel has been called.
func (p *Poller) Cancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

// Done is closed when the polling goroutine has exited.
func (p *Poller) Done() <-chan struct{} { return p.done }

// Wait blocks until polling stops or ctx is done and returns the final snapshot.
func (p *Poller) Wait(ctx context.Context) (domain.Job, error) {
	select {
	case <-p.done:
		return p.Snapshot(), nil
	case <-ctx.Done():
		return p.Snapshot(), ctx.Err()
	}
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	defer p.release()

	for {
		resp, err := p.transport.Poll(ctx, p.id)
		if !p.apply(ctx, resp, err) {
			return
		}

		timer := p.arm()
		if timer == nil {
			return
		}
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C():
		}
	}
}

// arm schedules the next tick, or returns nil when the poller was cancelled.
func (p *Poller) arm() application.Timer {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelled {
		return nil
	}
	p.timer = p.clock.NewTimer(p.interval)
	return p.timer
}

func (p *Poller) release() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.timer = nil
	p.mu.Unlock()
}

// apply folds one poll outcome into the job and reports whether polling
// should continue. Responses that arrive after cancellation or after a
// terminal state are dropped without touching the job.
func (p *Poller) apply(ctx context.Context, resp domain.PollResponse, err error) bool {
	p.mu.Lock()
	if p.cancelled || ctx.Err() != nil || p.job.Status.Terminal() {
		p.mu.Unlock()
		return false
	}

	p.job.Polls++
	p.job.UpdatedAt = p.clock.Now()

	switch {
	case err != nil:
		p.job.Status = domain.StatusFailed
		p.job.Error = domain.FailureMessage(err)
	case !resp.Ready, resp.Status == domain.StatusProcessing:
		p.mu.Unlock()
		return true
	case resp.Status == domain.StatusComplete:
		p.job.Status = domain.StatusComplete
		p.job.Result = resp.Result
		if p.job.Result == nil {
			p.job.Result = &domain.Payload{}
		}
	case resp.Status == domain.StatusFailed:
		p.job.Status = domain.StatusFailed
		p.job.Result = resp.Result
		p.job.Error = domain.FailedResultMessage(resp.Result)
	default:
		p.job.Status = domain.StatusFailed
		p.job.Error = fmt.Sprintf("unexpected job status %q", resp.Status)
	}
	job := p.job
	p.mu.Unlock()

	p.logger.Printf("job terminal job_id=%s status=%s polls=%d error=%q", job.ID, job.Status, job.Polls, job.Error)
	if p.onTerminal != nil {
		p.onTerminal(job)
	}
	return false
}
