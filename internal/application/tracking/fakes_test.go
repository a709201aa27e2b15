package tracking

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/bryanwahyu/automaton-trust/internal/application"
	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
)

const waitTimeout = 2 * time.Second

var quietLogger = log.New(io.Discard, "", 0)

// fakeClock hands out timers that only fire when the test says so.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
	armed  chan time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		armed: make(chan time.Duration, 64),
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTimer(d time.Duration) application.Timer {
	t := &fakeTimer{ch: make(chan time.Time, 1)}
	c.mu.Lock()
	c.timers = append(c.timers, t)
	c.mu.Unlock()
	c.armed <- d
	return t
}

// Fire advances time by d and fires every live timer. It returns how many fired.
func (c *fakeClock) Fire(d time.Duration) int {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	timers := c.timers
	c.timers = nil
	c.mu.Unlock()

	n := 0
	for _, t := range timers {
		if t.fire(now) {
			n++
		}
	}
	return n
}

type fakeTimer struct {
	mu      sync.Mutex
	ch      chan time.Time
	stopped bool
	fired   bool
}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (t *fakeTimer) fire(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.fired = true
	t.ch <- now
	return true
}

// step is one scripted Poll outcome. When block is set the call waits for it
// to close, ignoring ctx, to model a response that lands late.
type step struct {
	resp  domain.PollResponse
	err   error
	block chan struct{}
}

type fakeTransport struct {
	mu        sync.Mutex
	steps     []step
	calls     int
	called    chan int
	submitted []domain.Submission
	submitID  domain.JobID
	submitErr error
}

func newFakeTransport(steps ...step) *fakeTransport {
	return &fakeTransport{steps: steps, called: make(chan int, 64), submitID: "j1"}
}

func (f *fakeTransport) Submit(_ context.Context, s domain.Submission) (domain.SubmitResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, s)
	if f.submitErr != nil {
		return domain.SubmitResponse{}, f.submitErr
	}
	return domain.SubmitResponse{JobID: f.submitID, Status: "Processing"}, nil
}

func (f *fakeTransport) Poll(_ context.Context, id domain.JobID) (domain.PollResponse, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	st := step{resp: domain.PollResponse{JobID: id}}
	if i < len(f.steps) {
		st = f.steps[i]
	}
	f.mu.Unlock()

	f.called <- i
	if st.block != nil {
		<-st.block
	}
	return st.resp, st.err
}

func (f *fakeTransport) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func processing() step {
	return step{resp: domain.PollResponse{Ready: false}}
}

func complete(score int) step {
	return step{resp: domain.PollResponse{
		Ready:  true,
		JobID:  "j1",
		Status: domain.StatusComplete,
		Result: &domain.Payload{TrustScore: score},
	}}
}

func waitArmed(t *testing.T, c *fakeClock) time.Duration {
	t.Helper()
	select {
	case d := <-c.armed:
		return d
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for the next poll to be scheduled")
	}
	return 0
}

func waitCalled(t *testing.T, f *fakeTransport) {
	t.Helper()
	select {
	case <-f.called:
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a poll")
	}
}

func waitDone(t *testing.T, p *Poller) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for poller to stop")
	}
}

func requireNotArmed(t *testing.T, c *fakeClock) {
	t.Helper()
	select {
	case d := <-c.armed:
		t.Fatalf("unexpected timer scheduled (%s)", d)
	default:
	}
}
