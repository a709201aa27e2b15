package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/bryanwahyu/automaton-trust/internal/application"
	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
)

// Service implements use-cases untuk tracking assessment jobs.
// It keeps one Poller per job id and is safe for concurrent use.
type Service struct {
	Transport domain.Transport
	Repo      domain.Repository    // optional
	Archive   domain.ReportArchive // optional
	Clock     application.Clock
	Interval  time.Duration
	Logger    *log.Logger

	// optional hooks, e.g. metrics. Every tracked job ends in exactly one of
	// OnTerminal or OnCancelled, unless the process exits first.
	OnTracked   func(domain.JobID)
	OnTerminal  func(domain.Job)
	OnCancelled func(domain.JobID)

	mu      sync.Mutex
	pollers map[domain.JobID]*Poller
	ctx     context.Context
	stop    context.CancelFunc
}

// ValidationError is returned before anything is sent upstream.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

//
// ==== USE CASES ====
//

// SubmitCommand untuk submit assessment baru
type SubmitCommand struct {
	GithubURL string
	FileName  string
	File      io.Reader
}

// SubmitResult is returned to the caller right after the upstream accepted the job.
type SubmitResult struct {
	JobID  domain.JobID  `json:"job_id"`
	Status domain.Status `json:"status"`
}

// Validate checks the inputs that must exist before anything is sent upstream.
func (c SubmitCommand) Validate() error {
	if strings.TrimSpace(c.GithubURL) == "" {
		return &ValidationError{Field: "github_url", Message: "Please enter a GitHub repository URL."}
	}
	if c.File == nil {
		return &ValidationError{Field: "file", Message: "Please upload a PDF document."}
	}
	return nil
}

// Submit validates cmd, hands it to the transport and starts tracking the
// returned job id.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (SubmitResult, error) {
	if err := cmd.Validate(); err != nil {
		return SubmitResult{}, err
	}
	sub := domain.Submission{
		GithubURL: strings.TrimSpace(cmd.GithubURL),
		FileName:  cmd.FileName,
		File:      cmd.File,
	}

	resp, err := s.Transport.Submit(ctx, sub)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("submit assessment: %w", err)
	}
	if resp.JobID == "" {
		return SubmitResult{}, &domain.TransportError{Detail: "upstream returned no job id"}
	}

	s.logger().Printf("assessment submitted job_id=%s github_url=%s", resp.JobID, sub.GithubURL)
	p := s.Track(resp.JobID)
	return SubmitResult{JobID: resp.JobID, Status: p.Snapshot().Status}, nil
}

// Track starts polling id unless a poller for it already exists.
func (s *Service) Track(id domain.JobID) *Poller {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	if p, ok := s.pollers[id]; ok && !p.Cancelled() {
		return p
	}
	var p *Poller
	p = NewPoller(id, s.Transport,
		WithClock(s.Clock),
		WithInterval(s.Interval),
		WithLogger(s.logger()),
		WithOnTerminal(func(j domain.Job) { s.recordTerminal(p, j) }),
	)
	s.pollers[id] = p
	p.Start(s.ctx)
	if s.OnTracked != nil {
		s.OnTracked(id)
	}
	return p
}

// Get returns the live state of id, falling back to the repository for jobs
// that are no longer tracked in memory.
func (s *Service) Get(ctx context.Context, id domain.JobID) (domain.Job, error) {
	s.mu.Lock()
	p, ok := s.pollers[id]
	s.mu.Unlock()
	if ok {
		return p.Snapshot(), nil
	}
	if s.Repo != nil {
		j, err := s.Repo.Get(ctx, id)
		if err != nil {
			return domain.Job{}, err
		}
		if j != nil {
			return *j, nil
		}
	}
	return domain.Job{}, domain.ErrJobNotFound
}

// Report derives the display-ready report for a Complete job.
func (s *Service) Report(ctx context.Context, id domain.JobID) (domain.Report, error) {
	j, err := s.Get(ctx, id)
	if err != nil {
		return domain.Report{}, err
	}
	if j.Status != domain.StatusComplete {
		return domain.Report{}, fmt.Errorf("%w: %s is %s", domain.ErrNotComplete, id, j.Status)
	}
	return domain.BuildReport(j.Result), nil
}

// Wait blocks until id stops polling. Jobs already evicted to the repository
// return their stored snapshot.
func (s *Service) Wait(ctx context.Context, id domain.JobID) (domain.Job, error) {
	s.mu.Lock()
	p, ok := s.pollers[id]
	s.mu.Unlock()
	if ok {
		return p.Wait(ctx)
	}
	return s.Get(ctx, id)
}

// Cancel stops tracking id. The last snapshot stays readable via Get.
func (s *Service) Cancel(id domain.JobID) error {
	s.mu.Lock()
	p, ok := s.pollers[id]
	s.mu.Unlock()
	if !ok {
		return domain.ErrJobNotFound
	}
	if p.Cancel() && s.OnCancelled != nil {
		s.OnCancelled(id)
	}
	return nil
}

// Latest ambil N snapshot terminal terakhir dari repository
func (s *Service) Latest(ctx context.Context, limit int) ([]*domain.Job, error) {
	if s.Repo == nil {
		return []*domain.Job{}, nil
	}
	return s.Repo.Latest(ctx, limit)
}

// Close cancels every poller.
func (s *Service) Close() {
	s.mu.Lock()
	pollers := make([]*Poller, 0, len(s.pollers))
	for _, p := range s.pollers {
		pollers = append(pollers, p)
	}
	if s.stop != nil {
		s.stop()
	}
	s.mu.Unlock()

	for _, p := range pollers {
		if p.Cancel() && s.OnCancelled != nil {
			s.OnCancelled(p.ID())
		}
	}
}

// init must be called with mu held.
func (s *Service) init() {
	if s.pollers == nil {
		s.pollers = make(map[domain.JobID]*Poller)
	}
	if s.ctx == nil {
		s.ctx, s.stop = context.WithCancel(context.Background())
	}
	if s.Clock == nil {
		s.Clock = application.SystemClock{}
	}
}

func (s *Service) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

// recordTerminal persists the raw envelope and archives the result. Failures
// here are logged only; they never change the job state. Once the snapshot is
// saved the poller is dropped and Get serves the job from the repository.
func (s *Service) recordTerminal(p *Poller, j domain.Job) {
	if s.OnTerminal != nil {
		s.OnTerminal(j)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.Repo != nil {
		if err := s.Repo.Save(ctx, &j); err != nil {
			s.logger().Printf("snapshot save failed job_id=%s: %v", j.ID, err)
		} else {
			s.evict(p)
		}
	}
	if s.Archive != nil && j.Status == domain.StatusComplete {
		body, err := json.Marshal(j.Result)
		if err != nil {
			s.logger().Printf("archive encode failed job_id=%s: %v", j.ID, err)
			return
		}
		key := fmt.Sprintf("assessments/%s/result.json", j.ID)
		url, err := s.Archive.Put(ctx, key, body)
		if err != nil {
			s.logger().Printf("archive upload failed job_id=%s: %v", j.ID, err)
			return
		}
		s.logger().Printf("result archived job_id=%s url=%s", j.ID, url)
	}
}

// evict removes p unless a newer poller replaced it under the same id.
func (s *Service) evict(p *Poller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.pollers[p.ID()]; ok && cur == p {
		delete(s.pollers, p.ID())
	}
}
