package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	JobAuditPurge  = "audit_purge"
	JobOutboxRelay = "outbox_relay"
)

type Func func(context.Context) (any, error)

type Service struct {
	runs  RunStore
	log   *zap.Logger
	cron  *cron.Cron
	queue chan job

	mu    sync.RWMutex
	known map[string]Func
	wg    sync.WaitGroup
}

type job struct {
	Type string
	Run  Func
}

func New(runs RunStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		runs:  runs,
		log:   log,
		cron:  cron.New(),
		queue: make(chan job, 128),
		known: map[string]Func{},
	}
}

// Schedule registers jobType under a cron spec. The standard five-field
// syntax and descriptors such as "@daily" or "@every 10s" are accepted. An
// empty spec registers the job for manual runs only.
func (s *Service) Schedule(spec, jobType string, run Func) error {
	s.mu.Lock()
	s.known[jobType] = run
	s.mu.Unlock()
	if spec == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.Enqueue(jobType, run) }); err != nil {
		return fmt.Errorf("schedule %s: %w", jobType, err)
	}
	return nil
}

func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.worker(ctx)
	}()
	s.cron.Start()
	s.log.Info("job scheduler started", zap.Int("schedules", len(s.cron.Entries())))
}

// Stop halts the schedule and waits for a running cron callback to return.
// The worker exits when the context passed to Start is cancelled.
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.log.Info("job scheduler stopped")
}

func (s *Service) Enqueue(jobType string, run Func) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		s.log.Warn("job queue full", zap.String("job_type", jobType))
	}
}

// RunNow runs a registered job synchronously and records the run.
func (s *Service) RunNow(ctx context.Context, jobType string) (any, error) {
	s.mu.RLock()
	run, ok := s.known[jobType]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownJob
	}
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) Runs(ctx context.Context, limit int) ([]Run, error) {
	return s.runs.List(ctx, limit)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				s.log.Warn("job run failed", zap.String("job_type", j.Type), zap.Error(err))
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID, err := s.runs.Start(ctx, j.Type)
	if err != nil {
		s.log.Warn("job run insert failed", zap.String("job_type", j.Type), zap.Error(err))
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		s.log.Warn("job details marshal failed", zap.Error(marshalErr))
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if updErr := s.runs.Finish(ctx, runID, status, detailsJSON); updErr != nil {
			s.log.Warn("job run update failed", zap.String("run_id", runID), zap.Error(updErr))
		}
	}
	return details, err
}
