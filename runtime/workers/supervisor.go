package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"huddle/contract"
	"huddle/errors"
)

const DefaultRestartInterval = 200 * time.Millisecond

// Supervisor owns the context of every worker it runs.
// Workers that panic or fail are restarted after a short delay,
// workers returning nil are considered done.
// Run blocks until the parent context is canceled and every worker returned.
type Supervisor struct {
	mu              sync.Mutex
	Cancel          context.CancelFunc
	ctx             context.Context
	wg              *sync.WaitGroup
	log             *slog.Logger
	workers         []contract.Worker
	restartInterval time.Duration
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	if restartInterval <= 0 {
		restartInterval = DefaultRestartInterval
	}
	return &Supervisor{wg: &sync.WaitGroup{}, log: log, restartInterval: restartInterval}
}

// Run creates a local cancellation trigger tied to the parent ctx.
// If the parent cancels, every worker stops. Calling Stop only stops our children.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.Cancel = cancel
	s.ctx = supervisedCtx
	// Keeps the group open while the context lives so Spawn can add workers later.
	s.wg.Add(1)
	go func() {
		<-supervisedCtx.Done()
		s.wg.Done()
	}()
	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.workers = nil
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, worker...)
	return s
}

// Spawn starts a worker on a running supervisor, or queues it until Run is called.
func (s *Supervisor) Spawn(worker contract.Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		s.workers = append(s.workers, worker)
		return
	}
	if s.ctx.Err() != nil {
		s.log.Warn("Supervisor stopped, worker not started", "name", contract.GetWorkerName(worker))
		return
	}
	s.Start(s.ctx, worker)
}

// Start runs a worker under supervision in its own goroutine.
// A panic is recovered and the worker restarted, the supervisor keeps going.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Info(fmt.Sprintf("Stopping : %s", workerName))
				return
			}

			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
					}
				}()
				return worker.Run(ctx)
			}()

			if err == nil {
				s.log.Info(fmt.Sprintf("Worker finished : %s", workerName))
				return
			}

			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", workerName)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", workerName, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.restartInterval):
			}
		}
	}()
}

// Stop cancels every supervised worker. Run returns once they are all done.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Cancel != nil {
		s.Cancel()
	}
}
