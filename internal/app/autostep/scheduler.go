package autostep

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrAlreadyRunning  = errors.New("auto-step already running")
	ErrNotRunning      = errors.New("auto-step not running")
	ErrInvalidInterval = errors.New("auto-step interval must be positive")
)

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// StepFunc performs one step. It receives a context that is not cancelled
// by Disable, so a dispatched step always completes.
type StepFunc func(ctx context.Context) error

type Status struct {
	State    State         `json:"state"`
	Interval time.Duration `json:"interval"`
	Steps    uint64        `json:"steps"`
	Failures uint64        `json:"failures"`
}

// Scheduler waits Interval, runs one step, and repeats until disabled. The
// state, interval and the running loop are guarded by one mutex.
type Scheduler struct {
	step StepFunc
	log  logrus.FieldLogger

	mu       sync.Mutex
	state    State
	interval time.Duration
	cancel   context.CancelFunc
	loops    sync.WaitGroup
	steps    uint64
	failures uint64
}

func New(step StepFunc, log logrus.FieldLogger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{step: step, log: log, state: StateIdle}
}

func (s *Scheduler) Enable(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.state = StateRunning
	s.interval = interval
	s.cancel = cancel
	s.loops.Add(1)
	go s.loop(ctx, interval)
	s.log.WithField("interval", interval.String()).Info("auto-step enabled")
	return nil
}

// Disable stops scheduling further steps. A step already dispatched keeps
// running; Disable does not wait for it.
func (s *Scheduler) Disable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return ErrNotRunning
	}
	s.cancel()
	s.state = StateIdle
	s.cancel = nil
	s.log.Info("auto-step disabled")
	return nil
}

// SetInterval changes the wait used from the next scheduled step on.
func (s *Scheduler) SetInterval(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = interval
	s.log.WithField("interval", interval.String()).Debug("auto-step interval changed")
	return nil
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateRunning
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{State: s.state, Interval: s.interval, Steps: s.steps, Failures: s.failures}
}

// Close disables the scheduler and waits until every loop, including any
// step in flight, has returned.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.state == StateRunning {
		s.cancel()
		s.state = StateIdle
		s.cancel = nil
	}
	s.mu.Unlock()
	s.loops.Wait()
}

func (s *Scheduler) loop(ctx context.Context, first time.Duration) {
	defer s.loops.Done()
	wait := first
	for {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		err := s.step(context.WithoutCancel(ctx))
		s.mu.Lock()
		s.steps++
		if err != nil {
			s.failures++
		}
		wait = s.interval
		s.mu.Unlock()
		if err != nil {
			s.log.WithError(err).Warn("auto-step failed")
		}
	}
}
