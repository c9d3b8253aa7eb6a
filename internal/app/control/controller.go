package control

import (
	"context"
	"errors"
	"sync"
	"time"

	"flashmirror/internal/app/autostep"
	"flashmirror/internal/app/dispatch"
	"flashmirror/internal/app/ports"
	"flashmirror/internal/domain/snapshot"

	"github.com/sirupsen/logrus"
)

var ErrAutoStepActive = errors.New("manual stepping is disabled while auto-step is running")

type Intents interface {
	Ping(ctx context.Context) (string, error)
	CreateGame(ctx context.Context, cfg dispatch.GameConfig) (snapshot.Snapshot, error)
	ExecuteStep(ctx context.Context) (snapshot.Snapshot, error)
	ExecuteSteps(ctx context.Context, n int) (snapshot.Snapshot, error)
	MoveAgent(ctx context.Context, id, x, y int) (snapshot.Snapshot, error)
	Extinguish(ctx context.Context, id int) (snapshot.Snapshot, error)
	Refresh(ctx context.Context) (snapshot.Snapshot, error)
	ResetGame(ctx context.Context) error
	Current() (snapshot.Snapshot, bool)
	SessionID() string
}

type Deps struct {
	Intents Intents
	Metrics ports.IntentMetrics
	Log     logrus.FieldLogger
	// OnClose runs once, after the scheduler has stopped.
	OnClose []func()
}

// Controller is the surface callers drive. It owns the auto-step scheduler
// and keeps manual stepping and auto-stepping mutually exclusive.
type Controller struct {
	intents   Intents
	scheduler *autostep.Scheduler
	metrics   ports.IntentMetrics
	log       logrus.FieldLogger
	onClose   []func()
	closeOnce sync.Once
}

func New(d Deps) *Controller {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Controller{
		intents: d.Intents,
		metrics: d.Metrics,
		log:     log,
		onClose: d.OnClose,
	}
	c.scheduler = autostep.New(func(ctx context.Context) error {
		_, err := c.intents.ExecuteStep(ctx)
		return err
	}, log.WithField("component", "autostep"))
	return c
}

func (c *Controller) Ping(ctx context.Context) (string, error) {
	return c.intents.Ping(ctx)
}

func (c *Controller) CreateGame(ctx context.Context, cfg dispatch.GameConfig) (snapshot.Snapshot, error) {
	return c.intents.CreateGame(ctx, cfg)
}

func (c *Controller) ExecuteStep(ctx context.Context) (snapshot.Snapshot, error) {
	if err := c.guardManual(dispatch.IntentStep); err != nil {
		return snapshot.Snapshot{}, err
	}
	return c.intents.ExecuteStep(ctx)
}

func (c *Controller) ExecuteSteps(ctx context.Context, n int) (snapshot.Snapshot, error) {
	if err := c.guardManual(dispatch.IntentSteps); err != nil {
		return snapshot.Snapshot{}, err
	}
	return c.intents.ExecuteSteps(ctx, n)
}

func (c *Controller) MoveAgent(ctx context.Context, id, x, y int) (snapshot.Snapshot, error) {
	return c.intents.MoveAgent(ctx, id, x, y)
}

func (c *Controller) Extinguish(ctx context.Context, id int) (snapshot.Snapshot, error) {
	return c.intents.Extinguish(ctx, id)
}

func (c *Controller) Refresh(ctx context.Context) (snapshot.Snapshot, error) {
	return c.intents.Refresh(ctx)
}

// ResetGame stops auto-stepping before resetting so the scheduler does not
// keep stepping a game that no longer exists.
func (c *Controller) ResetGame(ctx context.Context) error {
	if err := c.scheduler.Disable(); err == nil {
		c.log.Info("auto-step stopped for reset")
	}
	return c.intents.ResetGame(ctx)
}

func (c *Controller) Current() (snapshot.Snapshot, bool) {
	return c.intents.Current()
}

func (c *Controller) SessionID() string {
	return c.intents.SessionID()
}

func (c *Controller) EnableAutoStep(interval time.Duration) error {
	return c.scheduler.Enable(interval)
}

func (c *Controller) DisableAutoStep() error {
	return c.scheduler.Disable()
}

func (c *Controller) SetAutoStepInterval(interval time.Duration) error {
	return c.scheduler.SetInterval(interval)
}

func (c *Controller) AutoStep() autostep.Status {
	return c.scheduler.Status()
}

// Close stops the scheduler, waits for its last step, then releases every
// registered subscription. It is safe to call more than once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.scheduler.Close()
		for _, fn := range c.onClose {
			fn()
		}
		c.log.Info("controller closed")
	})
}

func (c *Controller) guardManual(intent dispatch.Intent) error {
	if !c.scheduler.Running() {
		return nil
	}
	if c.metrics != nil {
		c.metrics.RecordRejected(string(intent))
	}
	c.log.WithField("intent", string(intent)).Debug("manual step rejected while auto-step runs")
	return ErrAutoStepActive
}
