package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"flashmirror/internal/app/ports"
	"flashmirror/internal/app/reconcile"
	"flashmirror/internal/domain/snapshot"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrInvalidRequest = errors.New("invalid intent")

type Deps struct {
	Gateway ports.Gateway
	Engine  *reconcile.Engine
	Events  ports.EventPublisher
	Journal ports.SnapshotJournal
	Metrics ports.IntentMetrics
	Log     logrus.FieldLogger
	NewID   func() string
	Now     func() time.Time
}

// Dispatcher turns intents into gateway calls and applies the resulting
// snapshot to every mirror. Intents are serialized: one holds the
// dispatcher for its whole round trip, so snapshots are applied in the order
// intents were accepted. Event subscribers run on the intent's goroutine and
// must not call back into the Dispatcher.
type Dispatcher struct {
	gateway ports.Gateway
	engine  *reconcile.Engine
	events  ports.EventPublisher
	journal ports.SnapshotJournal
	metrics ports.IntentMetrics
	log     logrus.FieldLogger
	newID   func() string
	now     func() time.Time

	intentMu sync.Mutex

	stateMu   sync.RWMutex
	current   *snapshot.Snapshot
	sessionID string
}

func New(d Deps) (*Dispatcher, error) {
	if d.Gateway == nil || d.Engine == nil {
		return nil, fmt.Errorf("%w: gateway and engine are required", ErrInvalidRequest)
	}
	out := &Dispatcher{
		gateway: d.Gateway,
		engine:  d.Engine,
		events:  d.Events,
		journal: d.Journal,
		metrics: d.Metrics,
		log:     d.Log,
		newID:   d.NewID,
		now:     d.Now,
	}
	if out.log == nil {
		out.log = logrus.StandardLogger()
	}
	if out.newID == nil {
		out.newID = uuid.NewString
	}
	if out.now == nil {
		out.now = time.Now
	}
	return out, nil
}

// Current returns the last applied snapshot.
func (d *Dispatcher) Current() (snapshot.Snapshot, bool) {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	if d.current == nil {
		return snapshot.Snapshot{}, false
	}
	return *d.current, true
}

func (d *Dispatcher) SessionID() string {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.sessionID
}

func (d *Dispatcher) Ping(ctx context.Context) (string, error) {
	d.intentMu.Lock()
	defer d.intentMu.Unlock()

	c := pingCall()
	intentID := d.newID()
	log := d.intentLog(c.intent, intentID)
	env, err := d.gateway.Send(ctx, c.method, c.path, nil)
	if err != nil {
		return "", d.fail(log, c.intent, intentID, err)
	}
	d.recordSuccess(c.intent)
	log.WithField("status", env.Status).Debug("remote reachable")
	return env.Message, nil
}

func (d *Dispatcher) CreateGame(ctx context.Context, cfg GameConfig) (snapshot.Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		d.recordRejected(IntentCreateGame)
		return snapshot.Snapshot{}, err
	}
	return d.run(ctx, createCall(cfg))
}

func (d *Dispatcher) ExecuteStep(ctx context.Context) (snapshot.Snapshot, error) {
	return d.run(ctx, stepCall())
}

func (d *Dispatcher) ExecuteSteps(ctx context.Context, n int) (snapshot.Snapshot, error) {
	if n <= 0 {
		d.recordRejected(IntentSteps)
		return snapshot.Snapshot{}, fmt.Errorf("%w: step count must be positive, got %d", ErrInvalidRequest, n)
	}
	return d.run(ctx, stepsCall(n))
}

func (d *Dispatcher) MoveAgent(ctx context.Context, id, x, y int) (snapshot.Snapshot, error) {
	return d.run(ctx, moveCall(id, x, y))
}

func (d *Dispatcher) Extinguish(ctx context.Context, id int) (snapshot.Snapshot, error) {
	return d.run(ctx, extinguishCall(id))
}

func (d *Dispatcher) Refresh(ctx context.Context) (snapshot.Snapshot, error) {
	return d.run(ctx, refreshCall())
}

// ResetGame clears every mirror and forgets the current snapshot once the
// remote acknowledges. A failed reset leaves everything as it was.
func (d *Dispatcher) ResetGame(ctx context.Context) error {
	d.intentMu.Lock()
	defer d.intentMu.Unlock()

	c := resetCall()
	intentID := d.newID()
	log := d.intentLog(c.intent, intentID)
	if _, err := d.gateway.Send(ctx, c.method, c.path, nil); err != nil {
		return d.fail(log, c.intent, intentID, err)
	}

	d.closeSession(ctx, log)
	destroyed := d.engine.Clear()
	d.setState(nil, "")
	d.recordSuccess(c.intent)
	d.recordReconcile(reconcile.Ops{Destroyed: destroyed})
	log.WithField("destroyed", destroyed).Info("game reset")
	d.publish(ports.Event{
		Kind:       ports.EventStateUpdated,
		Intent:     string(c.intent),
		IntentID:   intentID,
		OccurredAt: d.now(),
	})
	return nil
}

func (d *Dispatcher) run(ctx context.Context, c call) (snapshot.Snapshot, error) {
	d.intentMu.Lock()
	defer d.intentMu.Unlock()

	intentID := d.newID()
	log := d.intentLog(c.intent, intentID)

	env, err := d.gateway.Send(ctx, c.method, c.path, c.body)
	if err != nil {
		return snapshot.Snapshot{}, d.fail(log, c.intent, intentID, err)
	}
	if !env.HasState() {
		// Acknowledgements carry no snapshot; fetch it explicitly.
		r := refreshCall()
		log.Debug("acknowledged without state, refreshing")
		env, err = d.gateway.Send(ctx, r.method, r.path, nil)
		if err != nil {
			return snapshot.Snapshot{}, d.fail(log, c.intent, intentID, err)
		}
		if !env.HasState() {
			return snapshot.Snapshot{}, d.fail(log, c.intent, intentID, ports.DecodeError("state response carried no snapshot", nil))
		}
	}

	s := *env.State
	d.apply(ctx, log, c, intentID, s)
	return s, nil
}

func (d *Dispatcher) apply(ctx context.Context, log logrus.FieldLogger, c call, intentID string, s snapshot.Snapshot) {
	prev, hadPrev := d.Current()
	session := d.SessionID()
	if c.newGame {
		d.closeSession(ctx, log)
		if n := d.engine.Clear(); n > 0 {
			log.WithField("destroyed", n).Debug("cleared mirrors for new game")
		}
		session = ""
		hadPrev = false
	}
	if session == "" {
		session = d.newID()
	}
	if hadPrev && s.Step < prev.Step {
		log.WithFields(logrus.Fields{"step": s.Step, "previous_step": prev.Step}).Warn("snapshot step went backwards")
	}

	ops := d.engine.Apply(s)
	d.setState(&s, session)
	d.appendJournal(ctx, log, ports.JournalEntry{
		SessionID: session,
		IntentID:  intentID,
		Intent:    string(c.intent),
		Step:      s.Step,
		Snapshot:  s,
		AppliedAt: d.now(),
	})
	d.recordSuccess(c.intent)
	d.recordReconcile(ops)
	log.WithFields(logrus.Fields{
		"step":      s.Step,
		"created":   ops.Created,
		"updated":   ops.Updated,
		"destroyed": ops.Destroyed,
	}).Info("snapshot applied")

	d.publish(ports.Event{
		Kind:       ports.EventStateUpdated,
		Intent:     string(c.intent),
		IntentID:   intentID,
		Snapshot:   &s,
		OccurredAt: d.now(),
	})
}

func (d *Dispatcher) fail(log logrus.FieldLogger, intent Intent, intentID string, err error) error {
	kind := ports.ErrorKind(err)
	log.WithError(err).WithField("error_kind", kind).Warn("intent failed")
	if d.metrics != nil {
		d.metrics.RecordIntentFailure(string(intent), kind)
	}
	d.publish(ports.Event{
		Kind:       ports.EventError,
		Intent:     string(intent),
		IntentID:   intentID,
		Message:    err.Error(),
		OccurredAt: d.now(),
	})
	return fmt.Errorf("%s: %w", intent, err)
}

func (d *Dispatcher) setState(s *snapshot.Snapshot, sessionID string) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	d.current = s
	d.sessionID = sessionID
}

func (d *Dispatcher) closeSession(ctx context.Context, log logrus.FieldLogger) {
	session := d.SessionID()
	if d.journal == nil || session == "" {
		return
	}
	if err := d.journal.CloseSession(ctx, session, d.now()); err != nil {
		log.WithError(err).WithField("session_id", session).Warn("close journal session")
	}
}

func (d *Dispatcher) appendJournal(ctx context.Context, log logrus.FieldLogger, entry ports.JournalEntry) {
	if d.journal == nil {
		return
	}
	if err := d.journal.Append(ctx, entry); err != nil {
		log.WithError(err).WithField("session_id", entry.SessionID).Warn("journal append failed")
	}
}

func (d *Dispatcher) publish(evt ports.Event) {
	if d.events != nil {
		d.events.Publish(evt)
	}
}

func (d *Dispatcher) intentLog(intent Intent, intentID string) logrus.FieldLogger {
	return d.log.WithFields(logrus.Fields{"intent": string(intent), "intent_id": intentID})
}

func (d *Dispatcher) recordSuccess(intent Intent) {
	if d.metrics != nil {
		d.metrics.RecordIntentSuccess(string(intent))
	}
}

func (d *Dispatcher) recordRejected(intent Intent) {
	if d.metrics != nil {
		d.metrics.RecordRejected(string(intent))
	}
}

func (d *Dispatcher) recordReconcile(ops reconcile.Ops) {
	if d.metrics != nil {
		d.metrics.RecordReconcile(ops.Created, ops.Updated, ops.Destroyed)
	}
}
