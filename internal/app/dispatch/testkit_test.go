package dispatch

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"flashmirror/internal/app/ports"
	"flashmirror/internal/app/reconcile"
	"flashmirror/internal/domain/snapshot"

	"github.com/sirupsen/logrus"
)

type gatewayCall struct {
	Method string
	Path   string
	Body   any
}

type gatewayReply struct {
	env ports.Envelope
	err error
}

// scriptedGateway answers by "METHOD path"; replies for a key are consumed
// in order and the last one repeats.
type scriptedGateway struct {
	mu       sync.Mutex
	replies  map[string][]gatewayReply
	calls    []gatewayCall
	inflight int
	maxSeen  int
	delay    time.Duration
}

func newScriptedGateway() *scriptedGateway {
	return &scriptedGateway{replies: map[string][]gatewayReply{}}
}

func (g *scriptedGateway) on(method, path string, env ports.Envelope, err error) *scriptedGateway {
	key := method + " " + path
	g.replies[key] = append(g.replies[key], gatewayReply{env: env, err: err})
	return g
}

func (g *scriptedGateway) Send(_ context.Context, method, path string, body any) (ports.Envelope, error) {
	g.mu.Lock()
	g.calls = append(g.calls, gatewayCall{Method: method, Path: path, Body: body})
	g.inflight++
	if g.inflight > g.maxSeen {
		g.maxSeen = g.inflight
	}
	key := method + " " + path
	queue := g.replies[key]
	var r gatewayReply
	switch {
	case len(queue) == 0:
		r = gatewayReply{err: ports.NetworkError(404, "no script for "+key, nil)}
	case len(queue) == 1:
		r = queue[0]
	default:
		r = queue[0]
		g.replies[key] = queue[1:]
	}
	delay := g.delay
	g.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	g.mu.Lock()
	g.inflight--
	g.mu.Unlock()
	return r.env, r.err
}

func (g *scriptedGateway) callKeys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.calls))
	for _, c := range g.calls {
		out = append(out, c.Method+" "+c.Path)
	}
	return out
}

type mapMirror[E snapshot.Entity] struct {
	handles map[int]E
}

func newMapMirror[E snapshot.Entity]() *mapMirror[E] {
	return &mapMirror[E]{handles: map[int]E{}}
}

func (m *mapMirror[E]) Create(e E)         { m.handles[e.EntityID()] = e }
func (m *mapMirror[E]) Update(id int, e E) { m.handles[id] = e }
func (m *mapMirror[E]) Destroy(id int)     { delete(m.handles, id) }
func (m *mapMirror[E]) IDs() []int {
	out := make([]int, 0, len(m.handles))
	for id := range m.handles {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

type eventLog struct {
	mu     sync.Mutex
	events []ports.Event
}

func (l *eventLog) Publish(evt ports.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, evt)
}

func (l *eventLog) kinds() []ports.EventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ports.EventKind, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Kind)
	}
	return out
}

func (l *eventLog) last() ports.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events[len(l.events)-1]
}

type journalFake struct {
	entries []ports.JournalEntry
	closed  []string
}

func (j *journalFake) Append(_ context.Context, e ports.JournalEntry) error {
	j.entries = append(j.entries, e)
	return nil
}

func (j *journalFake) ListBySession(_ context.Context, sessionID string, _ int) ([]ports.JournalEntry, error) {
	var out []ports.JournalEntry
	for _, e := range j.entries {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (j *journalFake) CloseSession(_ context.Context, sessionID string, _ time.Time) error {
	j.closed = append(j.closed, sessionID)
	return nil
}

type harness struct {
	d       *Dispatcher
	gw      *scriptedGateway
	agents  *mapMirror[snapshot.Agent]
	pois    *mapMirror[snapshot.POI]
	list    *mapMirror[snapshot.POI]
	events  *eventLog
	journal *journalFake
}

func newHarness(gw *scriptedGateway) *harness {
	agents := newMapMirror[snapshot.Agent]()
	pois := newMapMirror[snapshot.POI]()
	list := newMapMirror[snapshot.POI]()
	events := &eventLog{}
	journal := &journalFake{}
	engine := reconcile.NewEngine(
		reconcile.Target{Name: "spatial", Agents: agents, POIs: pois},
		reconcile.Target{Name: "summary", POIs: list},
	)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	seq := 0
	d, err := New(Deps{
		Gateway: gw,
		Engine:  engine,
		Events:  events,
		Journal: journal,
		Log:     logger,
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
		Now: func() time.Time { return time.Unix(1700000000, 0) },
	})
	if err != nil {
		panic(err)
	}
	return &harness{d: d, gw: gw, agents: agents, pois: pois, list: list, events: events, journal: journal}
}

func world(step int, poiIDs ...int) *snapshot.Snapshot {
	s := &snapshot.Snapshot{
		Step:       step,
		Dimensions: snapshot.Dimensions{Width: 2, Height: 1},
		Firefighters: []snapshot.Agent{
			{ID: 1, Position: snapshot.Position{X: 0, Y: 0}, ActionPoints: 4, Role: snapshot.RoleRescuer},
		},
		Grid: [][]snapshot.Cell{{{FireState: snapshot.FireClear}, {FireState: snapshot.FireFire}}},
	}
	for _, id := range poiIDs {
		s.POIs = append(s.POIs, snapshot.POI{ID: id, Position: snapshot.Position{X: 1, Y: 0}})
	}
	return s
}

func ok(s *snapshot.Snapshot) ports.Envelope {
	return ports.Envelope{Status: "success", State: s}
}

func ack() ports.Envelope {
	return ports.Envelope{Status: "success", Message: "ok"}
}
