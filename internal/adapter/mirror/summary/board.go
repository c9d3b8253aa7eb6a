package summary

import (
	"fmt"
	"sort"
	"sync"

	"flashmirror/internal/app/ports"
	"flashmirror/internal/domain/snapshot"
)

type AgentRow struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Position     string `json:"position"`
	ActionPoints int    `json:"action_points"`
	Carrying     string `json:"carrying"`
}

type POIRow struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Status   string `json:"status"`
}

type Header struct {
	Step       int `json:"step"`
	Rescued    int `json:"rescued"`
	Fire       int `json:"fire"`
	Smoke      int `json:"smoke"`
	Explosions int `json:"explosions"`
}

type View struct {
	Header       *Header    `json:"header"`
	Firefighters []AgentRow `json:"firefighters"`
	POIs         []POIRow   `json:"pois"`
}

func AgentRowOf(a snapshot.Agent) AgentRow {
	role := "Firefighter"
	if a.Role.IsRescuer() {
		role = "Rescuer"
	}
	carrying := "-"
	if a.Carrying != nil {
		carrying = fmt.Sprintf("P%d", *a.Carrying)
	}
	return AgentRow{
		ID:           a.ID,
		Name:         fmt.Sprintf("FF%d", a.ID),
		Role:         role,
		Position:     formatPosition(a.Position),
		ActionPoints: a.ActionPoints,
		Carrying:     carrying,
	}
}

func POIRowOf(p snapshot.POI) POIRow {
	status := "hidden"
	if p.Revealed {
		status = "revealed"
	}
	return POIRow{
		ID:       p.ID,
		Name:     fmt.Sprintf("P%d", p.ID),
		Position: formatPosition(p.Position),
		Status:   status,
	}
}

func HeaderOf(step int, s snapshot.Stats) Header {
	return Header{
		Step:       step,
		Rescued:    s.RescuedPOIs,
		Fire:       s.FireCells,
		Smoke:      s.SmokeCells,
		Explosions: s.ExplosionCount,
	}
}

func formatPosition(p snapshot.Position) string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Board is the list mirror. Rows keep the order of the latest
// reconciliation pass.
type Board struct {
	mu     sync.RWMutex
	agents table[AgentRow]
	pois   table[POIRow]
	header *Header
}

func NewBoard() *Board {
	return &Board{
		agents: newTable[AgentRow](),
		pois:   newTable[POIRow](),
	}
}

func (b *Board) Agents() ports.EntityMirror[snapshot.Agent] {
	return &layer[snapshot.Agent, AgentRow]{b: b, t: &b.agents, row: AgentRowOf}
}

func (b *Board) POIs() ports.EntityMirror[snapshot.POI] {
	return &layer[snapshot.POI, POIRow]{b: b, t: &b.pois, row: POIRowOf}
}

func (b *Board) SetStats(step int, s snapshot.Stats) {
	h := HeaderOf(step, s)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.header = &h
}

func (b *Board) ClearStats() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.header = nil
}

func (b *Board) View() View {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v := View{
		Firefighters: b.agents.list(),
		POIs:         b.pois.list(),
	}
	if b.header != nil {
		h := *b.header
		v.Header = &h
	}
	return v
}

type table[R any] struct {
	rows  map[int]R
	order []int
}

func newTable[R any]() table[R] {
	return table[R]{rows: map[int]R{}}
}

// list returns rows in pass order. Rows created outside a pass follow,
// sorted by id.
func (t *table[R]) list() []R {
	out := make([]R, 0, len(t.rows))
	listed := make(map[int]struct{}, len(t.rows))
	for _, id := range t.order {
		if r, ok := t.rows[id]; ok {
			out = append(out, r)
			listed[id] = struct{}{}
		}
	}
	for _, id := range t.ids() {
		if _, ok := listed[id]; !ok {
			out = append(out, t.rows[id])
		}
	}
	return out
}

func (t *table[R]) ids() []int {
	ids := make([]int, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

type layer[E snapshot.Entity, R any] struct {
	b   *Board
	t   *table[R]
	row func(E) R
}

func (l *layer[E, R]) Create(e E) { l.put(e.EntityID(), e) }

func (l *layer[E, R]) Update(id int, e E) { l.put(id, e) }

func (l *layer[E, R]) put(id int, e E) {
	r := l.row(e)
	l.b.mu.Lock()
	defer l.b.mu.Unlock()
	l.t.rows[id] = r
}

func (l *layer[E, R]) Destroy(id int) {
	l.b.mu.Lock()
	defer l.b.mu.Unlock()
	delete(l.t.rows, id)
}

func (l *layer[E, R]) IDs() []int {
	l.b.mu.RLock()
	defer l.b.mu.RUnlock()
	return l.t.ids()
}

func (l *layer[E, R]) Reorder(ids []int) {
	l.b.mu.Lock()
	defer l.b.mu.Unlock()
	l.t.order = append(l.t.order[:0], ids...)
}
