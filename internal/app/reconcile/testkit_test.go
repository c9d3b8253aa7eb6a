package reconcile

import (
	"fmt"
	"sort"

	"flashmirror/internal/domain/snapshot"
)

type recordingMirror[E snapshot.Entity] struct {
	handles map[int]E
	calls   []string
	order   []int
}

func newRecordingMirror[E snapshot.Entity]() *recordingMirror[E] {
	return &recordingMirror[E]{handles: map[int]E{}}
}

func (m *recordingMirror[E]) Create(e E) {
	m.handles[e.EntityID()] = e
	m.calls = append(m.calls, fmt.Sprintf("create:%d", e.EntityID()))
}

func (m *recordingMirror[E]) Update(id int, e E) {
	m.handles[id] = e
	m.calls = append(m.calls, fmt.Sprintf("update:%d", id))
}

func (m *recordingMirror[E]) Destroy(id int) {
	delete(m.handles, id)
	m.calls = append(m.calls, fmt.Sprintf("destroy:%d", id))
}

func (m *recordingMirror[E]) IDs() []int {
	out := make([]int, 0, len(m.handles))
	for id := range m.handles {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (m *recordingMirror[E]) reset() {
	m.calls = nil
}

type orderedMirror[E snapshot.Entity] struct {
	*recordingMirror[E]
}

func (m orderedMirror[E]) Reorder(ids []int) {
	m.order = append([]int(nil), ids...)
}

type gridMirror struct {
	dims  snapshot.Dimensions
	cells map[snapshot.Position]snapshot.Appearance
}

func newGridMirror() *gridMirror {
	return &gridMirror{cells: map[snapshot.Position]snapshot.Appearance{}}
}

func (g *gridMirror) Resize(d snapshot.Dimensions) { g.dims = d }

func (g *gridMirror) SetCell(x, y int, a snapshot.Appearance) {
	g.cells[snapshot.Position{X: x, Y: y}] = a
}

func (g *gridMirror) ClearGrid() {
	g.dims = snapshot.Dimensions{}
	g.cells = map[snapshot.Position]snapshot.Appearance{}
}

type statsMirror struct {
	step  int
	stats snapshot.Stats
	set   bool
}

func (s *statsMirror) SetStats(step int, st snapshot.Stats) {
	s.step, s.stats, s.set = step, st, true
}

func (s *statsMirror) ClearStats() { *s = statsMirror{} }

func intRef(v int) *int { return &v }

func poi(id int) snapshot.POI {
	return snapshot.POI{ID: id, Position: snapshot.Position{X: id, Y: 0}}
}

func agent(id int) snapshot.Agent {
	return snapshot.Agent{ID: id, Position: snapshot.Position{X: 0, Y: id}, ActionPoints: 4, Role: snapshot.RoleFireFighter}
}

func clearGrid(w, h int) [][]snapshot.Cell {
	grid := make([][]snapshot.Cell, h)
	for y := range grid {
		grid[y] = make([]snapshot.Cell, w)
		for x := range grid[y] {
			grid[y][x] = snapshot.Cell{FireState: snapshot.FireClear}
		}
	}
	return grid
}

func sampleSnapshot() snapshot.Snapshot {
	return snapshot.Snapshot{
		Step:         1,
		Dimensions:   snapshot.Dimensions{Width: 4, Height: 3},
		Firefighters: []snapshot.Agent{agent(1), agent(2)},
		POIs:         []snapshot.POI{poi(1), poi(2), poi(3)},
		Grid:         clearGrid(4, 3),
		Stats:        snapshot.Stats{FireCells: 1},
	}
}
