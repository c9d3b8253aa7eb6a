package spatial

import (
	"fmt"
	"sort"
	"sync"

	"flashmirror/internal/app/ports"
	"flashmirror/internal/domain/snapshot"
)

const DefaultCellSize = 1.0

type NodeKind string

const (
	KindFirefighter NodeKind = "firefighter"
	KindPOI         NodeKind = "poi"
)

const (
	MarkerNone     = ""
	MarkerCarrying = "carrying"
	MarkerUnknown  = "unknown"
	MarkerVictim   = "victim"
)

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is the presentation handle for one entity on the board.
type Node struct {
	ID     int               `json:"id"`
	Kind   NodeKind          `json:"kind"`
	Cell   snapshot.Position `json:"cell"`
	World  Vec2              `json:"world"`
	Label  string            `json:"label"`
	Marker string            `json:"marker,omitempty"`
}

type View struct {
	CellSize     float64                 `json:"cell_size"`
	Dimensions   snapshot.Dimensions     `json:"dimensions"`
	Firefighters []Node                  `json:"firefighters"`
	POIs         []Node                  `json:"pois"`
	Grid         [][]snapshot.Appearance `json:"grid"`
}

// Scene is the board mirror: one node table per entity kind plus a grid of
// cell appearances. Reads and writes may come from different goroutines.
type Scene struct {
	cellSize float64

	mu     sync.RWMutex
	agents map[int]Node
	pois   map[int]Node
	dims   snapshot.Dimensions
	grid   [][]snapshot.Appearance
}

func NewScene(cellSize float64) *Scene {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Scene{
		cellSize: cellSize,
		agents:   map[int]Node{},
		pois:     map[int]Node{},
	}
}

func (s *Scene) Agents() ports.EntityMirror[snapshot.Agent] { return agentLayer{s} }

func (s *Scene) POIs() ports.EntityMirror[snapshot.POI] { return poiLayer{s} }

func (s *Scene) AgentNode(a snapshot.Agent) Node {
	role := "F"
	if a.Role.IsRescuer() {
		role = "R"
	}
	marker := MarkerNone
	if a.Carrying != nil {
		marker = MarkerCarrying
	}
	return Node{
		ID:     a.ID,
		Kind:   KindFirefighter,
		Cell:   a.Position,
		World:  s.world(a.Position),
		Label:  fmt.Sprintf("FF%d-%s", a.ID, role),
		Marker: marker,
	}
}

func (s *Scene) POINode(p snapshot.POI) Node {
	marker := MarkerUnknown
	if p.Revealed {
		marker = MarkerVictim
	}
	return Node{
		ID:     p.ID,
		Kind:   KindPOI,
		Cell:   p.Position,
		World:  s.world(p.Position),
		Label:  fmt.Sprintf("P%d", p.ID),
		Marker: marker,
	}
}

func (s *Scene) world(p snapshot.Position) Vec2 {
	return Vec2{X: float64(p.X) * s.cellSize, Y: float64(p.Y) * s.cellSize}
}

func (s *Scene) Resize(d snapshot.Dimensions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dims == d && s.grid != nil {
		return
	}
	s.dims = d
	s.grid = make([][]snapshot.Appearance, d.Height)
	for y := range s.grid {
		row := make([]snapshot.Appearance, d.Width)
		for x := range row {
			row[x] = snapshot.AppearanceClear
		}
		s.grid[y] = row
	}
}

func (s *Scene) SetCell(x, y int, a snapshot.Appearance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if y < 0 || y >= len(s.grid) || x < 0 || x >= len(s.grid[y]) {
		return
	}
	s.grid[y][x] = a
}

func (s *Scene) ClearGrid() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dims = snapshot.Dimensions{}
	s.grid = nil
}

// Appearance reports the materialized cell at (x, y).
func (s *Scene) Appearance(x, y int) (snapshot.Appearance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if y < 0 || y >= len(s.grid) || x < 0 || x >= len(s.grid[y]) {
		return "", false
	}
	return s.grid[y][x], true
}

func (s *Scene) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := View{
		CellSize:     s.cellSize,
		Dimensions:   s.dims,
		Firefighters: sortedNodes(s.agents),
		POIs:         sortedNodes(s.pois),
		Grid:         make([][]snapshot.Appearance, len(s.grid)),
	}
	for y, row := range s.grid {
		v.Grid[y] = append([]snapshot.Appearance(nil), row...)
	}
	return v
}

func sortedNodes(m map[int]Node) []Node {
	out := make([]Node, 0, len(m))
	for _, n := range m {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedIDs(m map[int]Node) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

type agentLayer struct{ s *Scene }

func (l agentLayer) Create(a snapshot.Agent) { l.put(a.ID, a) }

func (l agentLayer) Update(id int, a snapshot.Agent) { l.put(id, a) }

func (l agentLayer) put(id int, a snapshot.Agent) {
	n := l.s.AgentNode(a)
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.agents[id] = n
}

func (l agentLayer) Destroy(id int) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	delete(l.s.agents, id)
}

func (l agentLayer) IDs() []int {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return sortedIDs(l.s.agents)
}

type poiLayer struct{ s *Scene }

func (l poiLayer) Create(p snapshot.POI) { l.put(p.ID, p) }

func (l poiLayer) Update(id int, p snapshot.POI) { l.put(id, p) }

func (l poiLayer) put(id int, p snapshot.POI) {
	n := l.s.POINode(p)
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.pois[id] = n
}

func (l poiLayer) Destroy(id int) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	delete(l.s.pois, id)
}

func (l poiLayer) IDs() []int {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return sortedIDs(l.s.pois)
}
