package snapshot

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (d Dimensions) Contains(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < d.Width && p.Y < d.Height
}

func (d Dimensions) Cells() int {
	return d.Width * d.Height
}

// Stats is passed through to mirrors verbatim.
type Stats struct {
	RescuedPOIs    int `json:"rescued_pois"`
	FireCells      int `json:"fire_cells"`
	SmokeCells     int `json:"smoke_cells"`
	ExplosionCount int `json:"explosion_count"`
}

// Snapshot is the complete world at one step. It is never mutated after
// decoding; callers that need a different world get a new Snapshot.
type Snapshot struct {
	Step         int        `json:"step"`
	Dimensions   Dimensions `json:"dimensions"`
	Firefighters []Agent    `json:"firefighters"`
	POIs         []POI      `json:"pois"`
	Grid         [][]Cell   `json:"fire_grid"`
	Stats        Stats      `json:"stats"`
}

// CellAt addresses the grid as (x, y); rows are indexed by y.
func (s Snapshot) CellAt(x, y int) (Cell, bool) {
	if y < 0 || y >= len(s.Grid) {
		return Cell{}, false
	}
	row := s.Grid[y]
	if x < 0 || x >= len(row) {
		return Cell{}, false
	}
	return row[x], true
}

func (s Snapshot) ActiveAgents() []Agent {
	out := make([]Agent, 0, len(s.Firefighters))
	for _, a := range s.Firefighters {
		if AgentActive(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s Snapshot) ActivePOIs() []POI {
	out := make([]POI, 0, len(s.POIs))
	for _, p := range s.POIs {
		if POIActive(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s Snapshot) AgentByID(id int) (Agent, bool) {
	for _, a := range s.Firefighters {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}
