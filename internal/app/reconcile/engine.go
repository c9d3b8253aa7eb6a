package reconcile

import (
	"flashmirror/internal/app/ports"
	"flashmirror/internal/domain/snapshot"
)

// Target is one mirror participating in reconciliation. Grid and Stats are
// optional.
type Target struct {
	Name   string
	Agents ports.EntityMirror[snapshot.Agent]
	POIs   ports.EntityMirror[snapshot.POI]
	Grid   ports.GridMirror
	Stats  ports.StatsMirror
}

type binding struct {
	target Target
	agents *Tracker[snapshot.Agent]
	pois   *Tracker[snapshot.POI]
}

// Engine applies snapshots to every bound target. Targets never see each
// other. Engine is not safe for concurrent use; its owner serializes calls.
type Engine struct {
	bindings []*binding
}

func NewEngine(targets ...Target) *Engine {
	e := &Engine{}
	for _, t := range targets {
		b := &binding{target: t}
		if t.Agents != nil {
			b.agents = NewTracker(AgentKind, t.Agents)
		}
		if t.POIs != nil {
			b.pois = NewTracker(POIKind, t.POIs)
		}
		e.bindings = append(e.bindings, b)
	}
	return e
}

func (e *Engine) Apply(s snapshot.Snapshot) Ops {
	var total Ops
	for _, b := range e.bindings {
		if b.agents != nil {
			total = total.Add(b.agents.Reconcile(s.Firefighters))
		}
		if b.pois != nil {
			total = total.Add(b.pois.Reconcile(s.POIs))
		}
		if b.target.Grid != nil {
			SyncGrid(s, b.target.Grid)
		}
		if b.target.Stats != nil {
			b.target.Stats.SetStats(s.Step, s.Stats)
		}
	}
	return total
}

// Clear empties every target and returns the number of destroyed handles.
func (e *Engine) Clear() int {
	n := 0
	for _, b := range e.bindings {
		if b.agents != nil {
			n += b.agents.Clear()
		}
		if b.pois != nil {
			n += b.pois.Clear()
		}
		if b.target.Grid != nil {
			b.target.Grid.ClearGrid()
		}
		if b.target.Stats != nil {
			b.target.Stats.ClearStats()
		}
	}
	return n
}

type TrackedIDs struct {
	Agents []int
	POIs   []int
}

func (e *Engine) Tracked(name string) (TrackedIDs, bool) {
	for _, b := range e.bindings {
		if b.target.Name != name {
			continue
		}
		out := TrackedIDs{}
		if b.agents != nil {
			out.Agents = b.agents.IDs()
		}
		if b.pois != nil {
			out.POIs = b.pois.IDs()
		}
		return out, true
	}
	return TrackedIDs{}, false
}
