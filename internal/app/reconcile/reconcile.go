package reconcile

import (
	"sort"

	"flashmirror/internal/app/ports"
	"flashmirror/internal/domain/snapshot"
)

// Kind describes how one entity type is filtered and compared.
type Kind[E snapshot.Entity] struct {
	Name   string
	Active func(E) bool
	// Equal, when set, suppresses updates for unchanged entities. A nil
	// Equal updates every entity that stays active.
	Equal func(a, b E) bool
}

var (
	AgentKind = Kind[snapshot.Agent]{Name: "agents", Active: snapshot.AgentActive, Equal: snapshot.Agent.Equal}
	POIKind   = Kind[snapshot.POI]{Name: "pois", Active: snapshot.POIActive, Equal: snapshot.POI.Equal}
)

type Ops struct {
	Created   int
	Updated   int
	Destroyed int
}

func (o Ops) Add(p Ops) Ops {
	return Ops{
		Created:   o.Created + p.Created,
		Updated:   o.Updated + p.Updated,
		Destroyed: o.Destroyed + p.Destroyed,
	}
}

func (o Ops) Structural() int {
	return o.Created + o.Destroyed
}

// Reconcile diffs entities against the previously tracked values and drives
// mirror so that its tracked key set equals the active ids of entities.
// previous is not modified; the returned map is the new tracked state.
func Reconcile[E snapshot.Entity](previous map[int]E, entities []E, kind Kind[E], mirror ports.EntityMirror[E]) (map[int]E, Ops) {
	active := make(map[int]struct{}, len(entities))
	for _, e := range entities {
		if kind.Active(e) {
			active[e.EntityID()] = struct{}{}
		}
	}

	var ops Ops
	next := make(map[int]E, len(active))
	for id, e := range previous {
		if _, ok := active[id]; ok {
			next[id] = e
			continue
		}
		mirror.Destroy(id)
		ops.Destroyed++
	}

	order := make([]int, 0, len(active))
	for _, e := range entities {
		if !kind.Active(e) {
			continue
		}
		id := e.EntityID()
		order = append(order, id)
		prev, tracked := next[id]
		next[id] = e
		if !tracked {
			mirror.Create(e)
			ops.Created++
			continue
		}
		if kind.Equal != nil && kind.Equal(prev, e) {
			continue
		}
		mirror.Update(id, e)
		ops.Updated++
	}

	if om, ok := any(mirror).(ports.OrderedMirror); ok {
		om.Reorder(order)
	}
	return next, ops
}

// Tracker holds the tracked state for one (mirror, kind) pair.
type Tracker[E snapshot.Entity] struct {
	kind    Kind[E]
	mirror  ports.EntityMirror[E]
	tracked map[int]E
}

func NewTracker[E snapshot.Entity](kind Kind[E], mirror ports.EntityMirror[E]) *Tracker[E] {
	return &Tracker[E]{kind: kind, mirror: mirror, tracked: map[int]E{}}
}

func (t *Tracker[E]) Reconcile(entities []E) Ops {
	next, ops := Reconcile(t.tracked, entities, t.kind, t.mirror)
	t.tracked = next
	return ops
}

// Clear destroys every handle the mirror holds, tracked or not.
func (t *Tracker[E]) Clear() int {
	seen := make(map[int]struct{}, len(t.tracked))
	for id := range t.tracked {
		seen[id] = struct{}{}
	}
	for _, id := range t.mirror.IDs() {
		seen[id] = struct{}{}
	}
	for id := range seen {
		t.mirror.Destroy(id)
	}
	t.tracked = map[int]E{}
	if om, ok := any(t.mirror).(ports.OrderedMirror); ok {
		om.Reorder(nil)
	}
	return len(seen)
}

func (t *Tracker[E]) IDs() []int {
	return sortedKeys(t.tracked)
}

func sortedKeys[E any](m map[int]E) []int {
	out := make([]int, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
