package ports

import "flashmirror/internal/domain/snapshot"

// EntityMirror owns an id -> presentation handle table for one entity kind.
// Create and Update must be idempotent for a given entity value.
type EntityMirror[E snapshot.Entity] interface {
	Create(e E)
	Update(id int, e E)
	Destroy(id int)
	// IDs lists every handle the mirror currently holds.
	IDs() []int
}

type GridMirror interface {
	Resize(d snapshot.Dimensions)
	SetCell(x, y int, a snapshot.Appearance)
	ClearGrid()
}

type StatsMirror interface {
	SetStats(step int, stats snapshot.Stats)
	ClearStats()
}

// OrderedMirror is implemented by mirrors that display entities as a list.
// Reorder receives the active ids in snapshot order after every pass.
type OrderedMirror interface {
	Reorder(ids []int)
}
