package reconcile

import (
	"flashmirror/internal/app/ports"
	"flashmirror/internal/domain/snapshot"
)

// SyncGrid overwrites every cell of grid from s. Cells have no identity, so
// there is no diff; the result depends only on s.
func SyncGrid(s snapshot.Snapshot, grid ports.GridMirror) int {
	grid.Resize(s.Dimensions)
	n := 0
	for y := 0; y < s.Dimensions.Height; y++ {
		for x := 0; x < s.Dimensions.Width; x++ {
			c, ok := s.CellAt(x, y)
			if !ok {
				continue
			}
			grid.SetCell(x, y, snapshot.AppearanceOf(c))
			n++
		}
	}
	return n
}
