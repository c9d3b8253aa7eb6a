package snapshot

import (
	"errors"
	"fmt"
)

var ErrInvalidSnapshot = errors.New("invalid snapshot")

func (s Snapshot) Validate() error {
	if s.Step < 0 {
		return fmt.Errorf("%w: negative step %d", ErrInvalidSnapshot, s.Step)
	}
	if s.Dimensions.Width <= 0 || s.Dimensions.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidSnapshot, s.Dimensions.Width, s.Dimensions.Height)
	}
	if len(s.Grid) != s.Dimensions.Height {
		return fmt.Errorf("%w: grid has %d rows, want %d", ErrInvalidSnapshot, len(s.Grid), s.Dimensions.Height)
	}
	for y, row := range s.Grid {
		if len(row) != s.Dimensions.Width {
			return fmt.Errorf("%w: grid row %d has %d cells, want %d", ErrInvalidSnapshot, y, len(row), s.Dimensions.Width)
		}
		for x, c := range row {
			if c.FireState == "" {
				return fmt.Errorf("%w: cell (%d,%d) missing fire state", ErrInvalidSnapshot, x, y)
			}
		}
	}

	agents := make(map[int]struct{}, len(s.Firefighters))
	for _, a := range s.Firefighters {
		if _, dup := agents[a.ID]; dup {
			return fmt.Errorf("%w: duplicate firefighter id %d", ErrInvalidSnapshot, a.ID)
		}
		agents[a.ID] = struct{}{}
		if a.ActionPoints < 0 {
			return fmt.Errorf("%w: firefighter %d has negative action points", ErrInvalidSnapshot, a.ID)
		}
	}
	pois := make(map[int]struct{}, len(s.POIs))
	for _, p := range s.POIs {
		if _, dup := pois[p.ID]; dup {
			return fmt.Errorf("%w: duplicate poi id %d", ErrInvalidSnapshot, p.ID)
		}
		pois[p.ID] = struct{}{}
	}
	return nil
}
