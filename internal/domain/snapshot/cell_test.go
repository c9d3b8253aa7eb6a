package snapshot

import (
	"encoding/json"
	"testing"
)

func TestAppearanceOf_ExitOverridesFireState(t *testing.T) {
	for _, fs := range []FireState{FireClear, FireSmoke, FireFire} {
		if got := AppearanceOf(Cell{FireState: fs, IsExit: true}); got != AppearanceExit {
			t.Fatalf("exit cell with %s: got=%s want=%s", fs, got, AppearanceExit)
		}
	}
}

func TestAppearanceOf_FireStatesMapOneToOne(t *testing.T) {
	cases := []struct {
		in   FireState
		want Appearance
	}{
		{FireClear, AppearanceClear},
		{FireSmoke, AppearanceSmoke},
		{FireFire, AppearanceFire},
	}
	for _, tc := range cases {
		if got := AppearanceOf(Cell{FireState: tc.in}); got != tc.want {
			t.Fatalf("AppearanceOf(%s)=%s want %s", tc.in, got, tc.want)
		}
	}
}

func TestFireState_UnmarshalRejectsUnknown(t *testing.T) {
	var c Cell
	if err := json.Unmarshal([]byte(`{"fire_state":"LAVA","is_exit":false}`), &c); err == nil {
		t.Fatalf("expected error for unknown fire state")
	}
	if err := json.Unmarshal([]byte(`{"fire_state":"smoke","is_exit":true}`), &c); err != nil {
		t.Fatalf("unmarshal lower-case fire state: %v", err)
	}
	if c.FireState != FireSmoke || !c.IsExit {
		t.Fatalf("unexpected cell: %+v", c)
	}
}
