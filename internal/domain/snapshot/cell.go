package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"
)

type FireState string

const (
	FireClear FireState = "CLEAR"
	FireSmoke FireState = "SMOKE"
	FireFire  FireState = "FIRE"
)

func ParseFireState(raw string) (FireState, error) {
	switch s := FireState(strings.ToUpper(strings.TrimSpace(raw))); s {
	case FireClear, FireSmoke, FireFire:
		return s, nil
	default:
		return "", fmt.Errorf("unknown fire state %q", raw)
	}
}

func (f *FireState) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("fire state: %w", err)
	}
	parsed, err := ParseFireState(raw)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

type Cell struct {
	FireState FireState `json:"fire_state" jsonschema:"enum=CLEAR,enum=SMOKE,enum=FIRE"`
	IsExit    bool      `json:"is_exit"`
}

type Appearance string

const (
	AppearanceClear Appearance = "clear"
	AppearanceSmoke Appearance = "smoke"
	AppearanceFire  Appearance = "fire"
	AppearanceExit  Appearance = "exit"
)

// AppearanceOf materializes a cell. Exits win over any fire state.
func AppearanceOf(c Cell) Appearance {
	if c.IsExit {
		return AppearanceExit
	}
	switch c.FireState {
	case FireFire:
		return AppearanceFire
	case FireSmoke:
		return AppearanceSmoke
	default:
		return AppearanceClear
	}
}
