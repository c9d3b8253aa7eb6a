package dispatch

import "fmt"

type Intent string

const (
	IntentPing       Intent = "ping"
	IntentCreateGame Intent = "create_game"
	IntentStep       Intent = "execute_step"
	IntentSteps      Intent = "execute_steps"
	IntentMove       Intent = "move_agent"
	IntentExtinguish Intent = "extinguish"
	IntentRefresh    Intent = "refresh"
	IntentReset      Intent = "reset_game"
)

// GameConfig is sent verbatim as the create request body.
type GameConfig struct {
	Width           int `json:"width" yaml:"width"`
	Height          int `json:"height" yaml:"height"`
	NumFirefighters int `json:"num_firefighters" yaml:"num_firefighters"`
	InitialPOIs     int `json:"initial_pois" yaml:"initial_pois"`
}

func DefaultGameConfig() GameConfig {
	return GameConfig{Width: 10, Height: 8, NumFirefighters: 5, InitialPOIs: 6}
}

func (c GameConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: board %dx%d", ErrInvalidRequest, c.Width, c.Height)
	}
	if c.NumFirefighters < 0 || c.InitialPOIs < 0 {
		return fmt.Errorf("%w: negative firefighter or poi count", ErrInvalidRequest)
	}
	return nil
}

type moveBody struct {
	X int `json:"x"`
	Y int `json:"y"`
}
