package dispatch

import (
	"fmt"
	"net/http"
)

const (
	routeTest   = "/api/test"
	routeCreate = "/api/game/create"
	routeStep   = "/api/game/step"
	routeState  = "/api/game/state"
	routeReset  = "/api/game/reset"
)

func routeSteps(n int) string {
	return fmt.Sprintf("/api/game/steps/%d", n)
}

func routeMove(id int) string {
	return fmt.Sprintf("/api/firefighter/%d/move", id)
}

func routeExtinguish(id int) string {
	return fmt.Sprintf("/api/firefighter/%d/extinguish", id)
}

type call struct {
	intent  Intent
	method  string
	path    string
	body    any
	newGame bool
}

func pingCall() call {
	return call{intent: IntentPing, method: http.MethodGet, path: routeTest}
}

func createCall(cfg GameConfig) call {
	return call{intent: IntentCreateGame, method: http.MethodPost, path: routeCreate, body: cfg, newGame: true}
}

func stepCall() call {
	return call{intent: IntentStep, method: http.MethodPost, path: routeStep}
}

func stepsCall(n int) call {
	return call{intent: IntentSteps, method: http.MethodPost, path: routeSteps(n)}
}

func moveCall(id, x, y int) call {
	return call{intent: IntentMove, method: http.MethodPost, path: routeMove(id), body: moveBody{X: x, Y: y}}
}

func extinguishCall(id int) call {
	return call{intent: IntentExtinguish, method: http.MethodPost, path: routeExtinguish(id)}
}

func refreshCall() call {
	return call{intent: IntentRefresh, method: http.MethodGet, path: routeState}
}

func resetCall() call {
	return call{intent: IntentReset, method: http.MethodPost, path: routeReset}
}
