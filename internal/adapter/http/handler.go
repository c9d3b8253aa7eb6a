package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"flashmirror/internal/adapter/mirror/spatial"
	"flashmirror/internal/adapter/mirror/summary"
	"flashmirror/internal/app/autostep"
	"flashmirror/internal/app/control"
	"flashmirror/internal/app/dispatch"
	"flashmirror/internal/app/ports"
	"flashmirror/internal/app/replay"
	"flashmirror/internal/domain/snapshot"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

var errInvalidParam = errors.New("invalid path or body parameter")

// Controls is the subset of control.Controller the handler drives.
type Controls interface {
	Ping(ctx context.Context) (string, error)
	CreateGame(ctx context.Context, cfg dispatch.GameConfig) (snapshot.Snapshot, error)
	ExecuteStep(ctx context.Context) (snapshot.Snapshot, error)
	ExecuteSteps(ctx context.Context, n int) (snapshot.Snapshot, error)
	MoveAgent(ctx context.Context, id, x, y int) (snapshot.Snapshot, error)
	Extinguish(ctx context.Context, id int) (snapshot.Snapshot, error)
	Refresh(ctx context.Context) (snapshot.Snapshot, error)
	ResetGame(ctx context.Context) error
	Current() (snapshot.Snapshot, bool)
	SessionID() string
	EnableAutoStep(interval time.Duration) error
	DisableAutoStep() error
	SetAutoStepInterval(interval time.Duration) error
	AutoStep() autostep.Status
}

type spatialView interface {
	View() spatial.View
}

type summaryView interface {
	View() summary.View
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

type Handler struct {
	Control  Controls
	Spatial  spatialView
	Summary  summaryView
	ReplayUC replay.UseCase
	KPI      kpiSnapshotProvider
	// DefaultGame fills fields a create request leaves out.
	DefaultGame dispatch.GameConfig
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	s.GET("/state", h.state)
	mirror := s.Group("/mirror")
	mirror.GET("/spatial", h.spatial)
	mirror.GET("/summary", h.summary)

	ctl := s.Group("/control")
	ctl.POST("/ping", h.ping)
	ctl.POST("/create", h.create)
	ctl.POST("/step", h.step)
	ctl.POST("/steps/:n", h.steps)
	ctl.POST("/firefighter/:id/move", h.move)
	ctl.POST("/firefighter/:id/extinguish", h.extinguish)
	ctl.POST("/refresh", h.refresh)
	ctl.POST("/reset", h.reset)
	ctl.GET("/autostep", h.autoStepStatus)
	ctl.POST("/autostep", h.enableAutoStep)
	ctl.DELETE("/autostep", h.disableAutoStep)

	s.GET("/ops/kpi", h.kpi)
	s.GET("/ops/journal", h.journal)
}

type stateResponse struct {
	SessionID string            `json:"session_id,omitempty"`
	Step      int               `json:"step"`
	Snapshot  snapshot.Snapshot `json:"snapshot"`
}

type moveRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

type autoStepRequest struct {
	IntervalSeconds float64 `json:"interval_seconds"`
}

func (h Handler) state(_ context.Context, ctx *app.RequestContext) {
	s, ok := h.Control.Current()
	if !ok {
		writeError(ctx, ports.ErrNoGame)
		return
	}
	h.writeState(ctx, s)
}

func (h Handler) spatial(_ context.Context, ctx *app.RequestContext) {
	if h.Spatial == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "spatial mirror not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.Spatial.View())
}

func (h Handler) summary(_ context.Context, ctx *app.RequestContext) {
	if h.Summary == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "summary mirror not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.Summary.View())
}

func (h Handler) ping(c context.Context, ctx *app.RequestContext) {
	msg, err := h.Control.Ping(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]string{"message": msg})
}

func (h Handler) create(c context.Context, ctx *app.RequestContext) {
	cfg := h.DefaultGame
	if cfg == (dispatch.GameConfig{}) {
		cfg = dispatch.DefaultGameConfig()
	}
	if err := decodeJSON(ctx, &cfg); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	s, err := h.Control.CreateGame(c, cfg)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, stateResponse{SessionID: h.Control.SessionID(), Step: s.Step, Snapshot: s})
}

func (h Handler) step(c context.Context, ctx *app.RequestContext) {
	h.respond(ctx, func() (snapshot.Snapshot, error) { return h.Control.ExecuteStep(c) })
}

func (h Handler) steps(c context.Context, ctx *app.RequestContext) {
	n, err := intParam(ctx, "n")
	if err != nil {
		writeError(ctx, err)
		return
	}
	h.respond(ctx, func() (snapshot.Snapshot, error) { return h.Control.ExecuteSteps(c, n) })
}

func (h Handler) move(c context.Context, ctx *app.RequestContext) {
	id, err := intParam(ctx, "id")
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body moveRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.X == nil || body.Y == nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "x and y are required")
		return
	}
	h.respond(ctx, func() (snapshot.Snapshot, error) { return h.Control.MoveAgent(c, id, *body.X, *body.Y) })
}

func (h Handler) extinguish(c context.Context, ctx *app.RequestContext) {
	id, err := intParam(ctx, "id")
	if err != nil {
		writeError(ctx, err)
		return
	}
	h.respond(ctx, func() (snapshot.Snapshot, error) { return h.Control.Extinguish(c, id) })
}

func (h Handler) refresh(c context.Context, ctx *app.RequestContext) {
	h.respond(ctx, func() (snapshot.Snapshot, error) { return h.Control.Refresh(c) })
}

func (h Handler) reset(c context.Context, ctx *app.RequestContext) {
	if err := h.Control.ResetGame(c); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.SetStatusCode(consts.StatusNoContent)
}

func (h Handler) autoStepStatus(_ context.Context, ctx *app.RequestContext) {
	writeAutoStep(ctx, h.Control.AutoStep())
}

// enableAutoStep starts the scheduler, or retunes it when already running.
func (h Handler) enableAutoStep(_ context.Context, ctx *app.RequestContext) {
	var body autoStepRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	interval := time.Duration(body.IntervalSeconds * float64(time.Second))
	var err error
	if h.Control.AutoStep().State == autostep.StateRunning {
		err = h.Control.SetAutoStepInterval(interval)
	} else {
		err = h.Control.EnableAutoStep(interval)
	}
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeAutoStep(ctx, h.Control.AutoStep())
}

func (h Handler) disableAutoStep(_ context.Context, ctx *app.RequestContext) {
	if err := h.Control.DisableAutoStep(); err != nil {
		writeError(ctx, err)
		return
	}
	writeAutoStep(ctx, h.Control.AutoStep())
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func (h Handler) journal(c context.Context, ctx *app.RequestContext) {
	if h.ReplayUC.Journal == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "journal not configured")
		return
	}
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	fromStep, _ := strconv.Atoi(string(ctx.Query("from_step")))
	toStep, _ := strconv.Atoi(string(ctx.Query("to_step")))
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		SessionID: string(ctx.Query("session_id")),
		Limit:     limit,
		FromStep:  fromStep,
		ToStep:    toStep,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) respond(ctx *app.RequestContext, fn func() (snapshot.Snapshot, error)) {
	s, err := fn()
	if err != nil {
		writeError(ctx, err)
		return
	}
	h.writeState(ctx, s)
}

func (h Handler) writeState(ctx *app.RequestContext, s snapshot.Snapshot) {
	ctx.JSON(consts.StatusOK, stateResponse{SessionID: h.Control.SessionID(), Step: s.Step, Snapshot: s})
}

func writeAutoStep(ctx *app.RequestContext, st autostep.Status) {
	ctx.JSON(consts.StatusOK, map[string]any{
		"state":            st.State,
		"interval_seconds": st.Interval.Seconds(),
		"steps":            st.Steps,
		"failures":         st.Failures,
	})
}

func intParam(ctx *app.RequestContext, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(ctx.Param(name)))
	if err != nil {
		return 0, errInvalidParam
	}
	return n, nil
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, control.ErrAutoStepActive):
		writeErrorBody(ctx, consts.StatusConflict, "autostep_active", err.Error())
	case errors.Is(err, autostep.ErrAlreadyRunning):
		writeErrorBody(ctx, consts.StatusConflict, "autostep_running", err.Error())
	case errors.Is(err, autostep.ErrNotRunning):
		writeErrorBody(ctx, consts.StatusConflict, "autostep_not_running", err.Error())
	case errors.Is(err, errInvalidParam),
		errors.Is(err, autostep.ErrInvalidInterval),
		errors.Is(err, dispatch.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrRemote):
		writeErrorBody(ctx, consts.StatusUnprocessableEntity, "remote_rejected", err.Error())
	case errors.Is(err, ports.ErrNetwork):
		writeErrorBody(ctx, consts.StatusBadGateway, "upstream_network", err.Error())
	case errors.Is(err, ports.ErrDecode):
		writeErrorBody(ctx, consts.StatusBadGateway, "upstream_decode", err.Error())
	case errors.Is(err, ports.ErrNoGame):
		writeErrorBody(ctx, consts.StatusNotFound, "no_game", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
