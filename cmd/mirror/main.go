package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"flashmirror/db"
	"flashmirror/internal/adapter/events"
	"flashmirror/internal/adapter/gateway/hertzclient"
	httpadapter "flashmirror/internal/adapter/http"
	metricsinmem "flashmirror/internal/adapter/metrics/inmemory"
	"flashmirror/internal/adapter/mirror/spatial"
	"flashmirror/internal/adapter/mirror/summary"
	gormrepo "flashmirror/internal/adapter/repo/gorm"
	memrepo "flashmirror/internal/adapter/repo/memory"
	"flashmirror/internal/app/control"
	"flashmirror/internal/app/dispatch"
	"flashmirror/internal/app/ports"
	"flashmirror/internal/app/reconcile"
	"flashmirror/internal/app/replay"
	"flashmirror/internal/config"
	"flashmirror/internal/logging"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/sirupsen/logrus"
)

const (
	spatialTarget = "spatial"
	summaryTarget = "summary"
)

func main() {
	var configPath string
	var createOnStart, autoStep bool
	flag.StringVar(&configPath, "config", os.Getenv("FLASHMIRROR_CONFIG"), "path to a YAML config file")
	flag.BoolVar(&createOnStart, "create", false, "create a game on startup using the configured board")
	flag.BoolVar(&autoStep, "autostep", false, "start auto-stepping on startup")
	flag.Parse()

	cfg, err := config.Load(configPath, os.Getenv)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		logrus.Fatalf("build logger: %v", err)
	}

	rt, err := assemble(context.Background(), cfg, log)
	if err != nil {
		log.WithError(err).Fatal("assemble mirror client")
	}
	defer rt.close()

	startup(context.Background(), rt, cfg, log, createOnStart, autoStep)

	if rt.feedServer != nil {
		go func() {
			log.WithField("addr", cfg.FeedAddr).Info("observer feed listening")
			if err := rt.feedServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("observer feed stopped")
			}
		}()
	}

	s := server.Default(server.WithHostPorts(cfg.OpsAddr))
	rt.handler.RegisterRoutes(s)
	log.WithFields(logrus.Fields{"addr": cfg.OpsAddr, "remote": cfg.BaseURL}).Info("flashmirror ops server listening")
	s.Spin()
	log.Info("shutting down")
}

type runtime struct {
	controller *control.Controller
	dispatcher *dispatch.Dispatcher
	scene      *spatial.Scene
	board      *summary.Board
	bus        *events.Bus
	feed       *events.Feed
	feedServer *http.Server
	handler    httpadapter.Handler
	closers    []func()
}

// close tears the client down: scheduler first, then subscriptions and
// listeners, then storage.
func (rt *runtime) close() {
	rt.controller.Close()
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

func assemble(ctx context.Context, cfg config.Config, log *logrus.Logger) (*runtime, error) {
	gw, err := hertzclient.New(hertzclient.Config{BaseURL: cfg.BaseURL, Timeout: cfg.RequestTimeout})
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		scene: spatial.NewScene(cfg.CellSize),
		board: summary.NewBoard(),
		bus:   events.NewBus(log.WithField("component", "bus")),
	}
	engine := reconcile.NewEngine(
		reconcile.Target{Name: spatialTarget, Agents: rt.scene.Agents(), POIs: rt.scene.POIs(), Grid: rt.scene},
		reconcile.Target{Name: summaryTarget, Agents: rt.board.Agents(), POIs: rt.board.POIs(), Stats: rt.board},
	)

	journal, closeJournal, err := buildJournal(ctx, cfg.DBDSN, log)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, closeJournal)

	kpi := metricsinmem.NewRecorder()
	rt.dispatcher, err = dispatch.New(dispatch.Deps{
		Gateway: gw,
		Engine:  engine,
		Events:  rt.bus,
		Journal: journal,
		Metrics: kpi,
		Log:     log.WithField("component", "dispatcher"),
	})
	if err != nil {
		closeJournal()
		return nil, err
	}

	unsubscribeLog := rt.bus.Subscribe(func(evt ports.Event) {
		if evt.Kind == ports.EventError {
			log.WithFields(logrus.Fields{"intent": evt.Intent, "intent_id": evt.IntentID}).Warn(evt.Message)
		}
	})

	var onClose []func()
	onClose = append(onClose, unsubscribeLog)
	if cfg.FeedAddr != "" {
		rt.feed = events.NewFeed(log.WithField("component", "feed"))
		rt.feed.Current = rt.dispatcher.Current
		onClose = append(onClose, rt.bus.Subscribe(rt.feed.Publish), rt.feed.Close)
		mux := http.NewServeMux()
		mux.Handle("/feed", rt.feed)
		rt.feedServer = &http.Server{Addr: cfg.FeedAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		srv := rt.feedServer
		rt.closers = append(rt.closers, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		})
	}
	onClose = append(onClose, rt.bus.Close)

	rt.controller = control.New(control.Deps{
		Intents: rt.dispatcher,
		Metrics: kpi,
		Log:     log.WithField("component", "control"),
		OnClose: onClose,
	})
	rt.handler = httpadapter.Handler{
		Control: rt.controller,
		Spatial: rt.scene,
		Summary: rt.board,
		ReplayUC: replay.UseCase{
			Journal:        journal,
			CurrentSession: rt.dispatcher.SessionID,
		},
		KPI:         kpi,
		DefaultGame: cfg.Game,
	}
	return rt, nil
}

func buildJournal(ctx context.Context, dsn string, log logrus.FieldLogger) (ports.SnapshotJournal, func(), error) {
	if dsn == "" {
		log.Info("no database configured; journaling snapshots in memory")
		return memrepo.NewJournalRepo(memrepo.NewStore()), func() {}, nil
	}
	gdb, err := gormrepo.OpenPostgres(dsn)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := gormrepo.Close(gdb); err != nil {
			log.WithError(err).Warn("close database")
		}
	}
	applied, err := gormrepo.ApplyMigrations(ctx, gdb, db.Migrations, db.MigrationsDir)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	if len(applied) > 0 {
		log.WithField("versions", applied).Info("applied journal migrations")
	}
	return gormrepo.NewJournalRepo(gdb), closeDB, nil
}

// startup runs the optional connectivity check, game creation and
// auto-step requested on the command line. Failures are logged; the ops
// server still starts so the operator can retry.
func startup(ctx context.Context, rt *runtime, cfg config.Config, log logrus.FieldLogger, create, autoStep bool) {
	pingCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	if msg, err := rt.controller.Ping(pingCtx); err != nil {
		log.WithError(err).Warn("remote simulation not reachable yet")
	} else {
		log.WithField("message", msg).Info("remote simulation reachable")
	}

	if create {
		if _, err := rt.controller.CreateGame(ctx, cfg.Game); err != nil {
			log.WithError(err).Error("create game on startup")
		}
	}
	if autoStep {
		if err := rt.controller.EnableAutoStep(cfg.AutoStepInterval); err != nil {
			log.WithError(err).Error("enable auto-step on startup")
		}
	}
}
