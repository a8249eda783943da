package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tropical/config"
	"tropical/internal/admin"
	"tropical/internal/health"
	"tropical/internal/logs"
	"tropical/internal/middleware"
	"tropical/internal/propagate"
	"tropical/internal/repo"
	"tropical/internal/store"
)

type App struct {
	cfg        *config.Config
	fs         *firestore.Client
	Router     *mux.Router
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) error {
	a.cfg = cfg

	/* 1) Logs */
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	/* 2) Store */
	client, err := store.Open(context.Background(),
		a.cfg.Firestore.ProjectID, a.cfg.Firestore.CredentialsFile)
	if err != nil {
		return fmt.Errorf("firestore open failed: %w", err)
	}
	a.fs = client

	servers := repo.NewServerStore(client, a.cfg.Firestore.ServersCollection)
	devices := repo.NewDeviceStore(client, a.cfg.Firestore.DevicesCollection)
	engine := propagate.New(servers, devices)

	/* 3) Router + middleware */
	a.Router = mux.NewRouter().StrictSlash(true)
	a.Router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.LoggerMW,
		middleware.Metrics,
	)

	/* 4) Health + metrics */
	health.RegisterRoutesWithStore(a.Router, client, a.cfg.Firestore.ServersCollection) // /healthz, /readyz
	a.Router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	/* 5) Panel API */
	admin.Attach(a.Router, admin.Dependencies{
		Servers:   servers,
		Devices:   devices,
		Prop:      engine,
		AuthToken: a.cfg.Auth.Token,
	})

	/* (optional) dump known routes to the log at startup */
	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		if len(methods) == 0 {
			methods = []string{"ANY"}
		}
		log.Printf("route: %-6v %s", methods, path)
		return nil
	})
	return nil
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return fmt.Errorf("server not initialized")
	}

	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigs
		logs.Logger.Infof("shutdown signal: %s", s)
		a.cancel()
	}()

	// Hard timeouts matter in production
	a.httpServer = &http.Server{
		Addr:              bind,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Logger.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logs.Logger.Errorf("http shutdown: %v", err)
	}
	if a.fs != nil {
		_ = a.fs.Close()
	}
	return nil
}
