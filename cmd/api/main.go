package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"did-optimizer/internal/auth"
	"did-optimizer/internal/config"
	"did-optimizer/internal/contextstore"
	"did-optimizer/internal/didapi"
	"did-optimizer/internal/geo"
	"did-optimizer/internal/httpapi"
	"did-optimizer/internal/reporter"
	"did-optimizer/internal/selection"
	"did-optimizer/internal/syncengine"
	"did-optimizer/pkg/logger"
	"did-optimizer/pkg/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config.LoadDotEnv(".env")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New("api", cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	opsAuth, err := auth.NewManager(cfg.Ops)
	if err != nil {
		log.Error("ops auth init failed", "err", err)
		os.Exit(1)
	}

	store, closeStore, err := openContextStore(rootCtx, cfg)
	if err != nil {
		log.Error("context store init failed", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	checkpoint, err := syncengine.NewCheckpoint(cfg.Sync.CheckpointPath)
	if err != nil {
		log.Error("checkpoint init failed", "err", err)
		os.Exit(1)
	}

	apiClient := didapi.NewClient(cfg.API)
	selectionSvc := selection.NewService(apiClient, geo.NewResolver(nil), store, cfg.API.FallbackDID)
	reporterSvc := reporter.NewService(apiClient, store, cfg.API.FallbackDID)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, httpapi.Handlers{
		Selection:  selectionSvc,
		Reporter:   reporterSvc,
		Store:      store,
		Checkpoint: checkpoint,
		ContextTTL: cfg.Context.TTL,
		BatchSize:  cfg.Sync.BatchSize,
	}, auth.RequireLocalKey(cfg.Local.APIKey), auth.RequireOpsToken(opsAuth))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("agent api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}

// openContextStore picks the configured backend. The file backend needs no
// external service; the redis backend shares the instance used by syncd's
// run lock.
func openContextStore(ctx context.Context, cfg config.Config) (contextstore.Store, func(), error) {
	switch cfg.Context.Backend {
	case config.ContextBackendRedis:
		rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			return nil, nil, err
		}
		store, err := contextstore.NewRedisStore(rdb, cfg.Context.TTL)
		if err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		return store, func() { _ = rdb.Close() }, nil
	default:
		store, err := contextstore.NewFileStore(cfg.Context.CacheDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}
