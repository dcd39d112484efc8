package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"did-optimizer/internal/config"
	"did-optimizer/internal/contextstore"
	"did-optimizer/internal/didapi"
	"did-optimizer/internal/reporter"
	"did-optimizer/internal/syncengine"
	"did-optimizer/pkg/logger"
	"did-optimizer/pkg/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// syncd runs exactly one sync pass and exits; scheduling belongs to cron or
// a systemd timer. Exit code 1 only for fatal pass errors (lock, checkpoint,
// fetch); row-level failures are counted, dead-lettered and exit 0.
func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config.LoadDotEnv(".env")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New("syncd", cfg.App.Env)
	slog.SetDefault(log)

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	var store contextstore.Store
	if cfg.Context.Backend == config.ContextBackendRedis {
		store, err = contextstore.NewRedisStore(rdb, cfg.Context.TTL)
	} else {
		store, err = contextstore.NewFileStore(cfg.Context.CacheDir)
	}
	if err != nil {
		log.Error("context store init failed", "err", err)
		os.Exit(1)
	}

	checkpoint, err := syncengine.NewCheckpoint(cfg.Sync.CheckpointPath)
	if err != nil {
		log.Error("checkpoint init failed", "err", err)
		os.Exit(1)
	}

	deadletter, err := syncengine.NewDeadLetterLog(cfg.Sync.DeadLetterPath)
	if err != nil {
		log.Error("dead-letter init failed", "err", err)
		os.Exit(1)
	}

	apiClient := didapi.NewClient(cfg.API)
	reporterSvc := reporter.NewService(apiClient, store, cfg.API.FallbackDID)

	engine, err := syncengine.NewEngine(
		syncengine.NewPostgresCallLogRepo(db),
		reporterSvc,
		checkpoint,
		syncengine.NewRedisRunLock(rdb, cfg.Sync.LockTTL),
		deadletter,
		cfg.Sync.BatchSize,
	)
	if err != nil {
		log.Error("engine init failed", "err", err)
		os.Exit(1)
	}

	report, err := engine.Run(logger.With(rootCtx, log))
	if err != nil {
		log.Error("sync pass failed", "run_id", report.RunID, "err", err)
		os.Exit(1)
	}

	// Piggyback the orphan sweep on the pass; contexts for calls that were
	// never reported would otherwise accumulate until the disk fills.
	if removed, err := store.SweepExpired(rootCtx, cfg.Context.TTL); err != nil {
		log.Warn("context sweep failed", "err", err)
	} else if removed > 0 {
		log.Info("swept orphaned call contexts", "removed", removed)
	}

	log.Info("syncd finished",
		"run_id", report.RunID,
		"skipped", report.Skipped,
		"fetched", report.Fetched,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"checkpoint", report.LastUniqueID,
		"more_pending", report.MorePending,
	)
}
