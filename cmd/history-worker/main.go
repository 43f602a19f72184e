package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/streamgrid/streamgrid/internal/config/historyworker"
	"github.com/streamgrid/streamgrid/internal/obs"
	"github.com/streamgrid/streamgrid/internal/repository/kafka"
	pg "github.com/streamgrid/streamgrid/internal/repository/postgres"
	"github.com/streamgrid/streamgrid/internal/service/historyworker"
)

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/history-worker.yaml"
}

func main() {
	root, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	otelCloser, err := obs.SetupOTel(root, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	db, err := pg.NewDB(root, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, l)

	ccfg := cfg.In.AsConsumerConfig()
	ccfg.Logger = l
	cons := kafka.BootstrapConsumer(root, ccfg, l)
	defer func() { _ = cons.Close() }()

	applier := historyworker.NewApplier(l,
		pg.NewTransactor(db, l),
		pg.NewHistoryRepo(db),
		pg.NewVideoRepo(db))
	runner := historyworker.NewRunner(l, cons, applier)

	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(root) }()

	select {
	case <-root.Done():
	case err = <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			l.Error("runner error", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
