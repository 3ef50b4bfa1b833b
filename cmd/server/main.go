package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/defi-educatif/internal/config"
	"github.com/DoyleJ11/defi-educatif/internal/engine"
	"github.com/DoyleJ11/defi-educatif/internal/httpapi"
	"github.com/DoyleJ11/defi-educatif/internal/logging"
	"github.com/DoyleJ11/defi-educatif/internal/service"
	"github.com/DoyleJ11/defi-educatif/internal/store"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		panic(err)
	}
	cfg := config.Load()

	log, err := logging.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeStore()) }()

	svc := service.NewLocal(ctx, st,
		service.WithRules(engine.Rules{
			AwardAmount:   cfg.AwardAmount,
			PenaltyAmount: cfg.PenaltyAmount,
			MinPlayers:    cfg.MinPlayers,
		}),
		service.WithDefaultDeposit(cfg.DefaultDeposit),
		service.WithLogger(log))
	defer svc.Close()

	if _, err := svc.Restore(ctx); err != nil {
		// A broken game must not keep the others offline.
		log.Warn("some games could not be restored", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.SetupRoutes(svc, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore picks Postgres when DATABASE_URL is set and memory otherwise.
func openStore(cfg config.Config, log *zap.Logger) (store.Store, func() error, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, games are kept in memory only")
		return store.NewMemory(), func() error { return nil }, nil
	}
	conn, err := store.OpenPostgres(cfg.DatabaseURL, store.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(conn); err != nil {
		return nil, nil, err
	}
	log.Info("database migration complete")
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, nil, err
	}
	return store.NewGorm(conn), sqlDB.Close, nil
}
