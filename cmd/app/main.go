package main

import (
	"cartwidget/internal/app"
	"cartwidget/internal/database/memory"
	"cartwidget/internal/database/psql"
	"cartwidget/internal/database/redis"
	"cartwidget/pkg/config"
	"cartwidget/pkg/lib/logger"
	"cartwidget/pkg/lib/logger/sl"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type storage interface {
	app.WidgetStorage
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.SetupLogger(cfg.HTTP.Env)
	if err != nil {
		panic(err)
	}

	store, err := openStorage(context.Background(), log, cfg)
	if err != nil {
		panic(err)
	}

	application := app.New(
		log,
		cfg.HTTP.Port,
		store,
	)

	go application.MustRun()

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGTERM, syscall.SIGINT)
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("Shutting down http server")
	if err := application.Shutdown(ctx); err != nil {
		log.Error("Failed to shut down http server", sl.Err(err))
	}

	log.Info("Closing storage")
	if err := store.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	}
}

func openStorage(ctx context.Context, log *slog.Logger, cfg *config.Config) (storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		s, err := psql.New(log, cfg.ConnectionString(), cfg.Psql.MigrationsDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverRedis:
		s, err := redis.New(ctx, log, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Storage.NamespacePrefix,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		return memoryStorage{memory.New(log)}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

type memoryStorage struct {
	*memory.Storage
}

func (memoryStorage) Close() error { return nil }
