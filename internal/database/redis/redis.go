package redis

import (
	databaseerrors "cartwidget/internal/database"
	"cartwidget/pkg/lib/logger/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client is the subset of the go-redis API the storage needs.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

type Storage struct {
	log    *slog.Logger
	rdb    Client
	prefix string
	closer func() error
}

type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func New(ctx context.Context, log *slog.Logger, opts Options) (*Storage, error) {
	const op = "database.redis.New"

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		log.With("op", op).Error("Error connect to redis", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := NewWithParams(log, rdb, opts.Prefix)
	s.closer = rdb.Close
	return s, nil
}

func NewWithParams(log *slog.Logger, rdb Client, prefix string) *Storage {
	return &Storage{
		log:    log,
		rdb:    rdb,
		prefix: prefix,
	}
}

func (s *Storage) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func (s *Storage) redisKey(namespace, key string) string {
	if s.prefix == "" {
		return fmt.Sprintf("%s:%s", namespace, key)
	}
	return fmt.Sprintf("%s:%s:%s", s.prefix, namespace, key)
}

func (s *Storage) Get(ctx context.Context, namespace, key string) (string, error) {
	const op = "database.redis.Get"
	log := s.log.With("op", op)

	select {
	case <-ctx.Done():
		log.Error("Context is over", sl.Err(ctx.Err()))
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	value, err := s.rdb.Get(ctx, s.redisKey(namespace, key)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
		}

		log.Error("Error reading value", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return value, nil
}

func (s *Storage) Set(ctx context.Context, namespace, key, value string) error {
	const op = "database.redis.Set"
	log := s.log.With("op", op)

	select {
	case <-ctx.Done():
		log.Error("Context is over", sl.Err(ctx.Err()))
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if err := s.rdb.Set(ctx, s.redisKey(namespace, key), value, 0).Err(); err != nil {
		if isOOM(err) {
			log.Warn("Quota exceeded", sl.Err(err))
			return fmt.Errorf("%s: %w", op, databaseerrors.ErrQuotaExceeded)
		}

		log.Error("Failed to write value", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// isOOM reports a write refused because redis hit maxmemory.
func isOOM(err error) bool {
	var rerr goredis.Error
	if !errors.As(err, &rerr) {
		return false
	}
	return strings.HasPrefix(rerr.Error(), "OOM")
}
