package memory

import (
	databaseerrors "cartwidget/internal/database"
	"cartwidget/pkg/lib/logger/sl"
	"context"
	"fmt"
	"log/slog"
	"sync"
)

type entryKey struct {
	namespace string
	key       string
}

// Storage is an in-process key-value backend. With a quota set it refuses
// writes that would push a namespace past the given number of bytes,
// the way browser storage does.
type Storage struct {
	log   *slog.Logger
	mu    sync.RWMutex
	data  map[entryKey]string
	quota int
}

type Option func(*Storage)

func WithQuota(bytes int) Option {
	return func(s *Storage) {
		s.quota = bytes
	}
}

func New(log *slog.Logger, opts ...Option) *Storage {
	s := &Storage{
		log:  log,
		data: make(map[entryKey]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storage) Get(ctx context.Context, namespace, key string) (string, error) {
	const op = "database.memory.Get"

	select {
	case <-ctx.Done():
		s.log.With("op", op).Error("Context is over", sl.Err(ctx.Err()))
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[entryKey{namespace, key}]
	if !ok {
		return "", fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
	}

	return value, nil
}

func (s *Storage) Set(ctx context.Context, namespace, key, value string) error {
	const op = "database.memory.Set"
	log := s.log.With("op", op)

	select {
	case <-ctx.Done():
		log.Error("Context is over", sl.Err(ctx.Err()))
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := entryKey{namespace, key}
	if s.quota > 0 {
		used := 0
		for ek, v := range s.data {
			if ek.namespace == namespace && ek != k {
				used += len(ek.key) + len(v)
			}
		}
		if used+len(key)+len(value) > s.quota {
			log.Warn("Quota exceeded", slog.String("namespace", namespace), slog.Int("quota", s.quota))
			return fmt.Errorf("%s: %w", op, databaseerrors.ErrQuotaExceeded)
		}
	}

	s.data[k] = value

	return nil
}
