//go:build js && wasm

// Package localstorage persists widget state in window.localStorage.
package localstorage

import (
	databaseerrors "cartwidget/internal/database"
	"cartwidget/pkg/lib/logger/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"syscall/js"
)

type Storage struct {
	log   *slog.Logger
	store js.Value
}

func New(log *slog.Logger) *Storage {
	return &Storage{
		log:   log,
		store: js.Global().Get("localStorage"),
	}
}

func (s *Storage) GetItem(ctx context.Context, key string) (value string, err error) {
	const op = "database.localstorage.GetItem"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w", op, asError(r))
			s.log.With("op", op).Error("Failed to read localStorage", sl.Err(err))
		}
	}()

	v := s.store.Call("getItem", key)
	if v.IsNull() || v.IsUndefined() {
		return "", fmt.Errorf("%s: %w", op, databaseerrors.ErrNotFound)
	}

	return v.String(), nil
}

func (s *Storage) SetItem(ctx context.Context, key, value string) (err error) {
	const op = "database.localstorage.SetItem"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	defer func() {
		if r := recover(); r != nil {
			cause := asError(r)
			var jsErr js.Error
			if errors.As(cause, &jsErr) && jsErr.Get("name").String() == "QuotaExceededError" {
				cause = databaseerrors.ErrQuotaExceeded
			}
			err = fmt.Errorf("%s: %w", op, cause)
			s.log.With("op", op).Warn("Failed to write localStorage", sl.Err(err))
		}
	}()

	s.store.Call("setItem", key, value)

	return nil
}

func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
