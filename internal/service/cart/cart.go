package cartservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"

	"cartwidget/internal/codec"
	databaseerrors "cartwidget/internal/database"
	"cartwidget/internal/dom"
	"cartwidget/internal/models"
	serviceerrors "cartwidget/internal/service"
	"cartwidget/pkg/lib/logger/sl"

	"github.com/go-playground/validator/v10"
)

// StorageKey is the persistent store key holding the serialized cart.
const StorageKey = "cart"

type Storage interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
}

// CartStore holds the in-memory cart, keeps it in sync with the persistent
// store and renders the total unit count into the display element.
type CartStore struct {
	log      *slog.Logger
	storage  Storage
	doc      dom.Document
	validate *validator.Validate

	mu   sync.Mutex
	cart models.Cart
}

// New returns a store with an empty cart. Callers bring it in line with
// the persistent store with Reload.
func New(log *slog.Logger, storage Storage, doc dom.Document) *CartStore {
	return &CartStore{
		log:      log,
		storage:  storage,
		doc:      doc,
		validate: validator.New(),
		cart:     models.Cart{},
	}
}

// Load reads the persisted cart without touching the in-memory state.
// A missing value yields an empty cart, and so does a malformed one.
func (c *CartStore) Load(ctx context.Context) (models.Cart, error) {
	const op = "service.cart.Load"
	log := c.log.With("op", op)

	if err := checkContext(ctx, log); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	raw, err := c.storage.GetItem(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, databaseerrors.ErrNotFound) {
			return models.Cart{}, nil
		} else if errors.Is(err, context.Canceled) {
			log.Warn("context canceled", sl.Err(serviceerrors.ErrContextCanceled))
			return nil, fmt.Errorf("%s: %w", op, serviceerrors.ErrContextCanceled)
		} else if errors.Is(err, context.DeadlineExceeded) {
			log.Warn("deadline exceeded", sl.Err(serviceerrors.ErrDeadlineExceeded))
			return nil, fmt.Errorf("%s: %w", op, serviceerrors.ErrDeadlineExceeded)
		} else {
			log.Error("Failed to read persisted cart", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	cart, err := codec.Decode(raw)
	if err != nil {
		log.Warn("Persisted cart is malformed, starting with an empty cart", sl.Err(err))
		return models.Cart{}, nil
	}

	return cart, nil
}

// Persist writes the whole cart under StorageKey. Write failures wrap
// serviceerrors.ErrPersistenceWrite.
func (c *CartStore) Persist(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.persist(ctx)
}

func (c *CartStore) persist(ctx context.Context) error {
	const op = "service.cart.Persist"
	log := c.log.With("op", op)

	if err := checkContext(ctx, log); err != nil {
		return fmt.Errorf("%s: %w: %w", op, serviceerrors.ErrPersistenceWrite, err)
	}

	raw, err := codec.Encode(c.cart)
	if err != nil {
		log.Error("Failed to encode cart", sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, serviceerrors.ErrPersistenceWrite, err)
	}

	if err := c.storage.SetItem(ctx, StorageKey, raw); err != nil {
		if errors.Is(err, context.Canceled) {
			err = serviceerrors.ErrContextCanceled
		} else if errors.Is(err, context.DeadlineExceeded) {
			err = serviceerrors.ErrDeadlineExceeded
		}
		log.Warn("Failed to persist cart", sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, serviceerrors.ErrPersistenceWrite, err)
	}

	return nil
}

// AddItem bumps the quantity of an existing entry by one, or inserts the
// candidate as a new entry, then persists and refreshes the display.
//
// A persistence failure does not undo the in-memory change: the display is
// still refreshed and the error is returned for reporting.
func (c *CartStore) AddItem(ctx context.Context, candidate models.LineItem) error {
	const op = "service.cart.AddItem"
	log := c.log.With("op", op)

	if err := c.validate.Struct(candidate); err != nil {
		log.Warn("Rejected line item", sl.Err(err))
		return fmt.Errorf("%s: %w: %v", op, serviceerrors.ErrInvalidInput, err)
	}
	// The persisted form has no representation for these.
	if math.IsNaN(candidate.Price) || math.IsInf(candidate.Price, 0) {
		log.Warn("Rejected line item", slog.Float64("price", candidate.Price))
		return fmt.Errorf("%s: %w: price is not finite", op, serviceerrors.ErrInvalidInput)
	}

	if err := checkContext(ctx, log); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.cart[candidate.Id]; ok {
		existing.Quantity++
		c.cart[candidate.Id] = existing
	} else {
		c.cart[candidate.Id] = candidate
	}

	persistErr := c.persist(ctx)
	c.refresh()

	if persistErr != nil {
		return fmt.Errorf("%s: %w", op, persistErr)
	}

	return nil
}

// RefreshDisplay writes the total unit count into the display element,
// if the document has one, and returns the total.
func (c *CartStore) RefreshDisplay() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.refresh()
}

func (c *CartStore) refresh() int {
	total := c.cart.TotalUnits()

	if c.doc == nil {
		return total
	}
	if el, ok := c.doc.ElementByID(dom.DisplayID); ok {
		el.SetText(strconv.Itoa(total))
	}

	return total
}

// Reload replaces the in-memory cart with the persisted one and refreshes
// the display. On a read failure the current cart is kept.
func (c *CartStore) Reload(ctx context.Context) error {
	const op = "service.cart.Reload"

	cart, err := c.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		c.cart = cart
	}
	c.refresh()

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Items returns a copy of the current cart.
func (c *CartStore) Items() models.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cart.Clone()
}

func (c *CartStore) TotalUnits() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cart.TotalUnits()
}

func checkContext(ctx context.Context, log *slog.Logger) error {
	select {
	case <-ctx.Done():
		err := ctx.Err()
		if errors.Is(err, context.Canceled) {
			log.Warn("context canceled", sl.Err(err))
			return serviceerrors.ErrContextCanceled
		} else if errors.Is(err, context.DeadlineExceeded) {
			log.Warn("deadline exceeded", sl.Err(err))
			return serviceerrors.ErrDeadlineExceeded
		}
		log.Error("unexpected error", sl.Err(err))
		return err
	default:
	}

	return nil
}
