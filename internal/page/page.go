// Package page drives the cart widget for one page: it owns the CartStore,
// wires the add-to-cart trigger and re-syncs the store on page lifecycle
// events.
package page

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"cartwidget/internal/dom"
	cartservice "cartwidget/internal/service/cart"
	"cartwidget/pkg/lib/logger/sl"
)

type Controller struct {
	log     *slog.Logger
	storage cartservice.Storage
	doc     dom.Document

	mu    sync.Mutex
	store *cartservice.CartStore
}

func New(log *slog.Logger, storage cartservice.Storage, doc dom.Document) *Controller {
	return &Controller{
		log:     log,
		storage: storage,
		doc:     doc,
	}
}

// Ready handles the document-ready event. The returned error is for
// reporting only; the page keeps working with whatever cart it has.
func (c *Controller) Ready(ctx context.Context) error {
	return c.sync(ctx)
}

// PageShow handles a page-show event. Only pages restored from the
// back/forward cache (persisted == true) are re-synced.
func (c *Controller) PageShow(ctx context.Context, persisted bool) error {
	if !persisted {
		return nil
	}
	return c.sync(ctx)
}

// Store returns the page's store, or nil before the first Ready.
func (c *Controller) Store() *cartservice.CartStore {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store
}

// Activate does what a click on the trigger does: read its attributes and
// add the product. Without a trigger or before Ready it does nothing.
func (c *Controller) Activate(ctx context.Context) error {
	const op = "page.Activate"

	store := c.Store()
	if store == nil {
		return nil
	}

	btn, ok := c.doc.ElementByID(dom.TriggerID)
	if !ok {
		return nil
	}

	item, err := ParseTrigger(ReadTrigger(btn))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := store.AddItem(ctx, item); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Controller) sync(ctx context.Context) error {
	const op = "page.sync"
	log := c.log.With("op", op)

	c.mu.Lock()
	store := c.store
	created := false
	if store == nil {
		store = cartservice.New(c.log, c.storage, c.doc)
		c.store = store
		created = true
	}
	c.mu.Unlock()

	if created {
		c.wireTrigger()
	}

	if err := store.Reload(ctx); err != nil {
		log.Error("Failed to load cart", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Controller) wireTrigger() {
	const op = "page.wireTrigger"

	btn, ok := c.doc.ElementByID(dom.TriggerID)
	if !ok {
		return
	}

	btn.OnClick(func() {
		if err := c.Activate(context.Background()); err != nil {
			c.log.With("op", op).Warn("Add to cart failed", sl.Err(err))
		}
	})
}
