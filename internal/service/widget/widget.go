// Package widget hosts the cart widget on the server: every call is one
// page visit of a session, backed by that session's namespace in the
// shared key-value backend.
package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cartwidget/internal/codec"
	"cartwidget/internal/database/scoped"
	"cartwidget/internal/dom"
	"cartwidget/internal/models"
	"cartwidget/internal/page"
	serviceerrors "cartwidget/internal/service"
	"cartwidget/pkg/lib/logger/sl"

	"github.com/go-playground/validator/v10"
)

// Snapshot is what the page shows after a visit.
type Snapshot struct {
	Items models.Cart `json:"items"`
	Count string      `json:"count"`
}

type Service struct {
	log      *slog.Logger
	backend  scoped.Backend
	validate *validator.Validate
}

func New(log *slog.Logger, backend scoped.Backend) *Service {
	return &Service{
		log:      log,
		backend:  backend,
		validate: validator.New(),
	}
}

// View renders a page without a trigger and returns its cart.
func (s *Service) View(ctx context.Context, sessionID string) (Snapshot, error) {
	const op = "service.widget.View"

	visit, err := s.open(ctx, op, sessionID, nil)
	if err != nil {
		return Snapshot{}, err
	}

	return visit.snapshot(), nil
}

// AddToCart renders a product page whose trigger carries in, then
// activates the trigger.
func (s *Service) AddToCart(ctx context.Context, sessionID string, in page.TriggerInput) (Snapshot, error) {
	const op = "service.widget.AddToCart"
	log := s.log.With("op", op)

	if _, err := page.ParseTrigger(in); err != nil {
		log.Warn("Invalid trigger attributes", sl.Err(err))
		return Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	visit, err := s.open(ctx, op, sessionID, map[string]string{
		dom.DataProductID:       in.ProductID,
		dom.DataProductName:     in.ProductName,
		dom.DataProductPrice:    in.ProductPrice,
		dom.DataProductImageURL: in.ProductImageURL,
	})
	if err != nil {
		return Snapshot{}, err
	}

	if err := visit.ctrl.Activate(ctx); err != nil {
		log.Error("Failed to add item to cart", sl.Err(err))
		return Snapshot{}, fmt.Errorf("%s: %w", op, translate(err))
	}

	return visit.snapshot(), nil
}

// Export returns the serialized cart of a session, the payload a checkout
// form submits.
func (s *Service) Export(ctx context.Context, sessionID string) (string, error) {
	const op = "service.widget.Export"

	visit, err := s.open(ctx, op, sessionID, nil)
	if err != nil {
		return "", err
	}

	raw, err := codec.Encode(visit.ctrl.Store().Items())
	if err != nil {
		s.log.With("op", op).Error("Failed to encode cart", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return raw, nil
}

type visit struct {
	ctrl    *page.Controller
	display *dom.MemElement
}

func (v visit) snapshot() Snapshot {
	return Snapshot{
		Items: v.ctrl.Store().Items(),
		Count: v.display.Text(),
	}
}

func (s *Service) open(ctx context.Context, op, sessionID string, trigger map[string]string) (visit, error) {
	log := s.log.With("op", op, slog.String("session", sessionID))

	if err := s.validate.Var(sessionID, "required,max=128,printascii,excludesall=/"); err != nil {
		log.Warn("Invalid session id", sl.Err(err))
		return visit{}, fmt.Errorf("%s: %w: session id: %v", op, serviceerrors.ErrInvalidInput, err)
	}

	doc := dom.NewMemDocument()
	display := doc.Add(dom.DisplayID, nil)
	if trigger != nil {
		doc.Add(dom.TriggerID, trigger)
	}

	ctrl := page.New(s.log, scoped.New(s.backend, sessionID), doc)
	if err := ctrl.Ready(ctx); err != nil {
		log.Error("Failed to load cart", sl.Err(err))
		return visit{}, fmt.Errorf("%s: %w", op, translate(err))
	}

	return visit{ctrl: ctrl, display: display}, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, serviceerrors.ErrContextCanceled),
		errors.Is(err, serviceerrors.ErrDeadlineExceeded),
		errors.Is(err, serviceerrors.ErrInvalidInput):
		return err
	case errors.Is(err, context.Canceled):
		return serviceerrors.ErrContextCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return serviceerrors.ErrDeadlineExceeded
	}
	return err
}
