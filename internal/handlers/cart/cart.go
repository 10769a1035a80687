package cart

import (
	"cartwidget/internal/page"
	serviceerrors "cartwidget/internal/service"
	"cartwidget/internal/service/widget"
	"cartwidget/pkg/lib/logger/sl"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

const StatusClientClosedRequest = 499

const maxBodyBytes = 64 << 10

type WidgetService interface {
	View(ctx context.Context, sessionID string) (widget.Snapshot, error)
	AddToCart(ctx context.Context, sessionID string, in page.TriggerInput) (widget.Snapshot, error)
	Export(ctx context.Context, sessionID string) (string, error)
}

type Handler struct {
	log     *slog.Logger
	service WidgetService
}

func New(log *slog.Logger, service WidgetService) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// GET /carts/{sessionId}
func (h *Handler) ViewCart(w http.ResponseWriter, r *http.Request, sessionID string) {
	const op = "handlers.cart.ViewCart"
	log := h.log.With("op", op)

	snap, err := h.service.View(r.Context(), sessionID)
	if err != nil {
		h.writeError(log, w, err, "Failed to load cart")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		log.Error("Failed to respond user", sl.Err(err))
	}
}

// GET /carts/{sessionId}/count
func (h *Handler) CartCount(w http.ResponseWriter, r *http.Request, sessionID string) {
	const op = "handlers.cart.CartCount"
	log := h.log.With("op", op)

	snap, err := h.service.View(r.Context(), sessionID)
	if err != nil {
		h.writeError(log, w, err, "Failed to load cart")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, snap.Count); err != nil {
		log.Error("Failed to respond user", sl.Err(err))
	}
}

// GET /carts/{sessionId}/export
func (h *Handler) ExportCart(w http.ResponseWriter, r *http.Request, sessionID string) {
	const op = "handlers.cart.ExportCart"
	log := h.log.With("op", op)

	raw, err := h.service.Export(r.Context(), sessionID)
	if err != nil {
		h.writeError(log, w, err, "Failed to export cart")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, raw); err != nil {
		log.Error("Failed to respond user", sl.Err(err))
	}
}

// POST /carts/{sessionId}/items
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request, sessionID string) {
	const op = "handlers.cart.AddToCart"
	log := h.log.With("op", op)

	requestBody, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Error("Cannot read request body", sl.Err(err))
		http.Error(w, "Cannot read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var in page.TriggerInput
	if err := json.Unmarshal(requestBody, &in); err != nil {
		log.Warn("Cannot unmarshal request body", sl.Err(err))
		http.Error(w, "Cannot unmarshal request body", http.StatusBadRequest)
		return
	}

	snap, err := h.service.AddToCart(r.Context(), sessionID, in)
	if err != nil {
		h.writeError(log, w, err, "Failed to add item to cart")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		log.Error("Failed to respond user", sl.Err(err))
	}
}

func (h *Handler) writeError(log *slog.Logger, w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, serviceerrors.ErrContextCanceled) {
		log.Warn("Context canceled", sl.Err(serviceerrors.ErrContextCanceled))
		http.Error(w, "Context canceled", StatusClientClosedRequest)
	} else if errors.Is(err, serviceerrors.ErrDeadlineExceeded) {
		log.Warn("Deadline exceeded", sl.Err(serviceerrors.ErrDeadlineExceeded))
		http.Error(w, "Deadline exceeded", http.StatusGatewayTimeout)
	} else if errors.Is(err, serviceerrors.ErrInvalidInput) {
		log.Warn("Invalid input", sl.Err(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
	} else {
		log.Error(msg, sl.Err(err))
		http.Error(w, msg, http.StatusInternalServerError)
	}
}
