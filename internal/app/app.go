package app

import (
	carthandler "cartwidget/internal/handlers/cart"
	"cartwidget/internal/routes"
	"cartwidget/internal/service/widget"
	"cartwidget/pkg/lib/logger/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type WidgetStorage interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
}

type App struct {
	log     *slog.Logger
	port    int
	storage WidgetStorage
	server  *http.Server
}

func New(log *slog.Logger, port int, storage WidgetStorage) *App {
	a := &App{
		log:     log,
		port:    port,
		storage: storage,
	}

	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return a
}

// Handler assembles the widget service behind its HTTP routes.
func (a *App) Handler() http.Handler {
	widgetService := widget.New(a.log, a.storage)
	cartHandler := carthandler.New(a.log, widgetService)

	mux := http.NewServeMux()
	routes.New(cartHandler).Register(mux)

	return mux
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		a.log.Error("Application failed to start", sl.Err(err))
		panic(err)
	}
}

func (a *App) Run() error {
	const op = "app.Run"

	a.log.Info("Starting http server", slog.Int("port", a.port))

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	const op = "app.Shutdown"

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
