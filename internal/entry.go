// Package internal wires configuration, storage, the AI client and the
// front ends (terminal UI, one-shot commands, HTTP API, MCP) together.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/lumina/internal/ai"
	"github.com/starford/lumina/internal/api"
	"github.com/starford/lumina/internal/cli"
	"github.com/starford/lumina/internal/kv"
	"github.com/starford/lumina/internal/mcpserver"
	"github.com/starford/lumina/internal/notes"
	"github.com/starford/lumina/internal/sse"
	"github.com/starford/lumina/internal/storage"
	"github.com/starford/lumina/internal/tui"
)

// runtime is the set of services shared by every front end.
type runtime struct {
	logger *slog.Logger
	kv     kv.Store
	store  *notes.Store
	ai     *ai.Client
}

func (r *runtime) Close() error {
	return r.kv.Close()
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := app.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return app, nil
}

// bootstrap builds the logger, opens storage, loads the collection and
// prepares the AI client. logOut is used unless WithLogOutput overrode it.
func (a *application) bootstrap(ctx context.Context, logOut io.Writer, storeOpts ...notes.Option) (*runtime, error) {
	cfg := a.config
	if a.logOutput != nil {
		logOut = a.logOutput
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("ai_model", cfg.AI.Model),
		slog.Bool("ai_configured", cfg.AI.APIKey != ""),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := kv.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	store := notes.New(storage.NewKV(db), append([]notes.Option{notes.WithLogger(logger)}, storeOpts...)...)
	if err := store.Initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load notes: %w", err)
	}

	gen := a.generator
	if gen == nil {
		gen, err = ai.NewGemini(ctx, cfg.AI.APIKey)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init ai: %w", err)
		}
	}
	if cfg.AI.APIKey == "" && a.generator == nil {
		logger.Warn("No API key configured, AI tools will report failures")
	}

	client := ai.New(gen,
		ai.WithModel(cfg.AI.Model),
		ai.WithTemperature(cfg.AI.Temperature),
		ai.WithTimeout(cfg.AI.Timeout),
		ai.WithLogger(logger),
	)

	return &runtime{logger: logger, kv: db, store: store, ai: client}, nil
}

// RunTUI starts the terminal UI. Logs go to the configured log file since
// the UI owns the terminal.
func RunTUI(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if app.logOutput == nil {
		f, err := os.OpenFile(app.config.App.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	rt, err := app.bootstrap(ctx, logOut)
	if err != nil {
		return err
	}
	defer rt.Close()

	return tui.Run(ctx, rt.store, rt.ai, tui.WithLogger(rt.logger))
}

// RunCLI bootstraps storage and hands a command runner to fn.
func RunCLI(ctx context.Context, fn func(context.Context, *cli.Runner) error, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	rt, err := app.bootstrap(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	return fn(ctx, cli.New(rt.store, rt.ai, cli.WithInput(app.stdin), cli.WithOutput(app.stdout)))
}

// RunMCP serves the MCP tools over stdio until stdin closes.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	rt, err := app.bootstrap(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.logger.Info("MCP server starting", slog.String("version", app.version))
	return mcpserver.New(rt.store, rt.ai, app.version).ServeStdio()
}

// newHTTPHandler builds the root router: health checks plus the API under /api.
func newHTTPHandler(rt *runtime, cfg *Config, events http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", api.Health)
	r.Get("/health/ready", api.Health)

	r.Mount("/api", api.NewRouter(rt.store, rt.ai, cfg.Auth.AuthEnabled(), cfg.Auth.Token, events,
		api.WithLogger(rt.logger)))
	return r
}

// Serve starts the HTTP API and the change event stream.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	broker := sse.NewBroker(sse.DefaultListThrottle)
	defer broker.Close()

	rt, err := app.bootstrap(ctx, os.Stdout, notes.WithChangeHook(broker.NoteChanged))
	if err != nil {
		return err
	}
	defer rt.Close()
	logger := rt.logger

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHTTPHandler(rt, cfg, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server",
			slog.String("address", cfg.App.HTTP.Address()),
			slog.Bool("auth", cfg.Auth.AuthEnabled()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		// Streams only end when their clients go away or the broker closes.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
