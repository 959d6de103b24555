// Package ui serves the script graph over HTTP: a JSON API for the dataset,
// searches and the selection, plus a server-sent event stream of renderer
// events for browser front ends.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leapstack-labs/scriptdeps/internal/engine"
	"github.com/leapstack-labs/scriptdeps/internal/selection"
	"github.com/leapstack-labs/scriptdeps/internal/ui/notifier"
	"golang.org/x/sync/errgroup"
)

// Server is the HTTP UI server.
type Server struct {
	engine   *engine.Engine
	port     int
	watch    bool
	logger   *slog.Logger
	notifier *notifier.Notifier

	// mu serializes selection operations
	mu        sync.Mutex
	selection *selection.Set
}

// Config holds configuration for the UI server.
type Config struct {
	Engine *engine.Engine
	Port   int
	Watch  bool
	Logger *slog.Logger
}

// NewServer creates a new UI server instance over an already loaded engine.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		engine:   cfg.Engine,
		port:     cfg.Port,
		watch:    cfg.Watch,
		logger:   logger,
		notifier: notifier.New(),
	}
	s.selection = selection.New(cfg.Engine.Graph(), s.notifier)
	return s
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		requestLogger(s.logger),
	)
	s.routes(r)
	return r
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if path := s.engine.WatchPath(); s.watch && path != "" {
		eg.Go(func() error {
			return s.watchFile(egctx, path)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Reload reloads the dataset and rebuilds the selection, re-pinning every
// root that still exists. Clients are told to re-fetch.
func (s *Server) Reload(ctx context.Context) error {
	_, loadErr := s.engine.Load(ctx)

	s.mu.Lock()
	roots := s.selection.Roots()
	sel := selection.New(s.engine.Graph(), nil)
	for _, root := range roots {
		sel.Add(root)
	}
	sel.SetSink(s.notifier)
	s.selection = sel
	s.mu.Unlock()

	s.notifier.Broadcast(notifier.Message{Kind: notifier.KindReload})
	return loadErr
}

// watchFile reloads when the input file changes. The parent directory is
// watched so editors that replace the file are handled.
func (s *Server) watchFile(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		s.logger.Error("failed to watch input", "path", target, "error", err)
		return nil
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("input changed, reloading", "file", event.Name)
				if err := s.Reload(ctx); err != nil {
					s.logger.Error("reload failed", "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// requestLogger logs each request through slog at debug level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
