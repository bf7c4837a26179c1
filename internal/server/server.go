// Package server serves the portfolio page, the no-script contact fallback
// and the live contact surface over websockets.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/conneroisu/folio/internal/config"
	"github.com/conneroisu/folio/internal/contact"
	folioerrors "github.com/conneroisu/folio/internal/errors"
	"github.com/conneroisu/folio/internal/gallery"
	"github.com/conneroisu/folio/internal/live"
	"github.com/conneroisu/folio/internal/logging"
	"github.com/conneroisu/folio/internal/server/middleware"
	"github.com/conneroisu/folio/internal/theme"
	"github.com/conneroisu/folio/internal/validation"
	"github.com/conneroisu/folio/internal/watcher"
	hub "github.com/conneroisu/folio/internal/websocket"
)

const (
	catalogDebounce = 300 * time.Millisecond
	shutdownTimeout = 5 * time.Second
	pageTitle       = "Folio"
	livePath        = "/ws"
)

// PreviewServer serves the portfolio.
type PreviewServer struct {
	config    *config.Config
	logger    logging.Logger
	themes    *theme.Store
	sender    contact.Sender
	scheduler contact.Scheduler
	live      *hub.Manager
	limiter   *middleware.RateLimiter

	projectsMutex sync.RWMutex
	projects      []gallery.Project

	serverMutex sync.Mutex
	httpServer  *http.Server
	stopWatches []func() error
}

// Option configures a PreviewServer.
type Option func(*PreviewServer)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *PreviewServer) { s.logger = l }
}

// WithSender replaces the HTTP sender built from the configured endpoint.
func WithSender(sender contact.Sender) Option {
	return func(s *PreviewServer) { s.sender = sender }
}

// WithScheduler replaces the timer used by live sessions for the reset.
func WithScheduler(sched contact.Scheduler) Option {
	return func(s *PreviewServer) { s.scheduler = sched }
}

// WithThemeStore replaces the store built from theme.file.
func WithThemeStore(store *theme.Store) Option {
	return func(s *PreviewServer) { s.themes = store }
}

// New creates a server and loads the project catalog.
func New(cfg *config.Config, opts ...Option) (*PreviewServer, error) {
	if cfg == nil {
		return nil, folioerrors.NewConfigError(folioerrors.ErrCodeConfigInvalid, "server: config cannot be nil")
	}

	s := &PreviewServer{
		config:    cfg,
		logger:    logging.Nop(),
		scheduler: contact.TimerScheduler{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("server")

	if s.sender == nil {
		s.sender = contact.NewHTTPSender(cfg.Contact.Endpoint, nil)
	}
	if s.themes == nil {
		s.themes = theme.NewStore(cfg.Theme.File)
	}

	if err := s.reloadCatalog(); err != nil {
		return nil, err
	}

	s.live = hub.NewManager(hub.OriginFunc(s.isAllowedOrigin), s.newLiveSession, s.logger)
	s.limiter = middleware.NewRateLimiter(middleware.RateLimit{
		RequestsPerMinute: cfg.Server.ContactRatePerMinute,
	})

	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *PreviewServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("POST /contact", s.limiter.Middleware(http.HandlerFunc(s.handleContact)))
	mux.HandleFunc("GET "+livePath, s.live.HandleWebSocket)
	mux.HandleFunc("POST /theme/toggle", s.handleThemeToggle)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	if dir := s.config.Server.StaticDir; dir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
	}

	var connect []string
	if origin := middleware.OriginOf(s.config.Contact.Endpoint); origin != "" {
		connect = append(connect, origin)
	}
	return middleware.Logging(s.logger)(middleware.Security(middleware.PageCSP(connect...))(mux))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *PreviewServer) Start(ctx context.Context) error {
	s.setupWatches(ctx)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Serving portfolio", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.release(context.Background())
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops the HTTP server, the live sessions and the file watches.
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	s.serverMutex.Lock()
	server := s.httpServer
	s.serverMutex.Unlock()

	var errs []error
	if err := s.live.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.release(ctx); err != nil {
		errs = append(errs, err)
	}
	return folioerrors.CombineErrors(errs...)
}

func (s *PreviewServer) release(ctx context.Context) error {
	s.limiter.Stop()

	s.serverMutex.Lock()
	stops := s.stopWatches
	s.stopWatches = nil
	s.serverMutex.Unlock()

	var errs []error
	for _, stop := range stops {
		if err := stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		s.logger.Warn(ctx, folioerrors.CombineErrors(errs...), "Failed to stop file watches")
	}
	return folioerrors.CombineErrors(errs...)
}

// setupWatches follows the catalog and theme files. Failures are logged,
// the server runs without live reload.
func (s *PreviewServer) setupWatches(ctx context.Context) {
	if path := s.config.Gallery.File; path != "" {
		fw, err := watcher.NewFileWatcher(catalogDebounce, s.logger)
		if err == nil {
			fw.AddHandler(func([]watcher.ChangeEvent) error {
				if err := s.reloadCatalog(); err != nil {
					return err
				}
				return s.live.Broadcast(live.Message{Op: live.OpCatalog})
			})
			if err = fw.AddFile(path); err == nil {
				fw.Start(ctx)
				s.addStop(fw.Stop)
			} else {
				_ = fw.Stop()
			}
		}
		if err != nil {
			s.logger.Warn(ctx, err, "Catalog reload disabled", "file", path)
		}
	}

	stop, err := s.themes.Watch(ctx, s.logger, func(m theme.Mode) {
		if err := s.live.Broadcast(live.Message{Op: live.OpTheme, Theme: m.String()}); err != nil {
			s.logger.Warn(ctx, err, "Theme broadcast failed")
		}
	})
	if err != nil {
		s.logger.Warn(ctx, err, "Theme watch disabled", "file", s.themes.Path())
		return
	}
	s.addStop(stop)
}

func (s *PreviewServer) addStop(stop func() error) {
	s.serverMutex.Lock()
	s.stopWatches = append(s.stopWatches, stop)
	s.serverMutex.Unlock()
}

// reloadCatalog reads gallery.file, or the built-in projects when unset.
func (s *PreviewServer) reloadCatalog() error {
	projects := gallery.DefaultProjects()
	if path := s.config.Gallery.File; path != "" {
		loaded, err := gallery.LoadCatalog(path)
		if err != nil {
			return err
		}
		projects = loaded
	}

	s.projectsMutex.Lock()
	s.projects = projects
	s.projectsMutex.Unlock()
	return nil
}

// Projects returns the current catalog.
func (s *PreviewServer) Projects() []gallery.Project {
	s.projectsMutex.RLock()
	defer s.projectsMutex.RUnlock()
	return append([]gallery.Project(nil), s.projects...)
}

// isAllowedOrigin accepts the configured origins plus the server's own
// address under localhost and 127.0.0.1.
func (s *PreviewServer) isAllowedOrigin(origin string) bool {
	port := s.config.Server.Port
	allowed := append([]string{
		s.config.Server.Addr(),
		fmt.Sprintf("localhost:%d", port),
		fmt.Sprintf("127.0.0.1:%d", port),
	}, s.config.Server.AllowedOrigins...)
	return validation.OriginAllowed(origin, allowed)
}

func (s *PreviewServer) labels() contact.Labels {
	return contact.Labels{Idle: s.config.Contact.IdleLabel}
}

func (s *PreviewServer) pageData(ctx context.Context, filter string) PageData {
	mode, err := s.themes.Load()
	if err != nil {
		s.logger.Warn(ctx, err, "Theme preference unreadable, using light")
		mode = theme.Light
	}
	return PageData{
		Title:     pageTitle,
		Theme:     mode,
		Filter:    filter,
		Projects:  s.Projects(),
		IdleLabel: s.config.Contact.IdleLabel,
		LivePath:  livePath,
		Endpoint:  s.config.Contact.Endpoint,
	}
}
