package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	apihttp "github.com/GriffinCanCode/Forkspace/backend/internal/api/http"
	"github.com/GriffinCanCode/Forkspace/backend/internal/api/middleware"
	"github.com/GriffinCanCode/Forkspace/backend/internal/api/ws"
	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/Forkspace/backend/internal/providers/filesystem"
	"github.com/GriffinCanCode/Forkspace/backend/internal/providers/system"
	"github.com/GriffinCanCode/Forkspace/backend/internal/providers/terminal"
	"github.com/GriffinCanCode/Forkspace/backend/internal/providers/worktree"
	"github.com/GriffinCanCode/Forkspace/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	registry *service.Registry
	sessions *terminal.Manager
	hub      *ws.Hub
	handler  http.Handler
	http     *http.Server
}

// Options overrides pieces of the server for embedding and tests.
type Options struct {
	// Sandbox replaces the home/temp sandbox built from configuration.
	Sandbox *filesystem.Sandbox
}

// New builds the service registry, providers and router.
func New(cfg *config.Config, log *logging.Logger, opts Options) (*Server, error) {
	if log == nil {
		log = logging.NewNop()
	}
	logger := log.Component("server")

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("forkspace", log.Component("tracing"))

	sandbox := opts.Sandbox
	if sandbox == nil {
		var err error
		sandbox, err = filesystem.NewSandbox(cfg.Sandbox.ExtraDeny)
		if err != nil {
			return nil, fmt.Errorf("failed to create sandbox: %w", err)
		}
	}

	hub := ws.NewHub(metrics, log.Component("ws"))
	sessions := terminal.NewManager(terminalOptions(cfg.Terminal), hub, metrics, log.Component("terminal"))
	registry := service.NewRegistry(metrics, log.Component("service"))

	providers := []service.Provider{
		filesystem.NewProvider(sandbox, metrics, log.Component("filesystem")),
		terminal.NewProvider(sessions),
		worktree.NewProvider(sandbox, worktree.DefaultCommandTimeout, metrics, log.Component("worktree")),
		system.NewProvider(system.Info{
			Version:      apihttp.Version,
			Home:         sandbox.Home(),
			Temp:         sandbox.Temp(),
			DefaultShell: sessions.DefaultShell(),
		}, log.Component("frontend")),
	}
	for _, p := range providers {
		if err := registry.Register(p); err != nil {
			return nil, fmt.Errorf("failed to register provider: %w", err)
		}
	}

	stats := registry.Stats()
	logger.Info("services registered",
		zap.Any("total_services", stats["total_services"]),
		zap.Any("total_tools", stats["total_tools"]),
		zap.String("sandbox_home", sandbox.Home()),
		zap.String("sandbox_temp", sandbox.Temp()),
	)

	router := gin.New()
	router.Use(
		middleware.Recovery(logger),
		tracing.HTTPMiddleware(tracer),
		middleware.Logger(log.Component("http")),
		monitoring.Middleware(metrics, "/metrics", "/stream"),
		middleware.CORS(middleware.DefaultCORSConfig(cfg.CORS.Origins)),
	)
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(registry, sessions, hub, metrics, log.Component("http"))
	handlers.Register(router)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/stream", ws.NewHandler(hub, registry, tracer, cfg.CORS.Origins, log.Component("ws")).HandleConnection)

	return &Server{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		registry: registry,
		sessions: sessions,
		hub:      hub,
		handler:  compress(router),
	}, nil
}

func terminalOptions(cfg config.TerminalConfig) terminal.Options {
	opts := terminal.DefaultOptions()
	opts.DefaultShell = cfg.DefaultShell
	opts.DefaultCols = uint16(cfg.DefaultCols)
	opts.DefaultRows = uint16(cfg.DefaultRows)
	opts.ReadChunk = cfg.ReadChunk
	return opts
}

// compress gzips responses except WebSocket upgrades, which need the raw
// connection.
func compress(next http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Registry returns the service registry.
func (s *Server) Registry() *service.Registry {
	return s.registry
}

// Run serves on the configured address until ctx is cancelled or the
// listener fails. Cancellation triggers a graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.http = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting requests, closes every terminal session and
// disconnects stream clients.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}

	s.sessions.Shutdown(ctx)
	s.hub.Close()
	s.tracer.Close()
	s.logger.Info("server stopped")
	return err
}
