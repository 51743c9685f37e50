package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"hy-whisper/internal/api/handlers"
	"hy-whisper/internal/api/middleware"
	"hy-whisper/internal/app/api"
	"hy-whisper/internal/app/api/demo"
	"hy-whisper/internal/app/api/openai"
	"hy-whisper/internal/app/api/openai/whisper"
	"hy-whisper/internal/app/audio"
	"hy-whisper/internal/app/metrics"
	"hy-whisper/internal/app/storage/scratch"
	"hy-whisper/internal/config"
)

// ErrPortInUse is returned by Start when the configured port is taken
var ErrPortInUse = errors.New("port already in use")

// Server represents the API server
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger

	primary  api.Transcriber
	fallback api.Transcriber
	scratch  *scratch.Manager
	metrics  *metrics.Recorder

	mu         sync.Mutex
	listener   net.Listener
	onShutdown []func()
	serveErr   chan error
}

// Option configures a Server
type Option func(*Server)

// WithPrimary replaces the OpenAI transcriber built from the configuration.
// Passing nil forces the demo transcriber.
func WithPrimary(t api.Transcriber) Option {
	return func(s *Server) {
		s.primary = t
	}
}

// WithFallback replaces the demo transcriber
func WithFallback(t api.Transcriber) Option {
	return func(s *Server) {
		s.fallback = t
	}
}

// NewServer creates a new API server. The scratch directory is created here
// and swept again on Shutdown.
func NewServer(cfg config.Config, logger *zap.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	manager, err := scratch.NewManager(cfg.UploadsDir, cfg.MaxFileSize, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:   cfg,
		logger:   logger,
		primary:  newPrimary(cfg, logger),
		fallback: demo.NewTranscriber(cfg.FallbackDelay, logger),
		scratch:  manager,
		metrics:  metrics.NewRecorder(manager.LiveFiles),
		serveErr: make(chan error, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.newRouter()
	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	s.OnShutdown(func() {
		if removed := s.scratch.Sweep(); removed > 0 {
			s.logger.Info("Scratch directory swept", zap.Int("removed", removed))
		}
	})

	return s, nil
}

// newPrimary returns the OpenAI transcriber, or nil when no usable key is
// configured.
func newPrimary(cfg config.Config, logger *zap.Logger) api.Transcriber {
	if !cfg.HasProviderCredential() {
		return nil
	}
	return whisper.NewRemoteTranscriber(openai.NewClient(cfg.OpenAI, nil), cfg.OpenAI, logger)
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogging(s.logger.Named("http")))
	router.Use(middleware.ErrorHandler(s.logger, !s.config.IsProduction()))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(s.config.AllowedOrigins)))

	validator := audio.NewValidator(s.config.AllowedMimeTypes, s.config.AllowedExtensions)
	transcription := handlers.NewTranscriptionHandler(handlers.TranscriptionDeps{
		Config:    s.config,
		Primary:   s.primary,
		Fallback:  s.fallback,
		Scratch:   s.scratch,
		Validator: validator,
		Metrics:   s.metrics,
		Logger:    s.logger,
	})
	info := handlers.NewInfoHandler(s.config, validator)

	router.GET("/health", info.Health)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/transcribe", transcription.Transcribe)
		apiGroup.GET("/status", info.Status)
		apiGroup.GET("/formats", info.Formats)
	}

	router.NoRoute(info.NotFound)

	return router
}

// OnShutdown registers fn to run after the HTTP server has drained
func (s *Server) OnShutdown(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onShutdown = append(s.onShutdown, fn)
}

// Start binds the listening socket and serves in the background. Bind
// failures are returned synchronously.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			s.logger.Error("Port is already in use",
				zap.String("port", s.config.Port),
				zap.String("hint", "stop the other process or set PORT"))
			return fmt.Errorf("%w: %s", ErrPortInUse, s.httpServer.Addr)
		}
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logBanner()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server stopped unexpectedly", zap.Error(err))
			s.serveErr <- err
		}
	}()

	return nil
}

// Errors delivers a fatal error from the serve loop
func (s *Server) Errors() <-chan error {
	return s.serveErr
}

// Addr returns the bound address once started, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Shutdown gracefully shuts down the server, then runs the shutdown hooks
// even if draining failed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
	}

	s.mu.Lock()
	hooks := append([]func(){}, s.onShutdown...)
	s.mu.Unlock()
	for _, hook := range hooks {
		hook()
	}

	s.logger.Info("API server shutdown complete")
	return err
}

// Router returns the Gin router (useful for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Scratch returns the scratch storage manager
func (s *Server) Scratch() *scratch.Manager {
	return s.scratch
}

func (s *Server) logBanner() {
	base := "http://localhost:" + s.config.Port
	if _, port, err := net.SplitHostPort(s.Addr()); err == nil {
		base = "http://localhost:" + port
	}

	service := demo.ServiceName
	if s.primary != nil {
		service = s.primary.Name()
	}

	s.logger.Info("API server started",
		zap.String("address", base),
		zap.String("transcribe_endpoint", base+"/api/transcribe"),
		zap.String("status_endpoint", base+"/api/status"),
		zap.Bool("openai_key_found", s.config.HasProviderCredential()),
		zap.String("transcriber", service),
		zap.String("uploads_dir", s.config.UploadsDir),
		zap.String("environment", s.config.Environment),
	)
	if s.primary == nil {
		s.logger.Warn("OpenAI API key not configured, uploads are answered by the demo transcriber. Set OPENAI_API_KEY in .env")
	}
}
