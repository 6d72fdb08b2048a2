package server

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/ironsheep/ocr-api/internal/config"
	"github.com/ironsheep/ocr-api/internal/metrics"
	"github.com/ironsheep/ocr-api/internal/ocr"
	"github.com/ironsheep/ocr-api/internal/upload"
)

// OCR endpoint paths. Both behave identically.
var ocrPaths = []string{"/api/ocr/upload", "/api/ocr/process"}

// Server is the HTTP front end of the OCR service.
type Server struct {
	app       *fiber.App
	cfg       *config.Config
	processor *ocr.Processor
	store     *upload.Store
	policy    upload.Policy
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// New builds the fiber app and registers all routes.
//
// Parameters:
//   - cfg: Service configuration.
//   - processor: The OCR handle, or nil when the engine failed to initialize.
//     OCR requests then answer 503.
//   - store: Scratch storage for uploads.
//   - m: Metrics sink, or nil to disable metrics.
//   - logger: Request and error logger.
func New(cfg *config.Config, processor *ocr.Processor, store *upload.Store, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:       cfg,
		processor: processor,
		store:     store,
		policy: upload.Policy{
			AllowedExtensions: cfg.Upload.AllowedExtensions,
			MaxFileSize:       cfg.Upload.MaxFileSize,
		},
		metrics: m,
		logger:  logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               cfg.Service.Name,
		BodyLimit:             int(cfg.Upload.MaxFileSize),
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		ErrorHandler:          s.errorHandler,
		DisableStartupMessage: true,
	})

	if m != nil {
		m.SetEngineInitialized(processor != nil)
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(requestid.New())
	s.app.Use(s.requestLogger())
	s.app.Use(recover.New(recover.Config{EnableStackTrace: s.cfg.Log.Development}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(s.cfg.CORS.AllowOrigins, ","),
		AllowHeaders: strings.Join(s.cfg.CORS.AllowHeaders, ", "),
		AllowMethods: "GET, POST, OPTIONS",
	}))

	s.app.Get("/api/health", s.handleHealth)
	s.app.Get("/api/ocr/info", s.handleInfo)

	for _, p := range ocrPaths {
		s.app.Post(p, s.handleOCR)
		s.app.Options(p, s.handlePreflight)
	}

	if s.metrics != nil && s.cfg.Metrics.Enabled {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on the configured address and blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("listening",
		zap.String("addr", s.cfg.Addr()),
		zap.Bool("ocr_initialized", s.processor != nil),
	)
	return s.app.Listen(s.cfg.Addr())
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
