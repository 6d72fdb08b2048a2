package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/ocr-api/internal/config"
	"github.com/ironsheep/ocr-api/internal/logging"
	"github.com/ironsheep/ocr-api/internal/metrics"
	"github.com/ironsheep/ocr-api/internal/ocr"
	"github.com/ironsheep/ocr-api/internal/server"
	"github.com/ironsheep/ocr-api/internal/upload"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	engineInitTimeout = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("ocr-api %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	configPath := flag.String("config", "", "path to a YAML config file")
	envFile := flag.String("env-file", ".env", "dotenv file to load before reading config")
	flag.Parse()

	if err := run(*configPath, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "ocr-api: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("ocr-api - HTTP service that runs OCR on uploaded images")
	fmt.Println()
	fmt.Println("Usage: ocr-api [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v      Print version information")
	fmt.Println("  --help, -h         Print this help message")
	fmt.Println("  -config <file>     YAML config file")
	fmt.Println("  -env-file <file>   dotenv file (default .env, ignored if missing)")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  PORT=5000                    Listen port (alias of OCR_SERVER_PORT)")
	fmt.Println("  DEBUG=true                   Development logging (alias of OCR_LOG_DEVELOPMENT)")
	fmt.Println("  OCR_OCR_ENGINE=tesseract     OCR engine: tesseract or paddle")
	fmt.Println("  OCR_OCR_LANGUAGE=en          Recognition language")
	fmt.Println("  OCR_OCR_PADDLE_URL=<url>     PaddleOCR sidecar endpoint")
	fmt.Println("  OCR_UPLOAD_SCRATCH_DIR=<dir> Directory for staged uploads")
	fmt.Println("  OCR_LOG_LEVEL=info           debug, info, warn or error")
	fmt.Println()
	fmt.Println("Any config key can be set as OCR_<SECTION>_<KEY>.")
}

func run(configPath, envFile string) error {
	loaded, err := config.LoadEnvFiles(envFile)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting ocr-api",
		zap.String("version", Version),
		zap.String("commit", GitCommit),
		zap.String("built", BuildTime),
		zap.Strings("env_files", loaded),
		zap.String("engine", cfg.OCR.Engine),
	)

	store, err := upload.NewStore(cfg.Upload.ScratchDir, logger)
	if err != nil {
		return err
	}

	m := metrics.New()
	processor := initProcessor(cfg, logger, m)

	srv := server.New(cfg, processor, store, m, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

// initProcessor builds the OCR engine once. A failure is logged and the
// service keeps running without an engine, answering OCR requests with 503.
func initProcessor(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *ocr.Processor {
	ctx, cancel := context.WithTimeout(context.Background(), engineInitTimeout)
	defer cancel()

	engine, err := ocr.NewEngine(ctx, cfg.OCR, logger)
	if err != nil {
		logger.Error("failed to initialize OCR engine",
			zap.String("engine", cfg.OCR.Engine),
			zap.Error(err),
		)
		return nil
	}

	logger.Info("OCR engine initialized",
		zap.String("engine", engine.Name()),
		zap.String("language", cfg.OCR.Language),
		zap.Bool("classify_angle", cfg.OCR.ClassifyAngle),
	)
	return ocr.NewProcessor(engine, ocr.OptionsFromConfig(cfg.OCR), logger, m)
}
