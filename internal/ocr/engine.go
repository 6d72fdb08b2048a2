package ocr

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/ocr-api/internal/config"
)

// Engine names accepted by NewEngine.
const (
	EngineTesseract = "tesseract"
	EnginePaddle    = "paddle"
)

// ErrUnknownEngine is returned by NewEngine for an unrecognized engine name.
var ErrUnknownEngine = errors.New("unknown ocr engine")

// ErrEngineUnsupported is returned when an engine cannot run in this build.
var ErrEngineUnsupported = errors.New("ocr engine not supported in this build")

// Point is an (x, y) pixel coordinate. It serializes as a two-element array.
type Point [2]float64

// X returns the horizontal coordinate.
func (p Point) X() float64 { return p[0] }

// Y returns the vertical coordinate.
func (p Point) Y() float64 { return p[1] }

// Quad is the four corner points of a possibly rotated text line, in the
// order the engine reported them.
type Quad [4]Point

// Detection is one raw engine result.
type Detection struct {
	Quad       Quad
	Text       string
	Confidence float64
}

// Options control a single recognition call.
type Options struct {
	// Language is the service language code, e.g. "en" or "ch".
	Language string

	// ClassifyAngle asks the engine to detect and correct text orientation.
	ClassifyAngle bool
}

// Engine recognizes text lines in an image file.
//
// Implementations must be safe for concurrent use; a single Engine is shared
// by every request.
type Engine interface {
	// Name identifies the engine in logs, metrics and /api/ocr/info.
	Name() string

	// Recognize runs OCR on the image at imagePath. An image with no text
	// returns an empty slice and a nil error.
	Recognize(ctx context.Context, imagePath string, opts Options) ([]Detection, error)
}

// OptionsFromConfig returns the per-call options configured for the service.
func OptionsFromConfig(cfg config.OCRConfig) Options {
	return Options{
		Language:      cfg.Language,
		ClassifyAngle: cfg.ClassifyAngle,
	}
}

// NewEngine builds the engine named by cfg.Engine and checks that it works:
// tesseract runs one warm-up recognition, paddle probes the sidecar health
// endpoint.
//
// Parameters:
//   - ctx: Bounds the startup check.
//   - cfg: OCR section of the service configuration.
//   - logger: Receives engine lifecycle logs.
//
// Returns:
//   - Engine: Ready to serve requests.
//   - error: Non-nil when the engine is unknown, unsupported in this build,
//     or failed its startup check. The service then runs without an engine
//     and answers OCR requests with 503.
func NewEngine(ctx context.Context, cfg config.OCRConfig, logger *zap.Logger) (Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Engine {
	case EngineTesseract:
		return newTesseractEngine(ctx, cfg, logger)
	case EnginePaddle:
		e := NewPaddleEngine(cfg.Paddle, logger)
		if err := e.CheckHealth(ctx); err != nil {
			return nil, fmt.Errorf("failed to reach paddle sidecar: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
}
