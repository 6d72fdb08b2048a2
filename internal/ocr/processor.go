package ocr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/ironsheep/ocr-api/internal/errors"
	"github.com/ironsheep/ocr-api/internal/imaging"
)

// Observer is notified after every engine call.
type Observer interface {
	ObserveRecognition(engine string, elapsed time.Duration, regions int, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveRecognition(string, time.Duration, int, error) {}

// Processor is the service's OCR handle: one per process, shared by all
// requests. A nil *Processor means the engine failed to initialize.
type Processor struct {
	engine   Engine
	opts     Options
	logger   *zap.Logger
	observer Observer
}

// NewProcessor wraps engine with the per-call options used for every request.
// logger and observer may be nil.
func NewProcessor(engine Engine, opts Options, logger *zap.Logger, observer Observer) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Processor{
		engine:   engine,
		opts:     opts,
		logger:   logger,
		observer: observer,
	}
}

// EngineName returns the name of the wrapped engine.
func (p *Processor) EngineName() string {
	return p.engine.Name()
}

// Process decodes the image at path, runs the engine once and normalizes
// the detections.
//
// Returns:
//   - *Result: The response envelope.
//   - error: apperrors.ErrInvalidImage when the file is not a decodable
//     image, apperrors.ErrProcessingFailed when the engine fails, or a
//     wrapped I/O error otherwise.
func (p *Processor) Process(ctx context.Context, path string) (*Result, error) {
	_, info, err := imaging.Load(path)
	if err != nil {
		if errors.Is(err, imaging.ErrUndecodable) {
			return nil, apperrors.ErrInvalidImage.WithCause(err)
		}
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	start := time.Now()
	detections, err := p.engine.Recognize(ctx, path, p.opts)
	elapsed := time.Since(start)
	p.observer.ObserveRecognition(p.engine.Name(), elapsed, len(detections), err)
	if err != nil {
		return nil, apperrors.ErrProcessingFailed.WithCause(fmt.Errorf("%s engine: %w", p.engine.Name(), err))
	}

	p.logger.Debug("ocr complete",
		zap.String("engine", p.engine.Name()),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.Int("regions", len(detections)),
		zap.Duration("elapsed", elapsed),
	)

	return Normalize(info.Width, info.Height, detections), nil
}
