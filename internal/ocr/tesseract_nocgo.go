//go:build !cgo

package ocr

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/ocr-api/internal/config"
)

func newTesseractEngine(_ context.Context, _ config.OCRConfig, _ *zap.Logger) (Engine, error) {
	return nil, fmt.Errorf("tesseract needs a cgo build: %w", ErrEngineUnsupported)
}
