//go:build cgo

package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"

	"github.com/ironsheep/ocr-api/internal/config"
	"github.com/ironsheep/ocr-api/internal/imaging"
)

// tesseractLanguages maps service language codes to Tesseract codes.
var tesseractLanguages = map[string]string{
	"en":          "eng",
	"ch":          "chi_sim",
	"chinese_cht": "chi_tra",
	"japan":       "jpn",
	"korean":      "kor",
	"french":      "fra",
	"fr":          "fra",
	"german":      "deu",
	"de":          "deu",
	"it":          "ita",
	"es":          "spa",
	"pt":          "por",
	"ru":          "rus",
	"ar":          "ara",
}

// TesseractLanguage returns the Tesseract code for a service language code.
func TesseractLanguage(lang string) string {
	if lang == "" {
		return "eng"
	}
	if code, ok := tesseractLanguages[strings.ToLower(lang)]; ok {
		return code
	}
	return lang
}

// TesseractEngine runs Tesseract in-process.
//
// gosseract clients are not goroutine-safe, so every Recognize call gets a
// fresh client.
type TesseractEngine struct {
	tessdataPrefix string
	logger         *zap.Logger
}

func newTesseractEngine(ctx context.Context, cfg config.OCRConfig, logger *zap.Logger) (Engine, error) {
	e := NewTesseractEngine(cfg.TessdataPrefix, logger)
	if err := e.WarmUp(ctx, OptionsFromConfig(cfg)); err != nil {
		return nil, err
	}
	return e, nil
}

// NewTesseractEngine returns an engine that loads language data from
// tessdataPrefix, or from Tesseract's compiled-in default when empty.
func NewTesseractEngine(tessdataPrefix string, logger *zap.Logger) *TesseractEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TesseractEngine{tessdataPrefix: tessdataPrefix, logger: logger}
}

func (e *TesseractEngine) Name() string { return EngineTesseract }

// Version returns the linked Tesseract library version.
func (e *TesseractEngine) Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

// WarmUp runs one recognition on a blank image so missing language data or a
// broken installation surfaces at startup.
func (e *TesseractEngine) WarmUp(ctx context.Context, opts Options) error {
	blank := image.NewGray(image.Rect(0, 0, 64, 32))
	for i := range blank.Pix {
		blank.Pix[i] = 0xff
	}
	data, err := imaging.EncodePNG(blank)
	if err != nil {
		return err
	}
	if _, err := e.recognize(ctx, data, opts); err != nil {
		return fmt.Errorf("tesseract warm-up failed: %w", err)
	}
	e.logger.Info("tesseract ready",
		zap.String("version", e.Version()),
		zap.String("language", TesseractLanguage(opts.Language)),
	)
	return nil
}

// Recognize runs OCR on the image at imagePath and returns one detection per
// text line. The image is re-encoded as PNG first so every upload format
// reaches Leptonica in one it reads.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string, opts Options) ([]Detection, error) {
	img, _, err := imaging.Load(imagePath)
	if err != nil {
		return nil, err
	}
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	return e.recognize(ctx, data, opts)
}

func (e *TesseractEngine) recognize(_ context.Context, data []byte, opts Options) ([]Detection, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if e.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(TesseractLanguage(opts.Language)); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if opts.ClassifyAngle {
		if err := client.SetPageSegMode(gosseract.PSM_AUTO_OSD); err != nil {
			return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}

	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	detections := make([]Detection, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		detections = append(detections, Detection{
			Quad:       rectToQuad(box.Box),
			Text:       text,
			Confidence: box.Confidence / 100.0,
		})
	}

	return detections, nil
}
