package server

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/ironsheep/ocr-api/internal/errors"
	"github.com/ironsheep/ocr-api/internal/metrics"
)

// imageField is the multipart field carrying the upload.
const imageField = "image"

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status         string `json:"status"`
	Service        string `json:"service"`
	OCRInitialized bool   `json:"ocr_initialized"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:         "healthy",
		Service:        s.cfg.Service.Name,
		OCRInitialized: s.processor != nil,
	})
}

func (s *Server) handlePreflight(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// handleOCR validates the upload, stages it, runs OCR and removes the staged
// file on every path out.
func (s *Server) handleOCR(c *fiber.Ctx) (err error) {
	completed := false
	defer func() { s.recordOutcome(completed, err) }()

	if s.processor == nil {
		return apperrors.ErrEngineUnavailable
	}

	fh, err := imagePart(c)
	if err != nil {
		return err
	}

	if err := s.policy.CheckFilename(fh.Filename); err != nil {
		return err
	}

	f, err := s.store.Save(fh)
	if err != nil {
		return s.processingFailed(c, err)
	}
	defer f.Remove()

	result, err := s.processor.Process(c.UserContext(), f.Path)
	if err != nil {
		if apperrors.IsAppError(err) && apperrors.StatusOf(err) < fiber.StatusInternalServerError {
			return err
		}
		return s.processingFailed(c, err)
	}

	s.logger.Info("ocr processed",
		zap.String("request_id", requestID(c)),
		zap.String("engine", s.processor.EngineName()),
		zap.String("file", f.Name),
		zap.Int64("bytes", f.Size),
		zap.Int("regions", result.TotalTextRegions),
	)

	completed = true
	return c.JSON(result)
}

// processingFailed logs the full failure and returns the generic 500.
func (s *Server) processingFailed(c *fiber.Ctx, err error) error {
	s.logger.Error("ocr processing failed",
		zap.String("request_id", requestID(c)),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	if apperrors.GetCode(err) == apperrors.ErrProcessingFailed.Code {
		return err
	}
	return apperrors.ErrProcessingFailed.WithCause(err)
}

// imagePart returns the uploaded image file header.
//
// A part named "image" with an empty filename is parsed as a plain form
// value rather than a file, which is how "no file selected" is told apart
// from "no image part at all".
func imagePart(c *fiber.Ctx) (*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.ErrNoImage.WithCause(err)
	}

	if files := form.File[imageField]; len(files) > 0 {
		if files[0].Filename == "" {
			return nil, apperrors.ErrNoFileSelected
		}
		return files[0], nil
	}

	if _, ok := form.Value[imageField]; ok {
		return nil, apperrors.ErrNoFileSelected
	}

	return nil, apperrors.ErrNoImage
}

// recordOutcome counts the request. A handler that never completed, such as
// one that panicked, counts as an error.
func (s *Server) recordOutcome(completed bool, err error) {
	if s.metrics == nil {
		return
	}
	if completed && err == nil {
		s.metrics.RecordRequest(metrics.OutcomeSuccess)
		return
	}
	s.metrics.RecordRequest(outcomeFor(apperrors.StatusOf(err)))
}

func outcomeFor(status int) string {
	switch {
	case status == fiber.StatusServiceUnavailable:
		return metrics.OutcomeUnavailable
	case status == fiber.StatusRequestEntityTooLarge:
		return metrics.OutcomeTooLarge
	case status >= 400 && status < 500:
		return metrics.OutcomeClientError
	default:
		return metrics.OutcomeError
	}
}

func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
