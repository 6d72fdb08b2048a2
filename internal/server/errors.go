package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/ironsheep/ocr-api/internal/errors"
	"github.com/ironsheep/ocr-api/internal/metrics"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// errorHandler turns any handler or framework error into ErrorResponse.
// Only the classified message reaches the client; causes are logged.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status, message := s.classify(err)

	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("request_id", requestID(c)),
		zap.Error(err),
	}
	if status >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Debug("request rejected", fields...)
	}

	if err := c.Status(status).JSON(ErrorResponse{Success: false, Error: message}); err != nil {
		return err
	}

	// Oversized bodies are rejected before routing, so neither a handler nor
	// requestLogger sees them.
	if bodyRejected(err) {
		if s.metrics != nil {
			s.metrics.RecordRequest(metrics.OutcomeTooLarge)
		}
		s.logRequest(c)
	}
	return nil
}

// bodyRejected reports whether err is fasthttp's oversized-body rejection.
func bodyRejected(err error) bool {
	var fe *fiber.Error
	return errors.As(err, &fe) && fe.Code == fiber.StatusRequestEntityTooLarge
}

func (s *Server) classify(err error) (int, string) {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Status, appErr.Message
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch {
		case fe.Code == fiber.StatusRequestEntityTooLarge:
			tooLarge := s.policy.TooLarge()
			return tooLarge.Status, tooLarge.Message
		case fe.Code == fiber.StatusNotFound:
			return fe.Code, apperrors.ErrNotFound.Message
		case fe.Code == fiber.StatusMethodNotAllowed:
			return fe.Code, "Method not allowed"
		case fe.Code < fiber.StatusInternalServerError:
			return fe.Code, fe.Message
		}
	}

	return fiber.StatusInternalServerError, apperrors.ErrInternal.Message
}
