package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// requestLogger logs one line per request once the final status is known.
// Errors, including recovered panics, are rendered here through the app's
// ErrorHandler so the logged status matches what the client receives.
// Bodies over the limit never reach this chain; errorHandler logs those.
func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		s.logRequest(c, zap.Duration("latency", time.Since(start)))
		return nil
	}
}

func (s *Server) logRequest(c *fiber.Ctx, extra ...zap.Field) {
	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
	}
	fields = append(fields, extra...)
	fields = append(fields,
		zap.String("request_id", requestID(c)),
		zap.String("ip", c.IP()),
	)
	s.logger.Info("request", fields...)
}
