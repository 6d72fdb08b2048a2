package server

import "github.com/gofiber/fiber/v2"

// Features lists what an OCR result carries, as reported by /api/ocr/info.
var Features = []string{
	"Text detection",
	"Text recognition",
	"Bounding box coordinates",
	"Text dimensions",
	"Confidence scores",
}

// InfoResponse is the body of GET /api/ocr/info.
type InfoResponse struct {
	Service          string   `json:"service"`
	Version          string   `json:"version"`
	SupportedFormats []string `json:"supported_formats"`
	MaxFileSizeMB    float64  `json:"max_file_size_mb"`
	Language         string   `json:"language"`
	Features         []string `json:"features"`
	Engine           string   `json:"engine"`
}

func (s *Server) handleInfo(c *fiber.Ctx) error {
	return c.JSON(InfoResponse{
		Service:          s.cfg.Service.Name,
		Version:          s.cfg.Service.Version,
		SupportedFormats: s.policy.AllowedExtensions,
		MaxFileSizeMB:    s.policy.MaxFileSizeMB(),
		Language:         s.cfg.OCR.Language,
		Features:         Features,
		Engine:           s.cfg.OCR.Engine,
	})
}
