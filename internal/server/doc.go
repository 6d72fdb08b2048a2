// Package server implements the OCR HTTP API on fiber.
//
// # Endpoints
//
//   - GET /api/health: liveness and whether the OCR engine initialized
//   - POST /api/ocr/upload, POST /api/ocr/process: run OCR on the multipart
//     field "image" and return the normalized result
//   - OPTIONS on both OCR paths: CORS preflight, 204 with no body
//   - GET /api/ocr/info: supported formats, size cap, language and features
//   - GET /metrics: Prometheus exposition, when metrics are enabled
//
// # Upload Checks
//
// An OCR request is checked in this order, and the engine only runs when all
// checks pass:
//  1. engine initialized at startup, else 503
//  2. an "image" file part with a non-empty filename, else 400
//  3. filename extension in the whitelist, else 400 listing allowed types
//  4. body within the size cap, else 413 (enforced by fiber before the
//     handler runs)
//  5. decodable image, else 400
//
// Any other failure is a 500 with a generic message; the detail is logged.
//
// # Error Responses
//
// Every error body has the same shape:
//
//	{"success": false, "error": "<message>"}
//
// The fiber ErrorHandler is the only place errors are turned into
// responses. Handlers return classified errors from internal/errors; fiber's
// own errors (404, 405, 413) are mapped to the same shape.
//
// # Usage
//
//	srv := server.New(cfg, processor, store, m, logger)
//	if err := srv.Start(); err != nil {
//	    logger.Fatal("server stopped", zap.Error(err))
//	}
package server
