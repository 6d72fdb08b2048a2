// Package ocr runs an OCR engine on an uploaded image and normalizes its
// output into the service's response shape.
//
// # Engines
//
// An Engine takes an image path and returns raw detections: one quad and
// (text, confidence) pair per recognized text line, in engine order. Two
// engines are provided:
//
//   - tesseract: in-process Tesseract via gosseract/v2 (requires a cgo build
//     and installed language data)
//   - paddle: a remote PaddleOCR sidecar reached over HTTP, guarded by a
//     circuit breaker
//
// NewEngine selects one by name and verifies it is usable before returning.
//
// # Normalization
//
// Normalize turns detections into a Result. For every detection it:
//   - keeps the quad verbatim as bounding_box.coordinates
//   - computes the axis-aligned box with componentwise min/max over all four
//     points, since quads are not guaranteed to start at the top-left
//   - rounds confidence to 4 decimals and every derived geometric value to 2
//   - assigns a 1-based id in engine order
//
// Detections are never filtered or re-sorted. Zero detections is a success
// with an empty ocr_results array and an empty total_text.
//
// # Processing
//
// Processor ties the two together: decode the upload to learn its pixel
// dimensions, run the engine once, normalize. Image dimensions always come
// from the decoder, never from the engine.
//
// # Language Codes
//
// The service language uses PaddleOCR-style codes ("en", "ch", "japan", ...).
// The tesseract engine maps them to Tesseract codes ("eng", "chi_sim",
// "jpn", ...); unknown codes are passed through unchanged so a Tesseract
// code such as "deu" also works.
package ocr
