// Package imaging decodes uploaded images for the OCR pipeline.
//
// Decoding is the source of truth for an image's pixel dimensions: the OCR
// result always reports the width and height of the decoded image, never a
// value an OCR engine might report on its own.
//
// # Supported Formats
//
// Decoders are registered for every format the upload gateway accepts:
//   - PNG, JPEG, GIF: standard library (via disintegration/imaging)
//   - BMP, TIFF: golang.org/x/image (via disintegration/imaging)
//   - WebP: golang.org/x/image/webp (registered by this package)
//
// Format detection is content based. A file whose name says ".png" but whose
// bytes are a JPEG decodes as a JPEG; a file whose bytes match no registered
// decoder fails with ErrUndecodable.
//
// # Coordinate System
//
// Coordinates are 0-based with (0,0) at the top-left corner, X increasing
// rightward and Y increasing downward. This matches the quads OCR engines
// return.
//
// # Thread Safety
//
// All functions are stateless and safe for concurrent use.
package imaging
