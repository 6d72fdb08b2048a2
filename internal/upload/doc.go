// Package upload validates uploaded image files and stages them in a scratch
// directory for the OCR engine.
//
// A staged file lives at <scratch_dir>/<uuid>_<sanitized client name>. The
// random prefix keeps concurrent uploads with the same client filename from
// overwriting each other; the sanitized name is kept only to make the file
// recognizable in logs.
//
// Staged files are scoped resources: callers defer File.Remove immediately
// after a successful Save. Removal failures are logged and swallowed.
package upload
