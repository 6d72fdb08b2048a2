package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fallbackName is used when a client filename sanitizes to nothing.
const fallbackName = "upload"

// Store stages uploads in a scratch directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore returns a store rooted at dir, creating it if absent.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the scratch directory.
func (s *Store) Dir() string {
	return s.dir
}

// File is a staged upload. Remove must be called once the file is no longer
// needed.
type File struct {
	// Path is the scratch location.
	Path string

	// Name is the sanitized client filename.
	Name string

	// Size is the number of bytes written.
	Size int64

	logger *zap.Logger
}

// Save stages a multipart file part.
func (s *Store) Save(fh *multipart.FileHeader) (*File, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	return s.SaveReader(fh.Filename, src)
}

// SaveReader stages the contents of r under a unique name derived from
// clientName. On error nothing is left behind.
func (s *Store) SaveReader(clientName string, r io.Reader) (*File, error) {
	name := SanitizeFilename(clientName)
	if name == "" {
		name = fallbackName
	}
	path := filepath.Join(s.dir, uuid.NewString()+"_"+name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch file: %w", err)
	}

	n, err := io.Copy(dst, r)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write scratch file: %w", err)
	}

	return &File{Path: path, Name: name, Size: n, logger: s.logger}, nil
}

// Remove deletes the staged file. A file that is already gone is not an
// error; any other failure is logged at warn level and otherwise ignored.
func (f *File) Remove() {
	if f == nil {
		return
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		f.logger.Warn("failed to remove scratch file",
			zap.String("path", f.Path),
			zap.Error(err),
		)
	}
}
