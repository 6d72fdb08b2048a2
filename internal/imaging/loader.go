package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrUndecodable is returned when a file's contents are not an image in any
// registered format.
var ErrUndecodable = errors.New("not a valid image")

// ImageInfo describes a decoded image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int

	// Height is the image height in pixels.
	Height int

	// Format is the decoder name that matched the content: "png", "jpeg",
	// "gif", "bmp", "tiff" or "webp".
	Format string
}

// Load opens and decodes the image at path.
//
// Parameters:
//   - path: Path to the image file.
//
// Returns:
//   - image.Image: The decoded image.
//   - *ImageInfo: Dimensions and detected format of the decoded image.
//   - error: Wraps ErrUndecodable when the file exists but is not a valid
//     image. Other errors (missing file, permission) are returned wrapped
//     as-is so callers can tell a bad upload from an I/O failure.
func Load(path string) (image.Image, *ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode decodes an image from r.
//
// The format is sniffed from the content first so the detected format can
// be reported; decoding is then performed by disintegration/imaging without
// EXIF auto-orientation, so the reported dimensions are those of the stored
// pixel grid.
func Decode(r io.Reader) (image.Image, *ImageInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read image: %w", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, nil, fmt.Errorf("%w: empty image %dx%d", ErrUndecodable, bounds.Dx(), bounds.Dy())
	}

	return img, &ImageInfo{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}, nil
}

// EncodePNG re-encodes img as PNG bytes.
//
// OCR engines that read from memory are handed PNG regardless of the upload
// format, since not every Leptonica build reads WebP.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
