package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/ironsheep/ocr-api/internal/config"
)

// maxSidecarResponse bounds how much of a sidecar reply is read.
const maxSidecarResponse = 32 << 20

// PaddleEngine sends images to a PaddleOCR sidecar over HTTP.
//
// The sidecar receives a multipart POST with the image under "image", the
// angle classification flag under "cls" and the language under "lang", and
// answers with the JSON-serialized output of PaddleOCR's ocr() call.
type PaddleEngine struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *zap.Logger
}

// NewPaddleEngine returns an engine for the sidecar at cfg.URL. Five
// consecutive failures open the circuit for 30 seconds.
func NewPaddleEngine(cfg config.PaddleConfig, logger *zap.Logger) *PaddleEngine {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "paddle-ocr",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &PaddleEngine{
		url:     cfg.URL,
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
		logger:  logger,
	}
}

func (e *PaddleEngine) Name() string { return EnginePaddle }

// Recognize posts the image to the sidecar and parses its reply.
func (e *PaddleEngine) Recognize(ctx context.Context, imagePath string, opts Options) ([]Detection, error) {
	body, contentType, err := buildPaddleRequest(imagePath, opts)
	if err != nil {
		return nil, err
	}

	raw, err := e.breaker.Execute(func() ([]byte, error) {
		return e.post(ctx, body, contentType)
	})
	if err != nil {
		return nil, err
	}

	detections, err := ParseRawResult(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sidecar response: %w", err)
	}
	return detections, nil
}

func (e *PaddleEngine) post(ctx context.Context, body []byte, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call sidecar: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSidecarResponse))
	if err != nil {
		return nil, fmt.Errorf("failed to read sidecar response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sidecar returned status %d: %s", resp.StatusCode, truncate(data, 200))
	}
	return data, nil
}

// CheckHealth issues GET <sidecar>/health, a sibling of the OCR path.
func (e *PaddleEngine) CheckHealth(ctx context.Context) error {
	healthURL, err := siblingURL(e.url, "health")
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	e.logger.Info("paddle sidecar ready", zap.String("url", e.url))
	return nil
}

func buildPaddleRequest(imagePath string, opts Options) ([]byte, string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("failed to copy image: %w", err)
	}

	if err := w.WriteField("cls", strconv.FormatBool(opts.ClassifyAngle)); err != nil {
		return nil, "", fmt.Errorf("failed to write cls field: %w", err)
	}
	if opts.Language != "" {
		if err := w.WriteField("lang", opts.Language); err != nil {
			return nil, "", fmt.Errorf("failed to write lang field: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func siblingURL(raw, name string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid sidecar url %q: %w", raw, err)
	}
	u.Path = path.Join(path.Dir(u.Path), name)
	u.RawQuery = ""
	return u.String(), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
