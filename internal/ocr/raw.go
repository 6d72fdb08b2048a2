package ocr

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParseRawResult decodes PaddleOCR's ocr() output serialized as JSON.
//
// Accepted shapes:
//   - null, [] or [null]: no text
//   - [[det, det, ...]]: one entry per input image; only the first is used
//   - [det, det, ...]: a flat detection list
//   - {"result": <any of the above>}
//
// where det is [[[x1,y1],[x2,y2],[x3,y3],[x4,y4]], [text, confidence]].
func ParseRawResult(data []byte) ([]Detection, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []Detection{}, nil
	}

	if data[0] == '{' {
		var wrapped struct {
			Result json.RawMessage `json:"result"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode result wrapper: %w", err)
		}
		return ParseRawResult(wrapped.Result)
	}

	var top []json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("failed to decode result list: %w", err)
	}
	if len(top) == 0 {
		return []Detection{}, nil
	}

	// Flat list: the first element is itself a detection.
	if _, err := decodeDetection(top[0]); err == nil {
		return decodeDetections(top)
	}

	page := bytes.TrimSpace(top[0])
	if len(page) == 0 || bytes.Equal(page, []byte("null")) {
		return []Detection{}, nil
	}

	var dets []json.RawMessage
	if err := json.Unmarshal(page, &dets); err != nil {
		return nil, fmt.Errorf("failed to decode page detections: %w", err)
	}
	return decodeDetections(dets)
}

func decodeDetections(raws []json.RawMessage) ([]Detection, error) {
	out := make([]Detection, 0, len(raws))
	for i, raw := range raws {
		d, err := decodeDetection(raw)
		if err != nil {
			return nil, fmt.Errorf("detection %d: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func decodeDetection(raw json.RawMessage) (Detection, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return Detection{}, fmt.Errorf("not a detection pair: %w", err)
	}
	if len(parts) != 2 {
		return Detection{}, fmt.Errorf("expected [quad, [text, confidence]], got %d elements", len(parts))
	}

	var points [][]float64
	if err := json.Unmarshal(parts[0], &points); err != nil {
		return Detection{}, fmt.Errorf("invalid quad: %w", err)
	}
	if len(points) != 4 {
		return Detection{}, fmt.Errorf("quad has %d points, want 4", len(points))
	}

	var d Detection
	for i, p := range points {
		if len(p) < 2 {
			return Detection{}, fmt.Errorf("quad point %d has %d coordinates", i, len(p))
		}
		d.Quad[i] = Point{p[0], p[1]}
	}

	var rec []json.RawMessage
	if err := json.Unmarshal(parts[1], &rec); err != nil || len(rec) != 2 {
		return Detection{}, fmt.Errorf("invalid recognition pair")
	}
	if err := json.Unmarshal(rec[0], &d.Text); err != nil {
		return Detection{}, fmt.Errorf("invalid text: %w", err)
	}
	if err := json.Unmarshal(rec[1], &d.Confidence); err != nil {
		return Detection{}, fmt.Errorf("invalid confidence: %w", err)
	}

	return d, nil
}
