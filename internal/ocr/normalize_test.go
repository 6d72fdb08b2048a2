package ocr

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func quad(pts ...float64) Quad {
	var q Quad
	for i := 0; i < 4; i++ {
		q[i] = Point{pts[2*i], pts[2*i+1]}
	}
	return q
}

func TestNormalize_Basic(t *testing.T) {
	dets := []Detection{
		{Quad: quad(10, 20, 110, 20, 110, 40, 10, 40), Text: "Hello", Confidence: 0.987654},
		{Quad: quad(12, 50, 90, 50, 90, 70, 12, 70), Text: "World", Confidence: 0.5},
	}

	result := Normalize(640, 480, dets)

	if !result.Success {
		t.Error("expected success")
	}
	if result.ImageInfo.Width != 640 || result.ImageInfo.Height != 480 {
		t.Errorf("unexpected image info: %+v", result.ImageInfo)
	}
	if result.TotalTextRegions != 2 || len(result.OCRResults) != 2 {
		t.Fatalf("expected 2 regions, got %d/%d", result.TotalTextRegions, len(result.OCRResults))
	}
	if result.TotalText != "Hello World" {
		t.Errorf("expected total text %q, got %q", "Hello World", result.TotalText)
	}

	first := result.OCRResults[0]
	if first.Confidence != 0.9877 {
		t.Errorf("expected confidence 0.9877, got %v", first.Confidence)
	}
	want := Box{XMin: 10, YMin: 20, XMax: 110, YMax: 40}
	if first.Position != want || first.BoundingBox.Box != want {
		t.Errorf("unexpected box: position=%+v bounding=%+v", first.Position, first.BoundingBox.Box)
	}
	if first.Dimensions.Width != 100 || first.Dimensions.Height != 20 {
		t.Errorf("unexpected dimensions: %+v", first.Dimensions)
	}
	if first.BoundingBox.Coordinates != dets[0].Quad {
		t.Error("coordinates must be the engine quad unchanged")
	}
}

func TestNormalize_SequentialIDs(t *testing.T) {
	for _, n := range []int{1, 3, 17} {
		dets := make([]Detection, n)
		for i := range dets {
			y := float64(i * 10)
			dets[i] = Detection{Quad: quad(0, y, 5, y, 5, y+5, 0, y+5), Text: "x", Confidence: 1}
		}

		result := Normalize(100, 100, dets)
		if result.TotalTextRegions != n || len(result.OCRResults) != n {
			t.Fatalf("n=%d: region count %d, len %d", n, result.TotalTextRegions, len(result.OCRResults))
		}
		for i, r := range result.OCRResults {
			if r.ID != i+1 {
				t.Errorf("n=%d: region %d has id %d", n, i, r.ID)
			}
		}
	}
}

func TestNormalize_RotatedQuad(t *testing.T) {
	// First point is bottom-right, order counter-clockwise, slightly rotated.
	q := quad(120.456, 45.1, 118.2, 18.999, 9.006, 21.3, 11.7, 47.8)
	result := Normalize(200, 100, []Detection{{Quad: q, Text: "tilt", Confidence: 0.9}})

	r := result.OCRResults[0]
	if r.Position.XMin > r.Position.XMax || r.Position.YMin > r.Position.YMax {
		t.Fatalf("box not ordered: %+v", r.Position)
	}
	want := Box{XMin: 9.01, YMin: 19, XMax: 120.46, YMax: 47.8}
	if r.Position != want {
		t.Errorf("expected %+v, got %+v", want, r.Position)
	}
	if r.Dimensions.Width != 111.45 {
		t.Errorf("expected width 111.45, got %v", r.Dimensions.Width)
	}
	if r.Dimensions.Height != 28.8 {
		t.Errorf("expected height 28.8, got %v", r.Dimensions.Height)
	}
}

func TestNormalize_TotalTextJoin(t *testing.T) {
	dets := []Detection{
		{Quad: quad(0, 0, 1, 0, 1, 1, 0, 1), Text: "alpha"},
		{Quad: quad(0, 0, 1, 0, 1, 1, 0, 1), Text: "beta "},
		{Quad: quad(0, 0, 1, 0, 1, 1, 0, 1), Text: "gamma\n"},
	}

	result := Normalize(1, 1, dets)

	texts := make([]string, len(dets))
	for i, d := range dets {
		texts[i] = d.Text
	}
	want := strings.TrimSpace(strings.Join(texts, " "))
	if result.TotalText != want {
		t.Errorf("expected %q, got %q", want, result.TotalText)
	}
	if result.OCRResults[1].Text != "beta " {
		t.Error("region text must be kept verbatim")
	}
}

func TestNormalize_TotalTextTrimsBothEnds(t *testing.T) {
	dets := []Detection{
		{Quad: quad(0, 0, 1, 0, 1, 1, 0, 1), Text: "  lead"},
		{Quad: quad(0, 0, 1, 0, 1, 1, 0, 1), Text: "tail\t"},
	}

	result := Normalize(1, 1, dets)

	if result.TotalText != "lead tail" {
		t.Errorf("expected %q, got %q", "lead tail", result.TotalText)
	}
	if result.OCRResults[0].Text != "  lead" {
		t.Error("region text must be kept verbatim")
	}
}

func TestNormalize_Empty(t *testing.T) {
	for name, dets := range map[string][]Detection{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			result := Normalize(10, 20, dets)
			if !result.Success || result.TotalTextRegions != 0 || result.TotalText != "" {
				t.Errorf("unexpected result: %+v", result)
			}
			if result.OCRResults == nil {
				t.Fatal("ocr_results must be an empty slice, not nil")
			}

			data, err := json.Marshal(result)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			if !strings.Contains(string(data), `"ocr_results":[]`) {
				t.Errorf("expected empty array in %s", data)
			}
		})
	}
}

func TestNormalize_NoConfidenceFilter(t *testing.T) {
	dets := []Detection{
		{Quad: quad(0, 0, 1, 0, 1, 1, 0, 1), Text: "faint", Confidence: 0.01},
		{Quad: quad(0, 0, 1, 0, 1, 1, 0, 1), Text: "zero", Confidence: 0},
	}
	if got := Normalize(1, 1, dets).TotalTextRegions; got != 2 {
		t.Errorf("expected all detections kept, got %d", got)
	}
}

func TestNormalize_Rounding(t *testing.T) {
	confs := []float64{0.123456789, 0.99995, 0.00004, 1, 0.3333333}
	for _, c := range confs {
		q := quad(1.23456, 2.34567, 3.45678, 2.34567, 3.45678, 4.56789, 1.23456, 4.56789)
		r := Normalize(1, 1, []Detection{{Quad: q, Text: "r", Confidence: c}}).OCRResults[0]

		if !hasAtMostDecimals(r.Confidence, 4) {
			t.Errorf("confidence %v not rounded to 4 decimals", r.Confidence)
		}
		for _, v := range []float64{
			r.Position.XMin, r.Position.YMin, r.Position.XMax, r.Position.YMax,
			r.BoundingBox.XMin, r.BoundingBox.YMin, r.BoundingBox.XMax, r.BoundingBox.YMax,
			r.Dimensions.Width, r.Dimensions.Height,
		} {
			if !hasAtMostDecimals(v, 2) {
				t.Errorf("geometry %v not rounded to 2 decimals", v)
			}
		}
	}
}

// TestRound checks rounding of the exact stored value: 2.675 is stored just
// below the tie, 0.125 is an exact tie and goes to even.
func TestRound(t *testing.T) {
	tests := []struct {
		in       float64
		decimals int
		want     float64
	}{
		{2.675, 2, 2.67},
		{0.125, 2, 0.12},
		{0.375, 2, 0.38},
		{1.005, 2, 1},
		{-2.675, 2, -2.67},
		{120.456, 2, 120.46},
		{0.98765, 4, 0.9877},
		{0.123456789, 4, 0.1235},
		{7, 2, 7},
	}
	for _, tt := range tests {
		if got := round(tt.in, tt.decimals); got != tt.want {
			t.Errorf("round(%v, %d) = %v, want %v", tt.in, tt.decimals, got, tt.want)
		}
	}

	q := quad(2.675, 0.125, 10, 0.125, 10, 5, 2.675, 5)
	r := Normalize(20, 20, []Detection{{Quad: q, Text: "tie", Confidence: 1}}).OCRResults[0]
	if r.Position.XMin != 2.67 || r.Position.YMin != 0.12 {
		t.Errorf("unexpected rounded box: %+v", r.Position)
	}
}

func TestRegion_JSONShape(t *testing.T) {
	result := Normalize(50, 40, []Detection{
		{Quad: quad(1, 2, 3, 2, 3, 4, 1, 4), Text: "hi", Confidence: 0.75},
	})

	data, err := json.Marshal(result.OCRResults[0])
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"id", "text", "confidence", "position", "bounding_box", "dimensions"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}

	bb := m["bounding_box"].(map[string]any)
	for _, key := range []string{"coordinates", "x_min", "y_min", "x_max", "y_max"} {
		if _, ok := bb[key]; !ok {
			t.Errorf("bounding_box missing %q", key)
		}
	}
	if !strings.Contains(string(data), `"coordinates":[[1,2],[3,2],[3,4],[1,4]]`) {
		t.Errorf("unexpected coordinates encoding: %s", data)
	}
}

func TestAxisAligned(t *testing.T) {
	tests := []struct {
		name string
		q    Quad
		want Box
	}{
		{"clockwise from top-left", quad(0, 0, 10, 0, 10, 5, 0, 5), Box{0, 0, 10, 5}},
		{"starts bottom-left", quad(0, 5, 0, 0, 10, 0, 10, 5), Box{0, 0, 10, 5}},
		{"diamond", quad(5, 0, 10, 5, 5, 10, 0, 5), Box{0, 0, 10, 10}},
		{"degenerate", quad(3, 3, 3, 3, 3, 3, 3, 3), Box{3, 3, 3, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AxisAligned(tt.q); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func hasAtMostDecimals(v float64, decimals int) bool {
	scale := math.Pow(10, float64(decimals))
	return math.Abs(v*scale-math.Round(v*scale)) < 1e-6
}
