package ocr

import (
	"math"
	"strconv"
	"strings"
)

// ImageInfo is the pixel size of the decoded upload.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Result is the response envelope for a successful OCR request.
type Result struct {
	Success          bool      `json:"success"`
	ImageInfo        ImageInfo `json:"image_info"`
	TotalTextRegions int       `json:"total_text_regions"`
	TotalText        string    `json:"total_text"`
	OCRResults       []Region  `json:"ocr_results"`
}

// Region is one normalized text line.
type Region struct {
	ID          int         `json:"id"`
	Text        string      `json:"text"`
	Confidence  float64     `json:"confidence"`
	Position    Box         `json:"position"`
	BoundingBox BoundingBox `json:"bounding_box"`
	Dimensions  Dimensions  `json:"dimensions"`
}

// Box is an axis-aligned rectangle.
type Box struct {
	XMin float64 `json:"x_min"`
	YMin float64 `json:"y_min"`
	XMax float64 `json:"x_max"`
	YMax float64 `json:"y_max"`
}

// BoundingBox carries the engine quad alongside its axis-aligned box.
// Position repeats the same box; clients depend on both.
type BoundingBox struct {
	Coordinates Quad `json:"coordinates"`
	Box
}

// Dimensions is the size of a Box.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

const (
	confidenceDecimals = 4
	geometryDecimals   = 2
)

// Normalize builds a Result from engine detections for an image of the given
// size. Detections keep their order; nil or empty input yields zero regions.
func Normalize(width, height int, detections []Detection) *Result {
	regions := make([]Region, 0, len(detections))
	var text strings.Builder

	for i, d := range detections {
		box := AxisAligned(d.Quad)
		rounded := Box{
			XMin: round(box.XMin, geometryDecimals),
			YMin: round(box.YMin, geometryDecimals),
			XMax: round(box.XMax, geometryDecimals),
			YMax: round(box.YMax, geometryDecimals),
		}

		regions = append(regions, Region{
			ID:         i + 1,
			Text:       d.Text,
			Confidence: round(d.Confidence, confidenceDecimals),
			Position:   rounded,
			BoundingBox: BoundingBox{
				Coordinates: d.Quad,
				Box:         rounded,
			},
			Dimensions: Dimensions{
				Width:  round(box.XMax-box.XMin, geometryDecimals),
				Height: round(box.YMax-box.YMin, geometryDecimals),
			},
		})

		text.WriteString(d.Text)
		text.WriteByte(' ')
	}

	return &Result{
		Success:          true,
		ImageInfo:        ImageInfo{Width: width, Height: height},
		TotalTextRegions: len(regions),
		TotalText:        strings.TrimSpace(text.String()),
		OCRResults:       regions,
	}
}

// AxisAligned returns the smallest axis-aligned box containing all four
// points of q, whatever their order.
func AxisAligned(q Quad) Box {
	b := Box{
		XMin: q[0].X(), XMax: q[0].X(),
		YMin: q[0].Y(), YMax: q[0].Y(),
	}
	for _, p := range q[1:] {
		b.XMin = math.Min(b.XMin, p.X())
		b.XMax = math.Max(b.XMax, p.X())
		b.YMin = math.Min(b.YMin, p.Y())
		b.YMax = math.Max(b.YMax, p.Y())
	}
	return b
}

// round rounds the exact binary value of v to decimals places, ties to even,
// so 2.675 (stored just below) gives 2.67 and 0.125 gives 0.12.
func round(v float64, decimals int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	return r
}
