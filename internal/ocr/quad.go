package ocr

import "image"

// rectToQuad returns r's corners clockwise from the top-left, the order
// PaddleOCR reports them in.
func rectToQuad(r image.Rectangle) Quad {
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	x1, y1 := float64(r.Max.X), float64(r.Max.Y)
	return Quad{
		{x0, y0},
		{x1, y0},
		{x1, y1},
		{x0, y1},
	}
}
