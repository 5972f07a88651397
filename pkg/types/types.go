package types

import "errors"

// ErrInvalidGeometry reports non-positive target dimensions or split scales
// outside the open interval (0,1).
var ErrInvalidGeometry = errors.New("invalid geometry")

// Box represents a normalized bounding box in the YOLO convention: center
// coordinates and size, all fractional relative to the image the box is
// currently expressed against.
type Box struct {
	X float64 `json:"x"` // x center
	Y float64 `json:"y"` // y center
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Corners returns the pixel-space corners (x0, y0, x1, y1) of the box in an
// image of the given size.
func (b Box) Corners(imgW, imgH int) (float64, float64, float64, float64) {
	fw, fh := float64(imgW), float64(imgH)
	x0 := (b.X - b.W/2) * fw
	y0 := (b.Y - b.H/2) * fh
	x1 := (b.X + b.W/2) * fw
	y1 := (b.Y + b.H/2) * fh
	return x0, y0, x1, y1
}

// FromCorners builds a normalized box from pixel-space corners in an image of
// the given size.
func FromCorners(x0, y0, x1, y1 float64, imgW, imgH int) Box {
	fw, fh := float64(imgW), float64(imgH)
	return Box{
		X: (x0 + x1) / 2 / fw,
		Y: (y0 + y1) / 2 / fh,
		W: (x1 - x0) / fw,
		H: (y1 - y0) / fh,
	}
}

// PixelArea returns the box area in pixels for an image of the given size.
func (b Box) PixelArea(imgW, imgH int) float64 {
	return b.W * float64(imgW) * b.H * float64(imgH)
}

// Valid reports whether the box satisfies the normalized-frame invariant:
// center inside [0,1] on both axes and strictly positive size.
func (b Box) Valid() bool {
	return b.X >= 0 && b.X <= 1 && b.Y >= 0 && b.Y <= 1 && b.W > 0 && b.H > 0
}

// Annotation pairs a box with its class label. Boxes and labels travel through
// the pipeline as parallel slices; this type is the unit they pair up as at
// the edges (label files, overlays).
type Annotation struct {
	Class int `json:"class"`
	Box   Box `json:"box"`
}
