// Package mosaic composites four cropped images into a single fixed-size
// canvas and remaps their normalized bounding boxes into the canvas frame.
//
// The canvas is split into four quadrants by a point derived from two scale
// fractions:
//
//	===================000000000000
//	===================000000000000
//	$$$$$$$$$$$$$$$$$$$xxxxxxxxxxxx
//	$$$$$$$$$$$$$$$$$$$xxxxxxxxxxxx
//
//	=== top left     (divX, divY)
//	000 top right    (canvasW-divX, divY)
//	$$$ bottom left  (divX, canvasH-divY)
//	xxx bottom right (canvasW-divX, canvasH-divY)
//
// Each quadrant receives one source image cropped and resized to its exact
// size, so the quadrants tile the canvas with no gap or overlap.
package mosaic

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/yolo-tools/mosaic-augment/pkg/cropper"
	"github.com/yolo-tools/mosaic-augment/pkg/types"
)

// Quadrant indices in composition order.
const (
	TopLeft = iota
	TopRight
	BottomLeft
	BottomRight
)

// Quadrant describes one of the four canvas regions: its target crop size,
// its pixel rectangle on the canvas, and the per-axis affine coefficients
// that map a box from the quadrant-local normalized frame into the
// canvas-global normalized frame.
type Quadrant struct {
	Index   int
	TargetW int
	TargetH int
	Rect    image.Rectangle

	// x' = OffX + x*SpanX, w' = w*SpanX; same for the y axis.
	SpanX, OffX float64
	SpanY, OffY float64
}

// ToCanvas maps a box from this quadrant's local normalized frame into the
// canvas-global normalized frame.
func (q Quadrant) ToCanvas(b types.Box) types.Box {
	return types.Box{
		X: q.OffX + b.X*q.SpanX,
		Y: q.OffY + b.Y*q.SpanY,
		W: b.W * q.SpanX,
		H: b.H * q.SpanY,
	}
}

// Layout computes the four quadrants of a canvasW x canvasH canvas split at
// (floor(canvasW*scaleX), floor(canvasH*scaleY)). Scales must lie strictly
// inside (0,1) and the resulting split must leave every quadrant at least one
// pixel on each axis; anything else fails with ErrInvalidGeometry.
func Layout(canvasW, canvasH int, scaleX, scaleY float64) ([4]Quadrant, error) {
	var quads [4]Quadrant
	if canvasW <= 0 || canvasH <= 0 {
		return quads, fmt.Errorf("%w: canvas size %dx%d", types.ErrInvalidGeometry, canvasW, canvasH)
	}
	if scaleX <= 0 || scaleX >= 1 || scaleY <= 0 || scaleY >= 1 {
		return quads, fmt.Errorf("%w: scales (%g, %g) must be inside (0,1)", types.ErrInvalidGeometry, scaleX, scaleY)
	}

	divX := int(float64(canvasW) * scaleX)
	divY := int(float64(canvasH) * scaleY)
	if divX < 1 || divX >= canvasW || divY < 1 || divY >= canvasH {
		return quads, fmt.Errorf("%w: split point (%d, %d) leaves a zero-size quadrant", types.ErrInvalidGeometry, divX, divY)
	}

	left, right := scaleX, 1-scaleX
	top, bottom := scaleY, 1-scaleY

	quads[TopLeft] = Quadrant{
		Index: TopLeft, TargetW: divX, TargetH: divY,
		Rect:  image.Rect(0, 0, divX, divY),
		SpanX: left, OffX: 0, SpanY: top, OffY: 0,
	}
	quads[TopRight] = Quadrant{
		Index: TopRight, TargetW: canvasW - divX, TargetH: divY,
		Rect:  image.Rect(divX, 0, canvasW, divY),
		SpanX: right, OffX: scaleX, SpanY: top, OffY: 0,
	}
	quads[BottomLeft] = Quadrant{
		Index: BottomLeft, TargetW: divX, TargetH: canvasH - divY,
		Rect:  image.Rect(0, divY, divX, canvasH),
		SpanX: left, OffX: 0, SpanY: bottom, OffY: scaleY,
	}
	quads[BottomRight] = Quadrant{
		Index: BottomRight, TargetW: canvasW - divX, TargetH: canvasH - divY,
		Rect:  image.Rect(divX, divY, canvasW, canvasH),
		SpanX: right, OffX: scaleX, SpanY: bottom, OffY: scaleY,
	}
	return quads, nil
}

// Source is one of the four (image, boxes, labels) inputs to a mosaic. Boxes
// are normalized to the source image's own frame and parallel to Labels.
type Source struct {
	Image  image.Image
	Boxes  []types.Box
	Labels []int
}

// Result is a composed mosaic: the canvas image plus the retained boxes in
// the canvas-global normalized frame, concatenated in quadrant order.
type Result struct {
	Image  *image.NRGBA
	Boxes  []types.Box
	Labels []int
}

// Annotations pairs up the result's parallel box and label slices.
func (r *Result) Annotations() []types.Annotation {
	anns := make([]types.Annotation, len(r.Boxes))
	for i, b := range r.Boxes {
		anns[i] = types.Annotation{Class: r.Labels[i], Box: b}
	}
	return anns
}

// Composer assembles mosaics from four sources using a Cropper for the
// per-quadrant crop-and-resize.
type Composer struct {
	cropper *cropper.Cropper
}

// NewComposer creates a Composer backed by the given Cropper.
func NewComposer(c *cropper.Cropper) *Composer {
	return &Composer{cropper: c}
}

// Compose crops each source to its quadrant's target size, writes the crops
// into a freshly allocated canvas, and remaps every surviving box into the
// canvas frame. Quadrants are processed in order; each writes a disjoint
// canvas region, and box/label slices stay parallel throughout.
func (m *Composer) Compose(sources [4]Source, canvasW, canvasH int, scaleX, scaleY, minArea, minVisibility float64) (*Result, error) {
	quads, err := Layout(canvasW, canvasH, scaleX, scaleY)
	if err != nil {
		return nil, err
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, canvasW, canvasH))
	var allBoxes []types.Box
	var allLabels []int

	for i, q := range quads {
		src := sources[i]
		cropped, localBoxes, localLabels, err := m.cropper.Crop(
			src.Image, src.Boxes, src.Labels, q.TargetH, q.TargetW, minArea, minVisibility)
		if err != nil {
			return nil, fmt.Errorf("quadrant %d: %w", i, err)
		}

		draw.Draw(canvas, q.Rect, cropped, cropped.Bounds().Min, draw.Src)

		for j, b := range localBoxes {
			allBoxes = append(allBoxes, q.ToCanvas(b))
			allLabels = append(allLabels, localLabels[j])
		}
	}

	return &Result{Image: canvas, Boxes: allBoxes, Labels: allLabels}, nil
}
