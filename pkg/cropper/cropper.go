package cropper

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"

	"github.com/yolo-tools/mosaic-augment/pkg/types"
)

// ErrEmptyImage reports a source image with zero width or height.
var ErrEmptyImage = errors.New("empty source image")

// Config holds the sampling bounds for the random crop region.
type Config struct {
	// ScaleMin and ScaleMax bound the crop area as a fraction of the source
	// image area.
	ScaleMin float64
	ScaleMax float64
	// RatioMin and RatioMax bound the aspect ratio (width/height) of the
	// sampled region. Sampling is uniform in log space.
	RatioMin float64
	RatioMax float64
	// MaxAttempts is the number of sampling tries before falling back to the
	// largest centered region matching the target aspect.
	MaxAttempts int
}

// DefaultConfig returns the standard random-resized-crop sampling bounds.
func DefaultConfig() Config {
	return Config{
		ScaleMin:    0.08,
		ScaleMax:    1.0,
		RatioMin:    3.0 / 4.0,
		RatioMax:    4.0 / 3.0,
		MaxAttempts: 10,
	}
}

// Cropper performs random-scale, random-position crop-and-resize operations
// while keeping normalized bounding boxes consistent with the cropped frame.
type Cropper struct {
	config Config
	rng    *rand.Rand
}

// New creates a Cropper with default sampling bounds. The random source is
// caller-supplied so runs are reproducible under a fixed seed.
func New(rng *rand.Rand) *Cropper {
	return NewWithConfig(DefaultConfig(), rng)
}

// NewWithConfig creates a Cropper with custom sampling bounds.
func NewWithConfig(config Config, rng *rand.Rand) *Cropper {
	return &Cropper{config: config, rng: rng}
}

// Crop selects a random region of img, resizes it to exactly targetW x targetH
// pixels, and remaps boxes into the cropped frame. A box is dropped when its
// post-crop pixel area falls below minArea, or when the ratio of its post-crop
// area to its original area falls below minVisibility. Boxes and labels are
// filtered in lock-step, so the returned slices stay parallel.
//
// Returned boxes are normalized to the cropped image's own frame; they are not
// yet placed in any larger canvas.
func (c *Cropper) Crop(img image.Image, boxes []types.Box, labels []int, targetH, targetW int, minArea, minVisibility float64) (image.Image, []types.Box, []int, error) {
	if targetH <= 0 || targetW <= 0 {
		return nil, nil, nil, fmt.Errorf("%w: target size %dx%d", types.ErrInvalidGeometry, targetW, targetH)
	}
	if len(boxes) != len(labels) {
		return nil, nil, nil, fmt.Errorf("boxes and labels diverge: %d boxes, %d labels", len(boxes), len(labels))
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, nil, nil, ErrEmptyImage
	}

	region := c.sampleRegion(bounds, targetW, targetH)

	cropped := imaging.Crop(img, region)
	resized := imaging.Resize(cropped, targetW, targetH, imaging.Lanczos)

	outBoxes, outLabels := RemapBoxes(boxes, labels, bounds.Dx(), bounds.Dy(), region.Sub(bounds.Min), minArea, minVisibility)
	return resized, outBoxes, outLabels, nil
}

// sampleRegion picks a crop rectangle inside bounds. Area fraction and aspect
// ratio are sampled within the configured bounds; position is uniform over the
// valid placements. After MaxAttempts failed tries it falls back to the
// largest centered region with the target aspect.
func (c *Cropper) sampleRegion(bounds image.Rectangle, targetW, targetH int) image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()
	area := float64(w * h)

	logMin := math.Log(c.config.RatioMin)
	logMax := math.Log(c.config.RatioMax)

	for i := 0; i < c.config.MaxAttempts; i++ {
		scale := c.config.ScaleMin + c.rng.Float64()*(c.config.ScaleMax-c.config.ScaleMin)
		ratio := math.Exp(logMin + c.rng.Float64()*(logMax-logMin))

		cropArea := area * scale
		cw := int(math.Round(math.Sqrt(cropArea * ratio)))
		ch := int(math.Round(math.Sqrt(cropArea / ratio)))
		if cw < 1 || ch < 1 || cw > w || ch > h {
			continue
		}

		x0 := bounds.Min.X + c.rng.Intn(w-cw+1)
		y0 := bounds.Min.Y + c.rng.Intn(h-ch+1)
		return image.Rect(x0, y0, x0+cw, y0+ch)
	}

	// Fallback: center the largest region matching the target aspect.
	targetRatio := float64(targetW) / float64(targetH)
	cw, ch := w, h
	if float64(w)/float64(h) > targetRatio {
		cw = int(math.Round(float64(h) * targetRatio))
	} else {
		ch = int(math.Round(float64(w) / targetRatio))
	}
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}
	x0 := bounds.Min.X + (w-cw)/2
	y0 := bounds.Min.Y + (h-ch)/2
	return image.Rect(x0, y0, x0+cw, y0+ch)
}

// RemapBoxes re-expresses boxes given in the normalized frame of a srcW x srcH
// image into the normalized frame of the crop region (zero-based within the
// source). Boxes whose intersection with the region is smaller than minArea
// pixels, or whose visible fraction of the original area is below
// minVisibility, are dropped together with their labels. Fresh slices are
// returned; inputs are never modified.
func RemapBoxes(boxes []types.Box, labels []int, srcW, srcH int, region image.Rectangle, minArea, minVisibility float64) ([]types.Box, []int) {
	outBoxes := make([]types.Box, 0, len(boxes))
	outLabels := make([]int, 0, len(labels))

	rx0 := float64(region.Min.X)
	ry0 := float64(region.Min.Y)
	rx1 := float64(region.Max.X)
	ry1 := float64(region.Max.Y)
	cw := rx1 - rx0
	ch := ry1 - ry0

	for i, b := range boxes {
		x0, y0, x1, y1 := b.Corners(srcW, srcH)
		origArea := (x1 - x0) * (y1 - y0)

		nx0 := math.Max(x0, rx0)
		ny0 := math.Max(y0, ry0)
		nx1 := math.Min(x1, rx1)
		ny1 := math.Min(y1, ry1)
		if nx1 <= nx0 || ny1 <= ny0 {
			continue
		}

		visArea := (nx1 - nx0) * (ny1 - ny0)
		if visArea < minArea {
			continue
		}
		if origArea > 0 && visArea/origArea < minVisibility {
			continue
		}

		outBoxes = append(outBoxes, types.Box{
			X: ((nx0+nx1)/2 - rx0) / cw,
			Y: ((ny0+ny1)/2 - ry0) / ch,
			W: (nx1 - nx0) / cw,
			H: (ny1 - ny0) / ch,
		})
		outLabels = append(outLabels, labels[i])
	}
	return outBoxes, outLabels
}
