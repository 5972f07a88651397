package cropper

import (
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/yolo-tools/mosaic-augment/pkg/types"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				// Central bright region (subject)
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				// Background
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}

	return img
}

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func TestCropTargetSize(t *testing.T) {
	cropper := New(testRand())
	img := createTestImage(400, 300)

	sizes := []struct{ h, w int }{
		{100, 200},
		{300, 400},
		{1, 1},
		{480, 320},
	}

	for _, sz := range sizes {
		out, _, _, err := cropper.Crop(img, nil, nil, sz.h, sz.w, 1, 0)
		if err != nil {
			t.Fatalf("Crop to %dx%d failed: %v", sz.w, sz.h, err)
		}
		bounds := out.Bounds()
		if bounds.Dx() != sz.w || bounds.Dy() != sz.h {
			t.Errorf("expected %dx%d, got %dx%d", sz.w, sz.h, bounds.Dx(), bounds.Dy())
		}
	}
}

func TestCropInvalidGeometry(t *testing.T) {
	cropper := New(testRand())
	img := createTestImage(100, 100)

	cases := []struct{ h, w int }{
		{0, 100},
		{100, 0},
		{-1, 100},
		{100, -5},
	}

	for _, c := range cases {
		_, _, _, err := cropper.Crop(img, nil, nil, c.h, c.w, 1, 0)
		if !errors.Is(err, types.ErrInvalidGeometry) {
			t.Errorf("target %dx%d: expected ErrInvalidGeometry, got %v", c.w, c.h, err)
		}
	}
}

func TestCropEmptyImage(t *testing.T) {
	cropper := New(testRand())
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))

	_, _, _, err := cropper.Crop(img, nil, nil, 10, 10, 1, 0)
	if !errors.Is(err, ErrEmptyImage) {
		t.Errorf("expected ErrEmptyImage, got %v", err)
	}
}

func TestCropZeroBoxes(t *testing.T) {
	cropper := New(testRand())
	img := createTestImage(200, 200)

	_, boxes, labels, err := cropper.Crop(img, []types.Box{}, []int{}, 50, 50, 1, 0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if len(boxes) != 0 || len(labels) != 0 {
		t.Errorf("expected empty output, got %d boxes, %d labels", len(boxes), len(labels))
	}
}

func TestCropMismatchedLabels(t *testing.T) {
	cropper := New(testRand())
	img := createTestImage(200, 200)

	_, _, _, err := cropper.Crop(img, []types.Box{{X: 0.5, Y: 0.5, W: 0.1, H: 0.1}}, nil, 50, 50, 1, 0)
	if err == nil {
		t.Error("expected error for diverging boxes and labels")
	}
}

func TestCropBoxInvariants(t *testing.T) {
	cropper := New(testRand())
	img := createTestImage(640, 480)

	boxes := []types.Box{
		{X: 0.5, Y: 0.5, W: 0.3, H: 0.3},
		{X: 0.1, Y: 0.1, W: 0.15, H: 0.15},
		{X: 0.9, Y: 0.85, W: 0.1, H: 0.2},
		{X: 0.5, Y: 0.5, W: 1.0, H: 1.0},
	}
	labels := []int{0, 1, 2, 3}

	for i := 0; i < 50; i++ {
		_, outBoxes, outLabels, err := cropper.Crop(img, boxes, labels, 200, 200, 1, 0)
		if err != nil {
			t.Fatalf("Crop failed: %v", err)
		}
		if len(outBoxes) != len(outLabels) {
			t.Fatalf("boxes and labels diverged: %d vs %d", len(outBoxes), len(outLabels))
		}
		for _, b := range outBoxes {
			if !b.Valid() {
				t.Errorf("surviving box violates frame invariant: %+v", b)
			}
			if b.W > 1 || b.H > 1 {
				t.Errorf("box larger than its frame: %+v", b)
			}
		}
	}
}

func TestRemapBoxesFullyInside(t *testing.T) {
	// 400x300 source, crop region (100,50)-(300,250). A 80x60 box centered at
	// (200,150) stays fully visible.
	boxes := []types.Box{{X: 0.5, Y: 0.5, W: 0.2, H: 0.2}}
	labels := []int{7}

	outBoxes, outLabels := RemapBoxes(boxes, labels, 400, 300, image.Rect(100, 50, 300, 250), 1, 0)
	if len(outBoxes) != 1 {
		t.Fatalf("expected 1 box, got %d", len(outBoxes))
	}
	if outLabels[0] != 7 {
		t.Errorf("label not carried: got %d", outLabels[0])
	}

	want := types.Box{X: 0.5, Y: 0.5, W: 0.4, H: 0.3}
	if !boxNear(outBoxes[0], want, 1e-9) {
		t.Errorf("remap mismatch: got %+v, want %+v", outBoxes[0], want)
	}
}

func TestRemapBoxesMinVisibility(t *testing.T) {
	// Box spanning x in [0,200] against region x in [100,300]: exactly half
	// the area stays visible, and it is well above any small area threshold.
	boxes := []types.Box{{X: 0.25, Y: 0.5, W: 0.5, H: 0.2}}
	labels := []int{0}
	region := image.Rect(100, 50, 300, 250)

	outBoxes, _ := RemapBoxes(boxes, labels, 400, 300, region, 1, 0.6)
	if len(outBoxes) != 0 {
		t.Errorf("expected drop at minVisibility=0.6, kept %+v", outBoxes)
	}

	outBoxes, outLabels := RemapBoxes(boxes, labels, 400, 300, region, 1, 0.4)
	if len(outBoxes) != 1 {
		t.Fatalf("expected keep at minVisibility=0.4, got %d boxes", len(outBoxes))
	}
	if len(outLabels) != 1 {
		t.Fatalf("labels diverged from boxes")
	}
}

func TestRemapBoxesMinArea(t *testing.T) {
	// Small box fully inside the region: visibility is 1.0, so only the area
	// threshold can drop it. 8x6 px = 48 px^2.
	boxes := []types.Box{{X: 0.5, Y: 0.5, W: 0.02, H: 0.02}}
	labels := []int{0}
	region := image.Rect(100, 50, 300, 250)

	outBoxes, _ := RemapBoxes(boxes, labels, 400, 300, region, 100, 0)
	if len(outBoxes) != 0 {
		t.Errorf("expected drop at minArea=100, kept %+v", outBoxes)
	}

	outBoxes, _ = RemapBoxes(boxes, labels, 400, 300, region, 10, 0)
	if len(outBoxes) != 1 {
		t.Errorf("expected keep at minArea=10, got %d boxes", len(outBoxes))
	}
}

func TestRemapBoxesOutsideRegion(t *testing.T) {
	// Box entirely left of the region.
	boxes := []types.Box{{X: 0.1, Y: 0.5, W: 0.1, H: 0.1}}
	labels := []int{2}

	outBoxes, outLabels := RemapBoxes(boxes, labels, 400, 300, image.Rect(200, 0, 400, 300), 1, 0)
	if len(outBoxes) != 0 || len(outLabels) != 0 {
		t.Errorf("expected empty output, got %d boxes, %d labels", len(outBoxes), len(outLabels))
	}
}

func TestRemapBoxesInputsUntouched(t *testing.T) {
	boxes := []types.Box{{X: 0.25, Y: 0.5, W: 0.5, H: 0.2}}
	labels := []int{3}
	orig := boxes[0]

	RemapBoxes(boxes, labels, 400, 300, image.Rect(100, 50, 300, 250), 1, 0)
	if boxes[0] != orig {
		t.Errorf("input box mutated: %+v", boxes[0])
	}
}

func TestSampleRegionWithinBounds(t *testing.T) {
	cropper := New(testRand())
	bounds := image.Rect(0, 0, 640, 480)

	for i := 0; i < 200; i++ {
		region := cropper.sampleRegion(bounds, 320, 240)
		if !region.In(bounds) {
			t.Fatalf("sampled region %v escapes bounds %v", region, bounds)
		}
		if region.Dx() < 1 || region.Dy() < 1 {
			t.Fatalf("degenerate region %v", region)
		}
	}
}

func TestCropDeterministicUnderSeed(t *testing.T) {
	img := createTestImage(400, 300)
	boxes := []types.Box{{X: 0.5, Y: 0.5, W: 0.5, H: 0.5}}
	labels := []int{0}

	c1 := New(rand.New(rand.NewSource(99)))
	c2 := New(rand.New(rand.NewSource(99)))

	_, b1, _, err1 := c1.Crop(img, boxes, labels, 100, 100, 1, 0)
	_, b2, _, err2 := c2.Crop(img, boxes, labels, 100, 100, 1, 0)
	if err1 != nil || err2 != nil {
		t.Fatalf("Crop failed: %v / %v", err1, err2)
	}
	if len(b1) != len(b2) {
		t.Fatalf("same seed produced different survivors: %d vs %d", len(b1), len(b2))
	}
	for i := range b1 {
		if b1[i] != b2[i] {
			t.Errorf("same seed produced different boxes: %+v vs %+v", b1[i], b2[i])
		}
	}
}

func boxNear(a, b types.Box, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.W-b.W) <= tol && math.Abs(a.H-b.H) <= tol
}

func BenchmarkCrop(b *testing.B) {
	cropper := New(testRand())
	img := createTestImage(1920, 1080)
	boxes := []types.Box{
		{X: 0.5, Y: 0.5, W: 0.3, H: 0.3},
		{X: 0.2, Y: 0.2, W: 0.1, H: 0.1},
	}
	labels := []int{0, 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cropper.Crop(img, boxes, labels, 480, 480, 200, 0.1)
	}
}
