// Package overlay renders bounding boxes onto an image for visual inspection
// of augmented samples. The rendered copy is saved next to the mosaic instead
// of opening a window, so batch runs stay headless.
package overlay

import (
	"image"
	"image/color"
	"strconv"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/yolo-tools/mosaic-augment/pkg/types"
)

// palette cycles per class id so neighboring classes stay distinguishable.
var palette = []color.NRGBA{
	{0, 255, 0, 255},
	{255, 204, 0, 255},
	{0, 160, 255, 255},
	{255, 64, 64, 255},
	{200, 0, 255, 255},
	{0, 255, 200, 255},
}

const stroke = 2

// Render returns a copy of img with every box outlined and tagged with its
// class id. Boxes are in img's normalized frame and parallel to labels.
func Render(img image.Image, boxes []types.Box, labels []int) *image.NRGBA {
	dst := imaging.Clone(img)
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()

	for i, b := range boxes {
		c := palette[0]
		if i < len(labels) {
			c = classColor(labels[i])
		}
		x0, y0, x1, y1 := boxToPixels(b, w, h)
		drawRect(dst, x0, y0, x1, y1, c)
		if i < len(labels) {
			drawLabel(dst, x0+stroke+1, y0+basicfont.Face7x13.Ascent+stroke, strconv.Itoa(labels[i]), c)
		}
	}
	return dst
}

func classColor(class int) color.NRGBA {
	if class < 0 {
		class = -class
	}
	return palette[class%len(palette)]
}

func boxToPixels(b types.Box, w, h int) (int, int, int, int) {
	x0 := int(clamp(b.X-b.W/2, 0, 1)*float64(w) + 0.5)
	y0 := int(clamp(b.Y-b.H/2, 0, 1)*float64(h) + 0.5)
	x1 := int(clamp(b.X+b.W/2, 0, 1)*float64(w) + 0.5)
	y1 := int(clamp(b.Y+b.H/2, 0, 1)*float64(h) + 0.5)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return x0, y0, x1, y1
}

func drawRect(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	for s := 0; s < stroke; s++ {
		drawHLine(img, y0+s, x0, x1, c)
		drawHLine(img, y1-1-s, x0, x1, c)
		drawVLine(img, x0+s, y0, y1, c)
		drawVLine(img, x1-1-s, y0, y1, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}

func drawLabel(img *image.NRGBA, x, y int, text string, c color.NRGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
