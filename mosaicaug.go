// Package mosaicaug composites four randomly cropped dataset images into one
// fixed-size mosaic and re-derives the YOLO bounding-box annotations of every
// retained object into the mosaic's coordinate frame.
//
// Each source image has a sibling text file listing objects as
// `class x_center y_center width height`, all values fractional relative to
// the image size. The mosaic keeps that convention: the output is one image
// plus one annotation file expressed against the mosaic canvas.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//
//		mosaicaug "github.com/yolo-tools/mosaic-augment"
//	)
//
//	func main() {
//		pipeline := mosaicaug.New(42)
//
//		results, err := pipeline.Run(mosaicaug.Options{
//			InputDir:      "dataset/train",
//			OutputDir:     "dataset/mosaic",
//			Width:         800,
//			Height:        800,
//			ScaleX:        0.4,
//			ScaleY:        0.6,
//			MinArea:       200,
//			MinVisibility: 0.1,
//			Count:         10,
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		for _, r := range results {
//			log.Printf("wrote %s (%d boxes)", r.ImagePath, r.BoxCount)
//		}
//	}
//
// The package consists of three main components:
//
// 1. Cropper (pkg/cropper): random-scale crop-and-resize with box remapping
// 2. Composer (pkg/mosaic): quadrant layout, canvas assembly, global remap
// 3. Store (pkg/store): image and YOLO label file I/O with atomic writes
package mosaicaug

import (
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/yolo-tools/mosaic-augment/internal/utils"
	"github.com/yolo-tools/mosaic-augment/pkg/cropper"
	"github.com/yolo-tools/mosaic-augment/pkg/mosaic"
	"github.com/yolo-tools/mosaic-augment/pkg/overlay"
	"github.com/yolo-tools/mosaic-augment/pkg/store"
	"github.com/yolo-tools/mosaic-augment/pkg/types"
)

// Version of the mosaic-augment library
const Version = "1.0.0"

// Options controls a pipeline run.
type Options struct {
	InputDir  string
	OutputDir string

	// Canvas size in pixels.
	Width  int
	Height int

	// Quadrant split fractions, each strictly inside (0,1).
	ScaleX float64
	ScaleY float64

	// Box-drop thresholds, applied during each quadrant crop.
	MinArea       float64
	MinVisibility float64

	// Format of the output image (jpg, png, webp); defaults to jpg.
	Format string

	// Display additionally writes an overlay image with the boxes drawn in.
	Display bool

	// Count is the number of mosaics to generate; defaults to 1.
	Count int
}

func (o *Options) validate() error {
	if o.Width < 2 || o.Height < 2 {
		return fmt.Errorf("%w: canvas size %dx%d", types.ErrInvalidGeometry, o.Width, o.Height)
	}
	if o.ScaleX <= 0 || o.ScaleX >= 1 || o.ScaleY <= 0 || o.ScaleY >= 1 {
		return fmt.Errorf("%w: scales (%g, %g) must be inside (0,1)", types.ErrInvalidGeometry, o.ScaleX, o.ScaleY)
	}
	if o.MinArea <= 0 {
		return fmt.Errorf("min area must be positive, got %g", o.MinArea)
	}
	if o.MinVisibility < 0 || o.MinVisibility > 1 {
		return fmt.Errorf("min visibility must be in [0,1], got %g", o.MinVisibility)
	}
	return nil
}

// RunResult records one written mosaic.
type RunResult struct {
	ImagePath   string
	LabelPath   string
	OverlayPath string
	BoxCount    int
}

// Pipeline wires the store, cropper and composer into the full augmentation
// flow: pick four images, compose, write.
type Pipeline struct {
	images   *store.ImageStore
	labels   *store.LabelStore
	composer *mosaic.Composer
	rng      *rand.Rand
}

// New creates a Pipeline seeded for reproducible image selection and crop
// sampling.
func New(seed int64) *Pipeline {
	rng := rand.New(rand.NewSource(seed))
	return &Pipeline{
		images:   store.NewImageStore(),
		labels:   store.NewLabelStore(),
		composer: mosaic.NewComposer(cropper.New(rng)),
		rng:      rng,
	}
}

// NewWithStores creates a Pipeline with custom store implementations, mainly
// for tests and for callers with their own codec requirements.
func NewWithStores(images *store.ImageStore, labels *store.LabelStore, seed int64) *Pipeline {
	rng := rand.New(rand.NewSource(seed))
	return &Pipeline{
		images:   images,
		labels:   labels,
		composer: mosaic.NewComposer(cropper.New(rng)),
		rng:      rng,
	}
}

// Run generates opts.Count mosaics from random picks out of opts.InputDir and
// writes each image, its label file, and optionally an overlay, into
// opts.OutputDir. The label file is only written after its image is safely in
// place, so a failed run leaves no orphaned annotations.
func (p *Pipeline) Run(opts Options) ([]RunResult, error) {
	if opts.InputDir == "" || opts.OutputDir == "" {
		return nil, fmt.Errorf("input and output directories are required")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Count < 1 {
		opts.Count = 1
	}
	format := opts.Format
	if format == "" {
		format = "jpg"
	}

	files, err := utils.ListImageFiles(opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list input images: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images found in %s", opts.InputDir)
	}

	if err := utils.EnsureDir(opts.OutputDir); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	results := make([]RunResult, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		result, err := p.generate(files, opts, format)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (p *Pipeline) generate(files []string, opts Options, format string) (RunResult, error) {
	// Pick four images with replacement, so small datasets still mosaic.
	var paths [4]string
	var bases [4]string
	for i := range paths {
		paths[i] = files[p.rng.Intn(len(files))]
		bases[i] = utils.BaseName(paths[i])
	}

	var sources [4]mosaic.Source
	for i, path := range paths {
		img, err := p.images.Load(path)
		if err != nil {
			return RunResult{}, fmt.Errorf("source %d (%s): %w", i, path, err)
		}
		boxes, labels, err := p.labels.Load(utils.LabelPathFor(path))
		if err != nil {
			return RunResult{}, fmt.Errorf("source %d (%s): %w", i, path, err)
		}
		sources[i] = mosaic.Source{Image: img, Boxes: boxes, Labels: labels}
	}

	composed, err := p.composer.Compose(sources, opts.Width, opts.Height,
		opts.ScaleX, opts.ScaleY, opts.MinArea, opts.MinVisibility)
	if err != nil {
		return RunResult{}, err
	}

	imagePath := filepath.Join(opts.OutputDir, utils.MosaicName(bases, format))
	labelPath := filepath.Join(opts.OutputDir, utils.MosaicName(bases, "txt"))

	// Image first: the annotation must never exist without its image.
	if err := p.images.Save(composed.Image, imagePath); err != nil {
		return RunResult{}, fmt.Errorf("failed to save mosaic image: %w", err)
	}
	if err := p.labels.Save(composed.Boxes, composed.Labels, labelPath); err != nil {
		return RunResult{}, fmt.Errorf("failed to save mosaic labels: %w", err)
	}

	result := RunResult{
		ImagePath: imagePath,
		LabelPath: labelPath,
		BoxCount:  len(composed.Boxes),
	}

	if opts.Display {
		overlayPath := filepath.Join(opts.OutputDir, utils.MosaicName(bases, "overlay.png"))
		rendered := overlay.Render(composed.Image, composed.Boxes, composed.Labels)
		if err := p.images.Save(rendered, overlayPath); err != nil {
			return RunResult{}, fmt.Errorf("failed to save overlay: %w", err)
		}
		result.OverlayPath = overlayPath
	}

	return result, nil
}

// Compose builds a single mosaic from in-memory sources without touching the
// filesystem. It is the library entry point for callers that do their own I/O.
// InputDir and OutputDir in opts are ignored.
func (p *Pipeline) Compose(sources [4]mosaic.Source, opts Options) (*mosaic.Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return p.composer.Compose(sources, opts.Width, opts.Height,
		opts.ScaleX, opts.ScaleY, opts.MinArea, opts.MinVisibility)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
