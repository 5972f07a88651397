package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	mosaicaug "github.com/yolo-tools/mosaic-augment"
	"github.com/yolo-tools/mosaic-augment/internal/config"
	"github.com/yolo-tools/mosaic-augment/pkg/store"
)

func main() {
	var in, out, format, configPath string
	var width, height int
	var scaleX, scaleY float64
	var minArea, minVis float64
	var quality, count int
	var display bool
	var seed int64

	flag.StringVar(&in, "in", "", "input folder containing images and their YOLO annotation files")
	flag.StringVar(&out, "out", "", "output folder for mosaic images and annotations")
	flag.IntVar(&width, "width", 800, "width of the mosaic image in pixels")
	flag.IntVar(&height, "height", 800, "height of the mosaic image in pixels")
	flag.Float64Var(&scaleX, "scale-x", 0.4, "horizontal split fraction in (0,1); defines the width of the left quadrants")
	flag.Float64Var(&scaleY, "scale-y", 0.6, "vertical split fraction in (0,1); defines the height of the top quadrants")
	flag.Float64Var(&minArea, "min-area", 200, "minimum box pixel area after cropping; smaller boxes are dropped")
	flag.Float64Var(&minVis, "min-vis", 0.1, "minimum visible fraction of a box after cropping, in [0,1]")
	flag.StringVar(&format, "ext", "jpg", "output image format: jpg|png|webp")
	flag.IntVar(&quality, "quality", 90, "JPEG/WebP output quality (1-100)")
	flag.IntVar(&count, "count", 1, "number of mosaics to generate")
	flag.BoolVar(&display, "display", false, "also write an overlay image with the boxes drawn in")
	flag.Int64Var(&seed, "seed", 0, "random seed; 0 seeds from the clock")
	flag.StringVar(&configPath, "config", "", "optional JSON config file; when set it supplies all tunables except -in, -out and -seed")

	flag.Parse()
	if in == "" || out == "" {
		log.Fatalf("usage: %s -in dataset_dir -out output_dir [-width 800 -height 800 -scale-x 0.4 -scale-y 0.6 -min-area 200 -min-vis 0.1 -count 10 -seed 42 -display]",
			filepath.Base(os.Args[0]))
	}

	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := cfg.Validate(); err != nil {
			log.Fatalf("config: %v", err)
		}
		width, height = cfg.Canvas.Width, cfg.Canvas.Height
		scaleX, scaleY = cfg.Split.ScaleX, cfg.Split.ScaleY
		minArea, minVis = cfg.Filter.MinArea, cfg.Filter.MinVisibility
		format, quality = cfg.Output.Format, cfg.Output.Quality
		count, display = cfg.Output.Count, cfg.Output.Display
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	pipeline := mosaicaug.NewWithStores(&store.ImageStore{Quality: quality}, store.NewLabelStore(), seed)

	log.Printf("generating %d mosaic(s) from %s (canvas %dx%d, split %.2f/%.2f, seed %d)",
		count, in, width, height, scaleX, scaleY, seed)

	results, err := pipeline.Run(mosaicaug.Options{
		InputDir:      in,
		OutputDir:     out,
		Width:         width,
		Height:        height,
		ScaleX:        scaleX,
		ScaleY:        scaleY,
		MinArea:       minArea,
		MinVisibility: minVis,
		Format:        format,
		Display:       display,
		Count:         count,
	})
	for _, r := range results {
		log.Printf("wrote %s (%d boxes)", r.ImagePath, r.BoxCount)
		if r.OverlayPath != "" {
			log.Printf("wrote %s", r.OverlayPath)
		}
	}
	if err != nil {
		log.Fatal(err)
	}
}
