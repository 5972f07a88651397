package store

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yolo-tools/mosaic-augment/pkg/types"
)

// LabelStore reads and writes YOLO annotation files: one object per line,
// `class x_center y_center width height`, space separated, values fractional
// relative to the image size.
type LabelStore struct{}

// NewLabelStore returns a LabelStore.
func NewLabelStore() *LabelStore {
	return &LabelStore{}
}

// Load parses the label file at path into parallel box and label slices.
// A missing file is not an error: unlabeled background images participate in
// mosaics with zero boxes. A present but malformed file is an error.
func (s *LabelStore) Load(path string) ([]types.Box, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to open label file: %w", err)
	}
	defer f.Close()

	var boxes []types.Box
	var labels []int

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, nil, fmt.Errorf("%s:%d: expected 5 fields, got %d", path, lineNo, len(fields))
		}

		class, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%s:%d: bad class id %q: %w", path, lineNo, fields[0], err)
		}

		var vals [4]float64
		for i, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s:%d: bad coordinate %q: %w", path, lineNo, field, err)
			}
			vals[i] = v
		}

		boxes = append(boxes, types.Box{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]})
		labels = append(labels, class)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read label file: %w", err)
	}
	return boxes, labels, nil
}

// Save writes parallel box and label slices to path atomically.
func (s *LabelStore) Save(boxes []types.Box, labels []int, path string) error {
	if len(boxes) != len(labels) {
		return fmt.Errorf("boxes and labels diverge: %d boxes, %d labels", len(boxes), len(labels))
	}

	return writeAtomic(path, func(f *os.File) error {
		w := bufio.NewWriter(f)
		for i, b := range boxes {
			if _, err := fmt.Fprintf(w, "%d %.6f %.6f %.6f %.6f\n", labels[i], b.X, b.Y, b.W, b.H); err != nil {
				return err
			}
		}
		return w.Flush()
	})
}
