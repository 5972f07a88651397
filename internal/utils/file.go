package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has an image extension
func IsImageFile(filename string) bool {
	ext := GetFileExtension(filename)
	imageExts := []string{"jpg", "jpeg", "png", "webp"}

	for _, imgExt := range imageExts {
		if ext == imgExt {
			return true
		}
	}
	return false
}

// BaseName returns the filename without directory or extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LabelPathFor returns the sibling annotation path of an image file: same
// directory, same base name, .txt extension.
func LabelPathFor(imagePath string) string {
	dir := filepath.Dir(imagePath)
	return filepath.Join(dir, BaseName(imagePath)+".txt")
}

// MosaicName builds the output basename for a mosaic from its four source
// basenames: mo_<base0>_<base1>_<base2>_<base3>.<ext>
func MosaicName(bases [4]string, ext string) string {
	return fmt.Sprintf("mo_%s_%s_%s_%s.%s", bases[0], bases[1], bases[2], bases[3], ext)
}

// ListImageFiles lists image files directly inside a directory (no recursion,
// dataset directories are flat). Results are returned in directory order.
func ListImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if IsImageFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
