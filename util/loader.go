// Package util - Input discovery for batch detection.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ImageFile is an image found on disk.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Frame is the number parsed from a "frame-<n>" file name, or -1.
	Frame int
}

// IsImage reports whether path has an extension the CLI can decode.
func IsImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff":
		return true
	default:
		return false
	}
}

// LoadDirectoryImageFiles lists the image files in a directory. Numbered frames come first in
// frame order, followed by the remaining images sorted by name.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: The image files.
// - error: Error if the directory cannot be read.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		files = append(files, ImageFile{
			Path:  filepath.Join(dir, entry.Name()),
			Frame: frameNumber(entry.Name()),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if (a.Frame < 0) != (b.Frame < 0) {
			return a.Frame >= 0
		}
		if a.Frame != b.Frame {
			return a.Frame < b.Frame
		}
		return a.Path < b.Path
	})

	return files, nil
}

// ResolveInputs expands each path into image files: directories are listed, files are kept.
func ResolveInputs(paths []string) ([]ImageFile, error) {
	var files []ImageFile
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrapf(err, "input %s", path)
		}
		if !info.IsDir() {
			files = append(files, ImageFile{Path: path, Frame: frameNumber(filepath.Base(path))})
			continue
		}
		listed, err := LoadDirectoryImageFiles(path)
		if err != nil {
			return nil, err
		}
		files = append(files, listed...)
	}
	return files, nil
}

func frameNumber(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if !strings.HasPrefix(base, "frame-") {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(base, "frame-"))
	if err != nil || n < 0 {
		return -1
	}
	return n
}
