// Package yolo - Decoding of raw YOLO detection tensors.
package yolo

import (
	"strings"

	"github.com/pkg/errors"
)

// Format identifies the memory layout of a YOLO output tensor.
type Format int

const (
	// FormatModern is the anchor-free head (YOLOv8 and later): a channel-major [4+labels, anchors]
	// buffer holding cx, cy, w, h followed by one score per class.
	FormatModern Format = iota
	// FormatLegacy is the anchor-based head (YOLOv5): an anchor-major [anchors, 5+labels] buffer
	// holding cx, cy, w, h, objectness followed by one score per class.
	FormatLegacy
)

// ErrUnknownFormat is returned when parsing an unrecognised format name.
var ErrUnknownFormat = errors.New("unknown output format")

// ClassOffset returns the index of the first class score within an anchor row.
func (f Format) ClassOffset() int {
	if f == FormatLegacy {
		return 5
	}
	return 4
}

// HasObjectness reports whether anchor rows carry an objectness score that scales class scores.
func (f Format) HasObjectness() bool {
	return f == FormatLegacy
}

// ChannelMajor reports whether the engine emits the tensor with channels as the outer dimension.
func (f Format) ChannelMajor() bool {
	return f == FormatModern
}

// NumLabels derives the class count from the number of channels per anchor.
func (f Format) NumLabels(channels int) int {
	return channels - f.ClassOffset()
}

func (f Format) String() string {
	switch f {
	case FormatModern:
		return "modern"
	case FormatLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name. "v8" and "v5" are accepted as aliases.
//
// Arguments:
//   - s: The format name.
//
// Returns:
//   - Format: The parsed format.
//   - error: ErrUnknownFormat when s is not recognised.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "modern", "v8", "":
		return FormatModern, nil
	case "legacy", "v5":
		return FormatLegacy, nil
	default:
		return FormatModern, errors.Wrapf(ErrUnknownFormat, "%q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
