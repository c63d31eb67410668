package yolo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// channelMajor lays anchor rows out as a [channels, anchors] buffer.
func channelMajor(rows [][]float32) (data []float32, channels, anchors int) {
	anchors = len(rows)
	channels = len(rows[0])
	data = make([]float32, channels*anchors)
	for a, row := range rows {
		for c, v := range row {
			data[c*anchors+a] = v
		}
	}
	return data, channels, anchors
}

// anchorMajor lays anchor rows out as an [anchors, channels] buffer.
func anchorMajor(rows [][]float32) (data []float32, anchors, channels int) {
	for _, row := range rows {
		data = append(data, row...)
	}
	return data, len(rows), len(rows[0])
}

func TestNewView_Modern(t *testing.T) {
	rows := [][]float32{
		{10, 20, 30, 40, 0.1, 0.9},
		{11, 21, 31, 41, 0.8, 0.2},
		{12, 22, 32, 42, 0.3, 0.3},
	}
	data, channels, anchors := channelMajor(rows)
	original := append([]float32(nil), data...)

	view, err := NewView(data, channels, anchors, FormatModern)
	require.NoError(t, err)

	assert.Equal(t, 3, view.Anchors())
	assert.Equal(t, 6, view.Channels())
	assert.Equal(t, 2, view.NumLabels())
	for i, row := range rows {
		assert.Equal(t, row, view.Row(i))
	}
	assert.Equal(t, original, data, "caller buffer must not be modified")
}

func TestNewView_SingleAnchor(t *testing.T) {
	rows := [][]float32{{160, 120, 100, 100, 0.7}}
	data, channels, anchors := channelMajor(rows)

	view, err := NewView(data, channels, anchors, FormatModern)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Anchors())
	assert.Equal(t, rows[0], view.Row(0))
}

func TestNewView_Legacy(t *testing.T) {
	rows := [][]float32{
		{10, 20, 30, 40, 0.5, 0.1, 0.9},
		{11, 21, 31, 41, 0.6, 0.8, 0.2},
	}
	data, anchors, channels := anchorMajor(rows)

	view, err := NewView(data, anchors, channels, FormatLegacy)
	require.NoError(t, err)

	assert.Equal(t, 2, view.Anchors())
	assert.Equal(t, 7, view.Channels())
	assert.Equal(t, 2, view.NumLabels())
	assert.Equal(t, FormatLegacy, view.Format())
	for i, row := range rows {
		assert.Equal(t, row, view.Row(i))
	}
}

func TestNewView_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name   string
		data   []float32
		rows   int
		cols   int
		format Format
	}{
		{name: "length mismatch", data: make([]float32, 10), rows: 5, cols: 3, format: FormatModern},
		{name: "zero rows", data: nil, rows: 0, cols: 3, format: FormatModern},
		{name: "negative cols", data: nil, rows: 3, cols: -1, format: FormatModern},
		{name: "no class slot modern", data: make([]float32, 8), rows: 4, cols: 2, format: FormatModern},
		{name: "no class slot legacy", data: make([]float32, 10), rows: 2, cols: 5, format: FormatLegacy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := NewView(tt.data, tt.rows, tt.cols, tt.format)
			assert.Nil(t, view)
			assert.ErrorIs(t, err, ErrShapeMismatch)
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in       string
		expected Format
		err      bool
	}{
		{in: "modern", expected: FormatModern},
		{in: "V8", expected: FormatModern},
		{in: "", expected: FormatModern},
		{in: "legacy", expected: FormatLegacy},
		{in: " v5 ", expected: FormatLegacy},
		{in: "v3", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := ParseFormat(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestFormatLayout(t *testing.T) {
	assert.Equal(t, 4, FormatModern.ClassOffset())
	assert.Equal(t, 5, FormatLegacy.ClassOffset())
	assert.False(t, FormatModern.HasObjectness())
	assert.True(t, FormatLegacy.HasObjectness())
	assert.Equal(t, 80, FormatModern.NumLabels(84))
	assert.Equal(t, 80, FormatLegacy.NumLabels(85))
}
