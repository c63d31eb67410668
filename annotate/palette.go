package annotate

import "image/color"

// Palette is an ordered list of detection colors.
type Palette []color.RGBA

// DefaultPalette is the 19-color detection palette.
var DefaultPalette = Palette{
	{R: 54, G: 67, B: 244, A: 255},
	{R: 99, G: 30, B: 233, A: 255},
	{R: 176, G: 39, B: 156, A: 255},
	{R: 183, G: 58, B: 103, A: 255},
	{R: 181, G: 81, B: 63, A: 255},
	{R: 243, G: 150, B: 33, A: 255},
	{R: 244, G: 169, B: 3, A: 255},
	{R: 212, G: 188, B: 0, A: 255},
	{R: 136, G: 150, B: 0, A: 255},
	{R: 80, G: 175, B: 76, A: 255},
	{R: 74, G: 195, B: 139, A: 255},
	{R: 57, G: 220, B: 205, A: 255},
	{R: 59, G: 235, B: 255, A: 255},
	{R: 7, G: 193, B: 255, A: 255},
	{R: 0, G: 152, B: 255, A: 255},
	{R: 34, G: 87, B: 255, A: 255},
	{R: 72, G: 85, B: 121, A: 255},
	{R: 158, G: 158, B: 158, A: 255},
	{R: 139, G: 125, B: 96, A: 255},
}

// Color returns the color for label, cycling through the palette. Negative labels wrap too.
func (p Palette) Color(label int) color.RGBA {
	if len(p) == 0 {
		p = DefaultPalette
	}
	n := len(p)
	return p[((label%n)+n)%n]
}
