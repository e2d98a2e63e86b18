package render

import (
	"image/color"
	"strconv"
)

var palette = map[string]string{
	"":          "#dddddd",
	"black":     "#dddddd",
	"blue":      "#3b82f6",
	"steelblue": "#4682b4",
	"red":       "#ef4444",
	"purple":    "#a855f7",
	"green":     "#22c55e",
	"orange":    "#f59e0b",
	"gray":      "#888899",
}

// hex resolves a named color for the terminal, where black would be
// invisible on a dark background.
func hex(name string) string {
	if h, ok := palette[name]; ok {
		return h
	}
	return name
}

var figurePalette = map[string]color.RGBA{
	"black":     {0, 0, 0, 255},
	"blue":      {0, 0, 255, 255},
	"steelblue": {70, 130, 180, 255},
	"red":       {255, 0, 0, 255},
	"purple":    {128, 0, 128, 255},
	"green":     {0, 128, 0, 255},
	"orange":    {255, 165, 0, 255},
	"gray":      {128, 128, 128, 255},
}

// rgba resolves a named or #rrggbb color for figures. Unknown names are
// black.
func rgba(name string) color.RGBA {
	if c, ok := figurePalette[name]; ok {
		return c
	}
	if len(name) == 7 && name[0] == '#' {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
		}
	}
	return figurePalette["black"]
}
