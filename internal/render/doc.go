// Package render draws scenes. The terminal surface uses braille canvases
// and asciigraph; the figure surface writes PNG or SVG through gonum/plot.
//
// Renderers only read scenes. Nothing here feeds back into the analysis.
package render
