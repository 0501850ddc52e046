package render

import (
	"image/color"
)

const (
	DPI = 300.0

	// pad around the drawn content when cropping the saved image
	CropPadInches = 0.1

	TitleFontSize       = 18.0
	TitlePad            = 20.0
	TickFontSize        = 10.0
	TickLength          = 3.5
	TickWidth           = 0.8
	TickPad             = 3.5
	SpineWidth          = 0.8
	LegendFontSize      = 10.0
	LegendTitleFontSize = 12.0
	LegendFrameAlpha    = 0.9
	LabelFontSize       = 8.0

	RasterAlpha = 0.6

	// hatch lines per inch for each '/' in the pattern
	hatchDensity = 6
)

var (
	Background  = mustParseColor("#1a1a1a")
	LegendFace  = mustParseColor("#333333")
	TextColor   = mustParseColor("white")
	TickColor   = mustParseColor("black")
	SpineColor  = mustParseColor("black")
	DisputedRed = mustParseColor("#ff3366")
	RiverCore   = mustParseColor("#8cffff")
	Cyan        = mustParseColor("cyan")
)

// Effect is drawn underneath a feature's outline, like a matplotlib path
// effect placed before Normal().
type Effect interface {
	effect()
}

// StrokeEffect strokes the outline again with a wider pen.
type StrokeEffect struct {
	Width float64 // points
	Color color.NRGBA
	Alpha float64
}

// ShadowEffect strokes the outline offset right and down.
type ShadowEffect struct {
	OffsetX float64 // points, positive is right
	OffsetY float64 // points, positive is down
	Color   color.NRGBA
	Alpha   float64
}

func (StrokeEffect) effect() {}
func (ShadowEffect) effect() {}

// Style describes how a polygon or line feature is painted. Fill is only
// used for polygons.
type Style struct {
	Fill      *color.NRGBA
	Edge      *color.NRGBA
	LineWidth float64 // points
	// Dash pattern in multiples of LineWidth. Empty means solid.
	Dash  []float64
	Alpha float64
	// Hatch is the number of '/' in the hatch pattern; 0 disables hatching.
	Hatch   int
	Effects []Effect
}

func colorPtr(c color.NRGBA) *color.NRGBA {
	return &c
}

var dottedPattern = []float64{1, 1.65}

// CountryStyle: fill color of the country, white dotted border.
func CountryStyle(fill color.NRGBA) Style {
	return Style{
		Fill:      colorPtr(fill),
		Edge:      colorPtr(mustParseColor("white")),
		LineWidth: 0.5,
		Dash:      dottedPattern,
		Alpha:     0.3,
	}
}

var LakeStyle = Style{
	Fill:      colorPtr(Cyan),
	Edge:      colorPtr(Cyan),
	LineWidth: 1.0,
	Alpha:     0.7,
	Effects: []Effect{
		ShadowEffect{OffsetX: 1, OffsetY: 1, Color: mustParseColor("black"), Alpha: 0.2},
	},
}

var RiverStyle = Style{
	Edge:      colorPtr(RiverCore),
	LineWidth: 0.8,
	Alpha:     1,
	Effects: []Effect{
		StrokeEffect{Width: 4, Color: Cyan, Alpha: 0.4},
	},
}

var DisputedStyle = Style{
	Edge:      colorPtr(DisputedRed),
	LineWidth: 1.5,
	Alpha:     1,
	Hatch:     3,
	Effects: []Effect{
		StrokeEffect{Width: 3, Color: mustParseColor("black"), Alpha: 0.5},
	},
}
