package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// single letter shorthands as understood by matplotlib
var baseColors = map[string]color.NRGBA{
	"b": {0, 0, 255, 255},
	"g": {0, 128, 0, 255},
	"r": {255, 0, 0, 255},
	"c": {0, 191, 191, 255},
	"m": {191, 0, 191, 255},
	"y": {191, 191, 0, 255},
	"k": {0, 0, 0, 255},
	"w": {255, 255, 255, 255},
}

// ParseColor understands hex (#rgb, #rrggbb, #rrggbbaa), CSS color names,
// matplotlib single letter colors, gray levels ("0.5") and "none".
func ParseColor(s string) (color.NRGBA, error) {
	value := strings.ToLower(strings.TrimSpace(s))

	switch {
	case value == "none":
		return color.NRGBA{}, nil
	case strings.HasPrefix(value, "#"):
		return parseHexColor(value)
	}

	if c, ok := baseColors[value]; ok {
		return c, nil
	}

	if c, ok := colornames.Map[value]; ok {
		return color.NRGBA{c.R, c.G, c.B, c.A}, nil
	}

	if level, err := strconv.ParseFloat(value, 64); err == nil && level >= 0 && level <= 1 {
		v := uint8(level*255 + 0.5)
		return color.NRGBA{v, v, v, 255}, nil
	}

	return color.NRGBA{}, fmt.Errorf("'%s' is not a valid color", s)
}

func parseHexColor(value string) (color.NRGBA, error) {
	alpha := uint8(255)

	if len(value) == 9 {
		a, err := strconv.ParseUint(value[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("'%s' is not a valid color: %w", value, err)
		}
		alpha = uint8(a)
		value = value[:7]
	}

	c, err := colorful.Hex(value)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("'%s' is not a valid color: %w", value, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{r, g, b, alpha}, nil
}

func mustParseColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// withAlpha scales the color's own alpha by alpha.
func withAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	c.A = uint8(float64(c.A)*alpha + 0.5)
	return c
}
