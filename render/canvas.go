package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/project"

	"github.com/UnownHash/Noctowl/map_config"
)

// Canvas is one figure: the pixel buffer, the gg context drawing into it
// and the axes laid out on it.
type Canvas struct {
	Image *image.RGBA
	Axes  *Axes

	dc    *gg.Context
	fonts *fontSet
	// everything drawn that counts for the tight crop
	content Box
	clipped bool
	// axes clip masks built so far; each one is a full canvas alpha buffer
	axesMasks int
}

// NewCanvas creates a figure of figSize inches filled with the background.
func NewCanvas(figSize map_config.Pair, xlim, ylim map_config.Pair) (*Canvas, error) {
	width := int(math.Round(figSize[0] * DPI))
	height := int(math.Round(figSize[1] * DPI))
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("figure size %v is too small", figSize)
	}

	axes, err := NewAxes(width, height, xlim, ylim)
	if err != nil {
		return nil, err
	}

	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	return &Canvas{
		Image:   img,
		Axes:    axes,
		dc:      gg.NewContextForRGBA(img),
		fonts:   fonts,
		content: axes.Box,
	}, nil
}

// Content is the area covered by the axes and every label drawn so far.
func (c *Canvas) Content() Box {
	return c.content
}

func (c *Canvas) addContent(b Box) {
	c.content = c.content.Union(b)
}

// setClip limits drawing to the axes box or lifts any clip. The mask is only
// rebuilt when the state changes, so a run of features inside the axes
// shares one. gg's Pop does not restore the mask, so clips are reset
// explicitly.
func (c *Canvas) setClip(toAxes bool) {
	if toAxes == c.clipped {
		return
	}
	c.dc.ResetClip()
	c.clipped = toAxes
	if !toAxes {
		return
	}
	box := c.Axes.Box
	c.dc.DrawRectangle(box.MinX, box.MinY, box.Width(), box.Height())
	c.dc.Clip()
	c.axesMasks++
}

// toPixels clips a data geometry to the padded view and maps it to canvas
// pixels. The input is left untouched. Nil means nothing is visible.
func (c *Canvas) toPixels(geometry orb.Geometry) orb.Geometry {
	if geometry == nil {
		return nil
	}
	clipped := clip.Geometry(c.Axes.clipBound(), orb.Clone(geometry))
	if clipped == nil || isEmpty(clipped) {
		return nil
	}
	return project.Geometry(clipped, c.Axes.ToPixel)
}

func isEmpty(geometry orb.Geometry) bool {
	switch g := geometry.(type) {
	case orb.Polygon:
		return len(g) == 0 || len(g[0]) == 0
	case orb.MultiPolygon:
		for _, p := range g {
			if !isEmpty(p) {
				return false
			}
		}
		return true
	case orb.LineString:
		return len(g) < 2
	case orb.MultiLineString:
		for _, ls := range g {
			if len(ls) >= 2 {
				return false
			}
		}
		return true
	case orb.Collection:
		for _, child := range g {
			if !isEmpty(child) {
				return false
			}
		}
		return true
	}
	return true
}

// tracePath appends the geometry to the current path, shifted by dx, dy
// pixels. Rings become closed sub paths, lines open ones.
func (c *Canvas) tracePath(geometry orb.Geometry, polygonsOnly bool, dx, dy float64) {
	switch g := geometry.(type) {
	case orb.Polygon:
		for _, ring := range g {
			c.traceLine(orb.LineString(ring), true, dx, dy)
		}
	case orb.MultiPolygon:
		for _, polygon := range g {
			c.tracePath(polygon, polygonsOnly, dx, dy)
		}
	case orb.LineString:
		if !polygonsOnly {
			c.traceLine(g, false, dx, dy)
		}
	case orb.MultiLineString:
		if !polygonsOnly {
			for _, ls := range g {
				c.traceLine(ls, false, dx, dy)
			}
		}
	case orb.Collection:
		for _, child := range g {
			c.tracePath(child, polygonsOnly, dx, dy)
		}
	}
}

func (c *Canvas) traceLine(points []orb.Point, closed bool, dx, dy float64) {
	if len(points) < 2 {
		return
	}
	c.dc.NewSubPath()
	c.dc.MoveTo(points[0][0]+dx, points[0][1]+dy)
	for _, p := range points[1:] {
		c.dc.LineTo(p[0]+dx, p[1]+dy)
	}
	if closed {
		c.dc.ClosePath()
	}
}

func hasPolygons(geometry orb.Geometry) bool {
	switch g := geometry.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return true
	case orb.Collection:
		for _, child := range g {
			if hasPolygons(child) {
				return true
			}
		}
	}
	return false
}

func (c *Canvas) setPen(col color.NRGBA, alpha, width float64, dash []float64, lines bool) {
	c.dc.SetColor(withAlpha(col, alpha))
	c.dc.SetLineWidth(width)
	c.dc.SetLineJoin(gg.LineJoinRound)
	if len(dash) > 0 {
		scaled := make([]float64, len(dash))
		for i, d := range dash {
			scaled[i] = d * width
		}
		c.dc.SetDash(scaled...)
		c.dc.SetLineCap(gg.LineCapButt)
		return
	}
	c.dc.SetDash()
	if lines {
		c.dc.SetLineCap(gg.LineCapSquare)
	} else {
		c.dc.SetLineCap(gg.LineCapButt)
	}
}

// drawShape paints a geometry already in pixel space: effects first, then
// fill, hatch and outline, the way a patch with path effects is composed.
func (c *Canvas) drawShape(geometry orb.Geometry, style Style) {
	if geometry == nil {
		return
	}
	lines := !hasPolygons(geometry)
	width := Pt(style.LineWidth)

	for _, effect := range style.Effects {
		switch e := effect.(type) {
		case StrokeEffect:
			c.tracePath(geometry, false, 0, 0)
			c.setPen(e.Color, e.Alpha, Pt(e.Width), style.Dash, lines)
			c.dc.Stroke()
		case ShadowEffect:
			c.tracePath(geometry, false, Pt(e.OffsetX), Pt(e.OffsetY))
			c.setPen(e.Color, e.Alpha, width, style.Dash, lines)
			c.dc.Stroke()
		}
	}

	if style.Fill != nil && !lines {
		c.tracePath(geometry, true, 0, 0)
		c.dc.SetFillRule(gg.FillRuleEvenOdd)
		c.dc.SetColor(withAlpha(*style.Fill, style.Alpha))
		c.dc.Fill()
	}

	if style.Hatch > 0 && style.Edge != nil && !lines {
		c.drawHatch(geometry, style)
	}

	if style.Edge != nil && width > 0 {
		c.tracePath(geometry, false, 0, 0)
		c.setPen(*style.Edge, style.Alpha, width, style.Dash, lines)
		c.dc.Stroke()
	}
}

// drawHatch fills the polygons with '/' lines in the edge color. Every line
// satisfies x+y = k*spacing so hatches of neighbouring shapes line up.
func (c *Canvas) drawHatch(geometry orb.Geometry, style Style) {
	prev := c.clipped
	bound := geometry.Bound()
	spacing := DPI / float64(style.Hatch*hatchDensity)
	minX, minY := bound.Min[0], bound.Min[1]
	maxX, maxY := bound.Max[0], bound.Max[1]

	c.tracePath(geometry, true, 0, 0)
	c.dc.SetFillRule(gg.FillRuleEvenOdd)
	c.dc.Clip()

	for k := math.Floor((minX+minY)/spacing) * spacing; k <= maxX+maxY; k += spacing {
		c.dc.MoveTo(k-maxY, maxY)
		c.dc.LineTo(k-minY, minY)
	}
	c.setPen(*style.Edge, style.Alpha, Pt(1), nil, true)
	c.dc.Stroke()

	// the polygon mask was intersected into the current one
	c.dc.ResetClip()
	c.clipped = false
	c.setClip(prev)
}

// DrawGeometry clips a data geometry to the view and paints it inside the
// axes. It reports whether anything was visible. The axes clip stays set
// afterwards; drawing outside the axes lifts it first.
func (c *Canvas) DrawGeometry(geometry orb.Geometry, style Style) bool {
	pixels := c.toPixels(geometry)
	if pixels == nil {
		return false
	}
	c.setClip(true)
	c.drawShape(pixels, style)
	return true
}

// DrawSpines outlines the axes box.
func (c *Canvas) DrawSpines() {
	box := c.Axes.Box
	c.setClip(false)
	c.dc.DrawRectangle(box.MinX, box.MinY, box.Width(), box.Height())
	c.setPen(SpineColor, 1, Pt(SpineWidth), nil, false)
	c.dc.SetLineJoin(gg.LineJoinBevel)
	c.dc.Stroke()
}
