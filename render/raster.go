package render

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/UnownHash/Noctowl/layers"
	"github.com/UnownHash/Noctowl/map_config"
)

// DrawRaster resamples the basemap bilinearly into the axes and blends it
// over the background with the given alpha.
func (c *Canvas) DrawRaster(raster *layers.Raster, alpha float64) bool {
	if raster == nil || raster.Image == nil {
		return false
	}
	bounds := raster.Image.Bounds()
	if bounds.Empty() {
		return false
	}

	axes := c.Axes
	dst, ok := c.Image.SubImage(axes.Box.Rectangle().Intersect(c.Image.Bounds())).(*image.RGBA)
	if !ok || dst.Bounds().Empty() {
		return false
	}

	extent := raster.Extent
	if extent.Max[0] < axes.XLim.Min() || extent.Min[0] > axes.XLim.Max() ||
		extent.Max[1] < axes.YLim.Min() || extent.Min[1] > axes.YLim.Max() {
		return false
	}

	window := sourceWindow(raster, axes.XLim, axes.YLim)
	if window.Empty() {
		return false
	}

	pixelW, pixelH := raster.PixelSize()
	scaleX := axes.Box.Width() / axes.XLim.Span()
	scaleY := axes.Box.Height() / axes.YLim.Span()

	// source pixel (sx, sy) -> canvas pixel
	s2d := f64.Aff3{
		pixelW * scaleX, 0, axes.Box.MinX + (extent.Min[0]-axes.XLim[0])*scaleX - float64(bounds.Min.X)*pixelW*scaleX,
		0, pixelH * scaleY, axes.Box.MinY + (axes.YLim[1]-extent.Max[1])*scaleY - float64(bounds.Min.Y)*pixelH*scaleY,
	}
	opacity := image.NewUniform(color.Alpha{A: withAlpha(color.NRGBA{A: 255}, alpha).A})
	xdraw.BiLinear.Transform(dst, s2d, raster.Image, window, xdraw.Over, &xdraw.Options{SrcMask: opacity})
	return true
}

// sourceWindow is the part of the raster covering the view, grown by one
// pixel so bilinear sampling at the axes edges has its neighbours.
func sourceWindow(raster *layers.Raster, xlim, ylim map_config.Pair) image.Rectangle {
	bounds := raster.Image.Bounds()
	extent := raster.Extent
	pixelW, pixelH := raster.PixelSize()
	if pixelW <= 0 || pixelH <= 0 {
		return image.Rectangle{}
	}

	minX := math.Max(xlim.Min(), extent.Min[0])
	maxX := math.Min(xlim.Max(), extent.Max[0])
	minY := math.Max(ylim.Min(), extent.Min[1])
	maxY := math.Min(ylim.Max(), extent.Max[1])
	if minX > maxX || minY > maxY {
		return image.Rectangle{}
	}

	window := image.Rect(
		bounds.Min.X+int(math.Floor((minX-extent.Min[0])/pixelW))-1,
		bounds.Min.Y+int(math.Floor((extent.Max[1]-maxY)/pixelH))-1,
		bounds.Min.X+int(math.Ceil((maxX-extent.Min[0])/pixelW))+1,
		bounds.Min.Y+int(math.Ceil((extent.Max[1]-minY)/pixelH))+1,
	)
	return window.Intersect(bounds)
}
