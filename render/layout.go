package render

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/paulmach/orb"

	"github.com/UnownHash/Noctowl/map_config"
)

// default subplot area as fractions of the figure, measured from the top left
const (
	subplotLeft   = 0.125
	subplotRight  = 0.9
	subplotTop    = 0.12
	subplotBottom = 0.89
)

// Pt converts points to pixels at the output resolution.
func Pt(points float64) float64 {
	return points * DPI / 72
}

// Box is a rectangle in canvas pixels, y pointing down.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b Box) Width() float64 {
	return b.MaxX - b.MinX
}

func (b Box) Height() float64 {
	return b.MaxY - b.MinY
}

func (b Box) Empty() bool {
	return b.MaxX <= b.MinX || b.MaxY <= b.MinY
}

func (b Box) Union(other Box) Box {
	if b.Empty() {
		return other
	}
	if other.Empty() {
		return b
	}
	return Box{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

func (b Box) Pad(d float64) Box {
	return Box{MinX: b.MinX - d, MinY: b.MinY - d, MaxX: b.MaxX + d, MaxY: b.MaxY + d}
}

// Rectangle returns the smallest pixel rectangle covering the box.
func (b Box) Rectangle() image.Rectangle {
	return image.Rect(
		int(math.Floor(b.MinX)), int(math.Floor(b.MinY)),
		int(math.Ceil(b.MaxX)), int(math.Ceil(b.MaxY)),
	)
}

// Axes maps the job's data limits onto a box of the canvas.
type Axes struct {
	Box  Box
	XLim map_config.Pair
	YLim map_config.Pair
}

var ErrZeroSpan = errors.New("axis limits must not be equal")

// geographicAspect is the y/x display scale for lon/lat data, so that a
// degree of longitude keeps its ground length at the middle latitude.
func geographicAspect(ylim map_config.Pair) float64 {
	if ylim.Min() < -90 || ylim.Max() > 90 {
		return 1
	}
	mid := (ylim[0] + ylim[1]) / 2
	mid = math.Max(-89, math.Min(89, mid))
	return 1 / math.Cos(mid*math.Pi/180)
}

// NewAxes lays out the axes inside a canvas of width x height pixels. The
// box is shrunk in one direction to keep the geographic aspect and stays
// centered in the subplot area.
func NewAxes(width, height int, xlim, ylim map_config.Pair) (*Axes, error) {
	for _, v := range []float64{xlim[0], xlim[1], ylim[0], ylim[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("axis limits must be finite: xlim %v ylim %v", xlim, ylim)
		}
	}
	if xlim.Span() == 0 {
		return nil, fmt.Errorf("xlim %v: %w", xlim, ErrZeroSpan)
	}
	if ylim.Span() == 0 {
		return nil, fmt.Errorf("ylim %v: %w", ylim, ErrZeroSpan)
	}

	area := Box{
		MinX: subplotLeft * float64(width),
		MinY: subplotTop * float64(height),
		MaxX: subplotRight * float64(width),
		MaxY: subplotBottom * float64(height),
	}

	ratio := geographicAspect(ylim) * math.Abs(ylim.Span()) / math.Abs(xlim.Span())

	box := area
	if area.Height()/area.Width() > ratio {
		h := area.Width() * ratio
		box.MinY = area.MinY + (area.Height()-h)/2
		box.MaxY = box.MinY + h
	} else {
		w := area.Height() / ratio
		box.MinX = area.MinX + (area.Width()-w)/2
		box.MaxX = box.MinX + w
	}

	return &Axes{Box: box, XLim: xlim, YLim: ylim}, nil
}

// ToPixel maps a data coordinate to canvas pixels.
func (axes *Axes) ToPixel(p orb.Point) orb.Point {
	return orb.Point{
		axes.Box.MinX + (p[0]-axes.XLim[0])/(axes.XLim[1]-axes.XLim[0])*axes.Box.Width(),
		axes.Box.MinY + (axes.YLim[1]-p[1])/(axes.YLim[1]-axes.YLim[0])*axes.Box.Height(),
	}
}

// View is the visible data area.
func (axes *Axes) View() orb.Bound {
	return orb.Bound{
		Min: orb.Point{axes.XLim.Min(), axes.YLim.Min()},
		Max: orb.Point{axes.XLim.Max(), axes.YLim.Max()},
	}
}

// clipBound is the view grown by a margin so that clipped polygon edges fall
// outside the axes and wide strokes along the border stay continuous.
func (axes *Axes) clipBound() orb.Bound {
	view := axes.View()
	dx := (view.Max[0] - view.Min[0]) * 0.05
	dy := (view.Max[1] - view.Min[1]) * 0.05
	return orb.Bound{
		Min: orb.Point{view.Min[0] - dx, view.Min[1] - dy},
		Max: orb.Point{view.Max[0] + dx, view.Max[1] + dy},
	}
}

func (axes *Axes) inXLim(v float64) bool {
	return v >= axes.XLim.Min() && v <= axes.XLim.Max()
}

func (axes *Axes) inYLim(v float64) bool {
	return v >= axes.YLim.Min() && v <= axes.YLim.Max()
}
