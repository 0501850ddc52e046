package render

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type fontSet struct {
	regular *opentype.Font
	bold    *opentype.Font

	mutex sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	bold bool
	size float64
}

var (
	sharedFonts     *fontSet
	sharedFontsErr  error
	sharedFontsOnce sync.Once
)

func loadFonts() (*fontSet, error) {
	sharedFontsOnce.Do(func() {
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			sharedFontsErr = fmt.Errorf("failed to parse regular font: %w", err)
			return
		}
		bold, err := opentype.Parse(gobold.TTF)
		if err != nil {
			sharedFontsErr = fmt.Errorf("failed to parse bold font: %w", err)
			return
		}
		sharedFonts = &fontSet{
			regular: regular,
			bold:    bold,
			faces:   make(map[faceKey]font.Face),
		}
	})
	return sharedFonts, sharedFontsErr
}

// face returns a face of size points at the output resolution.
func (fonts *fontSet) face(size float64, bold bool) font.Face {
	fonts.mutex.Lock()
	defer fonts.mutex.Unlock()

	key := faceKey{bold: bold, size: size}
	if face, ok := fonts.faces[key]; ok {
		return face
	}

	f := fonts.regular
	if bold {
		f = fonts.bold
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     DPI,
		Hinting: font.HintingNone,
	})
	if err != nil {
		// only fails on invalid options
		panic(err)
	}
	fonts.faces[key] = face
	return face
}

// textBox is the box of a string drawn with its baseline at (x, y) and
// horizontally anchored by ax (0 left, 0.5 center, 1 right).
func textBox(face font.Face, s string, x, y, ax float64) Box {
	metrics := face.Metrics()
	width := float64(font.MeasureString(face, s)) / 64
	x -= ax * width
	return Box{
		MinX: x,
		MinY: y - float64(metrics.Ascent)/64,
		MaxX: x + width,
		MaxY: y + float64(metrics.Descent)/64,
	}
}

// drawText draws s with its baseline at y, anchored horizontally by ax,
// and returns the box it covers.
func (c *Canvas) drawText(s string, x, y, ax, size float64, bold bool, col color.Color) Box {
	face := c.fonts.face(size, bold)
	box := textBox(face, s, x, y, ax)
	c.dc.SetFontFace(face)
	c.dc.SetColor(col)
	c.dc.DrawString(s, box.MinX, y)
	return box
}

// DrawTitle centers the title above the axes with its baseline TitlePad
// points above the top edge.
func (c *Canvas) DrawTitle(title string) {
	if strings.TrimSpace(title) == "" {
		return
	}
	box := c.Axes.Box
	c.setClip(false)
	drawn := c.drawText(title, (box.MinX+box.MaxX)/2, box.MinY-Pt(TitlePad), 0.5, TitleFontSize, true, TextColor)
	c.addContent(drawn)
}

// DrawLabel centers a small white label on a data coordinate.
func (c *Canvas) DrawLabel(text string, at orb.Point) {
	p := c.Axes.ToPixel(at)
	c.setClip(true)
	c.drawText(text, p[0], p[1], 0.5, LabelFontSize, false, TextColor)
}

// DrawTicks draws tick marks and labels on the bottom and left edges.
// Ticks outside the limits are not drawn.
func (c *Canvas) DrawTicks(xticks, yticks []float64) {
	axes := c.Axes
	box := axes.Box
	face := c.fonts.face(TickFontSize, false)
	metrics := face.Metrics()
	ascent := float64(metrics.Ascent) / 64
	capHeight := float64(metrics.CapHeight) / 64
	length := Pt(TickLength)
	pad := Pt(TickPad)

	c.setClip(false)
	c.setPen(TickColor, 1, Pt(TickWidth), nil, false)

	var visibleX []float64
	for _, v := range xticks {
		if axes.inXLim(v) {
			visibleX = append(visibleX, v)
		}
	}
	for i, label := range FormatTicks(visibleX) {
		x := axes.ToPixel(orb.Point{visibleX[i], axes.YLim[0]})[0]
		c.dc.DrawLine(x, box.MaxY, x, box.MaxY+length)
		c.dc.Stroke()
		drawn := c.drawText(label, x, box.MaxY+length+pad+ascent, 0.5, TickFontSize, false, TickColor)
		c.addContent(drawn)
	}

	var visibleY []float64
	for _, v := range yticks {
		if axes.inYLim(v) {
			visibleY = append(visibleY, v)
		}
	}
	for i, label := range FormatTicks(visibleY) {
		y := axes.ToPixel(orb.Point{axes.XLim[0], visibleY[i]})[1]
		c.dc.DrawLine(box.MinX-length, y, box.MinX, y)
		c.dc.Stroke()
		drawn := c.drawText(label, box.MinX-length-pad, y+capHeight/2, 1, TickFontSize, false, TickColor)
		c.addContent(drawn)
	}
}

// FormatTicks prints all values with the same number of decimals, the
// fewest that shows each value exactly, up to six. Negative values use a
// real minus sign.
func FormatTicks(values []float64) []string {
	decimals := 0
	for _, v := range values {
		for decimals < 6 {
			scaled := v * math.Pow10(decimals)
			if math.Abs(scaled-math.Round(scaled)) < 1e-9*math.Max(1, math.Abs(scaled)) {
				break
			}
			decimals++
		}
	}

	labels := make([]string, len(values))
	for i, v := range values {
		label := strconv.FormatFloat(v, 'f', decimals, 64)
		if strings.Trim(label, "-0.") == "" {
			label = strings.TrimPrefix(label, "-")
		}
		labels[i] = strings.Replace(label, "-", "−", 1)
	}
	return labels
}
