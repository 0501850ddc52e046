package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/paulmach/orb"

	"github.com/UnownHash/Noctowl/map_config"
)

// legend geometry in multiples of the entry font size
const (
	legendBorderPad     = 0.4
	legendLabelSpacing  = 0.5
	legendHandleLength  = 2.0
	legendHandleHeight  = 0.7
	legendHandleTextPad = 0.8
	legendBorderAxesPad = 0.5
	legendRounding      = 0.2
)

type LegendLocation int

const (
	UpperRight LegendLocation = iota
	LowerLeft
)

// LegendEntry is a patch swatch with a label.
type LegendEntry struct {
	Label string
	Style Style
}

type Legend struct {
	Title    string
	Entries  []LegendEntry
	Location LegendLocation
}

// patchStyle styles a legend swatch drawn with the default patch pen.
func patchStyle(fill, edge *color.NRGBA, dash []float64, hatch int) Style {
	return Style{Fill: fill, Edge: edge, LineWidth: 1, Dash: dash, Alpha: 1, Hatch: hatch}
}

// FeaturesLegend explains the fixed layers.
func FeaturesLegend() Legend {
	return Legend{
		Title: "Features",
		Entries: []LegendEntry{
			{Label: "Border", Style: patchStyle(nil, colorPtr(TextColor), dottedPattern, 0)},
			{Label: "Lakes/Rivers", Style: patchStyle(colorPtr(Cyan), colorPtr(Cyan), nil, 0)},
			{Label: "Disputed Areas", Style: patchStyle(nil, colorPtr(DisputedRed), nil, DisputedStyle.Hatch)},
		},
		Location: UpperRight,
	}
}

// CountriesLegend has one swatch per country, in order.
func CountriesLegend(countries []map_config.Country) (Legend, error) {
	legend := Legend{
		Title:    "Countries",
		Entries:  make([]LegendEntry, 0, len(countries)),
		Location: LowerLeft,
	}
	for _, country := range countries {
		c, err := ParseColor(country.Color)
		if err != nil {
			return Legend{}, fmt.Errorf("country '%s': %w", country.Name, err)
		}
		legend.Entries = append(legend.Entries, LegendEntry{
			Label: country.Name,
			Style: patchStyle(colorPtr(c), colorPtr(c), nil, 0),
		})
	}
	return legend, nil
}

// DrawLegend places the legend inside the axes at its corner and returns
// the frame box.
func (c *Canvas) DrawLegend(legend Legend) Box {
	fontSize := Pt(LegendFontSize)
	labelFace := c.fonts.face(LegendFontSize, false)
	titleFace := c.fonts.face(LegendTitleFontSize, false)
	labelMetrics := labelFace.Metrics()
	titleMetrics := titleFace.Metrics()

	labelHeight := float64(labelMetrics.Height) / 64
	labelAscent := float64(labelMetrics.Ascent) / 64
	titleHeight := float64(titleMetrics.Height) / 64
	titleAscent := float64(titleMetrics.Ascent) / 64

	handleW := legendHandleLength * fontSize
	handleH := legendHandleHeight * fontSize
	rowH := math.Max(labelHeight, handleH)
	pad := legendBorderPad * fontSize
	spacing := legendLabelSpacing * fontSize

	titleW := textBox(titleFace, legend.Title, 0, 0, 0).Width()
	entriesW := 0.0
	for _, entry := range legend.Entries {
		w := handleW + legendHandleTextPad*fontSize + textBox(labelFace, entry.Label, 0, 0, 0).Width()
		entriesW = math.Max(entriesW, w)
	}

	innerW := math.Max(titleW, entriesW)
	innerH := titleHeight
	if n := len(legend.Entries); n > 0 {
		innerH += spacing + float64(n)*rowH + float64(n-1)*spacing
	}
	frameW := innerW + 2*pad
	frameH := innerH + 2*pad

	axes := c.Axes.Box
	offset := legendBorderAxesPad * fontSize
	var frame Box
	switch legend.Location {
	case LowerLeft:
		frame = Box{MinX: axes.MinX + offset, MaxY: axes.MaxY - offset}
		frame.MaxX = frame.MinX + frameW
		frame.MinY = frame.MaxY - frameH
	default:
		frame = Box{MaxX: axes.MaxX - offset, MinY: axes.MinY + offset}
		frame.MinX = frame.MaxX - frameW
		frame.MaxY = frame.MinY + frameH
	}

	c.setClip(false)
	c.dc.DrawRoundedRectangle(frame.MinX, frame.MinY, frameW, frameH, legendRounding*fontSize)
	c.dc.SetColor(withAlpha(LegendFace, LegendFrameAlpha))
	c.dc.Fill()

	innerX := frame.MinX + pad
	y := frame.MinY + pad
	c.drawText(legend.Title, innerX+innerW/2, y+titleAscent, 0.5, LegendTitleFontSize, false, TextColor)
	y += titleHeight + spacing

	for _, entry := range legend.Entries {
		handleY := y + (rowH-handleH)/2
		swatch := orb.Polygon{orb.Ring{
			{innerX, handleY},
			{innerX + handleW, handleY},
			{innerX + handleW, handleY + handleH},
			{innerX, handleY + handleH},
			{innerX, handleY},
		}}
		c.setClip(false)
		c.drawShape(swatch, entry.Style)

		textY := y + (rowH-labelHeight)/2 + labelAscent
		c.drawText(entry.Label, innerX+handleW+legendHandleTextPad*fontSize, textY, 0, LegendFontSize, false, TextColor)
		y += rowH + spacing
	}

	c.addContent(frame)
	return frame
}
