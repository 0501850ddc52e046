package render

import (
	"context"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Noctowl/datasets"
	"github.com/UnownHash/Noctowl/geo"
	"github.com/UnownHash/Noctowl/layers"
	"github.com/UnownHash/Noctowl/map_config"
)

type Config struct {
	// draw each matched country's name at its pole of inaccessibility
	CountryLabels bool `koanf:"country_labels"`
}

func (cfg *Config) Validate() error {
	return nil
}

// Result describes one rendered map.
type Result struct {
	Output             string
	FeaturesDrawn      int
	UnmatchedCountries []string
	Duration           time.Duration
}

type Renderer struct {
	logger *logrus.Logger
	loader *layers.Loader
	config Config
}

type inputs struct {
	countries *layers.Layer
	disputed  *layers.Layer
	lakes     *layers.Layer
	rivers    *layers.Layer
	raster    *layers.Raster
}

func (renderer *Renderer) loadInputs(paths datasets.Paths) (*inputs, error) {
	var (
		in  inputs
		err error
	)
	if in.countries, err = renderer.loader.LoadVector(paths.Countries); err != nil {
		return nil, fmt.Errorf("countries: %w", err)
	}
	if in.disputed, err = renderer.loader.LoadVector(paths.Disputed); err != nil {
		return nil, fmt.Errorf("disputed areas: %w", err)
	}
	if in.lakes, err = renderer.loader.LoadVector(paths.Lakes); err != nil {
		return nil, fmt.Errorf("lakes: %w", err)
	}
	if in.rivers, err = renderer.loader.LoadVector(paths.Rivers); err != nil {
		return nil, fmt.Errorf("rivers: %w", err)
	}
	if in.raster, err = renderer.loader.LoadRaster(paths.Raster); err != nil {
		return nil, fmt.Errorf("raster: %w", err)
	}
	return &in, nil
}

// Render draws one map and writes it to job.Output.
func (renderer *Renderer) Render(ctx context.Context, job map_config.MapConfig, paths datasets.Paths) (*Result, error) {
	start := time.Now()

	// colors are checked before any data is read
	countryStyles := make([]Style, len(job.Countries))
	for idx, country := range job.Countries {
		fill, err := ParseColor(country.Color)
		if err != nil {
			return nil, fmt.Errorf("country '%s': %w", country.Name, err)
		}
		countryStyles[idx] = CountryStyle(fill)
	}
	countriesLegend, err := CountriesLegend(job.Countries)
	if err != nil {
		return nil, err
	}

	in, err := renderer.loadInputs(paths)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	canvas, err := NewCanvas(job.FigSize, job.XLim, job.YLim)
	if err != nil {
		return nil, err
	}
	view := canvas.Axes.View()

	result := &Result{Output: job.Output}

	if !canvas.DrawRaster(in.raster, RasterAlpha) {
		renderer.logger.Debugf("[%s] raster does not overlap the view", job.Title)
	}

	var labels []countryLabel
	for idx, country := range job.Countries {
		matched := in.countries.Where("NAME", country.Name)
		if len(matched) == 0 {
			renderer.logger.Debugf("[%s] no feature named '%s' in %s", job.Title, country.Name, in.countries.Name)
			result.UnmatchedCountries = append(result.UnmatchedCountries, country.Name)
			continue
		}
		label := countryLabel{name: country.Name}
		for _, feature := range matched {
			if canvas.DrawGeometry(feature.Geometry, countryStyles[idx]) {
				result.FeaturesDrawn++
				label.add(feature.Geometry)
			}
		}
		labels = append(labels, label)
	}

	result.FeaturesDrawn += renderer.drawLayer(canvas, in.lakes, view, LakeStyle)
	canvas.DrawSpines()
	result.FeaturesDrawn += renderer.drawLayer(canvas, in.rivers, view, RiverStyle)
	result.FeaturesDrawn += renderer.drawLayer(canvas, in.disputed, view, DisputedStyle)

	if renderer.config.CountryLabels {
		renderer.drawCountryLabels(canvas, labels)
	}

	canvas.DrawTitle(job.Title)
	canvas.DrawTicks(job.XTicks, job.YTicks)
	canvas.DrawLegend(FeaturesLegend())
	canvas.DrawLegend(countriesLegend)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := canvas.Save(job.Output); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (renderer *Renderer) drawLayer(canvas *Canvas, layer *layers.Layer, view orb.Bound, style Style) int {
	drawn := 0
	for _, feature := range layer.InView(view) {
		if canvas.DrawGeometry(feature.Geometry, style) {
			drawn++
		}
	}
	return drawn
}

type countryLabel struct {
	name     string
	polygons orb.MultiPolygon
}

func (label *countryLabel) add(geometry orb.Geometry) {
	switch g := geometry.(type) {
	case orb.Polygon:
		label.polygons = append(label.polygons, g)
	case orb.MultiPolygon:
		label.polygons = append(label.polygons, g...)
	}
}

// drawCountryLabels writes each name once, inside the country's largest
// polygon.
func (renderer *Renderer) drawCountryLabels(canvas *Canvas, labels []countryLabel) {
	view := canvas.Axes.View()
	for _, label := range labels {
		if len(label.polygons) == 0 {
			continue
		}
		point, ok := geo.GetPolygonLabelPoint(label.polygons)
		if !ok || !view.Contains(point) {
			renderer.logger.Debugf("no label point in view for '%s'", label.name)
			continue
		}
		canvas.DrawLabel(label.name, point)
	}
}

func NewRenderer(logger *logrus.Logger, loader *layers.Loader, config Config) *Renderer {
	return &Renderer{
		logger: logger,
		loader: loader,
		config: config,
	}
}
