package layers

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Noctowl/geo"
)

type UnsupportedFormatError struct {
	Filename string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("'%s': unsupported file format", e.Filename)
}

type vectorReader func(filename string) ([]*geojson.Feature, error)

func vectorReaderFor(filename string) vectorReader {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".osm.json"):
		return readOSMJSON
	case strings.HasSuffix(lower, ".osm"):
		return readOSMXML
	}
	switch filepath.Ext(lower) {
	case ".geojson", ".json":
		return geo.LoadFeaturesFromFile
	case ".shp":
		return readShapefile
	case ".zip":
		return readZippedShapefile
	}
	return nil
}

// Loader reads vector and raster datasets, keeping each one after the first
// load so maps sharing inputs only pay for them once.
type Loader struct {
	logger *logrus.Logger

	mutex   sync.Mutex
	vectors map[string]*Layer
	rasters map[string]*Raster
}

func (loader *Loader) LoadVector(filename string) (*Layer, error) {
	loader.mutex.Lock()
	defer loader.mutex.Unlock()

	if layer, ok := loader.vectors[filename]; ok {
		return layer, nil
	}

	reader := vectorReaderFor(filename)
	if reader == nil {
		return nil, &UnsupportedFormatError{Filename: filename}
	}

	loader.logger.Infof("Loading vector data from '%s'", filename)

	features, err := reader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load vector data: %w", err)
	}

	drawable := features[:0]
	skipped := 0
	for _, feature := range features {
		if feature == nil || feature.Geometry == nil || !geo.GeometrySupported(feature.Geometry) {
			skipped++
			continue
		}
		if feature.Properties == nil {
			feature.Properties = geojson.Properties{}
		}
		drawable = append(drawable, feature)
	}
	if skipped > 0 {
		loader.logger.Debugf("Skipped %d feature(s) in '%s' without a drawable geometry", skipped, filename)
	}

	layer := NewLayer(filepath.Base(filename), drawable)
	loader.logger.Infof("Loaded %d feature(s) from '%s'", layer.Len(), filename)

	loader.vectors[filename] = layer
	return layer, nil
}

func (loader *Loader) LoadRaster(filename string) (*Raster, error) {
	loader.mutex.Lock()
	defer loader.mutex.Unlock()

	if raster, ok := loader.rasters[filename]; ok {
		return raster, nil
	}

	loader.logger.Infof("Loading raster data from '%s'", filename)

	raster, err := ReadRaster(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load raster data: %w", err)
	}

	bounds := raster.Image.Bounds()
	if raster.Georeferenced {
		loader.logger.Infof("Loaded %dx%d raster from '%s'", bounds.Dx(), bounds.Dy(), filename)
	} else {
		loader.logger.Warnf("Loaded %dx%d raster from '%s' without a world file: assuming global extent", bounds.Dx(), bounds.Dy(), filename)
	}

	loader.rasters[filename] = raster
	return raster, nil
}

func NewLoader(logger *logrus.Logger) *Loader {
	return &Loader{
		logger:  logger,
		vectors: make(map[string]*Layer),
		rasters: make(map[string]*Raster),
	}
}
