package geo

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LoadFeaturesFromFile reads a GeoJSON FeatureCollection, a single Feature,
// or a bare geometry.
func LoadFeaturesFromFile(filename string) ([]*geojson.Feature, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err == nil && (fc.Type == "FeatureCollection" || len(fc.Features) > 0) {
		return fc.Features, nil
	}

	if feature, ferr := geojson.UnmarshalFeature(data); ferr == nil && feature.Geometry != nil {
		return []*geojson.Feature{feature}, nil
	}

	if geometry, gerr := geojson.UnmarshalGeometry(data); gerr == nil && geometry.Geometry() != nil {
		return []*geojson.Feature{geojson.NewFeature(geometry.Geometry())}, nil
	}

	if err == nil {
		err = fmt.Errorf("not a FeatureCollection, Feature or geometry")
	}
	return nil, fmt.Errorf("'%s' cannot be loaded: bad geojson: %w", filename, err)
}

// PropertyString returns a feature property when it holds a string. Numbers
// and other values report false.
func PropertyString(feature *geojson.Feature, key string) (string, bool) {
	if feature == nil || feature.Properties == nil {
		return "", false
	}
	v, ok := feature.Properties[key].(string)
	return v, ok
}

// FilterByProperty keeps the features whose property key is a string equal
// to value. Numbers never match. The result is empty, not nil, when nothing
// matches.
func FilterByProperty(features []*geojson.Feature, key, value string) []*geojson.Feature {
	matches := make([]*geojson.Feature, 0, 1)
	for _, feature := range features {
		if v, ok := PropertyString(feature, key); ok && v == value {
			matches = append(matches, feature)
		}
	}
	return matches
}

// FeaturesBound is the union of the bounds of all non-empty geometries.
func FeaturesBound(features []*geojson.Feature) (orb.Bound, bool) {
	var bound orb.Bound
	found := false
	for _, feature := range features {
		if feature.Geometry == nil {
			continue
		}
		b := feature.Geometry.Bound()
		if b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] {
			continue
		}
		if !found {
			bound = b
			found = true
			continue
		}
		bound = bound.Union(b)
	}
	return bound, found
}
