package layers

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/UnownHash/Noctowl/geo"
)

// Layer is a loaded vector dataset.
type Layer struct {
	Name     string
	Features []*geojson.Feature

	index *geo.BoundRTree[int]
	bound orb.Bound
}

func NewLayer(name string, features []*geojson.Feature) *Layer {
	layer := &Layer{
		Name:     name,
		Features: features,
		index:    geo.NewBoundRTree[int](),
	}
	for idx, feature := range features {
		layer.index.InsertGeometry(feature.Geometry, idx)
	}
	layer.bound, _ = geo.FeaturesBound(features)
	return layer
}

func (layer *Layer) Len() int {
	return len(layer.Features)
}

// Bound covers every feature in the layer.
func (layer *Layer) Bound() orb.Bound {
	return layer.bound
}

// InView returns the features whose bounds intersect view, in file order
// so that draw order is stable.
func (layer *Layer) InView(view orb.Bound) []*geojson.Feature {
	return filterInView(layer.Features, layer.index.Search(view))
}

// Where returns the features whose property key equals value.
func (layer *Layer) Where(key, value string) []*geojson.Feature {
	return geo.FilterByProperty(layer.Features, key, value)
}

func filterInView(features []*geojson.Feature, indexes []int) []*geojson.Feature {
	if len(indexes) == 0 {
		return nil
	}
	keep := make([]bool, len(features))
	for _, idx := range indexes {
		keep[idx] = true
	}
	inView := make([]*geojson.Feature, 0, len(indexes))
	for idx, feature := range features {
		if keep[idx] {
			inView = append(inView, feature)
		}
	}
	return inView
}
