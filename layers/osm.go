package layers

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmgeojson"
)

func readOSMXML(filename string) ([]*geojson.Feature, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var osmData osm.OSM
	if err := xml.Unmarshal(data, &osmData); err != nil {
		return nil, fmt.Errorf("'%s' cannot be loaded: bad osm xml: %w", filename, err)
	}

	return osmToFeatures(&osmData)
}

// readOSMJSON reads the JSON flavour returned by overpass.
func readOSMJSON(filename string) ([]*geojson.Feature, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var osmData osm.OSM
	if err := json.Unmarshal(data, &osmData); err != nil {
		return nil, fmt.Errorf("'%s' cannot be loaded: bad osm json: %w", filename, err)
	}

	return osmToFeatures(&osmData)
}

func osmToFeatures(osmData *osm.OSM) ([]*geojson.Feature, error) {
	fc, err := osmgeojson.Convert(
		osmData,
		osmgeojson.NoMeta(true),
		osmgeojson.NoRelationMembership(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to convert osm data: %w", err)
	}

	for _, feature := range fc.Features {
		flattenTags(feature)
	}

	return fc.Features, nil
}

// flattenTags lifts osm tags into the feature properties without
// overwriting existing keys, and mirrors "name" into "NAME" so osm extracts
// match the same attribute as Natural Earth data.
func flattenTags(feature *geojson.Feature) {
	if feature.Properties == nil {
		feature.Properties = geojson.Properties{}
	}
	props := feature.Properties

	var tagsIface map[string]any
	var haveTagsIface bool

	tagsStr, haveTags := props["tags"].(map[string]string)
	if !haveTags {
		tagsIface, haveTagsIface = props["tags"].(map[string]any)
	}

	// meta and relations are an object and an array, nothing to match on.
	delete(props, "meta")
	delete(props, "relations")
	delete(props, "tags")

	if haveTags {
		for k, v := range tagsStr {
			if _, ok := props[k]; ok {
				continue
			}
			props[k] = v
		}
	}

	if haveTagsIface {
		for k, v := range tagsIface {
			if _, ok := props[k]; ok {
				continue
			}
			props[k] = v
		}
	}

	if _, ok := props["NAME"]; !ok {
		if name, _ := props["name"].(string); name != "" {
			props["NAME"] = name
		}
	}
}
