package layers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// shapeReader is the part of shp.Reader and shp.ZipReader used here.
type shapeReader interface {
	Next() bool
	Shape() (int, shp.Shape)
	Fields() []shp.Field
	Err() error
}

func readShapefile(filename string) ([]*geojson.Feature, error) {
	reader, err := shp.Open(filename)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return readShapes(reader, func(row, field int) string {
		return reader.ReadAttribute(row, field)
	})
}

// readZippedShapefile reads the first shapefile in a zip archive, which is
// how Natural Earth distributes its layers.
func readZippedShapefile(filename string) ([]*geojson.Feature, error) {
	reader, err := shp.OpenZip(filename)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return readShapes(reader, func(_, field int) string {
		return reader.Attribute(field)
	})
}

func readShapes(reader shapeReader, attribute func(row, field int) string) ([]*geojson.Feature, error) {
	fields := reader.Fields()
	features := make([]*geojson.Feature, 0, 256)

	for reader.Next() {
		row, shape := reader.Shape()

		geometry, err := shapeToGeometry(shape)
		if err != nil {
			return nil, fmt.Errorf("shape #%d: %w", row, err)
		}
		if geometry == nil {
			continue
		}

		feature := geojson.NewFeature(geometry)
		for fieldIdx, field := range fields {
			feature.Properties[field.String()] = attributeValue(field, attribute(row, fieldIdx))
		}
		features = append(features, feature)
	}

	if err := reader.Err(); err != nil {
		return nil, err
	}

	return features, nil
}

func attributeValue(field shp.Field, raw string) any {
	value := strings.TrimRight(raw, "\x00 ")
	value = strings.TrimLeft(value, " ")
	switch field.Fieldtype {
	case 'N', 'F':
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		if value == "" {
			return nil
		}
	}
	return value
}

func shapeToGeometry(shape shp.Shape) (orb.Geometry, error) {
	switch s := shape.(type) {
	case *shp.Null:
		return nil, nil
	case *shp.Polygon:
		return ringsToPolygons(splitParts(s.Parts, s.Points)), nil
	case *shp.PolygonZ:
		return ringsToPolygons(splitParts(s.Parts, s.Points)), nil
	case *shp.PolygonM:
		return ringsToPolygons(splitParts(s.Parts, s.Points)), nil
	case *shp.PolyLine:
		return lines(splitParts(s.Parts, s.Points)), nil
	case *shp.PolyLineZ:
		return lines(splitParts(s.Parts, s.Points)), nil
	case *shp.PolyLineM:
		return lines(splitParts(s.Parts, s.Points)), nil
	case *shp.Point:
		return orb.Point{s.X, s.Y}, nil
	case *shp.MultiPoint:
		mp := make(orb.MultiPoint, len(s.Points))
		for idx, pt := range s.Points {
			mp[idx] = orb.Point{pt.X, pt.Y}
		}
		return mp, nil
	default:
		return nil, fmt.Errorf("unsupported shape type %T", shape)
	}
}

func splitParts(parts []int32, points []shp.Point) [][]orb.Point {
	split := make([][]orb.Point, 0, len(parts))
	for idx, start := range parts {
		end := int32(len(points))
		if idx+1 < len(parts) {
			end = parts[idx+1]
		}
		if start < 0 || start >= end || end > int32(len(points)) {
			continue
		}
		part := make([]orb.Point, 0, end-start)
		for _, pt := range points[start:end] {
			part = append(part, orb.Point{pt.X, pt.Y})
		}
		split = append(split, part)
	}
	return split
}

func lines(parts [][]orb.Point) orb.Geometry {
	if len(parts) == 1 {
		return orb.LineString(parts[0])
	}
	mls := make(orb.MultiLineString, len(parts))
	for idx, part := range parts {
		mls[idx] = orb.LineString(part)
	}
	return mls
}

// ringsToPolygons groups shapefile rings into polygons: clockwise rings are
// outer boundaries, counter-clockwise rings are holes of the outer ring
// containing them.
func ringsToPolygons(parts [][]orb.Point) orb.Geometry {
	var polygons orb.MultiPolygon
	var holes []orb.Ring

	for _, part := range parts {
		ring := orb.Ring(part)
		if len(ring) < 3 {
			continue
		}
		if !ring.Closed() {
			ring = append(ring, ring[0])
		}
		if ring.Orientation() == orb.CCW {
			holes = append(holes, ring)
			continue
		}
		polygons = append(polygons, orb.Polygon{ring})
	}

	for _, hole := range holes {
		owner := -1
		for idx, polygon := range polygons {
			if planar.RingContains(polygon[0], hole[0]) {
				owner = idx
				break
			}
		}
		if owner < 0 {
			// a lone counter-clockwise ring is an outer ring drawn the other way
			polygons = append(polygons, orb.Polygon{hole})
			continue
		}
		polygons[owner] = append(polygons[owner], hole)
	}

	switch len(polygons) {
	case 0:
		return nil
	case 1:
		return polygons[0]
	}
	return polygons
}
