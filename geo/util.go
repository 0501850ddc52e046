package geo

import (
	venise_geo "github.com/dernise/venise/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// GeometrySupported reports whether the geometry is something a map layer
// can draw: polygons, lines, or collections of them.
func GeometrySupported(geometry orb.Geometry) bool {
	switch geometry.GeoJSONType() {
	case "Polygon":
	case "MultiPolygon":
	case "LineString":
	case "MultiLineString":
	case "GeometryCollection":
	default:
		return false
	}
	return true
}

func convertToVenisePolygon(orbPolygon orb.Polygon) venise_geo.Polygon {
	polygon := venise_geo.Polygon{
		Rings: make([][]venise_geo.Point, len(orbPolygon)),
	}
	for ringIdx, ring := range orbPolygon {
		ringPoints := make([]venise_geo.Point, len(ring))
		for ptsIdx, coord := range ring {
			ringPoints[ptsIdx] = venise_geo.Point(coord)
		}
		polygon.Rings[ringIdx] = ringPoints
	}
	return polygon
}

// GetLargestPolygon compares planar areas, which is what matters for a
// label drawn in lon/lat space.
func GetLargestPolygon(mp orb.MultiPolygon) orb.Polygon {
	switch len(mp) {
	case 0:
		return nil
	case 1:
		return mp[0]
	}

	bestPoly := mp[0]
	maxArea := planar.Area(bestPoly)

	for _, poly := range mp[1:] {
		area := planar.Area(poly)
		if area > maxArea {
			maxArea = area
			bestPoly = poly
		}
	}

	return bestPoly
}

// GetPolygonLabelPoint returns the centroid when it falls inside the
// shape, otherwise the pole of inaccessibility of the (largest) polygon.
func GetPolygonLabelPoint(geometry orb.Geometry) (orb.Point, bool) {
	switch typedGeometry := geometry.(type) {
	case orb.Polygon:
		if len(typedGeometry) == 0 {
			return orb.Point{}, false
		}
		center, _ := planar.CentroidArea(typedGeometry)
		if !planar.PolygonContains(typedGeometry, center) {
			point := venise_geo.Polylabel(convertToVenisePolygon(typedGeometry), 0.000001, false)
			return orb.Point(point), true
		}
		return center, true
	case orb.MultiPolygon:
		if len(typedGeometry) == 0 {
			return orb.Point{}, false
		}
		center, _ := planar.CentroidArea(typedGeometry)
		if !planar.MultiPolygonContains(typedGeometry, center) {
			bestPoly := GetLargestPolygon(typedGeometry)
			point := venise_geo.Polylabel(convertToVenisePolygon(bestPoly), 0.000001, false)
			return orb.Point(point), true
		}
		return center, true
	}
	return orb.Point{}, false
}
