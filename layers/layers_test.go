package layers

import (
	"archive/zip"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeGeoJSON(t *testing.T, dir, name string, features ...*geojson.Feature) string {
	t.Helper()
	fc := geojson.NewFeatureCollection()
	for _, feature := range features {
		fc.Append(feature)
	}
	data, err := fc.MarshalJSON()
	require.NoError(t, err)
	filename := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(filename, data, 0o644))
	return filename
}

func box(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minX, minY}, {minX, maxY}, {maxX, maxY}, {maxX, minY}, {minX, minY},
	}}
}

func TestLoader_GeoJSON(t *testing.T) {
	dir := t.TempDir()

	x := geojson.NewFeature(box(1, 1, 4, 4))
	x.Properties["NAME"] = "X"
	far := geojson.NewFeature(box(50, 50, 60, 60))
	far.Properties["NAME"] = "Far"
	point := geojson.NewFeature(orb.Point{2, 2})
	filename := writeGeoJSON(t, dir, "countries.geojson", x, far, point)

	loader := NewLoader(testLogger())
	layer, err := loader.LoadVector(filename)
	require.NoError(t, err)

	// points are not drawable and get dropped
	assert.Equal(t, 2, layer.Len())
	assert.Equal(t, "countries.geojson", layer.Name)
	assert.Equal(t, orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{60, 60}}, layer.Bound())

	inView := layer.InView(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}})
	require.Len(t, inView, 1)
	assert.Equal(t, "X", inView[0].Properties["NAME"])

	assert.Len(t, layer.Where("NAME", "Far"), 1)
	assert.Empty(t, layer.Where("NAME", "Nowhere"))

	again, err := loader.LoadVector(filename)
	require.NoError(t, err)
	assert.Same(t, layer, again)
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(testLogger())

	_, err := loader.LoadVector(filepath.Join(dir, "countries.gpkg"))
	var formatErr *UnsupportedFormatError
	require.ErrorAs(t, err, &formatErr)

	_, err = loader.LoadVector(filepath.Join(dir, "missing.geojson"))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))
	_, err = loader.LoadRaster(garbage)
	require.ErrorAs(t, err, &formatErr)

	_, err = loader.LoadRaster(filepath.Join(dir, "missing.tif"))
	assert.Error(t, err)
}

const testOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="0" lon="0"/>
  <node id="2" lat="0" lon="1"/>
  <node id="3" lat="1" lon="1"/>
  <node id="4" lat="1" lon="0"/>
  <way id="10">
    <nd ref="1"/><nd ref="2"/><nd ref="3"/><nd ref="4"/><nd ref="1"/>
    <tag k="natural" v="water"/>
    <tag k="name" v="Lake X"/>
  </way>
  <way id="11">
    <nd ref="1"/><nd ref="3"/>
    <tag k="waterway" v="river"/>
    <tag k="name" v="River Y"/>
  </way>
</osm>`

func TestLoader_OSM(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "water.osm")
	require.NoError(t, os.WriteFile(filename, []byte(testOSM), 0o644))

	layer, err := NewLoader(testLogger()).LoadVector(filename)
	require.NoError(t, err)

	lakes := layer.Where("NAME", "Lake X")
	require.Len(t, lakes, 1)
	assert.Equal(t, "Polygon", lakes[0].Geometry.GeoJSONType())
	assert.Equal(t, "water", lakes[0].Properties["natural"])
	assert.NotContains(t, lakes[0].Properties, "tags")

	rivers := layer.Where("NAME", "River Y")
	require.Len(t, rivers, 1)
	assert.Equal(t, "LineString", rivers[0].Geometry.GeoJSONType())
}

func TestFlattenTags(t *testing.T) {
	feature := geojson.NewFeature(box(0, 0, 1, 1))
	feature.Properties["type"] = "way"
	feature.Properties["tags"] = map[string]string{"name": "Kashmir", "type": "boundary"}
	feature.Properties["meta"] = map[string]any{}

	flattenTags(feature)

	assert.Equal(t, "Kashmir", feature.Properties["name"])
	assert.Equal(t, "Kashmir", feature.Properties["NAME"])
	assert.Equal(t, "way", feature.Properties["type"])
	assert.NotContains(t, feature.Properties, "tags")
	assert.NotContains(t, feature.Properties, "meta")
}

// writeShapefile writes a one-row polygon shapefile with a hole and returns
// the .shp, .shx and .dbf paths.
func writeShapefile(t *testing.T, dir string) []string {
	t.Helper()
	filename := filepath.Join(dir, "countries.shp")

	writer, err := shp.Create(filename, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, writer.SetFields([]shp.Field{
		shp.StringField("NAME", 32),
		shp.NumberField("POP", 10),
	}))

	// outer ring clockwise, hole counter-clockwise
	polygon := &shp.Polygon{
		Box:       shp.Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
		NumParts:  2,
		NumPoints: 10,
		Parts:     []int32{0, 5},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0},
			{X: 2, Y: 2}, {X: 8, Y: 2}, {X: 8, Y: 8}, {X: 2, Y: 8}, {X: 2, Y: 2},
		},
	}
	row := writer.Write(polygon)
	require.NoError(t, writer.WriteAttribute(int(row), 0, "X"))
	require.NoError(t, writer.WriteAttribute(int(row), 1, 42))
	writer.Close()

	// go-shp writes the attribute table as "<base>dbf" without the dot
	dbf := filepath.Join(dir, "countries.dbf")
	require.NoError(t, os.Rename(filepath.Join(dir, "countriesdbf"), dbf))

	return []string{filename, filepath.Join(dir, "countries.shx"), dbf}
}

func assertShapefileLayer(t *testing.T, layer *Layer) {
	t.Helper()
	require.Equal(t, 1, layer.Len())

	feature := layer.Features[0]
	assert.Equal(t, "X", feature.Properties["NAME"])
	assert.Equal(t, 42.0, feature.Properties["POP"])

	poly, ok := feature.Geometry.(orb.Polygon)
	require.True(t, ok, "got %T", feature.Geometry)
	assert.Len(t, poly, 2)
}

func TestLoader_Shapefile(t *testing.T) {
	files := writeShapefile(t, t.TempDir())

	layer, err := NewLoader(testLogger()).LoadVector(files[0])
	require.NoError(t, err)
	assertShapefileLayer(t, layer)
}

func TestLoader_ZippedShapefile(t *testing.T) {
	dir := t.TempDir()
	files := writeShapefile(t, dir)

	archive := filepath.Join(dir, "countries.zip")
	out, err := os.Create(archive)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	for _, file := range files {
		data, err := os.ReadFile(file)
		require.NoError(t, err)
		w, err := zw.Create(filepath.Base(file))
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())

	layer, err := NewLoader(testLogger()).LoadVector(archive)
	require.NoError(t, err)
	assertShapefileLayer(t, layer)
}

func TestRingsToPolygons(t *testing.T) {
	outerA := []orb.Point{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}
	holeA := []orb.Point{{2, 2}, {8, 2}, {8, 8}, {2, 8}, {2, 2}}
	outerB := []orb.Point{{20, 0}, {20, 5}, {25, 5}, {25, 0}}

	geometry := ringsToPolygons([][]orb.Point{outerA, outerB, holeA})
	mp, ok := geometry.(orb.MultiPolygon)
	require.True(t, ok, "got %T", geometry)
	require.Len(t, mp, 2)
	assert.Len(t, mp[0], 2)
	assert.Len(t, mp[1], 1)
	assert.True(t, mp[1][0].Closed())

	assert.Nil(t, ringsToPolygons(nil))
}

func writePNG(t *testing.T, filename string, img image.Image) {
	t.Helper()
	f, err := os.Create(filename)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestReadRaster_WorldFile(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "basemap.png")

	img := image.NewRGBA(image.Rect(0, 0, 10, 5))
	for x := 0; x < 10; x++ {
		for y := 0; y < 5; y++ {
			v := uint8(100 + x*10)
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	writePNG(t, filename, img)

	// 1 unit pixels, upper-left pixel center at (0.5, 9.5)
	worldFile := strings.Join([]string{"1.0", "0.0", "0.0", "-1.0", "0.5", "9.5"}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "basemap.pgw"), []byte(worldFile), 0o644))

	raster, err := ReadRaster(filename)
	require.NoError(t, err)
	assert.True(t, raster.Georeferenced)
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 5}, Max: orb.Point{10, 10}}, raster.Extent)

	// stretched to the full range
	assert.Equal(t, uint8(0), raster.Image.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), raster.Image.GrayAt(9, 4).Y)

	px, py := raster.PixelSize()
	assert.InDelta(t, 1.0, px, 1e-9)
	assert.InDelta(t, 1.0, py, 1e-9)
}

func TestReadRaster_GlobalDefault(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "flat.png")
	writePNG(t, filename, image.NewGray(image.Rect(0, 0, 4, 2)))

	raster, err := ReadRaster(filename)
	require.NoError(t, err)
	assert.False(t, raster.Georeferenced)
	assert.Equal(t, GlobalExtent, raster.Extent)
	// a constant image has nothing to stretch
	assert.Equal(t, uint8(0), raster.Image.GrayAt(1, 1).Y)
}

func TestParseWorldFile_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too few", "1\n0\n0\n-1\n0"},
		{"not a number", "1\n0\n0\n-1\nabc\n0"},
		{"rotated", "1\n0.1\n0\n-1\n0\n0"},
		{"south up", "1\n0\n0\n1\n0\n0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseWorldFile(strings.NewReader(tt.input), 10, 10)
			assert.Error(t, err)
		})
	}
}

func TestWorldFileCandidates(t *testing.T) {
	candidates := worldFileCandidates("/data/gray.tif")
	assert.Equal(t, "/data/gray.tfw", candidates[0])
	assert.Contains(t, candidates, "/data/gray.tifw")
	assert.Contains(t, candidates, "/data/gray.wld")
}
