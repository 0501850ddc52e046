package layers

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// GlobalExtent is assumed for rasters shipped without a world file.
var GlobalExtent = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// Raster is a grayscale basemap. Pixel values are stretched so that the
// darkest input pixel is 0 and the brightest 255.
type Raster struct {
	Image         *image.Gray
	Extent        orb.Bound
	Georeferenced bool
}

// PixelSize is the size of one pixel in map units.
func (r *Raster) PixelSize() (float64, float64) {
	bounds := r.Image.Bounds()
	return (r.Extent.Max[0] - r.Extent.Min[0]) / float64(bounds.Dx()),
		(r.Extent.Max[1] - r.Extent.Min[1]) / float64(bounds.Dy())
}

func ReadRaster(filename string) (*Raster, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, &UnsupportedFormatError{Filename: filename}
		}
		return nil, fmt.Errorf("'%s' cannot be decoded: %w", filename, err)
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("'%s' is an empty %s image", filename, format)
	}

	raster := &Raster{
		Image:  normalizedGray(img),
		Extent: GlobalExtent,
	}

	extent, found, err := readWorldFile(filename, bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	if found {
		raster.Extent = extent
		raster.Georeferenced = true
	}

	return raster, nil
}

func luminance(c color.Color) uint16 {
	return color.Gray16Model.Convert(c).(color.Gray16).Y
}

// normalizedGray reduces img to luminance and stretches it to the full
// 0-255 range.
func normalizedGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	values := make([]uint16, w*h)
	lo, hi := uint16(0xffff), uint16(0)

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w]
			for x, v := range row {
				values[y*w+x] = uint16(v) * 0x101
			}
		}
	case *image.Gray16:
		for y := 0; y < h; y++ {
			off := y * src.Stride
			for x := 0; x < w; x++ {
				values[y*w+x] = uint16(src.Pix[off+2*x])<<8 | uint16(src.Pix[off+2*x+1])
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				values[y*w+x] = luminance(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
	}

	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	// NewGray has Stride == w, so values and Pix share indexes.
	gray := image.NewGray(image.Rect(0, 0, w, h))
	span := float64(hi) - float64(lo)
	if span <= 0 {
		return gray
	}
	for idx, v := range values {
		gray.Pix[idx] = uint8((float64(v)-float64(lo))/span*255 + 0.5)
	}

	return gray
}

// worldFileCandidates lists sidecar names in lookup order: gray.tif ->
// gray.tfw, gray.tifw, gray.wld.
func worldFileCandidates(filename string) []string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	ext = strings.TrimPrefix(ext, ".")

	candidates := make([]string, 0, 6)
	if len(ext) >= 2 {
		short := string(ext[0]) + string(ext[len(ext)-1]) + "w"
		candidates = append(candidates, base+"."+short, base+"."+strings.ToUpper(short))
	}
	if ext != "" {
		candidates = append(candidates, base+"."+ext+"w", base+"."+strings.ToUpper(ext)+"W")
	}
	candidates = append(candidates, base+".wld", base+".WLD")
	return candidates
}

func readWorldFile(filename string, width, height int) (orb.Bound, bool, error) {
	for _, candidate := range worldFileCandidates(filename) {
		f, err := os.Open(candidate)
		if err != nil {
			continue
		}
		bound, err := parseWorldFile(f, width, height)
		f.Close()
		if err != nil {
			return orb.Bound{}, false, fmt.Errorf("world file '%s': %w", candidate, err)
		}
		return bound, true, nil
	}
	return orb.Bound{}, false, nil
}

// parseWorldFile reads the six affine parameters (A, D, B, E, C, F) where
// C/F locate the center of the upper-left pixel.
func parseWorldFile(r io.Reader, width, height int) (orb.Bound, error) {
	var params []float64

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bad value '%s': %w", line, err)
		}
		params = append(params, v)
	}
	if err := scanner.Err(); err != nil {
		return orb.Bound{}, err
	}
	if len(params) != 6 {
		return orb.Bound{}, fmt.Errorf("expected 6 values, got %d", len(params))
	}

	a, d, b, e, c, fy := params[0], params[1], params[2], params[3], params[4], params[5]
	if d != 0 || b != 0 {
		return orb.Bound{}, errors.New("rotated rasters are not supported")
	}
	if a <= 0 || e >= 0 {
		return orb.Bound{}, errors.New("only north-up rasters are supported")
	}

	minX := c - a/2
	maxY := fy - e/2
	return orb.Bound{
		Min: orb.Point{minX, maxY + e*float64(height)},
		Max: orb.Point{minX + a*float64(width), maxY},
	}, nil
}
