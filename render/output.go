package render

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

// UnsupportedOutputError is returned for output names without a known
// image extension.
type UnsupportedOutputError struct {
	Filename string
}

func (e *UnsupportedOutputError) Error() string {
	return fmt.Sprintf("'%s': output must end in .png, .jpg, .jpeg, .tif or .tiff", e.Filename)
}

type encoder func(w io.Writer, img image.Image) error

func encoderFor(filename string) (encoder, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return encodePNG, nil
	case ".jpg", ".jpeg":
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
		}, nil
	case ".tif", ".tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	}
	return nil, &UnsupportedOutputError{Filename: filename}
}

// CropBox is the drawn content plus CropPadInches, limited to the canvas.
func (c *Canvas) CropBox() image.Rectangle {
	box := c.content.Pad(CropPadInches * DPI)
	return box.Rectangle().Intersect(c.Image.Bounds())
}

// Save writes the cropped canvas. The format follows the file extension and
// missing parent directories are created.
func (c *Canvas) Save(filename string) error {
	encode, err := encoderFor(filename)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for '%s': %w", filename, err)
		}
	}

	var buf bytes.Buffer
	if err := encode(&buf, c.Image.SubImage(c.CropBox())); err != nil {
		return fmt.Errorf("failed to encode '%s': %w", filename, err)
	}

	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", filename, err)
	}
	return nil
}

// pHYs goes right after the signature and the fixed size IHDR chunk
const ihdrEnd = 8 + 4 + 4 + 13 + 4

// encodePNG is png.Encode plus a pHYs chunk carrying the resolution.
func encodePNG(w io.Writer, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	data := buf.Bytes()
	if len(data) < ihdrEnd {
		return fmt.Errorf("png stream too short")
	}

	if _, err := w.Write(data[:ihdrEnd]); err != nil {
		return err
	}
	if _, err := w.Write(physChunk(DPI)); err != nil {
		return err
	}
	_, err := w.Write(data[ihdrEnd:])
	return err
}

func physChunk(dpi float64) []byte {
	pixelsPerMeter := uint32(math.Round(dpi / 0.0254))

	chunk := make([]byte, 4+4+9+4)
	binary.BigEndian.PutUint32(chunk[0:4], 9)
	copy(chunk[4:8], "pHYs")
	binary.BigEndian.PutUint32(chunk[8:12], pixelsPerMeter)
	binary.BigEndian.PutUint32(chunk[12:16], pixelsPerMeter)
	chunk[16] = 1 // unit is the meter
	binary.BigEndian.PutUint32(chunk[17:21], crc32.ChecksumIEEE(chunk[4:17]))
	return chunk
}

// PNGResolution reads the pHYs chunk of a PNG file and returns its
// resolution in dots per inch.
func PNGResolution(r io.Reader) (float64, bool, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, false, err
	}
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		return 0, false, fmt.Errorf("not a png stream")
	}
	for offset := 8; offset+12 <= len(data); {
		length := int(binary.BigEndian.Uint32(data[offset : offset+4]))
		kind := string(data[offset+4 : offset+8])
		body := offset + 8
		if body+length+4 > len(data) {
			break
		}
		switch kind {
		case "pHYs":
			if length != 9 || data[body+8] != 1 {
				return 0, false, nil
			}
			perMeter := binary.BigEndian.Uint32(data[body : body+4])
			return float64(perMeter) * 0.0254, true, nil
		case "IDAT", "IEND":
			return 0, false, nil
		}
		offset = body + length + 4
	}
	return 0, false, nil
}
