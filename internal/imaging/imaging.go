// Package imaging downscales item images for display and renders
// placeholder artwork for seeded listings.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"

	"golang.org/x/image/draw"
)

// ThumbnailDimension is the edge length of catalog cell images.
const ThumbnailDimension = 280

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 80

// ErrUnsupported is returned for bytes that are not JPEG or PNG.
var ErrUnsupported = errors.New("unsupported image format")

var decodable = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Result is an encoded image.
type Result struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Thumbnail downscales data so neither edge exceeds maxDim and re-encodes
// it as JPEG. Images already within bounds are returned untouched.
func Thumbnail(data []byte, maxDim int) (*Result, error) {
	detected := http.DetectContentType(data)
	if !decodable[detected] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, detected)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading image header: %w", err)
	}
	if cfg.Width <= maxDim && cfg.Height <= maxDim {
		return &Result{Data: data, MIME: detected, Width: cfg.Width, Height: cfg.Height}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	img = downscale(img, maxDim)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	b := img.Bounds()
	return &Result{Data: buf.Bytes(), MIME: "image/jpeg", Width: b.Dx(), Height: b.Dy()}, nil
}

// Placeholder renders a solid w×h JPEG.
func Placeholder(w, h int, c color.Color) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale keeps the aspect ratio and uses Catmull-Rom interpolation.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}
	newW = max(newW, 1)
	newH = max(newH, 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
