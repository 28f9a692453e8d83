package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/image/tiff"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
)

// CropParams holds parameters for the crop resolver.
type CropParams struct {
	// MinWidth and MinHeight are the smallest crop box, in pixels, worth
	// applying. Smaller boxes keep the original image.
	MinWidth  int `yaml:"min_width" validate:"min=1"`
	MinHeight int `yaml:"min_height" validate:"min=1"`
	// MinEncodedBytes is the smallest acceptable re-encoded payload. Smaller
	// results are treated as degenerate and the original is kept.
	MinEncodedBytes int `yaml:"min_encoded_bytes" validate:"gte=0"`
	// JPEGQuality is the quality used when re-encoding JPEG output.
	JPEGQuality int `yaml:"jpeg_quality" validate:"min=95,max=100"`
	// Workers bounds the number of images decoded at the same time.
	Workers int `yaml:"workers" validate:"min=1"`
}

// DefaultCropParams returns default crop resolver parameters.
func DefaultCropParams() CropParams {
	return CropParams{
		MinWidth:        50,
		MinHeight:       50,
		MinEncodedBytes: 5000,
		JPEGQuality:     95,
		Workers:         4,
	}
}

var (
	errBoxTooSmall     = errors.New("crop box below minimum size")
	errEncodedTooSmall = errors.New("re-encoded image below minimum size")
)

// Cropper applies picture crop rectangles to image payloads. A failed crop
// never fails the image: the original payload is kept.
type Cropper struct {
	params CropParams
	log    *zap.Logger
}

// NewCropper returns a Cropper using params.
func NewCropper(params CropParams, log *zap.Logger) *Cropper {
	if log == nil {
		log = zap.NewNop()
	}
	if params.JPEGQuality < 95 || params.JPEGQuality > 100 {
		params.JPEGQuality = 95
	}
	if params.Workers < 1 {
		params.Workers = 1
	}
	return &Cropper{params: params, log: log}
}

// Resolve returns img with its payload replaced by the cropped image when a
// crop rectangle is present and can be applied.
func (c *Cropper) Resolve(img models.ImageAnchor) models.ImageAnchor {
	if !img.HasCropping() {
		return img
	}
	data, err := c.Crop(img.Data, img.ContentType, img.Crop)
	if err != nil {
		c.log.Debug("Keeping original image",
			zap.Int("index", img.Index), zap.String("name", img.Name), zap.Error(err))
		return img
	}
	c.log.Debug("Applied image crop",
		zap.Int("index", img.Index), zap.Int("original_bytes", len(img.Data)), zap.Int("cropped_bytes", len(data)))
	return img.WithData(data)
}

// Crop decodes data, cuts out the box described by crop and re-encodes it.
func (c *Cropper) Crop(data []byte, ct models.ContentType, crop models.CropRect) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ct, err)
	}
	bounds := src.Bounds()

	box := CropBox(bounds.Dx(), bounds.Dy(), crop)
	if box.Dx() < c.params.MinWidth || box.Dy() < c.params.MinHeight {
		return nil, fmt.Errorf("%w: %dx%d", errBoxTooSmall, box.Dx(), box.Dy())
	}

	cropped := imaging.Crop(src, box.Add(bounds.Min))
	out, err := c.encode(cropped, ct)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ct, err)
	}
	if len(out) < c.params.MinEncodedBytes {
		return nil, fmt.Errorf("%w: %d bytes", errEncodedTooSmall, len(out))
	}
	return out, nil
}

func (c *Cropper) encode(img image.Image, ct models.ContentType) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch ct {
	case models.ContentTypePNG:
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	case models.ContentTypeGIF:
		err = imaging.Encode(&buf, img, imaging.GIF)
	case models.ContentTypeBMP:
		err = imaging.Encode(&buf, img, imaging.BMP)
	case models.ContentTypeTIFF:
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(c.params.JPEGQuality))
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CropBox computes the pixel box left after cropping a width x height image by
// the given percentages. The box is clamped to the image bounds and always
// keeps at least one pixel in each direction.
func CropBox(width, height int, crop models.CropRect) image.Rectangle {
	x := truncate(float64(width) * crop.Left / 100)
	y := truncate(float64(height) * crop.Top / 100)
	w := truncate(float64(width) * (100 - crop.Left - crop.Right) / 100)
	h := truncate(float64(height) * (100 - crop.Top - crop.Bottom) / 100)

	x = clamp(x, 0, width-1)
	y = clamp(y, 0, height-1)
	w = clamp(w, 1, width-x)
	h = clamp(h, 1, height-y)
	return image.Rect(x, y, x+w, y+h)
}

// truncate drops the fractional part, tolerating binary rounding just below
// an integer.
func truncate(v float64) int {
	return int(math.Floor(v + 1e-6))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
