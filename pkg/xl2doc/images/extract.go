// Package images turns sheet pictures into placed, deduplicated and cropped
// table images.
package images

import (
	"errors"
	"fmt"

	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/units"
)

var (
	// ErrEmptyPayload indicates a picture without image bytes.
	ErrEmptyPayload = errors.New("picture has no image data")
	// ErrNoAnchor indicates a picture not anchored to cells.
	ErrNoAnchor = errors.New("picture has no cell anchor")
)

const (
	// minDisplayPx is the smallest display width or height assigned to an image.
	minDisplayPx = 50.0
	// fallbackColPx and fallbackRowPx estimate display size from the anchor
	// span when the shape carries no extent.
	fallbackColPx = 64.0
	fallbackRowPx = 20.0
	// maxCropPct keeps crop percentages strictly below 100.
	maxCropPct = 99.99
)

// Extract converts pictures into image candidates. Structurally invalid
// pictures are logged and skipped; no size or quality filtering is applied.
func Extract(pictures []models.Picture, log *zap.Logger) []models.ImageAnchor {
	if log == nil {
		log = zap.NewNop()
	}

	result := make([]models.ImageAnchor, 0, len(pictures))
	for _, pic := range pictures {
		img, err := FromPicture(pic)
		if err != nil {
			log.Warn("Skipping picture", zap.Int("index", pic.Index), zap.String("name", pic.Name), zap.Error(err))
			continue
		}
		if img.HasCropping() {
			log.Debug("Picture carries crop rectangle",
				zap.Int("index", img.Index),
				zap.Float64("left", img.Crop.Left), zap.Float64("top", img.Crop.Top),
				zap.Float64("right", img.Crop.Right), zap.Float64("bottom", img.Crop.Bottom))
		}
		result = append(result, img)
	}
	return result
}

// FromPicture builds a normalized image candidate from a picture shape.
func FromPicture(pic models.Picture) (models.ImageAnchor, error) {
	if len(pic.Data) == 0 {
		return models.ImageAnchor{}, ErrEmptyPayload
	}
	if !pic.HasAnchor {
		return models.ImageAnchor{}, ErrNoAnchor
	}
	ct, err := DetectContentType(pic.Data, pic.ContentType)
	if err != nil {
		return models.ImageAnchor{}, err
	}

	img := models.ImageAnchor{
		Index:       pic.Index,
		StartRow:    pic.FromRow,
		EndRow:      max(pic.ToRow, pic.FromRow),
		StartCol:    pic.FromCol,
		EndCol:      max(pic.ToCol, pic.FromCol),
		Data:        pic.Data,
		ContentType: ct,
		Name:        pic.Name,
	}
	img.PixelWidth, img.PixelHeight = displaySize(pic)
	if pic.SrcRect != nil {
		img.Crop = models.CropRect{
			Left:   cropPercent(pic.SrcRect.L),
			Top:    cropPercent(pic.SrcRect.T),
			Right:  cropPercent(pic.SrcRect.R),
			Bottom: cropPercent(pic.SrcRect.B),
		}
	}
	return img, nil
}

// DetectContentType determines the image format by sniffing data, falling back
// to the declared type when the bytes are not recognized.
func DetectContentType(data []byte, declared string) (models.ContentType, error) {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		if ct, err := models.ParseContentType(kind.Extension); err == nil {
			return ct, nil
		}
	}
	ct, err := models.ParseContentType(declared)
	if err != nil {
		return "", fmt.Errorf("unable to detect image format: %w", err)
	}
	return ct, nil
}

func displaySize(pic models.Picture) (float64, float64) {
	w := units.EMUToPixels(pic.ExtentCX)
	if w <= 0 {
		w = float64(max(1, pic.ToCol-pic.FromCol)) * fallbackColPx
	}
	h := units.EMUToPixels(pic.ExtentCY)
	if h <= 0 {
		h = float64(max(1, pic.ToRow-pic.FromRow)) * fallbackRowPx
	}
	return max(w, minDisplayPx), max(h, minDisplayPx)
}

// cropPercent converts a srcRect value (thousandths of a percent) to percent.
// Negative values extend the image rather than crop it and are ignored.
func cropPercent(v int) float64 {
	pct := float64(v) / 1000.0
	switch {
	case pct <= 0:
		return 0
	case pct > maxCropPct:
		return maxCropPct
	}
	return pct
}
