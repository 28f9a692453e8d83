// Package layout computes the transcribed table geometry of a sheet.
package layout

import (
	"go.uber.org/zap"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
)

// DetectParams holds parameters for table range detection.
type DetectParams struct {
	// FallbackMinLastRow is the smallest last row of the fallback range.
	FallbackMinLastRow int `yaml:"fallback_min_last_row" validate:"min=1"`
	// FallbackLastCol is the last column of the fallback range.
	FallbackLastCol int `yaml:"fallback_last_col" validate:"min=1"`
	// ForceColumn is the column from which image anchors always extend EndCol.
	ForceColumn int `yaml:"force_column" validate:"gte=0"`
	// UsePrintArea replaces the fallback window with the sheet's declared
	// print area when the sheet has one.
	UsePrintArea bool `yaml:"use_print_area"`
}

// DefaultDetectParams returns default table range detection parameters.
func DefaultDetectParams() DetectParams {
	return DetectParams{
		FallbackMinLastRow: 5,
		FallbackLastCol:    10,
		ForceColumn:        10,
	}
}

// Detection is the outcome of DetectRange.
type Detection struct {
	Range models.TableRange
	// UsedFallback is true when no bordered cell was found.
	UsedFallback bool
	// MergeExpanded and ImageExpanded tell which passes widened the range.
	MergeExpanded bool
	ImageExpanded bool
}

// DetectRange computes the minimal rectangle containing every bordered cell,
// every merged region touching it and every image anchor.
func DetectRange(sheet *models.Sheet, anchors []models.ImageAnchor, params DetectParams, log *zap.Logger) Detection {
	if log == nil {
		log = zap.NewNop()
	}

	var det Detection
	rng, found := findBorderBounds(sheet)
	switch {
	case found:
	case params.UsePrintArea && sheet.PrintArea != nil:
		rng = *sheet.PrintArea
		det.UsedFallback = true
		log.Debug("No bordered cells, using print area", zap.String("sheet", sheet.Name), zap.Any("range", rng))
	default:
		rng = models.TableRange{
			StartRow: 0,
			EndRow:   max(params.FallbackMinLastRow, sheet.LastRow),
			StartCol: 0,
			EndCol:   params.FallbackLastCol,
		}
		det.UsedFallback = true
		log.Debug("No bordered cells, using default range",
			zap.String("sheet", sheet.Name), zap.Int("end_row", rng.EndRow), zap.Int("end_col", rng.EndCol))
	}

	// Regions never overlap, so one sweep over the sheet's list is enough.
	for _, region := range sheet.MergedRegions {
		if !region.Intersects(rng) {
			continue
		}
		expanded := models.TableRange{
			StartRow: min(rng.StartRow, region.FirstRow),
			EndRow:   max(rng.EndRow, region.LastRow),
			StartCol: min(rng.StartCol, region.FirstCol),
			EndCol:   max(rng.EndCol, region.LastCol),
		}
		if expanded != rng {
			det.MergeExpanded = true
			rng = expanded
		}
	}

	if len(anchors) > 0 {
		before := rng
		maxStartCol := -1
		for _, img := range anchors {
			rng.StartRow = min(rng.StartRow, img.StartRow)
			rng.EndRow = max(rng.EndRow, img.EndRow)
			rng.StartCol = min(rng.StartCol, img.StartCol)
			rng.EndCol = max(rng.EndCol, img.EndCol)
			maxStartCol = max(maxStartCol, img.StartCol)
		}
		if maxStartCol >= params.ForceColumn {
			rng.EndCol = max(rng.EndCol, maxStartCol)
		}
		if rng != before {
			det.ImageExpanded = true
			log.Debug("Range expanded to include images",
				zap.String("sheet", sheet.Name),
				zap.Int("images", len(anchors)),
				zap.Any("from", before),
				zap.Any("to", rng))
		}
	}

	det.Range = rng
	return det
}

// findBorderBounds finds the bounding box of bordered cells.
func findBorderBounds(sheet *models.Sheet) (models.TableRange, bool) {
	rng := models.TableRange{StartRow: -1, EndRow: -1, StartCol: -1, EndCol: -1}
	found := false

	for pos, cell := range sheet.Cells {
		if !cell.Style.HasBorder() {
			continue
		}
		if !found {
			rng = models.TableRange{StartRow: pos.Row, EndRow: pos.Row, StartCol: pos.Col, EndCol: pos.Col}
			found = true
			continue
		}
		rng.StartRow = min(rng.StartRow, pos.Row)
		rng.EndRow = max(rng.EndRow, pos.Row)
		rng.StartCol = min(rng.StartCol, pos.Col)
		rng.EndCol = max(rng.EndCol, pos.Col)
	}

	return rng, found
}
