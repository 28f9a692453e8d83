package layout

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/units"
)

// ImagePlaceholder is shown in place of an image that could not be embedded
// into a cell without any text of its own.
const ImagePlaceholder = "[image]"

// AssembleParams holds parameters for table assembly.
type AssembleParams struct {
	// ImageMarginCm is subtracted from the cell extents when sizing images.
	ImageMarginCm float64 `yaml:"image_margin_cm" validate:"gte=0"`
}

// DefaultAssembleParams returns default table assembly parameters.
func DefaultAssembleParams() AssembleParams {
	return AssembleParams{ImageMarginCm: units.ImageMarginCm}
}

// TableTitle returns the caption preceding the table of a sheet.
func TableTitle(sheetIndex int, sheetName string) string {
	return fmt.Sprintf("Table %d %s", sheetIndex+1, sheetName)
}

// Assemble combines the merge grid, the deduplicated images and the sheet's
// size metadata into an output table.
func Assemble(sheet *models.Sheet, grid *models.MergeGrid, images []models.ImageAnchor, params AssembleParams, log *zap.Logger) *models.OutputTable {
	if log == nil {
		log = zap.NewNop()
	}
	rng := grid.Range

	colWidths := make([]float64, rng.Cols())
	for c := range colWidths {
		colWidths[c] = units.ColumnWidthCm(sheet.ColumnWidth(rng.StartCol + c))
	}
	rowHeights := make([]float64, rng.Rows())
	for r := range rowHeights {
		rowHeights[r] = units.RowHeightCm(sheet.RowHeight(rng.StartRow + r))
	}

	imageAt := make(map[models.GridCoordinate]models.ImageAnchor, len(images))
	for _, img := range images {
		if _, exists := imageAt[img.TopLeft()]; exists {
			continue
		}
		imageAt[img.TopLeft()] = img
	}

	table := &models.OutputTable{
		Title:          TableTitle(sheet.Index, sheet.Name),
		SheetIndex:     sheet.Index,
		SheetName:      sheet.Name,
		Range:          rng,
		ColumnWidthsCm: colWidths,
		Rows:           make([]models.OutputRow, 0, rng.Rows()),
	}

	placed := 0
	for r := range rng.Rows() {
		row := models.OutputRow{HeightCm: rowHeights[r]}

		for c := range rng.Cols() {
			mc := grid.At(r, c)
			// Columns other than the region's first are covered by its span.
			if mc.IsMerged && c != mc.AnchorCol {
				continue
			}

			width := spanSum(colWidths, c, mc.ColSpan)
			if mc.IsMerged && r != mc.AnchorRow {
				row.Cells = append(row.Cells, models.OutputCell{
					WidthCm:                width,
					Content:                models.TextContent(""),
					RowSpan:                1,
					ColSpan:                mc.ColSpan,
					IsVerticalContinuation: true,
				})
				continue
			}

			srcRow, srcCol := rng.StartRow+r, rng.StartCol+c
			text := sheet.Value(srcRow, srcCol)
			if mc.IsMerged {
				text = mc.TextContent
			}

			cell := models.OutputCell{
				WidthCm:         width,
				Content:         models.TextContent(text),
				RowSpan:         mc.RowSpan,
				ColSpan:         mc.ColSpan,
				IsVerticalStart: mc.IsMerged && mc.IsVerticalMerge,
			}

			if img, ok := imageAt[models.GridCoordinate{Row: srcRow, Col: srcCol}]; ok {
				height := spanSum(rowHeights, r, mc.RowSpan)
				fallback := text
				if fallback == "" {
					fallback = ImagePlaceholder
				}
				cell.Content = models.ImageCellContent(&models.ImageContent{
					Data:         img.Data,
					ContentType:  img.ContentType,
					Name:         img.Name,
					WidthCm:      units.ImageExtentCm(width, params.ImageMarginCm),
					HeightCm:     units.ImageExtentCm(height, params.ImageMarginCm),
					FallbackText: fallback,
				})
				placed++
			}

			row.Cells = append(row.Cells, cell)
		}

		table.Rows = append(table.Rows, row)
	}

	if placed < len(imageAt) {
		log.Debug("Some images are anchored inside merged regions and were not placed",
			zap.String("sheet", sheet.Name), zap.Int("placed", placed), zap.Int("images", len(imageAt)))
	}

	return table
}

func spanSum(values []float64, from, span int) float64 {
	var sum float64
	for i := from; i < from+span && i < len(values); i++ {
		sum += values[i]
	}
	return sum
}
