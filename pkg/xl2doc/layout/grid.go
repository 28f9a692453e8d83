package layout

import (
	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
)

// BuildMergeGrid builds a dense grid over rng recording merge membership.
// Only regions fully contained in rng are applied; cells outside any region
// are plain single cells.
func BuildMergeGrid(sheet *models.Sheet, rng models.TableRange) *models.MergeGrid {
	rows, cols := rng.Rows(), rng.Cols()
	grid := &models.MergeGrid{
		Range: rng,
		Cells: make([][]models.MergeCell, rows),
	}
	for r := range rows {
		grid.Cells[r] = make([]models.MergeCell, cols)
		for c := range cols {
			grid.Cells[r][c] = models.MergeCell{
				RowSpan:   1,
				ColSpan:   1,
				AnchorRow: r,
				AnchorCol: c,
			}
		}
	}

	for _, region := range sheet.MergedRegions {
		if !region.Within(rng) {
			continue
		}
		text := sheet.Value(region.FirstRow, region.FirstCol)
		firstRow := region.FirstRow - rng.StartRow
		firstCol := region.FirstCol - rng.StartCol
		vertical := region.RowSpan() > 1

		for r := firstRow; r < firstRow+region.RowSpan(); r++ {
			for c := firstCol; c < firstCol+region.ColSpan(); c++ {
				grid.Cells[r][c] = models.MergeCell{
					IsMerged:        true,
					IsAnchor:        r == firstRow && c == firstCol,
					IsVerticalMerge: vertical,
					RowSpan:         region.RowSpan(),
					ColSpan:         region.ColSpan(),
					TextContent:     text,
					AnchorRow:       firstRow,
					AnchorCol:       firstCol,
				}
			}
		}
	}

	return grid
}
