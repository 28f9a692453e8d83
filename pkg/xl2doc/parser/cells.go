package parser

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
)

// ExtractCells fills sheet with the formatted values of its cells and the
// border flags of every cell declared in styles.
func ExtractCells(f *excelize.File, sheet *models.Sheet, styles map[models.GridCoordinate]int) error {
	rows, err := f.GetRows(sheet.Name)
	if err != nil {
		return err
	}

	borders := newBorderCache(f)
	for pos, styleID := range styles {
		style, err := borders.lookup(styleID)
		if err != nil {
			return fmt.Errorf("style %d at %s: %w", styleID, cellName(pos), err)
		}
		sheet.SetCell(models.Cell{Row: pos.Row, Col: pos.Col, Style: style})
	}

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			if value == "" {
				continue
			}
			cell, _ := sheet.Cell(rowIdx, colIdx)
			cell.Row, cell.Col, cell.Value = rowIdx, colIdx, value
			sheet.SetCell(cell)
		}
	}

	return nil
}

// ExtractMerges returns the merged regions of a sheet.
func ExtractMerges(f *excelize.File, sheetName string) ([]models.MergedRegion, error) {
	mergeCells, err := f.GetMergeCells(sheetName)
	if err != nil {
		return nil, err
	}

	regions := make([]models.MergedRegion, 0, len(mergeCells))
	for _, mc := range mergeCells {
		startCol, startRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return nil, err
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return nil, err
		}
		regions = append(regions, models.MergedRegion{
			FirstRow: min(startRow, endRow) - 1,
			LastRow:  max(startRow, endRow) - 1,
			FirstCol: min(startCol, endCol) - 1,
			LastCol:  max(startCol, endCol) - 1,
		})
	}
	return regions, nil
}

// borderCache resolves style indexes to border flags once per index.
type borderCache struct {
	f     *excelize.File
	cache map[int]models.CellStyle
}

func newBorderCache(f *excelize.File) *borderCache {
	return &borderCache{f: f, cache: map[int]models.CellStyle{0: {}}}
}

func (b *borderCache) lookup(styleID int) (models.CellStyle, error) {
	if style, ok := b.cache[styleID]; ok {
		return style, nil
	}
	st, err := b.f.GetStyle(styleID)
	if err != nil {
		return models.CellStyle{}, err
	}

	var style models.CellStyle
	for _, border := range st.Border {
		if border.Style <= 0 {
			continue
		}
		switch border.Type {
		case "top":
			style.Top = true
		case "bottom":
			style.Bottom = true
		case "left":
			style.Left = true
		case "right":
			style.Right = true
		}
	}
	b.cache[styleID] = style
	return style, nil
}

func cellName(pos models.GridCoordinate) string {
	name, err := excelize.CoordinatesToCellName(pos.Col+1, pos.Row+1)
	if err != nil {
		return fmt.Sprintf("R%dC%d", pos.Row+1, pos.Col+1)
	}
	return name
}
