package parser

import (
	"bytes"
	"encoding/xml"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
)

// maxColumns is the column limit of an xlsx worksheet.
const maxColumns = 16384

// sheetLayout holds what the worksheet part declares about sizes and cells,
// including empty styled cells that value readers drop.
type sheetLayout struct {
	defaultColWidth float64
	colWidths       map[int]float64
	rowHeights      map[int]float64
	// styles maps every declared cell to its style index.
	styles  map[models.GridCoordinate]int
	lastRow int
}

func (l sheetLayout) applyTo(sheet *models.Sheet) {
	if l.defaultColWidth > 0 {
		sheet.DefaultColumnWidth = l.defaultColWidth
	}
	for col, w := range l.colWidths {
		sheet.ColumnWidths[col] = w
	}
	for row, h := range l.rowHeights {
		sheet.RowHeights[row] = h
	}
	sheet.LastRow = max(sheet.LastRow, l.lastRow)
}

// parseSheetXML streams a worksheet part. Rows and columns are 0-based.
func parseSheetXML(data []byte) sheetLayout {
	layout := sheetLayout{
		colWidths:  make(map[int]float64),
		rowHeights: make(map[int]float64),
		styles:     make(map[models.GridCoordinate]int),
		lastRow:    -1,
	}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	row, col := -1, -1
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		switch se.Name.Local {
		case "sheetFormatPr":
			if w, ok := floatAttr(se, "defaultColWidth"); ok {
				layout.defaultColWidth = w
			}
		case "col":
			parseColumn(se, layout.colWidths)
		case "row":
			row++
			if r, ok := intAttr(se, "r"); ok {
				row = r - 1
			}
			col = -1
			if h, ok := floatAttr(se, "ht"); ok && h > 0 {
				layout.rowHeights[row] = h
			}
			layout.lastRow = max(layout.lastRow, row)
		case "c":
			col++
			if ref := attr(se, "r"); ref != "" {
				if c, r, err := excelize.CellNameToCoordinates(ref); err == nil {
					row, col = r-1, c-1
					layout.lastRow = max(layout.lastRow, row)
				}
			}
			styleID, _ := intAttr(se, "s")
			layout.styles[models.GridCoordinate{Row: row, Col: col}] = styleID
		}
	}

	return layout
}

func parseColumn(se xml.StartElement, widths map[int]float64) {
	lo, ok := intAttr(se, "min")
	if !ok {
		return
	}
	hi, ok := intAttr(se, "max")
	if !ok {
		hi = lo
	}
	width, ok := floatAttr(se, "width")
	if !ok {
		return
	}
	for c := max(lo, 1); c <= min(hi, maxColumns); c++ {
		widths[c-1] = width
	}
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func intAttr(se xml.StartElement, name string) (int, bool) {
	v, err := strconv.Atoi(attr(se, name))
	return v, err == nil
}

func floatAttr(se xml.StartElement, name string) (float64, bool) {
	v, err := strconv.ParseFloat(attr(se, name), 64)
	return v, err == nil
}
