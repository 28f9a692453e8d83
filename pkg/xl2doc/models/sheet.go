package models

// DefaultRowHeightPt is the row height assumed when a row carries none.
const DefaultRowHeightPt = 12.75

// DefaultColumnWidthChars is the column width assumed when a sheet declares none.
const DefaultColumnWidthChars = 8.43

// Sheet represents the in-memory model of a single worksheet.
type Sheet struct {
	// Index is the position of the sheet in the workbook (0-based).
	Index int `json:"index"`
	// Name is the sheet name.
	Name string `json:"name"`
	// Cells holds every existing cell keyed by position.
	Cells map[GridCoordinate]Cell `json:"-"`
	// LastRow is the index of the last existing row (-1 for an empty sheet).
	LastRow int `json:"last_row"`
	// MergedRegions lists the merged blocks of the sheet.
	MergedRegions []MergedRegion `json:"merged_regions,omitempty"`
	// Pictures lists floating pictures in drawing order.
	Pictures []Picture `json:"pictures,omitempty"`
	// ColumnWidths maps column index to width in character units.
	ColumnWidths map[int]float64 `json:"column_widths,omitempty"`
	// DefaultColumnWidth is the width of columns missing from ColumnWidths.
	DefaultColumnWidth float64 `json:"default_column_width"`
	// RowHeights maps row index to height in points.
	RowHeights map[int]float64 `json:"row_heights,omitempty"`
	// PrintArea is the declared print area, if any.
	PrintArea *TableRange `json:"print_area,omitempty"`
}

// NewSheet returns an empty sheet ready to be populated.
func NewSheet(index int, name string) *Sheet {
	return &Sheet{
		Index:              index,
		Name:               name,
		Cells:              make(map[GridCoordinate]Cell),
		LastRow:            -1,
		ColumnWidths:       make(map[int]float64),
		DefaultColumnWidth: DefaultColumnWidthChars,
		RowHeights:         make(map[int]float64),
	}
}

// SetCell stores c, extending LastRow as needed.
func (s *Sheet) SetCell(c Cell) {
	s.Cells[c.Coordinate()] = c
	if c.Row > s.LastRow {
		s.LastRow = c.Row
	}
}

// Cell returns the cell at row/col and whether it exists.
func (s *Sheet) Cell(row, col int) (Cell, bool) {
	c, ok := s.Cells[GridCoordinate{Row: row, Col: col}]
	return c, ok
}

// Value returns the formatted value at row/col, empty for absent cells.
func (s *Sheet) Value(row, col int) string {
	c, ok := s.Cell(row, col)
	if !ok {
		return ""
	}
	return c.Value
}

// ColumnWidth returns the width of col in character units.
func (s *Sheet) ColumnWidth(col int) float64 {
	if w, ok := s.ColumnWidths[col]; ok && w > 0 {
		return w
	}
	if s.DefaultColumnWidth > 0 {
		return s.DefaultColumnWidth
	}
	return DefaultColumnWidthChars
}

// RowHeight returns the height of row in points.
func (s *Sheet) RowHeight(row int) float64 {
	if h, ok := s.RowHeights[row]; ok && h > 0 {
		return h
	}
	return DefaultRowHeightPt
}
