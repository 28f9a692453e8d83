package models

// TableRange represents inclusive cell bounds selected for transcription.
type TableRange struct {
	// StartRow is the first row (0-based).
	StartRow int `json:"start_row"`
	// EndRow is the last row (0-based, inclusive).
	EndRow int `json:"end_row"`
	// StartCol is the first column (0-based).
	StartCol int `json:"start_col"`
	// EndCol is the last column (0-based, inclusive).
	EndCol int `json:"end_col"`
}

// Rows returns the number of rows covered by the range.
func (r TableRange) Rows() int {
	return r.EndRow - r.StartRow + 1
}

// Cols returns the number of columns covered by the range.
func (r TableRange) Cols() int {
	return r.EndCol - r.StartCol + 1
}

// Contains reports whether the cell at row/col lies within the range.
func (r TableRange) Contains(row, col int) bool {
	return row >= r.StartRow && row <= r.EndRow && col >= r.StartCol && col <= r.EndCol
}

// ContainsAnchor reports whether the whole anchor box of img lies within the range.
func (r TableRange) ContainsAnchor(img ImageAnchor) bool {
	return r.Contains(img.StartRow, img.StartCol) && r.Contains(img.EndRow, img.EndCol)
}

// IsDegenerate reports whether the range has collapsed to a single row.
// Such sheets produce no table; a single column is a valid table.
func (r TableRange) IsDegenerate() bool {
	return r.StartRow == r.EndRow
}

// MergedRegion represents a merged cell block (inclusive bounds, 0-based).
// Regions of one sheet never overlap.
type MergedRegion struct {
	FirstRow int `json:"first_row"`
	LastRow  int `json:"last_row"`
	FirstCol int `json:"first_col"`
	LastCol  int `json:"last_col"`
}

// RowSpan returns the number of rows in the region.
func (m MergedRegion) RowSpan() int {
	return m.LastRow - m.FirstRow + 1
}

// ColSpan returns the number of columns in the region.
func (m MergedRegion) ColSpan() int {
	return m.LastCol - m.FirstCol + 1
}

// Intersects reports whether the region overlaps r.
func (m MergedRegion) Intersects(r TableRange) bool {
	return m.FirstRow <= r.EndRow && m.LastRow >= r.StartRow &&
		m.FirstCol <= r.EndCol && m.LastCol >= r.StartCol
}

// Within reports whether the region lies entirely inside r.
func (m MergedRegion) Within(r TableRange) bool {
	return m.FirstRow >= r.StartRow && m.LastRow <= r.EndRow &&
		m.FirstCol >= r.StartCol && m.LastCol <= r.EndCol
}
