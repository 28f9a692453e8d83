package models

// MergeCell is the per-position entry of a merge grid.
type MergeCell struct {
	IsMerged        bool `json:"merged,omitempty"`
	IsAnchor        bool `json:"anchor,omitempty"`
	IsVerticalMerge bool `json:"vertical,omitempty"`
	// RowSpan and ColSpan describe the whole region (1 for unmerged cells).
	RowSpan int `json:"row_span"`
	ColSpan int `json:"col_span"`
	// TextContent is copied from the region's top-left source cell.
	TextContent string `json:"text,omitempty"`
	// AnchorRow and AnchorCol locate the region's anchor, relative to the grid.
	AnchorRow int `json:"anchor_row"`
	AnchorCol int `json:"anchor_col"`
}

// MergeGrid is a dense row-major grid over a TableRange.
type MergeGrid struct {
	Range TableRange    `json:"range"`
	Cells [][]MergeCell `json:"cells"`
}

// At returns the entry at grid-relative row/col.
func (g *MergeGrid) At(row, col int) MergeCell {
	return g.Cells[row][col]
}
