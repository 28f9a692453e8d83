// Package models defines data structures for spreadsheet transcription.
package models

// GridCoordinate addresses a cell on a sheet.
type GridCoordinate struct {
	// Row is the row index (0-based).
	Row int `json:"row"`
	// Col is the column index (0-based).
	Col int `json:"col"`
}

// CellStyle carries the border flags of a cell.
type CellStyle struct {
	Top    bool `json:"top,omitempty"`
	Bottom bool `json:"bottom,omitempty"`
	Left   bool `json:"left,omitempty"`
	Right  bool `json:"right,omitempty"`
}

// HasBorder reports whether any of the four sides carries a border.
func (s CellStyle) HasBorder() bool {
	return s.Top || s.Bottom || s.Left || s.Right
}

// Cell represents a single existing cell of a sheet.
type Cell struct {
	// Row is the row index (0-based).
	Row int `json:"r"`
	// Col is the column index (0-based).
	Col int `json:"c"`
	// Value is the formatted display value.
	Value string `json:"v,omitempty"`
	// Style holds the border flags.
	Style CellStyle `json:"style"`
}

// Coordinate returns the cell position.
func (c Cell) Coordinate() GridCoordinate {
	return GridCoordinate{Row: c.Row, Col: c.Col}
}
