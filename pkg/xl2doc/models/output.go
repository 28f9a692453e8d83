package models

// ContentKind tells what an output cell displays.
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentImage
)

func (k ContentKind) String() string {
	if k == ContentImage {
		return "image"
	}
	return "text"
}

// ImageContent is an image placed into an output cell.
type ImageContent struct {
	Data        []byte      `json:"-"`
	ContentType ContentType `json:"content_type"`
	Name        string      `json:"name,omitempty"`
	// WidthCm and HeightCm are the final display extents.
	WidthCm  float64 `json:"width_cm"`
	HeightCm float64 `json:"height_cm"`
	// Ref is the sink's identifier for the embedded image part, set once embedded.
	Ref string `json:"ref,omitempty"`
	// FallbackText is rendered when embedding fails.
	FallbackText string `json:"fallback_text"`
}

// CellContent is either text or an image.
type CellContent struct {
	Kind  ContentKind   `json:"kind"`
	Text  string        `json:"text,omitempty"`
	Image *ImageContent `json:"image,omitempty"`
}

// TextContent builds text content.
func TextContent(s string) CellContent {
	return CellContent{Kind: ContentText, Text: s}
}

// ImageCellContent builds image content.
func ImageCellContent(img *ImageContent) CellContent {
	return CellContent{Kind: ContentImage, Image: img}
}

// OutputCell is one emitted table cell.
type OutputCell struct {
	// WidthCm is the cell width including spanned columns.
	WidthCm float64     `json:"width_cm"`
	Content CellContent `json:"content"`
	RowSpan int         `json:"row_span"`
	ColSpan int         `json:"col_span"`
	// IsVerticalStart marks the first cell of a vertical merge.
	IsVerticalStart bool `json:"vmerge_start,omitempty"`
	// IsVerticalContinuation marks a placeholder inside a vertical merge.
	IsVerticalContinuation bool `json:"vmerge_continue,omitempty"`
}

// OutputRow is one emitted table row.
type OutputRow struct {
	HeightCm float64      `json:"height_cm"`
	Cells    []OutputCell `json:"cells"`
}

// OutputTable is the transcription of one sheet.
type OutputTable struct {
	Title      string `json:"title"`
	SheetIndex int    `json:"sheet_index"`
	SheetName  string `json:"sheet_name"`
	// Range is the source window the table was built from.
	Range TableRange `json:"range"`
	// ColumnWidthsCm holds the width of each grid column.
	ColumnWidthsCm []float64   `json:"column_widths_cm"`
	Rows           []OutputRow `json:"rows"`
}

// Images returns pointers to every image content in row-major order.
func (t *OutputTable) Images() []*ImageContent {
	var out []*ImageContent
	for _, row := range t.Rows {
		for _, cell := range row.Cells {
			if cell.Content.Kind == ContentImage && cell.Content.Image != nil {
				out = append(out, cell.Content.Image)
			}
		}
	}
	return out
}
