package xl2doc

import (
	"context"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/sink"
)

// TableSummary describes one transcribed table without its payload.
type TableSummary struct {
	Workbook string            `json:"workbook"`
	Title    string            `json:"title"`
	Range    models.TableRange `json:"range"`
	Rows     int               `json:"rows"`
	Cols     int               `json:"cols"`
	// MergedCells counts cells spanning more than one grid position.
	MergedCells int `json:"merged_cells"`
	Images      int `json:"images"`
	// Embedded counts images that made it into the document.
	Embedded int `json:"embedded"`
}

// Summary is the dry-run report of a conversion.
type Summary struct {
	Layout Layout         `json:"layout"`
	Tables []TableSummary `json:"tables"`
	// Paragraphs is the number of paragraphs the layout produced.
	Paragraphs int `json:"paragraphs"`
	PageBreaks int `json:"page_breaks"`
}

// DryRun transcribes inputs and renders them into an in-memory recorder,
// returning what the document would contain.
func (c *Converter) DryRun(ctx context.Context, inputs []string) (*Summary, error) {
	books, err := c.Transcribe(ctx, inputs)
	if err != nil {
		return nil, err
	}
	rec := sink.NewRecorder()
	if err := c.Render(rec, books); err != nil {
		return nil, err
	}

	sum := &Summary{
		Layout:     c.opts.Layout,
		Paragraphs: rec.Count(sink.OpParagraph),
		PageBreaks: rec.Count(sink.OpPageBreak),
	}
	for _, book := range books {
		for _, t := range book.Tables {
			sum.Tables = append(sum.Tables, summarize(book.Name, t))
		}
	}
	return sum, nil
}

func summarize(workbook string, t *models.OutputTable) TableSummary {
	ts := TableSummary{
		Workbook: workbook,
		Title:    t.Title,
		Range:    t.Range,
		Rows:     len(t.Rows),
		Cols:     len(t.ColumnWidthsCm),
	}
	for _, row := range t.Rows {
		for _, cell := range row.Cells {
			if !cell.IsVerticalContinuation && (cell.RowSpan > 1 || cell.ColSpan > 1) {
				ts.MergedCells++
			}
		}
	}
	for _, img := range t.Images() {
		ts.Images++
		if img.Ref != "" {
			ts.Embedded++
		}
	}
	return ts
}
