package xl2doc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/unidoc/unioffice/document"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/sink"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Workers = 2
	opts.LogLevel = "none"
	return opts
}

func transcribeTestBook(t *testing.T) *TranscribedWorkbook {
	t.Helper()
	path := writeTestWorkbook(t, t.TempDir(), "results.xlsx")
	wb, err := OpenWorkbook(path, nil)
	if err != nil {
		t.Fatalf("OpenWorkbook failed: %v", err)
	}
	tb, err := NewConverter(testOptions(), nil).TranscribeWorkbook(context.Background(), wb)
	if err != nil {
		t.Fatalf("TranscribeWorkbook failed: %v", err)
	}
	return tb
}

func TestTranscribeWorkbook(t *testing.T) {
	tb := transcribeTestBook(t)

	if tb.Name != "results.xlsx" {
		t.Errorf("Expected workbook name results.xlsx, got %q", tb.Name)
	}
	if len(tb.Tables) != 2 {
		t.Fatalf("Expected 2 tables (Line skipped), got %d", len(tb.Tables))
	}
	if tb.Tables[0].Title != "Table 1 Data" || tb.Tables[1].Title != "Table 3 Blank" {
		t.Errorf("Unexpected titles %q, %q", tb.Tables[0].Title, tb.Tables[1].Title)
	}

	data := tb.Tables[0]
	want := models.TableRange{StartRow: 1, EndRow: 4, StartCol: 1, EndCol: 5}
	if data.Range != want {
		t.Errorf("Data range = %+v, expected %+v", data.Range, want)
	}
	if len(data.Rows) != 4 || len(data.ColumnWidthsCm) != 5 {
		t.Fatalf("Data table is %dx%d, expected 4x5", len(data.Rows), len(data.ColumnWidthsCm))
	}

	cellCounts := []int{5, 5, 4, 4}
	for i, row := range data.Rows {
		if len(row.Cells) != cellCounts[i] {
			t.Errorf("Row %d: expected %d cells, got %d", i, cellCounts[i], len(row.Cells))
		}
	}
	anchor := data.Rows[2].Cells[0]
	if anchor.Content.Text != "merged" || anchor.RowSpan != 2 || anchor.ColSpan != 2 || !anchor.IsVerticalStart {
		t.Errorf("Unexpected merge anchor %+v", anchor)
	}
	if !data.Rows[3].Cells[0].IsVerticalContinuation {
		t.Errorf("Expected continuation cell below the anchor, got %+v", data.Rows[3].Cells[0])
	}
	if got := data.Rows[1].Cells[1].Content.Text; got != "7.2" {
		t.Errorf("C3 = %q, expected 7.2", got)
	}

	imgs := data.Images()
	if len(imgs) != 1 {
		t.Fatalf("Expected 1 image, got %d", len(imgs))
	}
	if data.Rows[0].Cells[4].Content.Kind != models.ContentImage {
		t.Error("Expected the image in the F2 cell")
	}
	if imgs[0].ContentType != models.ContentTypePNG || imgs[0].FallbackText != "[image]" {
		t.Errorf("Unexpected image %+v", imgs[0])
	}

	blank := tb.Tables[1]
	if len(blank.Rows) != 6 || len(blank.ColumnWidthsCm) != 11 {
		t.Errorf("Blank table is %dx%d, expected the 6x11 fallback", len(blank.Rows), len(blank.ColumnWidthsCm))
	}
}

func TestTranscribeWorkbookCancelled(t *testing.T) {
	path := writeTestWorkbook(t, t.TempDir(), "results.xlsx")
	wb, err := OpenWorkbook(path, nil)
	if err != nil {
		t.Fatalf("OpenWorkbook failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewConverter(testOptions(), nil).TranscribeWorkbook(ctx, wb); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestTranscribeSheetDegenerate(t *testing.T) {
	sheet := models.NewSheet(0, "Row")
	for col := range 4 {
		sheet.SetCell(models.Cell{Row: 2, Col: col, Value: "x", Style: models.CellStyle{Top: true, Bottom: true}})
	}
	table, err := NewConverter(testOptions(), nil).TranscribeSheet(context.Background(), sheet)
	if err != nil || table != nil {
		t.Errorf("Expected a skipped sheet, got %v, %v", table, err)
	}
}

func TestTranscribeSheetSingleColumn(t *testing.T) {
	sheet := models.NewSheet(1, "List")
	border := models.CellStyle{Top: true, Bottom: true, Left: true, Right: true}
	for row := range 5 {
		sheet.SetCell(models.Cell{Row: row, Col: 0, Value: "item", Style: border})
	}
	table, err := NewConverter(testOptions(), nil).TranscribeSheet(context.Background(), sheet)
	if err != nil {
		t.Fatalf("TranscribeSheet failed: %v", err)
	}
	if table == nil {
		t.Fatal("Expected a table for a bordered single column")
	}
	want := models.TableRange{StartRow: 0, EndRow: 4, StartCol: 0, EndCol: 0}
	if table.Range != want {
		t.Errorf("Range = %+v, expected %+v", table.Range, want)
	}
	if len(table.Rows) != 5 || len(table.ColumnWidthsCm) != 1 {
		t.Errorf("Table is %dx%d, expected 5x1", len(table.Rows), len(table.ColumnWidthsCm))
	}
	for i, row := range table.Rows {
		if len(row.Cells) != 1 || row.Cells[0].Content.Text != "item" {
			t.Errorf("Row %d = %+v, expected one item cell", i, row.Cells)
		}
	}
}

func TestConverterWrite(t *testing.T) {
	tb := transcribeTestBook(t)
	c := NewConverter(testOptions(), nil)

	rec := sink.NewRecorder()
	if err := c.Write(rec, tb.Tables); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	paras := rec.Paragraphs()
	if len(paras) != 4 {
		t.Fatalf("Expected title and spacer per table, got %d paragraphs", len(paras))
	}
	title := paras[0]
	if title.Text != "Table 1 Data" || title.Style != StyleHeading2 || title.Alignment != sink.AlignCenter {
		t.Errorf("Unexpected title paragraph %+v", title)
	}
	if paras[1].Text != "" || paras[1].SpacingAfterPt != spacerPt {
		t.Errorf("Unexpected spacer paragraph %+v", paras[1])
	}
	if rec.Count(sink.OpImage) != 1 {
		t.Errorf("Expected 1 embedded image, got %d", rec.Count(sink.OpImage))
	}
	if ref := tb.Tables[0].Images()[0].Ref; ref == "" {
		t.Error("Expected the image reference to be set")
	}

	ops := rec.Ops()
	kinds := []sink.OpKind{sink.OpParagraph, sink.OpImage, sink.OpTable, sink.OpParagraph, sink.OpParagraph, sink.OpTable, sink.OpParagraph}
	if len(ops) != len(kinds) {
		t.Fatalf("Expected %d ops, got %d", len(kinds), len(ops))
	}
	for i, k := range kinds {
		if ops[i].Kind != k {
			t.Errorf("Op %d = %s, expected %s", i, ops[i].Kind, k)
		}
	}
}

func TestConverterWriteEmbedFailure(t *testing.T) {
	tb := transcribeTestBook(t)
	rec := sink.NewRecorder()
	rec.FailImages = map[models.ContentType]bool{models.ContentTypePNG: true}

	if err := NewConverter(testOptions(), nil).Write(rec, tb.Tables); err != nil {
		t.Fatalf("Write should not fail on embedding errors: %v", err)
	}
	img := tb.Tables[0].Images()[0]
	if img.Ref != "" {
		t.Errorf("Expected no reference after a failed embed, got %q", img.Ref)
	}
	if rec.Count(sink.OpTable) != 2 {
		t.Errorf("Expected both tables written, got %d", rec.Count(sink.OpTable))
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	first := writeTestWorkbook(t, dir, "first.xlsx")
	second := writeTestWorkbook(t, dir, "second.xlsx")
	output := filepath.Join(dir, "report.docx")

	opts := testOptions()
	opts.Layout = LayoutCombined
	if err := Convert(context.Background(), []string{first, second}, output, opts, nil); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	doc, err := document.Open(output)
	if err != nil {
		t.Fatalf("document.Open failed: %v", err)
	}
	if n := len(doc.Tables()); n != 4 {
		t.Errorf("Expected 4 tables, got %d", n)
	}
	var headings []string
	for _, p := range doc.Paragraphs() {
		if p.Style() != StyleHeading1 {
			continue
		}
		text := ""
		for _, r := range p.Runs() {
			text += r.Text()
		}
		headings = append(headings, text)
	}
	if len(headings) != 2 || headings[0] != "1. first" || headings[1] != "2. second" {
		t.Errorf("Workbook headings = %q", headings)
	}
}

func TestConvertErrors(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.docx")
	text := filepath.Join(dir, "notes.xlsx")
	if err := os.WriteFile(text, []byte("not a workbook"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	valid := writeTestWorkbook(t, dir, "valid.xlsx")

	badOpts := testOptions()
	badOpts.Workers = 0

	tests := []struct {
		name   string
		inputs []string
		output string
		opts   Options
		want   error
	}{
		{"no inputs", nil, output, testOptions(), ErrNoInputs},
		{"missing file", []string{filepath.Join(dir, "missing.xlsx")}, output, testOptions(), ErrFileNotFound},
		{"not xlsx", []string{valid, text}, output, testOptions(), ErrInvalidFormat},
		{"bad destination", []string{valid}, filepath.Join(dir, "missing", "out.docx"), testOptions(), os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Convert(context.Background(), tt.inputs, tt.output, tt.opts, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Convert() error = %v, expected %v", err, tt.want)
			}
		})
	}

	if err := Convert(context.Background(), []string{valid}, output, badOpts, nil); err == nil {
		t.Error("Expected invalid options to be rejected")
	}
}

func TestConversionError(t *testing.T) {
	inner := errors.New("boom")
	err := NewConversionError("Sheet1", ComponentCrop, inner)
	if !errors.Is(err, inner) {
		t.Error("ConversionError should unwrap to its cause")
	}
	want := `conversion error in sheet "Sheet1" (crop): boom`
	if err.Error() != want {
		t.Errorf("Error() = %q, expected %q", err.Error(), want)
	}
}
