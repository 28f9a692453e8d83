package xl2doc

import (
	"context"
	"slices"
	"testing"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/sink"
)

func stubBooks() []*TranscribedWorkbook {
	table := func(index int, name string) *models.OutputTable {
		return &models.OutputTable{Title: "Table " + name, SheetIndex: index, SheetName: name}
	}
	return []*TranscribedWorkbook{
		{Name: "dir/alpha.xlsx", Tables: []*models.OutputTable{table(0, "A1"), table(1, "A2")}},
		{Name: "beta.xlsx", Tables: []*models.OutputTable{table(0, "B1")}},
	}
}

// outline flattens the recorded ops into a readable sequence.
func outline(rec *sink.Recorder) []string {
	var out []string
	for _, op := range rec.Ops() {
		switch op.Kind {
		case sink.OpParagraph:
			if op.Paragraph.Text == "" {
				continue
			}
			out = append(out, op.Paragraph.Style+":"+op.Paragraph.Text)
		case sink.OpTable:
			out = append(out, "table:"+op.Table.SheetName)
		case sink.OpPageBreak, sink.OpTOC:
			out = append(out, string(op.Kind))
		}
	}
	return out
}

func TestRenderLayouts(t *testing.T) {
	tests := []struct {
		name    string
		layout  Layout
		want    []string
		section *sink.Section
	}{
		{
			name:   "report",
			layout: LayoutReport,
			want: []string{
				"ContentsHeading:Contents", "toc", "page_break",
				"Heading1:1. Purpose",
				"Heading1:2. Location and Time",
				"Heading1:3. Experimental Design",
				"Heading1:4. Results and Analysis",
				"Heading2:Table A1", "table:A1",
				"Heading2:Table A2", "table:A2",
				"Heading2:Table B1", "table:B1",
				"Heading1:5. Conclusion",
				"Heading1:References:",
				"Heading1:Attachments:",
			},
			section: &landscapeSection,
		},
		{
			name:   "combined",
			layout: LayoutCombined,
			want: []string{
				"ContentsHeading:Contents", "toc", "page_break",
				"Heading1:1. alpha",
				"Heading2:Table A1", "table:A1",
				"Heading2:Table A2", "table:A2",
				"page_break",
				"Heading1:2. beta",
				"Heading2:Table B1", "table:B1",
			},
			section: &portraitSection,
		},
		{
			name:   "tables only",
			layout: LayoutTablesOnly,
			want: []string{
				"Heading2:Table A1", "table:A1",
				"Heading2:Table A2", "table:A2",
				"Heading2:Table B1", "table:B1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			opts.Layout = tt.layout
			rec := sink.NewRecorder()
			if err := NewConverter(opts, nil).Render(rec, stubBooks()); err != nil {
				t.Fatalf("Render failed: %v", err)
			}

			if got := outline(rec); !slices.Equal(got, tt.want) {
				t.Errorf("outline =\n%q\nexpected\n%q", got, tt.want)
			}
			if n := rec.Count(sink.OpStyle); n != len(ReportStyles()) {
				t.Errorf("Expected %d styles, got %d", len(ReportStyles()), n)
			}

			var sections []sink.Section
			for _, op := range rec.Ops() {
				if op.Kind == sink.OpSection {
					sections = append(sections, *op.Section)
				}
			}
			if tt.section == nil {
				if len(sections) != 0 {
					t.Errorf("Expected no section, got %+v", sections)
				}
			} else if len(sections) != 1 || sections[0] != *tt.section {
				t.Errorf("Sections = %+v, expected %+v", sections, *tt.section)
			}
		})
	}
}

func TestRenderReportWithoutTablesChapter(t *testing.T) {
	opts := testOptions()
	opts.Report.Chapters = []string{"Intro"}
	opts.Report.TrailingChapters = nil
	opts.Report.TablesChapter = ""

	rec := sink.NewRecorder()
	if err := NewConverter(opts, nil).Render(rec, stubBooks()[1:]); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	want := []string{"ContentsHeading:Contents", "toc", "page_break", "Heading1:Intro", "Heading2:Table B1", "table:B1"}
	if got := outline(rec); !slices.Equal(got, want) {
		t.Errorf("outline = %q, expected %q", got, want)
	}
}

func TestRenderNoBooks(t *testing.T) {
	if err := NewConverter(testOptions(), nil).Render(sink.NewRecorder(), nil); err != ErrNoInputs {
		t.Errorf("Expected ErrNoInputs, got %v", err)
	}
}

func TestReportStyles(t *testing.T) {
	levels := map[string]int{}
	for _, s := range ReportStyles() {
		levels[s.ID] = s.OutlineLevel
	}
	want := map[string]int{
		StyleNormal:   sink.NoOutline,
		StyleHeading1: 0,
		StyleHeading2: 1,
		StyleContents: sink.NoOutline,
	}
	for id, lvl := range want {
		if got, ok := levels[id]; !ok || got != lvl {
			t.Errorf("Style %s outline = %d (present %v), expected %d", id, got, ok, lvl)
		}
	}
}

func TestBookTitle(t *testing.T) {
	tests := []struct{ in, want string }{
		{"report.xlsx", "report"},
		{"/data/2024/batch.v2.xlsx", "batch.v2"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := bookTitle(tt.in); got != tt.want {
			t.Errorf("bookTitle(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestDryRun(t *testing.T) {
	path := writeTestWorkbook(t, t.TempDir(), "results.xlsx")
	sum, err := NewConverter(testOptions(), nil).DryRun(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("DryRun failed: %v", err)
	}
	if sum.Layout != LayoutReport || len(sum.Tables) != 2 {
		t.Fatalf("Unexpected summary %+v", sum)
	}
	data := sum.Tables[0]
	want := TableSummary{
		Workbook:    "results.xlsx",
		Title:       "Table 1 Data",
		Range:       models.TableRange{StartRow: 1, EndRow: 4, StartCol: 1, EndCol: 5},
		Rows:        4,
		Cols:        5,
		MergedCells: 1,
		Images:      1,
		Embedded:    1,
	}
	if data != want {
		t.Errorf("Data summary = %+v, expected %+v", data, want)
	}
	if sum.PageBreaks != 1 {
		t.Errorf("Expected 1 page break, got %d", sum.PageBreaks)
	}
}
