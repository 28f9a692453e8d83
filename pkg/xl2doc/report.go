package xl2doc

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/sink"
)

// Paragraph style ids used by the report.
const (
	StyleNormal   = "Normal"
	StyleHeading1 = "Heading1"
	StyleHeading2 = "Heading2"
	StyleContents = "ContentsHeading"
)

const (
	bodyFont     = "Times New Roman"
	eastAsiaFont = "SimSun"
	// spacerPt is the space left after each table and chapter.
	spacerPt = 40
)

var (
	landscapeSection = sink.Section{WidthTwips: 15840, HeightTwips: 12240, Landscape: true, MarginTwips: 720, HeaderTwips: 720}
	portraitSection  = sink.Section{WidthTwips: 12240, HeightTwips: 15840, MarginTwips: 1440, HeaderTwips: 720}
)

// ReportStyles returns the paragraph styles the report relies on.
func ReportStyles() []sink.StyleDefinition {
	return []sink.StyleDefinition{
		{
			ID:           StyleNormal,
			Name:         "Normal",
			Default:      true,
			Font:         bodyFont,
			EastAsiaFont: eastAsiaFont,
			OutlineLevel: sink.NoOutline,
		},
		{
			ID:              StyleHeading1,
			Name:            "heading 1",
			BasedOn:         StyleNormal,
			Next:            StyleNormal,
			Bold:            true,
			SizePt:          14,
			Font:            bodyFont,
			EastAsiaFont:    eastAsiaFont,
			SpacingBeforePt: 20,
			SpacingAfterPt:  20,
			OutlineLevel:    0,
		},
		{
			ID:              StyleHeading2,
			Name:            "heading 2",
			BasedOn:         StyleNormal,
			Next:            StyleNormal,
			Bold:            true,
			SizePt:          12,
			Font:            bodyFont,
			EastAsiaFont:    eastAsiaFont,
			SpacingBeforePt: 20,
			SpacingAfterPt:  20,
			OutlineLevel:    1,
		},
		{
			ID:              StyleContents,
			Name:            "contents heading",
			BasedOn:         StyleNormal,
			Next:            StyleNormal,
			Bold:            true,
			SizePt:          12,
			SpacingBeforePt: 20,
			SpacingAfterPt:  20,
			OutlineLevel:    sink.NoOutline,
		},
	}
}

// Render lays the transcribed workbooks out in s according to the
// converter's layout.
func (c *Converter) Render(s sink.Sink, books []*TranscribedWorkbook) error {
	if len(books) == 0 {
		return ErrNoInputs
	}
	for _, def := range ReportStyles() {
		if err := s.AddStyleDefinition(def); err != nil {
			return fmt.Errorf("failed to define style %s: %w", def.ID, err)
		}
	}

	switch c.opts.Layout {
	case LayoutReport:
		return c.renderReport(s, books)
	case LayoutCombined:
		return c.renderCombined(s, books)
	case LayoutTablesOnly:
		return c.Write(s, allTables(books))
	}
	return fmt.Errorf("invalid layout: %s", c.opts.Layout)
}

// renderReport writes a contents page, the chapter headings and the tables
// under the chapter named by Report.TablesChapter.
func (c *Converter) renderReport(s sink.Sink, books []*TranscribedWorkbook) error {
	if err := c.writeContents(s); err != nil {
		return err
	}
	if err := setSection(s, landscapeSection); err != nil {
		return err
	}

	report := c.opts.Report
	placed := false
	for _, chapter := range report.Chapters {
		if err := heading(s, chapter); err != nil {
			return err
		}
		if chapter == report.TablesChapter && !placed {
			if err := c.Write(s, allTables(books)); err != nil {
				return err
			}
			placed = true
		}
		if err := s.AddParagraph(sink.Paragraph{SpacingAfterPt: spacerPt}); err != nil {
			return err
		}
	}
	if !placed {
		if err := c.Write(s, allTables(books)); err != nil {
			return err
		}
	}
	for _, chapter := range report.TrailingChapters {
		if err := heading(s, chapter); err != nil {
			return err
		}
	}
	return nil
}

// renderCombined gives each workbook a numbered heading and starts every
// workbook after the first on a new page.
func (c *Converter) renderCombined(s sink.Sink, books []*TranscribedWorkbook) error {
	if err := c.writeContents(s); err != nil {
		return err
	}
	if err := setSection(s, portraitSection); err != nil {
		return err
	}

	for i, book := range books {
		if err := heading(s, fmt.Sprintf("%d. %s", i+1, bookTitle(book.Name))); err != nil {
			return err
		}
		if err := c.Write(s, book.Tables); err != nil {
			return err
		}
		if i < len(books)-1 {
			if err := pageBreak(s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Converter) writeContents(s sink.Sink) error {
	if err := s.AddParagraph(sink.Paragraph{Text: c.opts.Report.ContentsTitle, Style: StyleContents}); err != nil {
		return err
	}
	if toc, ok := s.(sink.TOCWriter); ok {
		if err := toc.AddTableOfContents(); err != nil {
			return fmt.Errorf("failed to add table of contents: %w", err)
		}
	}
	return pageBreak(s)
}

func heading(s sink.Sink, text string) error {
	return s.AddParagraph(sink.Paragraph{Text: text, Style: StyleHeading1})
}

func pageBreak(s sink.Sink) error {
	if pb, ok := s.(sink.PageBreaker); ok {
		return pb.AddPageBreak()
	}
	return nil
}

func setSection(s sink.Sink, sect sink.Section) error {
	if sc, ok := s.(sink.Sectioner); ok {
		return sc.SetSection(sect)
	}
	return nil
}

func allTables(books []*TranscribedWorkbook) []*models.OutputTable {
	var out []*models.OutputTable
	for _, b := range books {
		out = append(out, b.Tables...)
	}
	return out
}

// bookTitle strips the directory and extension from a workbook file name.
func bookTitle(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
