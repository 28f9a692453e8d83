package sink

import (
	"fmt"
	"io"

	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/common"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/schema/soo/ofc/sharedTypes"
	"github.com/unidoc/unioffice/schema/soo/wml"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/units"
)

const (
	// cellFontSize is the run size of table cell text.
	cellFontSize = 10.5 * measurement.Point
	borderWidth  = 1.5 * measurement.Point
)

// DOCX renders into a WordprocessingML document.
type DOCX struct {
	doc    *document.Document
	images map[string]common.ImageRef
	log    *zap.Logger
	inline func(document.Run, common.ImageRef) (document.InlineDrawing, error)
}

// NewDOCX returns an empty document. A nil logger discards all output.
func NewDOCX(log *zap.Logger) *DOCX {
	if log == nil {
		log = zap.NewNop()
	}
	return &DOCX{
		doc:    document.New(),
		images: make(map[string]common.ImageRef),
		log:    log,
		inline: document.Run.AddDrawingInline,
	}
}

// Document exposes the underlying document.
func (d *DOCX) Document() *document.Document {
	return d.doc
}

// AddStyleDefinition replaces any existing style with the same ID.
func (d *DOCX) AddStyleDefinition(def StyleDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("style definition without id")
	}
	d.removeStyle(def.ID)

	style := d.doc.Styles.AddStyle(def.ID, wml.ST_StyleTypeParagraph, def.Default)
	name := def.Name
	if name == "" {
		name = def.ID
	}
	style.SetName(name)
	if def.BasedOn != "" {
		style.SetBasedOn(def.BasedOn)
	}
	if def.Next != "" {
		style.SetNextStyle(def.Next)
	}

	pp := style.ParagraphProperties()
	if def.SpacingBeforePt > 0 || def.SpacingAfterPt > 0 {
		pp.SetSpacing(measurement.Distance(def.SpacingBeforePt)*measurement.Point,
			measurement.Distance(def.SpacingAfterPt)*measurement.Point)
	}
	if def.OutlineLevel >= 0 {
		pp.SetOutlineLevel(def.OutlineLevel)
	}

	rp := style.RunProperties()
	if def.Bold {
		rp.SetBold(true)
	}
	if def.SizePt > 0 {
		rp.SetSize(measurement.Distance(def.SizePt) * measurement.Point)
	}
	if def.Font != "" {
		rp.SetFontFamily(def.Font)
	}
	if def.EastAsiaFont != "" {
		if rp.X().RFonts == nil {
			rp.X().RFonts = wml.NewCT_Fonts()
		}
		eastAsia := def.EastAsiaFont
		rp.X().RFonts.EastAsiaAttr = &eastAsia
	}
	return nil
}

func (d *DOCX) removeStyle(id string) {
	styles := d.doc.Styles.X()
	kept := styles.Style[:0]
	for _, s := range styles.Style {
		if s.StyleIdAttr != nil && *s.StyleIdAttr == id {
			continue
		}
		kept = append(kept, s)
	}
	styles.Style = kept
}

// AddParagraph appends a paragraph with a single run.
func (d *DOCX) AddParagraph(p Paragraph) error {
	para := d.doc.AddParagraph()
	if p.Style != "" {
		para.SetStyle(p.Style)
	}
	if p.Alignment == AlignCenter {
		para.Properties().SetAlignment(wml.ST_JcCenter)
	}
	if p.SpacingAfterPt > 0 {
		para.Properties().Spacing().SetAfter(measurement.Distance(p.SpacingAfterPt) * measurement.Point)
	}
	if p.Text != "" {
		para.AddRun().AddText(p.Text)
	}
	return nil
}

// AddPageBreak appends a paragraph holding a page break.
func (d *DOCX) AddPageBreak() error {
	d.doc.AddParagraph().AddRun().AddPageBreak()
	return nil
}

// AddTableOfContents appends a TOC field covering outline levels 1-2.
// Word fills it in when the document is opened.
func (d *DOCX) AddTableOfContents() error {
	d.doc.AddParagraph().AddRun().AddField(`TOC \o "1-2" \h \z \u`)
	d.doc.Settings.SetUpdateFieldsOnOpen(true)
	return nil
}

// SetSection sets the page geometry of the document body.
func (d *DOCX) SetSection(s Section) error {
	if s.WidthTwips <= 0 || s.HeightTwips <= 0 {
		return fmt.Errorf("invalid page size %dx%d", s.WidthTwips, s.HeightTwips)
	}
	orientation := wml.ST_PageOrientationPortrait
	if s.Landscape {
		orientation = wml.ST_PageOrientationLandscape
	}
	sect := d.doc.BodySection()
	pgSz := wml.NewCT_PageSz()
	pgSz.WAttr = twipsMeasure(s.WidthTwips)
	pgSz.HAttr = twipsMeasure(s.HeightTwips)
	pgSz.OrientAttr = orientation
	sect.X().PgSz = pgSz
	m := twips(s.MarginTwips)
	hf := twips(s.HeaderTwips)
	sect.SetPageMargins(m, m, m, m, hf, hf, 0)
	return nil
}

// AddImagePart embeds an image payload. The returned reference is the
// relationship id of the image part.
func (d *DOCX) AddImagePart(data []byte, contentType models.ContentType) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty %s image", contentType)
	}
	img, err := common.ImageFromBytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s image: %w", contentType, err)
	}
	img.Format = contentType.Extension()
	ref, err := d.doc.AddImage(img)
	if err != nil {
		return "", fmt.Errorf("add %s image: %w", contentType, err)
	}
	id := ref.RelID()
	d.images[id] = ref
	return id, nil
}

// AddTable renders an output table: fixed layout, single borders, cells
// sized in twips and merges expressed with gridSpan and vMerge.
func (d *DOCX) AddTable(t *models.OutputTable) error {
	table := d.doc.AddTable()
	tp := table.Properties()
	tp.SetLayout(wml.ST_TblLayoutTypeFixed)
	tp.SetAlignment(wml.ST_JcTableCenter)
	tp.Borders().SetAll(wml.ST_BorderSingle, color.Black, borderWidth)

	grid := wml.NewCT_TblGrid()
	for _, w := range t.ColumnWidthsCm {
		col := wml.NewCT_TblGridCol()
		col.WAttr = twipsMeasure(units.CmToLengthUnits(w))
		grid.GridCol = append(grid.GridCol, col)
	}
	table.X().TblGrid = grid

	for _, r := range t.Rows {
		row := table.AddRow()
		row.Properties().SetHeight(cmTwips(r.HeightCm), wml.ST_HeightRuleAtLeast)

		for _, c := range r.Cells {
			cell := row.AddCell()
			cp := cell.Properties()
			cp.SetWidth(cmTwips(c.WidthCm))
			if c.ColSpan > 1 {
				cp.SetColumnSpan(c.ColSpan)
			}
			switch {
			case c.IsVerticalStart:
				cp.SetVerticalMerge(wml.ST_MergeRestart)
			case c.IsVerticalContinuation:
				cp.SetVerticalMerge(wml.ST_MergeContinue)
			}
			cp.SetVerticalAlignment(wml.ST_VerticalJcCenter)
			cp.Borders().SetAll(wml.ST_BorderSingle, color.Black, borderWidth)

			para := cell.AddParagraph()
			para.Properties().SetAlignment(wml.ST_JcCenter)
			if c.IsVerticalContinuation {
				continue
			}
			d.writeContent(para, t.SheetName, c.Content)
		}
	}
	return nil
}

// writeContent fills a cell paragraph. An image that cannot be drawn inline
// degrades to its fallback text.
func (d *DOCX) writeContent(para document.Paragraph, sheet string, content models.CellContent) {
	text := content.Text
	if content.Kind == models.ContentImage && content.Image != nil {
		img := content.Image
		text = img.FallbackText
		if ref, ok := d.images[img.Ref]; ok {
			inl, err := d.inline(para.AddRun(), ref)
			if err == nil {
				inl.SetSize(emu(units.CmToEMU(img.WidthCm)), emu(units.CmToEMU(img.HeightCm)))
				return
			}
			d.log.Warn("Image not drawn, using fallback text",
				zap.String("sheet", sheet),
				zap.String("ref", img.Ref),
				zap.String("fallback", img.FallbackText),
				zap.Error(err))
		}
	}
	if text == "" {
		return
	}
	run := para.AddRun()
	run.Properties().SetSize(cellFontSize)
	run.AddText(text)
}

// Save writes the document as a DOCX package.
func (d *DOCX) Save(w io.Writer) error {
	return d.doc.Save(w)
}

func twips(v int) measurement.Distance {
	return measurement.Distance(v) * measurement.Twips
}

func twipsMeasure(v int) *sharedTypes.ST_TwipsMeasure {
	u := uint64(max(v, 0))
	return &sharedTypes.ST_TwipsMeasure{ST_UnsignedDecimalNumber: &u}
}

func cmTwips(cm float64) measurement.Distance {
	return twips(units.CmToLengthUnits(cm))
}

func emu(v int64) measurement.Distance {
	return measurement.Distance(v) * measurement.EMU
}
