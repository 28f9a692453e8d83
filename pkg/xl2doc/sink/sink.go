// Package sink defines the document writer the converter renders into and
// provides its adapters: a DOCX writer and an in-memory recorder.
package sink

import (
	"io"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
)

// Alignment is the horizontal alignment of a paragraph.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
)

func (a Alignment) String() string {
	if a == AlignCenter {
		return "center"
	}
	return "left"
}

// NoOutline marks a style that does not take part in the table of contents.
const NoOutline = -1

// StyleDefinition describes a paragraph style.
type StyleDefinition struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	BasedOn string `json:"based_on,omitempty"`
	Next    string `json:"next,omitempty"`
	// Default makes the style the document default paragraph style.
	Default bool `json:"default,omitempty"`

	Bold   bool    `json:"bold,omitempty"`
	SizePt float64 `json:"size_pt,omitempty"`
	// Font is the latin font; EastAsiaFont applies to CJK text.
	Font         string `json:"font,omitempty"`
	EastAsiaFont string `json:"east_asia_font,omitempty"`

	SpacingBeforePt float64 `json:"spacing_before_pt,omitempty"`
	SpacingAfterPt  float64 `json:"spacing_after_pt,omitempty"`
	// OutlineLevel is 0-based; NoOutline keeps the style out of the TOC.
	OutlineLevel int `json:"outline_level"`
}

// Paragraph is a single-run text paragraph.
type Paragraph struct {
	Text           string    `json:"text"`
	Style          string    `json:"style,omitempty"`
	Alignment      Alignment `json:"alignment"`
	SpacingAfterPt float64   `json:"spacing_after_pt,omitempty"`
}

// Section describes page geometry in twips.
type Section struct {
	WidthTwips  int  `json:"width"`
	HeightTwips int  `json:"height"`
	Landscape   bool `json:"landscape"`
	MarginTwips int  `json:"margin"`
	// HeaderTwips is the distance of header and footer from the page edge.
	HeaderTwips int `json:"header"`
}

// Sink receives the rendered document.
type Sink interface {
	AddStyleDefinition(StyleDefinition) error
	AddParagraph(Paragraph) error
	// AddImagePart embeds an image and returns the reference AddTable
	// resolves ImageContent.Ref against.
	AddImagePart(data []byte, contentType models.ContentType) (string, error)
	AddTable(*models.OutputTable) error
}

// PageBreaker is implemented by sinks that support explicit page breaks.
type PageBreaker interface {
	AddPageBreak() error
}

// TOCWriter is implemented by sinks that can emit a table of contents field.
type TOCWriter interface {
	AddTableOfContents() error
}

// Sectioner is implemented by sinks with page geometry.
type Sectioner interface {
	SetSection(Section) error
}

// Saver is implemented by sinks that serialize to a byte stream.
type Saver interface {
	Save(w io.Writer) error
}
