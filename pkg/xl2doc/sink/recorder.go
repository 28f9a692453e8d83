package sink

import (
	"fmt"
	"sync"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
)

// OpKind identifies a recorded sink call.
type OpKind string

const (
	OpStyle     OpKind = "style"
	OpParagraph OpKind = "paragraph"
	OpImage     OpKind = "image"
	OpTable     OpKind = "table"
	OpPageBreak OpKind = "page_break"
	OpTOC       OpKind = "toc"
	OpSection   OpKind = "section"
)

// Op is one recorded call.
type Op struct {
	Kind      OpKind              `json:"kind"`
	Style     *StyleDefinition    `json:"style,omitempty"`
	Paragraph *Paragraph          `json:"paragraph,omitempty"`
	Section   *Section            `json:"section,omitempty"`
	Table     *models.OutputTable `json:"table,omitempty"`
	// ImageRef and ImageBytes describe an embedded image part.
	ImageRef   string             `json:"image_ref,omitempty"`
	ImageBytes int                `json:"image_bytes,omitempty"`
	ImageType  models.ContentType `json:"image_type,omitempty"`
}

// Recorder is an in-memory sink that keeps every call in order.
type Recorder struct {
	mu  sync.Mutex
	ops []Op
	// FailImages makes AddImagePart fail for the listed content types.
	FailImages map[models.ContentType]bool
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

// Ops returns a copy of the recorded calls.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Tables returns the recorded tables in order.
func (r *Recorder) Tables() []*models.OutputTable {
	var out []*models.OutputTable
	for _, op := range r.Ops() {
		if op.Kind == OpTable {
			out = append(out, op.Table)
		}
	}
	return out
}

// Paragraphs returns the recorded paragraphs in order.
func (r *Recorder) Paragraphs() []Paragraph {
	var out []Paragraph
	for _, op := range r.Ops() {
		if op.Kind == OpParagraph {
			out = append(out, *op.Paragraph)
		}
	}
	return out
}

// Count returns how many calls of kind were recorded.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops() {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Recorder) AddStyleDefinition(def StyleDefinition) error {
	r.record(Op{Kind: OpStyle, Style: &def})
	return nil
}

func (r *Recorder) AddParagraph(p Paragraph) error {
	r.record(Op{Kind: OpParagraph, Paragraph: &p})
	return nil
}

func (r *Recorder) AddImagePart(data []byte, contentType models.ContentType) (string, error) {
	if r.FailImages[contentType] {
		return "", fmt.Errorf("embedding %s images is disabled", contentType)
	}
	ref := fmt.Sprintf("img%d", r.Count(OpImage)+1)
	r.record(Op{Kind: OpImage, ImageRef: ref, ImageBytes: len(data), ImageType: contentType})
	return ref, nil
}

func (r *Recorder) AddTable(t *models.OutputTable) error {
	r.record(Op{Kind: OpTable, Table: t})
	return nil
}

func (r *Recorder) AddPageBreak() error {
	r.record(Op{Kind: OpPageBreak})
	return nil
}

func (r *Recorder) AddTableOfContents() error {
	r.record(Op{Kind: OpTOC})
	return nil
}

func (r *Recorder) SetSection(s Section) error {
	r.record(Op{Kind: OpSection, Section: &s})
	return nil
}
