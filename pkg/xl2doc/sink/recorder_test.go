package sink

import (
	"testing"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.FailImages = map[models.ContentType]bool{models.ContentTypeTIFF: true}

	var s Sink = r
	if _, ok := s.(PageBreaker); !ok {
		t.Error("Recorder should support page breaks")
	}
	if _, ok := s.(Saver); ok {
		t.Error("Recorder should not be a Saver")
	}

	s.AddParagraph(Paragraph{Text: "title", Alignment: AlignCenter})
	first, err := s.AddImagePart([]byte{1, 2, 3}, models.ContentTypePNG)
	if err != nil {
		t.Fatalf("AddImagePart failed: %v", err)
	}
	second, _ := s.AddImagePart([]byte{4}, models.ContentTypeJPEG)
	if first == second {
		t.Errorf("Image references should be unique, got %q twice", first)
	}
	if _, err := s.AddImagePart([]byte{5}, models.ContentTypeTIFF); err == nil {
		t.Error("Expected TIFF embedding to fail")
	}
	table := &models.OutputTable{Title: "Table 1 Sheet1"}
	s.AddTable(table)

	if r.Count(OpImage) != 2 {
		t.Errorf("Expected 2 images, got %d", r.Count(OpImage))
	}
	if tables := r.Tables(); len(tables) != 1 || tables[0] != table {
		t.Errorf("Tables = %v", tables)
	}
	paras := r.Paragraphs()
	if len(paras) != 1 || paras[0].Text != "title" || paras[0].Alignment != AlignCenter {
		t.Errorf("Paragraphs = %+v", paras)
	}
	ops := r.Ops()
	if len(ops) != 4 || ops[0].Kind != OpParagraph || ops[3].Kind != OpTable {
		t.Errorf("Unexpected op order %+v", ops)
	}
}
