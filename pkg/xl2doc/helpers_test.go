package xl2doc

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := range 40 {
		for x := range 40 {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 6), G: uint8(y * 6), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	return buf.Bytes()
}

func borderStyle(t *testing.T, f *excelize.File) int {
	t.Helper()
	style, err := f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		t.Fatalf("NewStyle failed: %v", err)
	}
	return style
}

// writeTestWorkbook saves a workbook with three sheets:
//
//	Data:  bordered B2:D5, B4:C5 merged, a picture anchored at F2
//	Line:  a single bordered row, which yields no table
//	Blank: no content, transcribed with the fallback range
func writeTestWorkbook(t *testing.T, dir, name string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Data"); err != nil {
		t.Fatalf("SetSheetName failed: %v", err)
	}
	border := borderStyle(t, f)
	f.SetCellValue("Data", "B2", "Item")
	f.SetCellValue("Data", "C2", "Result")
	f.SetCellValue("Data", "B3", "pH")
	f.SetCellValue("Data", "C3", 7.2)
	f.SetCellValue("Data", "B4", "merged")
	if err := f.SetCellStyle("Data", "B2", "D5", border); err != nil {
		t.Fatalf("SetCellStyle failed: %v", err)
	}
	if err := f.MergeCell("Data", "B4", "C5"); err != nil {
		t.Fatalf("MergeCell failed: %v", err)
	}
	if err := f.AddPictureFromBytes("Data", "F2", &excelize.Picture{
		Extension: ".png",
		File:      testPNG(t),
		Format:    &excelize.GraphicOptions{Positioning: "oneCell"},
	}); err != nil {
		t.Fatalf("AddPictureFromBytes failed: %v", err)
	}

	if _, err := f.NewSheet("Line"); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}
	f.SetCellValue("Line", "A1", "header only")
	if err := f.SetCellStyle("Line", "A1", "D1", border); err != nil {
		t.Fatalf("SetCellStyle failed: %v", err)
	}

	if _, err := f.NewSheet("Blank"); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	return path
}
