// Package parser loads xlsx workbooks into the sheet model used for
// transcription.
package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
)

// ErrUnsupportedFormat indicates the input is not an OOXML workbook.
var ErrUnsupportedFormat = errors.New("unsupported workbook format")

// PartError reports a failure reading one part of a sheet.
type PartError struct {
	SheetName string
	Part      string // "cells", "merges", "pictures"
	Err       error
}

func (e *PartError) Error() string {
	return fmt.Sprintf("sheet %q (%s): %v", e.SheetName, e.Part, e.Err)
}

func (e *PartError) Unwrap() error {
	return e.Err
}

var (
	zipMagic = []byte("PK\x03\x04")
	// Compound File Binary header used by legacy .xls workbooks.
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Option configures workbook loading.
type Option func(*loader)

// WithLogger sets the logger used to report skipped content.
func WithLogger(log *zap.Logger) Option {
	return func(l *loader) {
		if log != nil {
			l.log = log
		}
	}
}

type loader struct {
	log *zap.Logger
}

// OpenWorkbook loads the workbook at path.
func OpenWorkbook(filename string, opts ...Option) (*models.Workbook, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ReadWorkbook(bytes.NewReader(data), int64(len(data)), filepath.Base(filename), opts...)
}

// ReadWorkbook loads a workbook of size bytes from r. Sheets are returned in
// tab order; chart sheets and other non-worksheet tabs are skipped.
func ReadWorkbook(r io.ReaderAt, size int64, name string, opts ...Option) (*models.Workbook, error) {
	l := &loader{log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}

	head := make([]byte, len(cfbMagic))
	n, _ := r.ReadAt(head, 0)
	head = head[:n]
	if bytes.HasPrefix(head, cfbMagic) {
		return nil, fmt.Errorf("%w: legacy binary workbook", ErrUnsupportedFormat)
	}
	if !bytes.HasPrefix(head, zipMagic) {
		return nil, fmt.Errorf("%w: not a zip package", ErrUnsupportedFormat)
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	f, err := excelize.OpenReader(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheetPaths := getSheetPartMap(zr)
	contentTypes := parseContentTypes(zr)

	printAreas := ExtractPrintAreas(f)

	wb := &models.Workbook{Name: name}
	for index, sheetName := range f.GetSheetList() {
		sheetPath, ok := sheetPaths[sheetName]
		if !ok {
			l.log.Debug("Skipping non-worksheet tab", zap.String("sheet", sheetName))
			continue
		}
		sheet, err := l.readSheet(f, zr, index, sheetName, sheetPath, contentTypes)
		if err != nil {
			return nil, err
		}
		if area, ok := printAreas[sheetName]; ok {
			sheet.PrintArea = &area
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

func (l *loader) readSheet(f *excelize.File, zr *zip.Reader, index int, name, sheetPath string, ct contentTypeMap) (*models.Sheet, error) {
	sheet := models.NewSheet(index, name)

	sheetXML, err := readZipFile(zr, sheetPath)
	if err != nil {
		return nil, &PartError{SheetName: name, Part: "cells", Err: err}
	}
	layout := parseSheetXML(sheetXML)
	layout.applyTo(sheet)

	if err := ExtractCells(f, sheet, layout.styles); err != nil {
		return nil, &PartError{SheetName: name, Part: "cells", Err: err}
	}

	merges, err := ExtractMerges(f, name)
	if err != nil {
		return nil, &PartError{SheetName: name, Part: "merges", Err: err}
	}
	sheet.MergedRegions = merges

	pictures, err := ExtractPictures(zr, sheetPath, ct)
	if err != nil {
		// Pictures are optional content; the sheet is still transcribed.
		l.log.Warn("Failed to read sheet drawing", zap.String("sheet", name), zap.Error(err))
	}
	sheet.Pictures = pictures

	l.log.Debug("Loaded sheet",
		zap.String("sheet", name),
		zap.Int("cells", len(sheet.Cells)),
		zap.Int("merges", len(sheet.MergedRegions)),
		zap.Int("pictures", len(sheet.Pictures)))
	return sheet, nil
}

// getSheetPartMap returns a mapping of worksheet names to their part paths.
func getSheetPartMap(zr *zip.Reader) map[string]string {
	workbookXML, err := readZipFile(zr, "xl/workbook.xml")
	if err != nil {
		return map[string]string{}
	}
	sheetsInfo := parseWorkbookSheets(workbookXML)

	wbRelsXML, err := readZipFile(zr, "xl/_rels/workbook.xml.rels")
	if err != nil {
		return map[string]string{}
	}
	return parseWorkbookRels(wbRelsXML, sheetsInfo)
}

// Helper functions

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	return fs.ReadFile(zr, strings.TrimPrefix(name, "/"))
}

func readElementText(decoder *xml.Decoder) (string, error) {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text.String(), nil
}

// resolveRelativePath resolves a relationship target against the directory of
// the part owning the relationship.
func resolveRelativePath(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	return path.Clean(path.Join(baseDir, target))
}

// relsPathFor returns the relationships part of partPath.
func relsPathFor(partPath string) string {
	dir, file := path.Split(partPath)
	return dir + "_rels/" + file + ".rels"
}

func parseWorkbookSheets(data []byte) map[string]string {
	result := make(map[string]string) // rId -> sheet name
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "sheet" {
			var name, rID string
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "name":
					name = attr.Value
				case "id":
					rID = attr.Value
				}
			}
			if name != "" && rID != "" {
				result[rID] = name
			}
		}
	}

	return result
}

func parseWorkbookRels(data []byte, sheetsInfo map[string]string) map[string]string {
	result := make(map[string]string) // sheet name -> part path
	for _, rel := range parseRelationships(data) {
		if sheetName, ok := sheetsInfo[rel.id]; ok && strings.HasSuffix(rel.relType, "/worksheet") {
			result[sheetName] = resolveRelativePath(rel.target, "xl")
		}
	}
	return result
}

type relationship struct {
	id      string
	relType string
	target  string
}

func parseRelationships(data []byte) []relationship {
	var result []relationship
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			var rel relationship
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "Id":
					rel.id = attr.Value
				case "Type":
					rel.relType = attr.Value
				case "Target":
					rel.target = attr.Value
				}
			}
			result = append(result, rel)
		}
	}

	return result
}

// findRelationship returns the target of the first relationship whose type
// ends with "/"+kind.
func findRelationship(data []byte, kind string) string {
	for _, rel := range parseRelationships(data) {
		if strings.HasSuffix(rel.relType, "/"+kind) {
			return rel.target
		}
	}
	return ""
}

// contentTypeMap holds the package content types.
type contentTypeMap struct {
	defaults  map[string]string // extension -> content type
	overrides map[string]string // part name -> content type
}

func parseContentTypes(zr *zip.Reader) contentTypeMap {
	result := contentTypeMap{defaults: map[string]string{}, overrides: map[string]string{}}
	data, err := readZipFile(zr, "[Content_Types].xml")
	if err != nil {
		return result
	}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		var key, value string
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "Extension", "PartName":
				key = attr.Value
			case "ContentType":
				value = attr.Value
			}
		}
		switch se.Name.Local {
		case "Default":
			result.defaults[strings.ToLower(key)] = value
		case "Override":
			result.overrides[strings.TrimPrefix(key, "/")] = value
		}
	}
	return result
}

// lookup returns the content type of partPath, falling back to its extension.
func (m contentTypeMap) lookup(partPath string) string {
	if ct, ok := m.overrides[partPath]; ok {
		return ct
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(partPath), "."))
	if ct, ok := m.defaults[ext]; ok {
		return ct
	}
	return ext
}
