package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
)

// drawingPicture is a pic element together with its anchor.
type drawingPicture struct {
	picture models.Picture
	embedID string
}

// anchorInfo holds the cell anchor shared by the pictures of one anchor element.
type anchorInfo struct {
	hasAnchor        bool
	fromRow, fromCol int
	toRow, toCol     int
	hasTo            bool
	cx, cy           int64
}

// ExtractPictures returns the floating pictures of the worksheet stored at
// sheetPath, in drawing order. A sheet without a drawing has no pictures.
func ExtractPictures(zr *zip.Reader, sheetPath string, ct contentTypeMap) ([]models.Picture, error) {
	sheetRelsXML, err := readZipFile(zr, relsPathFor(sheetPath))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	target := findRelationship(sheetRelsXML, "drawing")
	if target == "" {
		return nil, nil
	}
	drawingPath := resolveRelativePath(target, path.Dir(sheetPath))

	drawingXML, err := readZipFile(zr, drawingPath)
	if err != nil {
		return nil, fmt.Errorf("read drawing %s: %w", drawingPath, err)
	}
	media := make(map[string]string) // rId -> media part path
	if relsXML, err := readZipFile(zr, relsPathFor(drawingPath)); err == nil {
		for _, rel := range parseRelationships(relsXML) {
			if strings.HasSuffix(rel.relType, "/image") {
				media[rel.id] = resolveRelativePath(rel.target, path.Dir(drawingPath))
			}
		}
	}

	found := parseDrawingXML(drawingXML)
	pictures := make([]models.Picture, 0, len(found))
	for i, dp := range found {
		pic := dp.picture
		pic.Index = i
		if mediaPath, ok := media[dp.embedID]; ok {
			// Missing media leaves the payload empty; the picture is dropped later.
			if data, err := readZipFile(zr, mediaPath); err == nil {
				pic.Data = data
			}
			pic.ContentType = ct.lookup(mediaPath)
		}
		pictures = append(pictures, pic)
	}
	return pictures, nil
}

// parseDrawingXML parses drawing XML content and returns its pictures.
func parseDrawingXML(data []byte) []drawingPicture {
	var results []drawingPicture

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		if se, ok := token.(xml.StartElement); ok {
			switch se.Name.Local {
			case "twoCellAnchor", "oneCellAnchor", "absoluteAnchor":
				results = append(results, parseAnchor(decoder, se)...)
			}
		}
	}

	return results
}

// parseAnchor parses an anchor element and the pictures it holds.
func parseAnchor(decoder *xml.Decoder, start xml.StartElement) []drawingPicture {
	var pics []drawingPicture
	anchor := anchorInfo{hasAnchor: start.Name.Local != "absoluteAnchor"}

	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "from":
				anchor.fromRow, anchor.fromCol = parseMarker(decoder)
				depth--
			case "to":
				anchor.toRow, anchor.toCol = parseMarker(decoder)
				anchor.hasTo = true
				depth--
			case "ext":
				if depth == 2 {
					anchor.cx, anchor.cy = extentAttrs(t)
				}
			case "pic":
				pics = append(pics, parsePicture(decoder))
				depth--
			case "grpSp":
				pics = append(pics, parseGroupShape(decoder)...)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	if !anchor.hasTo {
		anchor.toRow, anchor.toCol = anchor.fromRow, anchor.fromCol
	}
	for i := range pics {
		p := &pics[i].picture
		p.HasAnchor = anchor.hasAnchor
		p.FromRow, p.FromCol = anchor.fromRow, anchor.fromCol
		p.ToRow, p.ToCol = anchor.toRow, anchor.toCol
		if p.ExtentCX <= 0 || p.ExtentCY <= 0 {
			p.ExtentCX, p.ExtentCY = anchor.cx, anchor.cy
		}
	}
	return pics
}

// parseGroupShape collects the pictures of a group shape recursively.
func parseGroupShape(decoder *xml.Decoder) []drawingPicture {
	var pics []drawingPicture
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "pic":
				pics = append(pics, parsePicture(decoder))
				depth--
			case "grpSp":
				pics = append(pics, parseGroupShape(decoder)...)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	return pics
}

// parsePicture parses a pic element.
func parsePicture(decoder *xml.Decoder) drawingPicture {
	var dp drawingPicture

	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "cNvPr":
				dp.picture.Name = attr(t, "name")
			case "blip":
				dp.embedID = attr(t, "embed")
			case "srcRect":
				dp.picture.SrcRect = parseSrcRect(t)
			case "xfrm":
				dp.picture.ExtentCX, dp.picture.ExtentCY = parseXfrmExtent(decoder)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	return dp
}

// parseMarker parses a from/to cell marker, returning 0-based row and column.
func parseMarker(decoder *xml.Decoder) (row, col int) {
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "row", "col":
				text, err := readElementText(decoder)
				depth--
				if err != nil {
					continue
				}
				v, err := strconv.Atoi(strings.TrimSpace(text))
				if err != nil {
					continue
				}
				if t.Name.Local == "row" {
					row = v
				} else {
					col = v
				}
			}
		case xml.EndElement:
			depth--
		}
	}

	return
}

// parseXfrmExtent parses the ext child of an xfrm element (EMU).
func parseXfrmExtent(decoder *xml.Decoder) (cx, cy int64) {
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == "ext" {
				cx, cy = extentAttrs(t)
			}
		case xml.EndElement:
			depth--
		}
	}

	return
}

func extentAttrs(se xml.StartElement) (cx, cy int64) {
	cx, _ = strconv.ParseInt(attr(se, "cx"), 10, 64)
	cy, _ = strconv.ParseInt(attr(se, "cy"), 10, 64)
	return
}

// parseSrcRect reads the crop rectangle of a picture fill. Absent sides are 0.
func parseSrcRect(se xml.StartElement) *models.SrcRect {
	side := func(name string) int {
		v, _ := intAttr(se, name)
		return v
	}
	rect := &models.SrcRect{L: side("l"), T: side("t"), R: side("r"), B: side("b")}
	if *rect == (models.SrcRect{}) {
		return nil
	}
	return rect
}
