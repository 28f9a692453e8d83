package models

import (
	"fmt"
	"strings"
)

// ContentType is the closed set of image formats accepted for embedding.
type ContentType string

const (
	ContentTypeJPEG ContentType = "jpeg"
	ContentTypePNG  ContentType = "png"
	ContentTypeGIF  ContentType = "gif"
	ContentTypeBMP  ContentType = "bmp"
	ContentTypeTIFF ContentType = "tiff"
)

// ParseContentType accepts a MIME type ("image/png"), an extension (".jpg")
// or a bare format name and maps it onto the closed set.
func ParseContentType(s string) (ContentType, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "image/")
	v = strings.TrimPrefix(v, ".")
	switch v {
	case "jpeg", "jpg", "jpe", "jfif", "pjpeg":
		return ContentTypeJPEG, nil
	case "png", "x-png":
		return ContentTypePNG, nil
	case "gif":
		return ContentTypeGIF, nil
	case "bmp", "x-bmp", "x-ms-bmp", "dib":
		return ContentTypeBMP, nil
	case "tiff", "tif":
		return ContentTypeTIFF, nil
	}
	return "", fmt.Errorf("unsupported image content type %q", s)
}

// MIME returns the MIME type string.
func (c ContentType) MIME() string {
	return "image/" + string(c)
}

// Extension returns the file extension without the leading dot.
func (c ContentType) Extension() string {
	if c == ContentTypeJPEG {
		return "jpg"
	}
	return string(c)
}

// SrcRect is the OOXML source rectangle of a picture fill. Values are in
// thousandths of a percent, as stored in the drawing part.
type SrcRect struct {
	L int `json:"l"`
	T int `json:"t"`
	R int `json:"r"`
	B int `json:"b"`
}

// Picture is a floating picture shape as found in a sheet drawing.
type Picture struct {
	// Index is the discovery order of the picture within its sheet.
	Index int `json:"index"`
	// Name is the non-visual shape name, if any.
	Name string `json:"name,omitempty"`
	// Data is the raw media part payload.
	Data []byte `json:"-"`
	// ContentType is the media type as declared by the package (MIME or extension).
	ContentType string `json:"content_type"`
	// HasAnchor is false when the drawing carries no cell anchor (absoluteAnchor).
	HasAnchor bool `json:"has_anchor"`
	FromRow   int  `json:"from_row"`
	FromCol   int  `json:"from_col"`
	ToRow     int  `json:"to_row"`
	ToCol     int  `json:"to_col"`
	// ExtentCX is the shape width in EMU (0 if unknown).
	ExtentCX int64 `json:"cx,omitempty"`
	// ExtentCY is the shape height in EMU (0 if unknown).
	ExtentCY int64 `json:"cy,omitempty"`
	// SrcRect is the optional crop rectangle of the picture fill.
	SrcRect *SrcRect `json:"src_rect,omitempty"`
}

// CropRect holds crop percentages, each in [0,100).
type CropRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// IsZero reports whether no side is cropped.
func (c CropRect) IsZero() bool {
	return c.Left == 0 && c.Top == 0 && c.Right == 0 && c.Bottom == 0
}

// ImageAnchor is a normalized image candidate anchored to a cell range.
type ImageAnchor struct {
	// Index is the discovery order of the source picture.
	Index    int `json:"index"`
	StartRow int `json:"start_row"`
	EndRow   int `json:"end_row"`
	StartCol int `json:"start_col"`
	EndCol   int `json:"end_col"`
	// PixelWidth is the display width derived from the anchor.
	PixelWidth float64 `json:"w"`
	// PixelHeight is the display height derived from the anchor.
	PixelHeight float64 `json:"h"`
	// Data is the image payload.
	Data        []byte      `json:"-"`
	ContentType ContentType `json:"content_type"`
	Name        string      `json:"name,omitempty"`
	Crop        CropRect    `json:"crop"`
}

// HasCropping reports whether any crop percentage is non-zero.
func (a ImageAnchor) HasCropping() bool {
	return !a.Crop.IsZero()
}

// TopLeft returns the anchor's top-left cell.
func (a ImageAnchor) TopLeft() GridCoordinate {
	return GridCoordinate{Row: a.StartRow, Col: a.StartCol}
}

// Area returns the display area in square pixels.
func (a ImageAnchor) Area() float64 {
	return a.PixelWidth * a.PixelHeight
}

// WithData returns a copy of the anchor carrying a different payload.
func (a ImageAnchor) WithData(data []byte) ImageAnchor {
	a.Data = data
	return a
}
