// Package units converts between spreadsheet and document measurement units.
package units

import "math"

// EMUPerPixel is the number of EMUs (English Metric Units) per pixel at 96 DPI.
// 1 inch = 914400 EMU, 1 inch = 96 pixels at 96 DPI
// Therefore: 914400 / 96 = 9525 EMU per pixel
const EMUPerPixel = 9525

// EMUPerCm is the number of EMUs per centimeter.
const EMUPerCm = 360000

// EMUPerPoint is the number of EMUs per typographic point (914400 / 72).
const EMUPerPoint = 12700

// LengthUnitsPerCm is the number of document length units (twips) per
// centimeter, rounded the way word processors do.
const LengthUnitsPerCm = 567

const (
	// CmPerChar approximates the width of one column character unit.
	CmPerChar = 0.18
	// CmPerPoint is 1/72 inch in centimeters, truncated.
	CmPerPoint = 0.0353
)

const (
	// MinColumnWidthCm is the narrowest column emitted.
	MinColumnWidthCm = 1.0
	// MinImageExtentCm is the smallest image width or height emitted.
	MinImageExtentCm = 0.5
	// ImageMarginCm is subtracted from a cell extent when sizing images.
	ImageMarginCm = 0.2
)

// CharWidthToCm converts a column width in character units to centimeters.
func CharWidthToCm(chars float64) float64 {
	return chars * CmPerChar
}

// PointsToCm converts points to centimeters.
func PointsToCm(points float64) float64 {
	return points * CmPerPoint
}

// CmToLengthUnits converts centimeters to document length units.
func CmToLengthUnits(cm float64) int {
	return int(math.Round(cm * LengthUnitsPerCm))
}

// CmToEMU converts centimeters to EMU.
func CmToEMU(cm float64) int64 {
	return int64(math.Round(cm * EMUPerCm))
}

// EMUToPixels converts EMU (English Metric Units) to pixels at 96 DPI.
// Excel uses EMU for internal coordinate representation.
func EMUToPixels(emu int64) float64 {
	return float64(emu) / EMUPerPixel
}

// PixelsToEMU converts pixels at 96 DPI back to EMU.
func PixelsToEMU(px float64) int64 {
	return int64(math.Round(px * EMUPerPixel))
}

// EMUToPoints converts EMU to points.
func EMUToPoints(emu int64) float64 {
	return float64(emu) / EMUPerPoint
}

// ColumnWidthCm converts a column width to centimeters, floored at
// MinColumnWidthCm. Near-zero columns break fixed table layouts.
func ColumnWidthCm(chars float64) float64 {
	return math.Max(CharWidthToCm(chars), MinColumnWidthCm)
}

// RowHeightCm converts a row height in points to centimeters.
func RowHeightCm(points float64) float64 {
	return math.Max(PointsToCm(points), 0)
}

// ImageExtentCm returns the image extent fitted into a cell extent, leaving
// margin and flooring at MinImageExtentCm.
func ImageExtentCm(cellCm, margin float64) float64 {
	return math.Max(cellCm-margin, MinImageExtentCm)
}
