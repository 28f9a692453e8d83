package parser

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
)

const printAreaName = "_xlnm.Print_Area"

// ExtractPrintAreas returns the declared print area of each sheet, keyed by
// sheet name. A print area made of several ranges is reduced to their
// bounding box.
func ExtractPrintAreas(f *excelize.File) map[string]models.TableRange {
	result := make(map[string]models.TableRange)

	for _, dn := range f.GetDefinedName() {
		if !strings.EqualFold(dn.Name, printAreaName) {
			continue
		}
		sheetName, areas := parsePrintAreaReference(dn.RefersTo)
		if sheetName == "" {
			sheetName = dn.Scope
		}
		for _, area := range areas {
			if prev, ok := result[sheetName]; ok {
				area = models.TableRange{
					StartRow: min(prev.StartRow, area.StartRow),
					EndRow:   max(prev.EndRow, area.EndRow),
					StartCol: min(prev.StartCol, area.StartCol),
					EndCol:   max(prev.EndCol, area.EndCol),
				}
			}
			result[sheetName] = area
		}
	}

	return result
}

// parsePrintAreaReference parses a print area reference string.
// Format: 'SheetName'!$A$1:$D$10 or SheetName!$A$1:$D$10,SheetName!$F$1:$G$4
func parsePrintAreaReference(ref string) (string, []models.TableRange) {
	var areas []models.TableRange

	var sheetName string
	for _, part := range strings.Split(ref, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		idx := strings.LastIndex(part, "!")
		if idx < 0 {
			continue
		}
		if sheetName == "" {
			sheetName = strings.ReplaceAll(strings.Trim(part[:idx], "'"), "''", "'")
		}
		if area, ok := parseRangeToArea(part[idx+1:]); ok {
			areas = append(areas, area)
		}
	}

	return sheetName, areas
}

// parseRangeToArea parses a range string like $A$1:$D$10 into 0-based bounds.
// A single cell reference yields a one-cell range.
func parseRangeToArea(rangeStr string) (models.TableRange, bool) {
	rangeStr = strings.ReplaceAll(rangeStr, "$", "")

	parts := strings.Split(rangeStr, ":")
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	if len(parts) != 2 {
		return models.TableRange{}, false
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return models.TableRange{}, false
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return models.TableRange{}, false
	}

	return models.TableRange{
		StartRow: min(startRow, endRow) - 1,
		EndRow:   max(startRow, endRow) - 1,
		StartCol: min(startCol, endCol) - 1,
		EndCol:   max(startCol, endCol) - 1,
	}, true
}
