package images

import (
	"slices"

	"go.uber.org/zap"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
)

// Deduplicate keeps exactly one image per anchor top-left cell. Competing
// images (typically duplicate shapes written by lossy re-saves) are resolved
// by Better. The result is ordered by top-left row, then column.
func Deduplicate(candidates []models.ImageAnchor, log *zap.Logger) []models.ImageAnchor {
	if log == nil {
		log = zap.NewNop()
	}

	best := make(map[models.GridCoordinate]models.ImageAnchor, len(candidates))
	counts := make(map[models.GridCoordinate]int, len(candidates))
	for _, img := range candidates {
		pos := img.TopLeft()
		counts[pos]++
		cur, ok := best[pos]
		if !ok || Better(img, cur) {
			best[pos] = img
		}
	}

	result := make([]models.ImageAnchor, 0, len(best))
	for pos, img := range best {
		if n := counts[pos]; n > 1 {
			log.Debug("Selected image among duplicates",
				zap.Int("row", pos.Row), zap.Int("col", pos.Col),
				zap.Int("candidates", n), zap.Int("index", img.Index), zap.Int("bytes", len(img.Data)))
		}
		result = append(result, img)
	}
	slices.SortFunc(result, func(a, b models.ImageAnchor) int {
		if a.StartRow != b.StartRow {
			return a.StartRow - b.StartRow
		}
		return a.StartCol - b.StartCol
	})
	return result
}

// Better reports whether a should win over b: larger payload first, then
// larger display area, then earlier discovery.
func Better(a, b models.ImageAnchor) bool {
	if len(a.Data) != len(b.Data) {
		return len(a.Data) > len(b.Data)
	}
	if a.Area() != b.Area() {
		return a.Area() > b.Area()
	}
	return a.Index < b.Index
}
