package xl2doc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/images"
	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/layout"
	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/parser"
	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/sink"
)

// Converter runs the per-sheet transcription pipeline and writes its results
// into a sink.
type Converter struct {
	opts    Options
	log     *zap.Logger
	cropper *images.Cropper
}

// NewConverter returns a converter. A nil logger discards all output.
func NewConverter(opts Options, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{
		opts:    opts,
		log:     log,
		cropper: images.NewCropper(opts.Crop, log.Named("images")),
	}
}

// TranscribedWorkbook holds the tables of one workbook in sheet order.
type TranscribedWorkbook struct {
	Name   string
	Tables []*models.OutputTable
}

// TranscribeSheet turns one sheet into an output table. It returns nil and no
// error when the detected range is degenerate.
func (c *Converter) TranscribeSheet(ctx context.Context, sheet *models.Sheet) (*models.OutputTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := c.log.With(zap.String("sheet", sheet.Name))

	candidates := images.Extract(sheet.Pictures, log.Named("images"))
	det := layout.DetectRange(sheet, candidates, c.opts.Detect, log.Named("layout"))
	if det.Range.IsDegenerate() {
		log.Info("Skipping sheet without a table", zap.Any("range", det.Range))
		return nil, nil
	}

	unique := images.Deduplicate(candidates, log.Named("images"))
	resolved, err := c.cropper.ResolveAll(ctx, unique)
	if err != nil {
		return nil, NewConversionError(sheet.Name, ComponentCrop, err)
	}

	grid := layout.BuildMergeGrid(sheet, det.Range)
	table := layout.Assemble(sheet, grid, resolved, c.opts.Assemble, log.Named("layout"))
	log.Debug("Sheet transcribed",
		zap.Int("rows", len(table.Rows)),
		zap.Int("cols", len(table.ColumnWidthsCm)),
		zap.Int("images", len(table.Images())),
		zap.Bool("fallback_range", det.UsedFallback))
	return table, nil
}

// TranscribeWorkbook transcribes the sheets of wb concurrently. Tables come
// back in sheet order with skipped sheets left out. Per-sheet failures do not
// stop the other sheets; they are logged and returned combined.
func (c *Converter) TranscribeWorkbook(ctx context.Context, wb *models.Workbook) (*TranscribedWorkbook, error) {
	results := make([]*models.OutputTable, len(wb.Sheets))

	var (
		mu      sync.Mutex
		errList error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.opts.Workers, 1))
	for i, sheet := range wb.Sheets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			table, err := c.TranscribeSheet(gctx, sheet)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				c.log.Warn("Failed to transcribe sheet", zap.String("sheet", sheet.Name), zap.Error(err))
				mu.Lock()
				errList = multierr.Append(errList, err)
				mu.Unlock()
				return nil
			}
			results[i] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &TranscribedWorkbook{Name: wb.Name}
	for _, t := range results {
		if t != nil {
			out.Tables = append(out.Tables, t)
		}
	}
	return out, errList
}

// Write emits each table with its title and trailing spacer. Images that
// cannot be embedded fall back to their text.
func (c *Converter) Write(s sink.Sink, tables []*models.OutputTable) error {
	for _, t := range tables {
		title := sink.Paragraph{Text: t.Title, Style: StyleHeading2, Alignment: sink.AlignCenter}
		if err := s.AddParagraph(title); err != nil {
			return NewConversionError(t.SheetName, ComponentWrite, err)
		}
		c.embedImages(s, t)
		if err := s.AddTable(t); err != nil {
			return NewConversionError(t.SheetName, ComponentWrite, err)
		}
		if err := s.AddParagraph(sink.Paragraph{SpacingAfterPt: spacerPt}); err != nil {
			return NewConversionError(t.SheetName, ComponentWrite, err)
		}
	}
	return nil
}

func (c *Converter) embedImages(s sink.Sink, t *models.OutputTable) {
	for _, img := range t.Images() {
		ref, err := s.AddImagePart(img.Data, img.ContentType)
		if err != nil {
			img.Ref = ""
			c.log.Warn("Image not embedded, using fallback text",
				zap.String("image", img.Name),
				zap.String("fallback", img.FallbackText),
				zap.Error(NewConversionError(t.SheetName, ComponentEmbed, err)))
			continue
		}
		img.Ref = ref
	}
}

// OpenWorkbook reads an xlsx workbook, mapping provider failures onto
// ErrFileNotFound and ErrInvalidFormat.
func OpenWorkbook(path string, log *zap.Logger) (*models.Workbook, error) {
	wb, err := parser.OpenWorkbook(path, parser.WithLogger(log))
	if err == nil {
		return wb, nil
	}
	var pe *parser.PartError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	case errors.As(err, &pe):
		return nil, NewConversionError(pe.SheetName, pe.Part, pe.Err)
	}
	return nil, fmt.Errorf("failed to open %s: %w", path, err)
}

// Transcribe opens and transcribes every input in order. Sheet failures are
// logged; open failures abort.
func (c *Converter) Transcribe(ctx context.Context, inputs []string) ([]*TranscribedWorkbook, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	books := make([]*TranscribedWorkbook, 0, len(inputs))
	for _, path := range inputs {
		wb, err := OpenWorkbook(path, c.log.Named("parser"))
		if err != nil {
			return nil, err
		}
		tb, err := c.TranscribeWorkbook(ctx, wb)
		if tb == nil {
			return nil, err
		}
		if err != nil {
			c.log.Warn("Workbook transcribed with errors",
				zap.String("workbook", wb.Name),
				zap.Int("failed_sheets", len(multierr.Errors(err))))
		}
		c.log.Info("Workbook transcribed", zap.String("workbook", wb.Name), zap.Int("tables", len(tb.Tables)))
		books = append(books, tb)
	}
	return books, nil
}

// Convert transcribes inputs and writes them as a DOCX document to output.
func Convert(ctx context.Context, inputs []string, output string, opts Options, log *zap.Logger) (err error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	c := NewConverter(opts, log)
	books, err := c.Transcribe(ctx, inputs)
	if err != nil {
		return err
	}

	doc := sink.NewDOCX(log.Named("sink"))
	if err := c.Render(doc, books); err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	if err := doc.Save(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	log.Info("Document written", zap.String("output", output), zap.Int("workbooks", len(books)))
	return nil
}
