// Package xl2doc transcribes spreadsheet worksheets into word-processing
// tables that keep the sheet's geometry: merged cells, column widths, row
// heights and floating pictures.
package xl2doc

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/images"
	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/layout"
)

// Layout selects how transcribed tables are arranged in the document.
type Layout string

const (
	// LayoutReport wraps the tables of one workbook in a chaptered report.
	LayoutReport Layout = "report"
	// LayoutCombined gives every workbook its own heading and page.
	LayoutCombined Layout = "combined"
	// LayoutTablesOnly emits table titles and tables only.
	LayoutTablesOnly Layout = "tables"
)

// ParseLayout maps a layout name onto Layout.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(s); l {
	case LayoutReport, LayoutCombined, LayoutTablesOnly:
		return l, nil
	}
	return "", fmt.Errorf("invalid layout: %s (must be report, combined, or tables)", s)
}

// ReportOptions configures the chapter structure of LayoutReport.
type ReportOptions struct {
	// ContentsTitle heads the table of contents.
	ContentsTitle string `yaml:"contents_title"`
	// Chapters are emitted as level one headings followed by a spacer.
	Chapters []string `yaml:"chapters" validate:"dive,required"`
	// TrailingChapters follow Chapters as bare headings.
	TrailingChapters []string `yaml:"trailing_chapters" validate:"dive,required"`
	// TablesChapter names the chapter the tables are placed under.
	TablesChapter string `yaml:"tables_chapter"`
}

// Options configures conversion behavior.
type Options struct {
	Layout Layout        `yaml:"layout" validate:"oneof=report combined tables"`
	Report ReportOptions `yaml:"report"`
	// Workers bounds how many sheets are transcribed at once.
	Workers int `yaml:"workers" validate:"min=1"`
	// LogLevel is one of none, normal or debug.
	LogLevel string `yaml:"log_level" validate:"required,oneof=none normal debug"`
	// LogFile optionally receives a copy of the log.
	LogFile string `yaml:"log_file,omitempty" validate:"omitempty,filepath"`

	Detect   layout.DetectParams   `yaml:"detect"`
	Assemble layout.AssembleParams `yaml:"assemble"`
	Crop     images.CropParams     `yaml:"crop"`
}

// DefaultOptions returns default conversion options.
func DefaultOptions() Options {
	crop := images.DefaultCropParams()
	crop.Workers = 2
	return Options{
		Layout: LayoutReport,
		Report: ReportOptions{
			ContentsTitle: "Contents",
			Chapters: []string{
				"1. Purpose",
				"2. Location and Time",
				"3. Experimental Design",
				"4. Results and Analysis",
				"5. Conclusion",
			},
			TrailingChapters: []string{"References:", "Attachments:"},
			TablesChapter:    "4. Results and Analysis",
		},
		Workers:  runtime.NumCPU(),
		LogLevel: "normal",
		Detect:   layout.DefaultDetectParams(),
		Assemble: layout.DefaultAssembleParams(),
		Crop:     crop,
	}
}

// validate reports fields by their configuration file names.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Validate checks the options for values the converter cannot work with.
// Every problem found is reported.
func (o Options) Validate() error {
	var err error
	if e := validate.Struct(o); e != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(e, &fieldErrs) {
			return e
		}
		for _, fe := range fieldErrs {
			err = multierr.Append(err, fmt.Errorf("invalid %s: %v (must satisfy %s)", fieldPath(fe), fe.Value(), fe.Tag()+paramSuffix(fe)))
		}
	}
	if o.Layout == LayoutReport && o.Report.TablesChapter != "" {
		if !slices.Contains(o.Report.Chapters, o.Report.TablesChapter) {
			err = multierr.Append(err, fmt.Errorf("tables chapter %q is not one of the chapters", o.Report.TablesChapter))
		}
	}
	return err
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func paramSuffix(fe validator.FieldError) string {
	if fe.Param() == "" {
		return ""
	}
	return "=" + fe.Param()
}
