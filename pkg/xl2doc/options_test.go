package xl2doc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestDefaultOptionsValid(t *testing.T) {
	opts := DefaultOptions()
	if err := opts.Validate(); err != nil {
		t.Fatalf("DefaultOptions should be valid: %v", err)
	}
	if opts.Layout != LayoutReport || opts.Crop.Workers != 2 || opts.Crop.JPEGQuality != 95 {
		t.Errorf("Unexpected defaults %+v", opts)
	}
	if opts.Detect.FallbackMinLastRow != 5 || opts.Detect.FallbackLastCol != 10 || opts.Detect.ForceColumn != 10 {
		t.Errorf("Unexpected detect defaults %+v", opts.Detect)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		errs   int
	}{
		{"valid", func(o *Options) {}, 0},
		{"layout", func(o *Options) { o.Layout = "poster" }, 1},
		{"log level", func(o *Options) { o.LogLevel = "verbose" }, 1},
		{"workers", func(o *Options) { o.Workers = 0 }, 1},
		{"crop workers", func(o *Options) { o.Crop.Workers = -1 }, 1},
		{"jpeg quality", func(o *Options) { o.Crop.JPEGQuality = 101 }, 1},
		{"crop size", func(o *Options) { o.Crop.MinWidth = 0 }, 1},
		{"fallback", func(o *Options) { o.Detect.FallbackLastCol = 0 }, 1},
		{"margin", func(o *Options) { o.Assemble.ImageMarginCm = -0.1 }, 1},
		{"jpeg quality below re-encode floor", func(o *Options) { o.Crop.JPEGQuality = 80 }, 1},
		{"empty chapter", func(o *Options) { o.Report.Chapters = append(o.Report.Chapters, "") }, 1},
		{"negative force column", func(o *Options) { o.Detect.ForceColumn = -1 }, 1},
		{"tables chapter", func(o *Options) { o.Report.TablesChapter = "Appendix" }, 1},
		{"tables chapter ignored", func(o *Options) {
			o.Layout = LayoutTablesOnly
			o.Report.TablesChapter = "Appendix"
		}, 0},
		{"several", func(o *Options) {
			o.Workers = 0
			o.LogLevel = ""
		}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			err := opts.Validate()
			if got := len(multierr.Errors(err)); got != tt.errs {
				t.Errorf("Validate() reported %d errors (%v), expected %d", got, err, tt.errs)
			}
		})
	}
}

func TestOptionsValidateNamesConfigKeys(t *testing.T) {
	opts := DefaultOptions()
	opts.Crop.JPEGQuality = 101
	opts.Layout = "poster"
	err := opts.Validate()
	if err == nil {
		t.Fatal("Expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{"crop.jpeg_quality", "max=100", "layout", "poster"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected %q in %q", want, msg)
		}
	}
}

func TestParseLayout(t *testing.T) {
	for _, name := range []string{"report", "combined", "tables"} {
		if l, err := ParseLayout(name); err != nil || string(l) != name {
			t.Errorf("ParseLayout(%q) = %q, %v", name, l, err)
		}
	}
	if _, err := ParseLayout("Report"); err == nil {
		t.Error("Expected layout names to be case sensitive")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xl2doc.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoadOptions(t *testing.T) {
	path := writeConfig(t, `
layout: combined
workers: 3
report:
  contents_title: Inhalt
crop:
  jpeg_quality: 98
detect:
  force_column: 12
`)
	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions failed: %v", err)
	}
	if opts.Layout != LayoutCombined || opts.Workers != 3 {
		t.Errorf("Top-level values not applied: %+v", opts)
	}
	if opts.Report.ContentsTitle != "Inhalt" {
		t.Errorf("ContentsTitle = %q, expected Inhalt", opts.Report.ContentsTitle)
	}
	if opts.Crop.JPEGQuality != 98 || opts.Crop.MinWidth != 50 {
		t.Errorf("Crop = %+v, expected quality 98 over defaults", opts.Crop)
	}
	if opts.Detect.ForceColumn != 12 || opts.Detect.FallbackLastCol != 10 {
		t.Errorf("Detect = %+v", opts.Detect)
	}
	if len(opts.Report.Chapters) != 5 {
		t.Errorf("Expected default chapters to survive, got %v", opts.Report.Chapters)
	}
}

func TestLoadOptionsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "layuot: report\n"},
		{"bad type", "workers: many\n"},
		{"invalid value", "layout: poster\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadOptions(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected an error")
			}
		})
	}

	if _, err := LoadOptions(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestLoadOptionsDefaults(t *testing.T) {
	for _, path := range []string{"", writeConfig(t, "\n")} {
		opts, err := LoadOptions(path)
		if err != nil {
			t.Fatalf("LoadOptions(%q) failed: %v", path, err)
		}
		if opts.Layout != LayoutReport {
			t.Errorf("Expected default layout, got %q", opts.Layout)
		}
	}
}

func TestDumpOptionsRoundTrip(t *testing.T) {
	data, err := DumpOptions(DefaultOptions())
	if err != nil {
		t.Fatalf("DumpOptions failed: %v", err)
	}
	opts, err := LoadOptions(writeConfig(t, string(data)))
	if err != nil {
		t.Fatalf("Dumped options should load back: %v", err)
	}
	if opts.Report.TablesChapter != DefaultOptions().Report.TablesChapter {
		t.Errorf("TablesChapter = %q after round trip", opts.Report.TablesChapter)
	}
}
