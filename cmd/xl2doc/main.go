// Package main provides the CLI entry point for xl2doc-go.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc"
)

var (
	outputPath string
	configPath string
	layoutName string
	workers    int
	logLevel   string
	logFile    string
	dryRun     bool
	dumpConfig bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xl2doc [input.xlsx...]",
		Short: "Transcribe Excel worksheets into Word tables",
		Long: `xl2doc-go converts the bordered tables of Excel worksheets, including
merged cells, column widths, row heights and pictures, into tables of a DOCX report.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "report.docx", "Output DOCX file path")
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.Flags().StringVar(&layoutName, "layout", "", "Document layout: report, combined, or tables")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "Number of sheets transcribed concurrently (default: number of CPUs)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: none, normal, or debug")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Also write the log to this file")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print a JSON summary of the document instead of writing it")
	rootCmd.Flags().BoolVar(&dumpConfig, "dump-config", false, "Print the effective configuration and exit")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	opts, err := xl2doc.LoadOptions(configPath)
	if err != nil {
		return err
	}

	// Flags override the configuration file.
	flags := cmd.Flags()
	if flags.Changed("layout") {
		l, err := xl2doc.ParseLayout(layoutName)
		if err != nil {
			return err
		}
		opts.Layout = l
	}
	if flags.Changed("workers") {
		opts.Workers = workers
	}
	if flags.Changed("log-level") {
		opts.LogLevel = logLevel
	} else if dryRun {
		// The summary goes to stdout.
		opts.LogLevel = "none"
	}
	if flags.Changed("log-file") {
		opts.LogFile = logFile
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	if dumpConfig {
		data, err := xl2doc.DumpOptions(opts)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	if len(args) == 0 {
		return xl2doc.ErrNoInputs
	}
	for _, path := range args {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", xl2doc.ErrFileNotFound, path)
		}
	}

	log, closeLog, err := xl2doc.NewLogger(opts.LogLevel, opts.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if dryRun {
		sum, err := xl2doc.NewConverter(opts, log).DryRun(ctx, args)
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}
		jsonData, err := json.MarshalIndent(sum, "", "  ")
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		fmt.Println(string(jsonData))
		return nil
	}

	if err := xl2doc.Convert(ctx, args, outputPath, opts, log); err != nil {
		log.Error("Conversion failed", zap.Error(err))
		return fmt.Errorf("conversion failed: %w", err)
	}
	return nil
}
