package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mhamadwd/Data-Wrangler/pkg/config"
	"github.com/mhamadwd/Data-Wrangler/pkg/connector"
	"github.com/mhamadwd/Data-Wrangler/pkg/fileio"
	"github.com/mhamadwd/Data-Wrangler/pkg/logger"
	"github.com/mhamadwd/Data-Wrangler/pkg/wrangler"
)

var version = "0.1.0"

// runFlags mirrors the configuration surface; only flags the user set
// override values loaded from the environment
type runFlags struct {
	envFile             string
	standardizeColumns  bool
	inferTypes          bool
	trimWhitespace      bool
	naPolicy            string
	naFillValue         string
	dateColumns         string
	dateFormat          string
	datetimeColumns     string
	datetimeFormat      string
	autoDetectDatetime  bool
	detectionSampleSize int
	removeDuplicates    bool
	duplicateSubset     string
	mergeMode           string
	joinType            string
	delimiter           string
	decimal             string
	thousands           string
	encoding            string
	encodingSampleSize  int
	output              string
	report              string
	reportJSON          string
	logPath             string
	exportPostgres      bool
	exportSnowflake     bool
	exportSchema        string
	logLevel            string
	logFormat           string
	quiet               bool
	workers             int
	timeout             time.Duration
}

func main() {
	root := &cobra.Command{
		Use:   "wrangle",
		Short: "Data Wrangler - clean, merge and profile delimited files",
		Long: `Data Wrangler reads CSV files, cleans them (column names, types, whitespace,
missing values, dates, duplicates), merges them and writes a workbook together
with a data quality report and a processing log.`,
		SilenceUsage: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Data Wrangler v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newRunCommand(&runFlags{}))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCommand(f *runFlags) *cobra.Command {
	d := config.Defaults()

	runCmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Clean, merge and report on one or more CSV files",
		Long: `Run the full pipeline over the given files. Options default to the
WRANGLE_* environment variables (a .env file is loaded when present);
flags given on the command line take precedence.

Example:
  wrangle run sales.csv returns.csv --merge-mode append --output out/cleaned.xlsx --report out/report.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrangle(cmd, f, args)
		},
	}

	fl := runCmd.Flags()
	fl.StringVar(&f.envFile, "env-file", "", "Path to a .env file (default: ./.env when present)")

	// Cleaning
	fl.BoolVar(&f.standardizeColumns, "standardize-columns", d.StandardizeColumns, "Normalize column names to snake_case")
	fl.BoolVar(&f.inferTypes, "infer-dtypes", d.InferTypes, "Infer and coerce column types")
	fl.BoolVar(&f.trimWhitespace, "trim-whitespace", d.TrimWhitespace, "Trim leading and trailing whitespace in text cells")
	fl.StringVar(&f.naPolicy, "na-policy", d.NullPolicy, "Missing value policy: keep, drop or fill")
	fl.StringVar(&f.naFillValue, "na-fill-value", "", "Value used with --na-policy fill")
	fl.StringVar(&f.dateColumns, "date-columns", "", "Comma-separated columns formatted as dates")
	fl.StringVar(&f.dateFormat, "date-format", d.DateFormat, "strftime format for --date-columns")
	fl.StringVar(&f.datetimeColumns, "datetime-columns", "", "Comma-separated columns formatted as datetimes (disables auto-detection)")
	fl.StringVar(&f.datetimeFormat, "datetime-format", d.DatetimeFormat, "strftime format for datetime columns")
	fl.BoolVar(&f.autoDetectDatetime, "auto-detect-datetime", d.AutoDetectDatetime, "Detect datetime columns from their values")
	fl.IntVar(&f.detectionSampleSize, "detection-sample-size", d.DetectionSampleSize, "Values sampled per column for datetime detection")
	fl.BoolVar(&f.removeDuplicates, "remove-duplicates", d.RemoveDuplicates, "Drop duplicate rows")
	fl.StringVar(&f.duplicateSubset, "duplicate-subset", "", "Comma-separated columns that define a duplicate")

	// Merge
	fl.StringVar(&f.mergeMode, "merge-mode", d.MergeMode, "per_sheet, single_sheet, append or join")
	fl.StringVar(&f.joinType, "join-type", d.JoinType, "inner, outer, left or right (join mode)")

	// Input
	fl.StringVar(&f.delimiter, "delimiter", d.Delimiter, `Field delimiter ("tab" for tab-separated files)`)
	fl.StringVar(&f.decimal, "decimal", d.DecimalSeparator, "Decimal separator for numbers")
	fl.StringVar(&f.thousands, "thousands", "", "Thousands separator for numbers")
	fl.StringVar(&f.encoding, "encoding", "", "Input encoding (default: detect)")
	fl.IntVar(&f.encodingSampleSize, "encoding-sample-size", d.EncodingSampleSize, "Bytes read for encoding detection")

	// Output
	fl.StringVarP(&f.output, "output", "o", "", "Write cleaned data to this .xlsx (or single-table .csv) path")
	fl.StringVar(&f.report, "report", "", "Write the quality report text to this path")
	fl.StringVar(&f.reportJSON, "report-json", "", "Write the quality report as JSON to this path")
	fl.StringVar(&f.logPath, "log", "", "Write the processing log to this path")
	fl.BoolVar(&f.exportPostgres, "export-postgres", false, "Export output tables to PostgreSQL (POSTGRES_* variables)")
	fl.BoolVar(&f.exportSnowflake, "export-snowflake", false, "Export output tables to Snowflake (SNOWFLAKE_* variables)")
	fl.StringVar(&f.exportSchema, "export-schema", d.ExportSchema, "PostgreSQL schema for exported tables")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "Do not print the quality report")

	// System
	fl.StringVar(&f.logLevel, "log-level", d.LogLevel, "Log level (debug, info, warn, error)")
	fl.StringVar(&f.logFormat, "log-format", d.LogFormat, "Log encoding (console or json)")
	fl.IntVar(&f.workers, "workers", d.Workers, "Tables cleaned at once (1 = sequential, max 8)")
	fl.DurationVar(&f.timeout, "timeout", 0, "Abort the run after this long (0 means no limit)")

	return runCmd
}

func runWrangle(cmd *cobra.Command, f *runFlags, paths []string) error {
	var envFiles []string
	if f.envFile != "" {
		envFiles = append(envFiles, f.envFile)
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := applyFlags(cmd, f, cfg); err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogFormat})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	for _, path := range paths {
		if !fileio.ValidateExtension(path, ".csv", ".tsv", ".txt") {
			log.Warn("Unexpected file extension, reading as delimited text", zap.String("path", path))
		}
	}

	w, err := wrangler.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	outcome := <-w.Start(ctx, paths)
	res, runErr := outcome.Result, outcome.Err
	if runErr != nil {
		// a failed run writes no output files
		if res != nil && errors.Is(runErr, wrangler.ErrNoReadableFiles) {
			printSkipped(cmd, res)
		}
		return runErr
	}

	errs := []error{
		exportToSinks(ctx, cfg, w, res, log),
		w.WriteOutputs(res),
	}

	if !f.quiet && res.Report != nil {
		fmt.Fprint(cmd.OutOrStdout(), res.ReportText())
	}
	printSkipped(cmd, res)
	for _, rec := range res.Errors {
		if rec.Category != wrangler.ErrorCategoryRead && rec.Fatal() {
			log.Error("Run failed", zap.String("error", rec.String()))
		}
	}

	return errors.Join(errs...)
}

func printSkipped(cmd *cobra.Command, res *wrangler.Result) {
	for _, rec := range res.Errors {
		if rec.Category == wrangler.ErrorCategoryRead {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", rec.String())
		}
	}
}

func exportToSinks(ctx context.Context, cfg *config.Config, w *wrangler.Wrangler, res *wrangler.Result, log *zap.Logger) error {
	if cfg.Postgres == nil && cfg.Snowflake == nil {
		return nil
	}

	sinks, err := connector.NewConnectorFactory(cfg, log).CreateConfigured(ctx)
	if err != nil {
		return err
	}
	defer func() {
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				log.Warn("Failed to close sink", zap.String("sink", s.Name()), zap.Error(err))
			}
		}
	}()

	return w.Export(ctx, res, sinks)
}

// applyFlags copies explicitly set flags over the environment configuration
func applyFlags(cmd *cobra.Command, f *runFlags, cfg *config.Config) error {
	set := cmd.Flags().Changed

	if set("standardize-columns") {
		cfg.StandardizeColumns = f.standardizeColumns
	}
	if set("infer-dtypes") {
		cfg.InferTypes = f.inferTypes
	}
	if set("trim-whitespace") {
		cfg.TrimWhitespace = f.trimWhitespace
	}
	if set("na-policy") {
		cfg.NullPolicy = f.naPolicy
	}
	if set("na-fill-value") {
		cfg.FillValue, cfg.HasFillValue = f.naFillValue, true
	}
	if set("date-columns") {
		cfg.DateColumns = config.SplitList(f.dateColumns)
	}
	if set("date-format") {
		cfg.DateFormat = f.dateFormat
	}
	if set("datetime-columns") {
		cfg.DatetimeColumns = config.SplitList(f.datetimeColumns)
	}
	if set("datetime-format") {
		cfg.DatetimeFormat = f.datetimeFormat
	}
	if set("auto-detect-datetime") {
		cfg.AutoDetectDatetime = f.autoDetectDatetime
	}
	if set("detection-sample-size") {
		cfg.DetectionSampleSize = f.detectionSampleSize
	}
	if set("remove-duplicates") {
		cfg.RemoveDuplicates = f.removeDuplicates
	}
	if set("duplicate-subset") {
		cfg.DuplicateSubset = config.SplitList(f.duplicateSubset)
	}
	if set("merge-mode") {
		cfg.MergeMode = f.mergeMode
	}
	if set("join-type") {
		cfg.JoinType = f.joinType
	}
	if set("delimiter") {
		cfg.Delimiter = f.delimiter
	}
	if set("decimal") {
		cfg.DecimalSeparator = f.decimal
	}
	if set("thousands") {
		cfg.ThousandsSeparator = f.thousands
	}
	if set("encoding") {
		cfg.Encoding = f.encoding
	}
	if set("encoding-sample-size") {
		cfg.EncodingSampleSize = f.encodingSampleSize
	}
	if set("output") {
		cfg.OutputPath = f.output
	}
	if set("report") {
		cfg.ReportPath = f.report
	}
	if set("report-json") {
		cfg.ReportJSONPath = f.reportJSON
	}
	if set("log") {
		cfg.LogPath = f.logPath
	}
	if set("export-schema") {
		cfg.ExportSchema = f.exportSchema
	}
	if set("workers") {
		cfg.Workers = f.workers
	}
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if set("log-format") {
		cfg.LogFormat = f.logFormat
	}

	if f.exportPostgres && cfg.Postgres == nil {
		pg, err := config.LoadPostgresConfig()
		if err != nil {
			return fmt.Errorf("failed to load PostgreSQL configuration: %w", err)
		}
		cfg.Postgres = pg
	}
	if f.exportSnowflake && cfg.Snowflake == nil {
		sf, err := config.LoadSnowflakeConfig()
		if err != nil {
			return fmt.Errorf("failed to load Snowflake configuration: %w", err)
		}
		cfg.Snowflake = sf
	}

	return cfg.Validate()
}
