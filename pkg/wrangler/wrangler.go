// pkg/wrangler/wrangler.go
package wrangler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mhamadwd/Data-Wrangler/pkg/cleaner"
	"github.com/mhamadwd/Data-Wrangler/pkg/config"
	"github.com/mhamadwd/Data-Wrangler/pkg/fileio"
	"github.com/mhamadwd/Data-Wrangler/pkg/merge"
	"github.com/mhamadwd/Data-Wrangler/pkg/model"
	"github.com/mhamadwd/Data-Wrangler/pkg/report"
)

// MergeValidation is the outcome of the pre-merge check
type MergeValidation struct {
	Valid    bool
	Warnings []string
}

// Result holds everything one run produced
type Result struct {
	RunID      string
	Files      []FileResult
	Inputs     *model.Collection // tables as read
	Cleaned    *model.Collection // tables after cleaning, input order
	Output     *model.Collection // tables shaped for export
	Cleaning   map[string]*cleaner.Result
	Encodings  map[string]string
	Validation MergeValidation
	Report     *report.QualityReport
	Log        *model.ProcessingLog
	Metrics    *RunMetrics
	Errors     []ErrorRecord
}

// LogText renders the processing log as of generated
func (r *Result) LogText(generated time.Time) string {
	return model.FormatProcessingLog(r.Log.Entries(), generated)
}

// ReportText renders the quality report
func (r *Result) ReportText() string {
	if r.Report == nil {
		return ""
	}
	return report.FormatText(r.Report)
}

func (r *Result) addError(rec ErrorRecord) {
	r.Errors = append(r.Errors, rec)
	if r.Metrics != nil {
		r.Metrics.RecordError(rec.Category)
	}
}

// Outcome is delivered once by Start
type Outcome struct {
	Result *Result
	Err    error
}

// Wrangler runs the read, clean, merge and report pipeline
type Wrangler struct {
	cfg     *config.Config
	reader  *fileio.Reader
	cleaner *cleaner.DataCleaner
	merger  *merge.Engine
	reports *report.Generator
	mode    merge.Mode
	join    merge.JoinType
	workers int
	logger  *zap.Logger
	now     func() time.Time
}

// New builds a Wrangler from a validated configuration
func New(cfg *config.Config, logger *zap.Logger) (*Wrangler, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	mode, join, err := cfg.MergeSettings()
	if err != nil {
		return nil, err
	}

	reader, err := fileio.NewReader(cfg.ReadOptions(), logger.Named("reader"))
	if err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}

	opts, err := cfg.CleanerOptions()
	if err != nil {
		return nil, err
	}
	dc, err := cleaner.NewDataCleaner(opts, logger.Named("cleaner"))
	if err != nil {
		return nil, fmt.Errorf("failed to create cleaner: %w", err)
	}

	return &Wrangler{
		cfg:     cfg,
		reader:  reader,
		cleaner: dc,
		merger:  merge.NewEngine(logger.Named("merge")),
		reports: report.NewGenerator(logger.Named("report")),
		mode:    mode,
		join:    join,
		workers: cfg.Workers,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// WithClock replaces the time source for log entries and reports
func (w *Wrangler) WithClock(now func() time.Time) *Wrangler {
	w.now = now
	w.reports.WithClock(now)
	return w
}

// Config returns the configuration the wrangler was built with
func (w *Wrangler) Config() *config.Config {
	return w.cfg
}

func (w *Wrangler) newResult() *Result {
	log := model.NewProcessingLog().WithClock(w.now)
	return &Result{
		RunID:     log.RunID(),
		Cleaning:  make(map[string]*cleaner.Result),
		Encodings: make(map[string]string),
		Log:       log,
		Metrics:   NewRunMetrics(w.logger, w.now),
	}
}

// Run reads every path in order, then cleans, merges and reports.
// Files that fail to read are logged and skipped; ErrNoReadableFiles is
// returned, together with the partial result, when none could be read.
func (w *Wrangler) Run(ctx context.Context, paths []string) (*Result, error) {
	res := w.newResult()
	inputs := model.NewCollection()

	w.logger.Info("Starting run", zap.String("runID", res.RunID), zap.Int("files", len(paths)))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		fr := w.readFile(path, inputs)
		res.Files = append(res.Files, fr)
		res.Metrics.RecordFile(fr)

		if !fr.Success() {
			res.addError(NewErrorRecord(fr.Err, ErrorCategoryRead).WithDataset(fr.Job.DisplayName()))
			res.Log.Fail("Load "+fr.Job.DisplayName(), fr.Err.Error())
			continue
		}
		res.Encodings[fr.Job.Name] = fr.Encoding
		res.Log.Success("Load "+fr.Job.Name,
			fmt.Sprintf("Read %d rows, %d columns (encoding %s)", fr.Rows, fr.Columns, fr.Encoding))
	}

	if inputs.Len() == 0 {
		res.Log.Fail("Load files", ErrNoReadableFiles.Error())
		res.Metrics.Complete()
		res.Log.Add(res.Metrics.LogEntry())
		return res, ErrNoReadableFiles
	}

	return res, w.process(ctx, res, inputs)
}

// RunCollection runs the pipeline over tables that are already in memory
func (w *Wrangler) RunCollection(ctx context.Context, inputs *model.Collection) (*Result, error) {
	res := w.newResult()
	if inputs == nil {
		inputs = model.NewCollection()
	}
	return res, w.process(ctx, res, inputs)
}

// Start runs Run on a background goroutine. The channel receives exactly
// one Outcome and is then closed.
func (w *Wrangler) Start(ctx context.Context, paths []string) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		res, err := w.Run(ctx, paths)
		out <- Outcome{Result: res, Err: err}
	}()
	return out
}

func (w *Wrangler) readFile(path string, inputs *model.Collection) FileResult {
	job := NewFileJob(path)
	start := w.now()

	name, table, charset, err := w.reader.ReadInto(path, inputs)
	if err != nil {
		return FileResult{Job: job, Err: err, Duration: w.now().Sub(start)}
	}
	job = job.WithName(name)

	return FileResult{
		Job:      job,
		Encoding: charset,
		Rows:     table.NumRows(),
		Columns:  table.NumColumns(),
		Duration: w.now().Sub(start),
	}
}

// process runs cleaning, merge validation, export shaping and the report
func (w *Wrangler) process(ctx context.Context, res *Result, inputs *model.Collection) error {
	res.Inputs = inputs
	res.Cleaned = model.NewCollection()

	outcomes, err := w.cleanAll(ctx, inputs)
	if err != nil {
		return err
	}
	for _, o := range outcomes {
		w.recordCleaning(res, o)
	}

	ok, warnings := merge.ValidateMergeOperation(res.Cleaned, w.mode)
	res.Validation = MergeValidation{Valid: ok, Warnings: warnings}
	if ok {
		res.Log.Success("Validate merge", fmt.Sprintf("Mode %s over %d tables", w.mode, res.Cleaned.Len()))
	} else {
		res.Log.Warn("Validate merge", fmt.Sprintf("Mode %s over %d tables", w.mode, res.Cleaned.Len()), warnings...)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	output, err := w.shapeOutput(res.Cleaned)
	if err != nil {
		res.addError(NewErrorRecord(err, ErrorCategoryMerge))
		res.Log.Fail("Prepare export", err.Error())
		res.Metrics.Complete()
		res.Log.Add(res.Metrics.LogEntry())
		return err
	}
	res.Output = output
	res.Log.Success("Prepare export",
		fmt.Sprintf("%d sheet(s): %s", output.Len(), strings.Join(output.Names(), ", ")))

	res.Report = w.reports.Generate(res.Cleaned)
	details := fmt.Sprintf("Analyzed %d files, %d with issues", res.Report.TotalFiles, res.Report.Summary.FilesWithIssues)
	if res.Report.Summary.FilesWithIssues > 0 {
		res.Log.Warn("Quality report", details)
	} else {
		res.Log.Success("Quality report", details)
	}

	res.Metrics.Complete()
	res.Log.Add(res.Metrics.LogEntry())
	return nil
}

func (w *Wrangler) recordCleaning(res *Result, o cleanOutcome) {
	name, cr, err := o.name, o.result, o.err
	if err != nil {
		w.logger.Error("Failed to clean table", zap.String("table", name), zap.Error(err))
		res.addError(NewErrorRecord(err, CategorizeError(err)).WithDataset(name))
		res.Log.Fail("Clean "+name, err.Error())
		return
	}

	res.Cleaning[name] = cr
	res.Metrics.RecordCleaning(cr)
	for _, outcome := range cr.Outcomes {
		if outcome.BecameMissing > 0 {
			res.addError(NewErrorRecord(errors.New(outcome.Warning()), ErrorCategoryConversion).
				WithDataset(name).
				WithColumn(outcome.Column))
		}
	}
	res.Cleaned.Set(name, cr.Table)
	res.Log.Add(cr.LogEntry(name))
}

// shapeOutput applies the merge mode: per_sheet and single_sheet go
// through export preparation, append and join through the merge engine
func (w *Wrangler) shapeOutput(c *model.Collection) (*model.Collection, error) {
	switch w.mode {
	case merge.ModePerSheet, merge.ModeSingleSheet:
		return w.merger.PrepareExport(c, w.mode)
	default:
		merged, err := w.merger.Merge(c, w.mode, w.join)
		if err != nil {
			return nil, fmt.Errorf("failed to merge tables: %w", err)
		}
		out := model.NewCollection()
		if err := out.Add(merge.MergedTableName, merged); err != nil {
			return nil, err
		}
		return out, nil
	}
}
