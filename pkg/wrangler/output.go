// pkg/wrangler/output.go
package wrangler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mhamadwd/Data-Wrangler/pkg/connector"
	"github.com/mhamadwd/Data-Wrangler/pkg/fileio"
	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// logRecorder is implemented by sinks that can store the processing log
type logRecorder interface {
	RecordProcessingLog(ctx context.Context, runID string, entries []model.LogEntry) error
}

// WriteOutputs writes the files named in the configuration: the data
// (workbook, or CSV when the path ends in .csv and there is one table),
// the report text and JSON, and finally the processing log
func (w *Wrangler) WriteOutputs(res *Result) error {
	var errs []error

	if path := w.cfg.OutputPath; path != "" && res.Output != nil {
		if err := writeData(res.Output, path, w.cfg.ReadOptions().Delimiter); err != nil {
			errs = append(errs, err)
			res.addError(NewErrorRecord(err, ErrorCategoryExport))
			res.Log.Fail("Export data", err.Error())
		} else {
			res.Log.Success("Export data", fmt.Sprintf("Wrote %d sheet(s) to %s", res.Output.Len(), path))
		}
	}

	if path := w.cfg.ReportPath; path != "" && res.Report != nil {
		if err := fileio.SaveText(res.ReportText(), path); err != nil {
			errs = append(errs, err)
			res.addError(NewErrorRecord(err, ErrorCategoryExport))
		}
	}

	if path := w.cfg.ReportJSONPath; path != "" && res.Report != nil {
		data, err := res.Report.JSON()
		if err == nil {
			err = fileio.SaveText(string(data), path)
		}
		if err != nil {
			errs = append(errs, err)
			res.addError(NewErrorRecord(err, ErrorCategoryExport))
		}
	}

	if path := w.cfg.LogPath; path != "" {
		if err := fileio.SaveText(res.LogText(w.now()), path); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func writeData(c *model.Collection, path, delimiter string) error {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		if c.Len() != 1 {
			return fmt.Errorf("CSV output holds one table, got %d; use a workbook path", c.Len())
		}
		t, _ := c.Get(c.Names()[0])
		return fileio.WriteCSV(t, path, delimiter)
	}
	return fileio.WriteWorkbook(c, path)
}

// Export writes every output table to each sink and verifies the row
// counts. Sinks that can store the processing log receive it last. A
// failing sink does not stop the others.
func (w *Wrangler) Export(ctx context.Context, res *Result, sinks []connector.DatabaseConnector) error {
	if res.Output == nil || len(sinks) == 0 {
		return nil
	}
	verifier := NewVerifier(w.logger.Named("verifier"))

	var errs []error
	for _, sink := range sinks {
		if err := w.exportTo(ctx, res, sink, verifier); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (w *Wrangler) exportTo(ctx context.Context, res *Result, sink connector.DatabaseConnector, verifier *Verifier) error {
	entry := "Export " + sink.Name()
	fail := func(err error) error {
		res.addError(NewErrorRecord(err, ErrorCategoryExport))
		res.Log.Fail(entry, err.Error())
		return err
	}

	if err := sink.Validate(ctx); err != nil {
		return fail(err)
	}

	var warnings []string
	var rows int64
	for _, name := range res.Output.Names() {
		table, _ := res.Output.Get(name)
		n, err := sink.ExportTable(ctx, name, table)
		if err != nil {
			return fail(err)
		}
		res.Metrics.RecordExport(n)
		rows += n

		ok, actual, err := verifier.VerifyRowCount(ctx, sink, name, table)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("Could not verify %s: %v", name, err))
		case !ok:
			warnings = append(warnings, fmt.Sprintf("Row count mismatch for %s: expected %d, found %d",
				name, table.NumRows(), actual))
		}
	}

	details := fmt.Sprintf("Exported %d table(s), %d rows to schema %s", res.Output.Len(), rows, sink.Schema())
	if len(warnings) > 0 {
		res.Log.Warn(entry, details, warnings...)
	} else {
		res.Log.Success(entry, details)
	}

	if recorder, ok := sink.(logRecorder); ok {
		if err := recorder.RecordProcessingLog(ctx, res.RunID, res.Log.Entries()); err != nil {
			w.logger.Warn("Failed to record processing log", zap.String("sink", sink.Name()), zap.Error(err))
			return fail(err)
		}
	}
	return nil
}
