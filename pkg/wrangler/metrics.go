// pkg/wrangler/metrics.go
package wrangler

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mhamadwd/Data-Wrangler/pkg/cleaner"
	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// RunMetrics tracks counters for one run
type RunMetrics struct {
	mu             sync.Mutex
	logger         *zap.Logger
	now            func() time.Time
	StartTime      time.Time
	EndTime        time.Time
	FilesRead      int
	FilesFailed    int
	RowsRead       int
	RowsCleaned    int
	CleaningOps    int
	LossyOps       int // Operations that turned present cells missing
	CellsNulled    int
	RowsRemoved    int
	TablesExported int
	RowsExported   int64
	ErrorCounts    map[ErrorCategory]int
}

// NewRunMetrics creates a new RunMetrics instance
func NewRunMetrics(logger *zap.Logger, now func() time.Time) *RunMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &RunMetrics{
		logger:      logger,
		now:         now,
		StartTime:   now(),
		ErrorCounts: make(map[ErrorCategory]int),
	}
}

// RecordFile records the outcome of reading one file
func (m *RunMetrics) RecordFile(result FileResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !result.Success() {
		m.FilesFailed++
		return
	}
	m.FilesRead++
	m.RowsRead += result.Rows
}

// RecordCleaning adds the counters of one cleaned table
func (m *RunMetrics) RecordCleaning(res *cleaner.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RowsCleaned += res.Table.NumRows()
	for _, op := range res.Operations {
		m.CleaningOps++
		m.RowsRemoved += op.RowsRemoved
		if op.Lossy() {
			m.LossyOps++
			m.CellsNulled += op.CellsNulled
		}
	}
}

// RecordExport records one table written to a sink
func (m *RunMetrics) RecordExport(rows int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TablesExported++
	m.RowsExported += rows
}

// RecordError counts a failure by category
func (m *RunMetrics) RecordError(category ErrorCategory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCounts[category]++
}

// Complete stamps the end of the run
func (m *RunMetrics) Complete() {
	m.mu.Lock()
	m.EndTime = m.now()
	m.mu.Unlock()

	m.logger.Info("Run completed",
		zap.Int("filesRead", m.FilesRead),
		zap.Int("filesFailed", m.FilesFailed),
		zap.Int("rowsRead", m.RowsRead),
		zap.Int("rowsCleaned", m.RowsCleaned),
		zap.Int("cleaningOps", m.CleaningOps),
		zap.Int("lossyOps", m.LossyOps),
		zap.Int("cellsNulled", m.CellsNulled),
		zap.Duration("duration", m.Duration()))
}

// Duration returns the run time so far, or the total once completed
func (m *RunMetrics) Duration() time.Duration {
	if m.EndTime.IsZero() {
		return m.now().Sub(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// Summary is the one-line description used in the processing log
func (m *RunMetrics) Summary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := fmt.Sprintf("Read %d of %d files, %d rows in, %d rows out, %d cleaning operations in %s",
		m.FilesRead, m.FilesRead+m.FilesFailed, m.RowsRead, m.RowsCleaned, m.CleaningOps,
		formatDuration(m.Duration()))
	if m.TablesExported > 0 {
		s += fmt.Sprintf("; exported %d tables (%d rows)", m.TablesExported, m.RowsExported)
	}
	return s
}

// LogEntry renders the metrics as the closing processing log entry
func (m *RunMetrics) LogEntry() model.LogEntry {
	entry := model.LogEntry{
		Name:    "Run summary",
		Status:  model.StatusSuccess,
		Details: m.Summary(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, category := range []ErrorCategory{
		ErrorCategoryRead,
		ErrorCategoryCleaning,
		ErrorCategoryConversion,
		ErrorCategoryMerge,
		ErrorCategoryExport,
		ErrorCategoryConfiguration,
	} {
		if n := m.ErrorCounts[category]; n > 0 {
			entry.Warnings = append(entry.Warnings, fmt.Sprintf("%s: %d", category, n))
		}
	}
	if len(entry.Warnings) > 0 {
		entry.Status = model.StatusWarning
	}
	return entry
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
