// pkg/report/report.go
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/mhamadwd/Data-Wrangler/pkg/cleaner"
	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// Warning category prefixes
const (
	WarnHighMissing = "High missing data (>50%) in columns"
	WarnEmpty       = "Empty columns"
	WarnSingleValue = "Single value columns"
)

// NumericStats summarises a numeric column
type NumericStats struct {
	Min    float64  `json:"min"`
	Max    float64  `json:"max"`
	Mean   float64  `json:"mean"`
	Std    *float64 `json:"std"` // nil with fewer than two values
	Median float64  `json:"median"`
}

// TextStats summarises string lengths, in runes, of present cells
type TextStats struct {
	AvgLength float64 `json:"avg_length"`
	MaxLength int     `json:"max_length"`
	MinLength int     `json:"min_length"`
}

// TemporalStats summarises a datetime column
type TemporalStats struct {
	MinDate   time.Time `json:"min_date"`
	MaxDate   time.Time `json:"max_date"`
	RangeDays int       `json:"date_range_days"`
}

// ColumnStats holds per-column quality metrics
type ColumnStats struct {
	Name           string         `json:"name"`
	Dtype          string         `json:"dtype"`
	NullCount      int            `json:"null_count"`
	NullPercentage float64        `json:"null_percentage"`
	UniqueCount    int            `json:"unique_count"`
	DuplicateCount int            `json:"duplicate_count"`
	Numeric        *NumericStats  `json:"numeric,omitempty"`
	Text           *TextStats     `json:"text,omitempty"`
	Temporal       *TemporalStats `json:"temporal,omitempty"`
}

// FileReport holds the metrics of one table
type FileReport struct {
	Filename   string        `json:"filename"`
	Rows       int           `json:"rows"`
	Columns    int           `json:"columns"`
	Duplicates int           `json:"duplicates"`
	ColumnInfo []ColumnStats `json:"column_info"`
	Warnings   []string      `json:"warnings"`
}

// WarningCount tallies warnings sharing one category
type WarningCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Summary aggregates all file reports
type Summary struct {
	TotalRows       int            `json:"total_rows"`
	TotalColumns    int            `json:"total_columns"`
	TotalDuplicates int            `json:"total_duplicates"`
	WarningSummary  []WarningCount `json:"warning_summary"`
	FilesWithIssues int            `json:"files_with_issues"`
}

// QualityReport is built once per run and not modified afterwards
type QualityReport struct {
	Timestamp  time.Time    `json:"timestamp"`
	TotalFiles int          `json:"total_files"`
	Files      []FileReport `json:"files"`
	Summary    Summary      `json:"summary"`
}

// File returns the report of one table by name
func (r *QualityReport) File(name string) (*FileReport, bool) {
	for i := range r.Files {
		if r.Files[i].Filename == name {
			return &r.Files[i], true
		}
	}
	return nil, false
}

// Column returns the stats of one column by name
func (f *FileReport) Column(name string) (*ColumnStats, bool) {
	for i := range f.ColumnInfo {
		if f.ColumnInfo[i].Name == name {
			return &f.ColumnInfo[i], true
		}
	}
	return nil, false
}

// Generator builds quality reports
type Generator struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewGenerator creates a new report generator
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger, now: time.Now}
}

// WithClock replaces the timestamp source
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the report for every table in the collection, in order
func (g *Generator) Generate(c *model.Collection) *QualityReport {
	r := &QualityReport{
		Timestamp:  g.now(),
		TotalFiles: c.Len(),
	}

	_ = c.Each(func(name string, t *model.Table) error {
		fr := FileStats(name, t)
		if len(fr.Warnings) > 0 {
			g.logger.Info("Quality warnings",
				zap.String("table", name),
				zap.Strings("warnings", fr.Warnings))
		}
		r.Files = append(r.Files, fr)
		return nil
	})

	r.Summary = summarize(r.Files)
	return r
}

// FileStats computes the report of a single table
func FileStats(name string, t *model.Table) FileReport {
	fr := FileReport{
		Filename: name,
		Rows:     t.NumRows(),
		Columns:  t.NumColumns(),
	}

	for _, col := range t.Columns() {
		fr.ColumnInfo = append(fr.ColumnInfo, columnStats(col, t.NumRows()))
	}
	fr.Duplicates = cleaner.CountDuplicateRows(t)
	fr.Warnings = fileWarnings(fr)

	return fr
}

func columnStats(col *model.Column, rows int) ColumnStats {
	nulls := col.NullCount()
	unique := col.DistinctCount()
	cs := ColumnStats{
		Name:           col.Name,
		Dtype:          col.Kind.String(),
		NullCount:      nulls,
		UniqueCount:    unique,
		DuplicateCount: col.Len() - unique,
	}
	if rows > 0 {
		cs.NullPercentage = float64(nulls) / float64(rows) * 100
	}

	switch col.Kind {
	case model.KindNumeric:
		cs.Numeric = numericStats(col)
	case model.KindText:
		cs.Text = textStats(col)
	case model.KindDatetime:
		cs.Temporal = temporalStats(col)
	case model.KindBoolean:
	}
	return cs
}

func numericStats(col *model.Column) *NumericStats {
	var xs []float64
	for _, v := range col.Values {
		if f, ok := v.Number(); ok {
			xs = append(xs, f)
		}
	}
	if len(xs) == 0 {
		return nil
	}

	ns := &NumericStats{
		Min:    floats.Min(xs),
		Max:    floats.Max(xs),
		Mean:   stat.Mean(xs, nil),
		Median: median(xs),
	}
	if len(xs) > 1 {
		std := stat.StdDev(xs, nil)
		ns.Std = &std
	}
	return ns
}

// median sorts a copy and averages the middle pair for even lengths
func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func textStats(col *model.Column) *TextStats {
	var lengths []float64
	for _, v := range col.Values {
		if v.IsNull() {
			continue
		}
		lengths = append(lengths, float64(utf8.RuneCountInString(v.String())))
	}
	if len(lengths) == 0 {
		return nil
	}
	return &TextStats{
		AvgLength: stat.Mean(lengths, nil),
		MaxLength: int(floats.Max(lengths)),
		MinLength: int(floats.Min(lengths)),
	}
}

func temporalStats(col *model.Column) *TemporalStats {
	var ts *TemporalStats
	for _, v := range col.Values {
		t, ok := v.Time()
		if !ok {
			continue
		}
		if ts == nil {
			ts = &TemporalStats{MinDate: t, MaxDate: t}
			continue
		}
		if t.Before(ts.MinDate) {
			ts.MinDate = t
		}
		if t.After(ts.MaxDate) {
			ts.MaxDate = t
		}
	}
	if ts != nil {
		ts.RangeDays = int(ts.MaxDate.Sub(ts.MinDate).Hours() / 24)
	}
	return ts
}

// fileWarnings applies each rule independently
func fileWarnings(fr FileReport) []string {
	var highMissing, empty, single []string
	for _, cs := range fr.ColumnInfo {
		if cs.NullPercentage > 50 {
			highMissing = append(highMissing, cs.Name)
		}
		if cs.NullCount == fr.Rows {
			empty = append(empty, cs.Name)
		}
		if cs.UniqueCount == 1 {
			single = append(single, cs.Name)
		}
	}

	var warnings []string
	if len(highMissing) > 0 {
		warnings = append(warnings, fmt.Sprintf("%s: %s", WarnHighMissing, formatList(highMissing)))
	}
	if fr.Duplicates > 0 {
		warnings = append(warnings, fmt.Sprintf("Found %d duplicate rows", fr.Duplicates))
	}
	if len(empty) > 0 {
		warnings = append(warnings, fmt.Sprintf("%s: %s", WarnEmpty, formatList(empty)))
	}
	if len(single) > 0 {
		warnings = append(warnings, fmt.Sprintf("%s: %s", WarnSingleValue, formatList(single)))
	}
	return warnings
}

func summarize(files []FileReport) Summary {
	var s Summary
	index := make(map[string]int)

	for _, fr := range files {
		s.TotalRows += fr.Rows
		s.TotalColumns += fr.Columns
		s.TotalDuplicates += fr.Duplicates
		if len(fr.Warnings) > 0 {
			s.FilesWithIssues++
		}
		for _, w := range fr.Warnings {
			category := WarningCategory(w)
			if i, ok := index[category]; ok {
				s.WarningSummary[i].Count++
				continue
			}
			index[category] = len(s.WarningSummary)
			s.WarningSummary = append(s.WarningSummary, WarningCount{Type: category, Count: 1})
		}
	}
	return s
}

// WarningCategory is the text before the first colon, or the whole warning
func WarningCategory(warning string) string {
	if i := strings.Index(warning, ":"); i >= 0 {
		return warning[:i]
	}
	return warning
}

func formatList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
