// pkg/fileio/csv.go
package fileio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// DefaultNullTokens are cell texts read as missing values
var DefaultNullTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// ReadOptions controls how delimited files are read
type ReadOptions struct {
	Encoding   string   // Explicit charset; detected when empty
	Delimiter  string   // Single character field separator
	SampleSize int      // Bytes sampled for encoding detection
	NullTokens []string // Cell texts treated as missing
}

// DefaultReadOptions reads comma-separated files with detected encoding
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Delimiter:  ",",
		SampleSize: DefaultSampleSize,
		NullTokens: DefaultNullTokens,
	}
}

// FileError records a file that could not be read
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Reader loads delimited files into tables of raw text
type Reader struct {
	opts   ReadOptions
	nulls  map[string]struct{}
	logger *zap.Logger
}

// NewReader creates a new Reader
func NewReader(opts ReadOptions, logger *zap.Logger) (*Reader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Delimiter == "" {
		opts.Delimiter = ","
	}
	if utf8.RuneCountInString(opts.Delimiter) != 1 {
		return nil, fmt.Errorf("delimiter must be a single character, got %q", opts.Delimiter)
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultSampleSize
	}
	if opts.NullTokens == nil {
		opts.NullTokens = DefaultNullTokens
	}
	if opts.Encoding != "" {
		if _, err := lookupEncoding(opts.Encoding); err != nil {
			return nil, err
		}
	}

	nulls := make(map[string]struct{}, len(opts.NullTokens))
	for _, tok := range opts.NullTokens {
		nulls[tok] = struct{}{}
	}

	return &Reader{opts: opts, nulls: nulls, logger: logger}, nil
}

// ReadFile reads one file and returns its table and the charset used
func (r *Reader) ReadFile(path string) (*model.Table, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("file not found: %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, "", fmt.Errorf("%s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}

	table, charset, err := r.ReadBytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", path, err)
	}

	r.logger.Info("Read file",
		zap.String("path", path),
		zap.String("encoding", charset),
		zap.Int("rows", table.NumRows()),
		zap.Int("columns", table.NumColumns()))
	return table, charset, nil
}

// ReadBytes parses an in-memory file
func (r *Reader) ReadBytes(data []byte) (*model.Table, string, error) {
	charset := r.opts.Encoding
	detected := charset == ""
	if detected {
		sample := data
		if len(sample) > r.opts.SampleSize {
			sample = sample[:r.opts.SampleSize]
		}
		var confidence float64
		charset, confidence = DetectEncoding(sample)
		if confidence < ConfidenceThreshold {
			r.logger.Debug("Low encoding confidence, using utf-8", zap.Float64("confidence", confidence))
		}
	}

	src, err := decode(data, charset)
	if err != nil && detected {
		r.logger.Warn("Detected encoding not supported, using utf-8",
			zap.String("encoding", charset),
			zap.Error(err))
		charset = DefaultEncoding
		src, err = decode(data, charset)
	}
	if err != nil {
		return nil, "", err
	}

	table, err := r.parse(src)
	if err != nil {
		return nil, "", err
	}
	return table, charset, nil
}

// ReadInto reads one path and adds the table to tables under its file
// stem; repeated stems get a _2, _3 suffix. Failures come back as a
// FileError and leave tables unchanged.
func (r *Reader) ReadInto(path string, tables *model.Collection) (string, *model.Table, string, error) {
	table, charset, err := r.ReadFile(path)
	if err != nil {
		r.logger.Error("Failed to read file", zap.String("path", path), zap.Error(err))
		return "", nil, "", FileError{Path: path, Err: err}
	}

	name := UniqueName(Stem(path), tables)
	if err := tables.Add(name, table); err != nil {
		return "", nil, "", FileError{Path: path, Err: err}
	}
	return name, table, charset, nil
}

// Stem returns the file name without directory and extension
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ValidateExtension reports whether the path has an allowed extension.
// With no allowed list only .csv is accepted.
func ValidateExtension(path string, allowed ...string) bool {
	if len(allowed) == 0 {
		allowed = []string{".csv"}
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}

func (r *Reader) parse(src io.Reader) (*model.Table, error) {
	cr := csv.NewReader(src)
	cr.Comma, _ = utf8.DecodeRuneInString(r.opts.Delimiter)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("no columns to parse from file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	headers := headerNames(header)

	columns := make([][]string, len(headers))
	missing := make([][]bool, len(headers))
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		// Ragged rows are padded or truncated to the header width
		for j := range headers {
			cell := ""
			if j < len(record) {
				cell = record[j]
			}
			_, isNull := r.nulls[cell]
			columns[j] = append(columns[j], cell)
			missing[j] = append(missing[j], isNull)
		}
	}

	table := model.EmptyTable()
	for j, name := range headers {
		values := make([]model.Value, len(columns[j]))
		for i, cell := range columns[j] {
			if !missing[j][i] {
				values[i] = model.TextValue(cell)
			}
		}
		if err := table.AddColumn(model.NewColumn(name, model.KindText, values)); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// headerNames fills blank headers and disambiguates repeats as name.1, name.2
func headerNames(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	taken := make(map[string]struct{}, len(raw))
	for i, h := range raw {
		name := h
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for {
			if _, clash := taken[candidate]; !clash {
				break
			}
			seen[name]++
			candidate = fmt.Sprintf("%s.%d", name, seen[name])
		}
		out[i] = candidate
		taken[candidate] = struct{}{}
	}
	return out
}

// UniqueName returns stem, or stem_2, stem_3... when the collection already has it
func UniqueName(stem string, c *model.Collection) string {
	if !c.Has(stem) {
		return stem
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", stem, n)
		if !c.Has(candidate) {
			return candidate
		}
	}
}
