// pkg/wrangler/error.go
package wrangler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mhamadwd/Data-Wrangler/pkg/cleaner"
	"github.com/mhamadwd/Data-Wrangler/pkg/fileio"
	"github.com/mhamadwd/Data-Wrangler/pkg/merge"
)

// ErrNoReadableFiles is returned when none of the input files could be read
var ErrNoReadableFiles = errors.New("no files could be read")

// ErrorCategory classifies failures recorded during a run
type ErrorCategory int

const (
	ErrorCategoryNone ErrorCategory = iota
	// A cell or column could not be converted; the run continues
	ErrorCategoryConversion
	// One input file could not be read; the batch continues
	ErrorCategoryRead
	// Cleaning one table failed; the table is left out
	ErrorCategoryCleaning
	// Merging or export preparation failed
	ErrorCategoryMerge
	// Writing to a file or database sink failed
	ErrorCategoryExport
	// An option value was not recognised
	ErrorCategoryConfiguration
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryConversion:
		return "Conversion"
	case ErrorCategoryRead:
		return "Read"
	case ErrorCategoryCleaning:
		return "Cleaning"
	case ErrorCategoryMerge:
		return "Merge"
	case ErrorCategoryExport:
		return "Export"
	case ErrorCategoryConfiguration:
		return "Configuration"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// ErrorRecord is one failure with the dataset and column it concerns
type ErrorRecord struct {
	Category  ErrorCategory
	Dataset   string
	Column    string
	Err       error
	Message   string
	Timestamp time.Time
}

// NewErrorRecord creates a new error record with current timestamp
func NewErrorRecord(err error, category ErrorCategory) ErrorRecord {
	record := ErrorRecord{
		Category:  category,
		Err:       err,
		Timestamp: time.Now(),
	}
	if err != nil {
		record.Message = err.Error()
	}
	return record
}

// WithDataset adds the dataset name to the record
func (r ErrorRecord) WithDataset(name string) ErrorRecord {
	r.Dataset = name
	return r
}

// WithColumn adds the column name to the record
func (r ErrorRecord) WithColumn(column string) ErrorRecord {
	r.Column = column
	return r
}

// Fatal reports whether the record stops the run
func (r ErrorRecord) Fatal() bool {
	return r.Category == ErrorCategoryConfiguration || r.Category == ErrorCategoryMerge
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))
	if r.Dataset != "" {
		sb.WriteString(fmt.Sprintf("Dataset: %s ", r.Dataset))
	}
	if r.Column != "" {
		sb.WriteString(fmt.Sprintf("Column: %s ", r.Column))
	}
	sb.WriteString("Error: ")
	sb.WriteString(r.Message)
	return sb.String()
}

// CategorizeError maps known errors of the pipeline packages to a category
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}

	var fileErr fileio.FileError
	switch {
	case errors.As(err, &fileErr), errors.Is(err, ErrNoReadableFiles):
		return ErrorCategoryRead
	case errors.Is(err, merge.ErrUnknownMergeMode),
		errors.Is(err, merge.ErrUnknownJoinType),
		errors.Is(err, cleaner.ErrUnknownNullPolicy):
		return ErrorCategoryConfiguration
	default:
		return ErrorCategoryCleaning
	}
}
