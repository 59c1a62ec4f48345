// pkg/wrangler/job.go
package wrangler

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// FileJob is one input file of a run
type FileJob struct {
	ID        string    // Unique job identifier
	Path      string    // Path as given by the caller
	Name      string    // Dataset name assigned after reading
	CreatedAt time.Time // Job creation timestamp
}

// NewFileJob creates a job for a path
func NewFileJob(path string) FileJob {
	return FileJob{
		ID:        uuid.New().String(),
		Path:      path,
		CreatedAt: time.Now(),
	}
}

// WithName sets the dataset name and returns the modified job
func (j FileJob) WithName(name string) FileJob {
	j.Name = name
	return j
}

// DisplayName is the dataset name, or the file name before one is assigned
func (j FileJob) DisplayName() string {
	if j.Name != "" {
		return j.Name
	}
	return filepath.Base(j.Path)
}

// FileResult is the outcome of reading one file
type FileResult struct {
	Job      FileJob
	Encoding string
	Rows     int
	Columns  int
	Err      error
	Duration time.Duration
}

// Success reports whether the file was read
func (r FileResult) Success() bool {
	return r.Err == nil
}
