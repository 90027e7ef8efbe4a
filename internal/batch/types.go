package batch

import (
	"errors"
	"time"

	"github.com/raaihank/deidentify/internal/privacy"
)

var (
	// ErrPathNotFound is returned when the input path does not exist
	ErrPathNotFound = errors.New("input path does not exist")
	// ErrUnsupportedFile is returned for a single input file without a markdown extension
	ErrUnsupportedFile = errors.New("input file must be a markdown (.md) file")
	// ErrNotText is returned when a document is not valid UTF-8
	ErrNotText = errors.New("document is not valid UTF-8 text")
)

// Deidentifier is the engine surface the pipeline needs
type Deidentifier interface {
	Process(text, documentID string) privacy.ProcessResult
}

// FileResult represents one successfully processed document
type FileResult struct {
	Input      string            `json:"input"`
	Output     string            `json:"output"`
	Identifier string            `json:"identifier"`
	Findings   []privacy.Finding `json:"findings"`
	Bytes      int               `json:"bytes"`
	Written    bool              `json:"written"`
	Duration   time.Duration     `json:"duration"`
}

// FileError represents one document that could not be processed
type FileError struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// RunResult represents the result of processing a file or directory
type RunResult struct {
	Processed []FileResult             `json:"processed"`
	Failed    []FileError              `json:"failed,omitempty"`
	Totals    map[privacy.Category]int `json:"totals"`
	Duration  time.Duration            `json:"duration"`
}

func newRunResult() *RunResult {
	return &RunResult{Totals: make(map[privacy.Category]int)}
}

func (r *RunResult) addProcessed(fr FileResult) {
	r.Processed = append(r.Processed, fr)
	for _, f := range fr.Findings {
		r.Totals[f.Category] += f.Count
	}
}

func (r *RunResult) addFailed(path string, err error) {
	r.Failed = append(r.Failed, FileError{Path: path, Err: err})
}

// Replacements returns the number of replaced spans across all documents
func (r *RunResult) Replacements() int {
	total := 0
	for _, n := range r.Totals {
		total += n
	}
	return total
}
