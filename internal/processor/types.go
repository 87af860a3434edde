package processor

import (
	"time"

	"recast/internal/catalog"
	"recast/internal/codec"
)

// Request describes one batch. Files must be absolute and deduplicated, as
// returned by Discover.
type Request struct {
	Files      []string
	InputRoot  string
	OutputRoot string
	Batch      bool

	Formats []catalog.Entry
	Quality catalog.QualityConfig

	// Concurrency <= 0 uses DefaultConcurrency.
	Concurrency int
	// JobTimeout > 0 bounds every encode call.
	JobTimeout time.Duration
	// Loader builds the advanced provider for the batch. Nil disables it.
	Loader codec.Loader
}

// Job is one (input file, format) pair.
type Job struct {
	Input  string
	Output string
	Entry  catalog.Entry
}

// Outcome is the result of one job. Err is nil on success.
type Outcome struct {
	Job Job
	Err error
}

type Failure struct {
	Input    string
	FormatID string
	Format   string
	Reason   string
}

// Skip records a selected format that produced no jobs.
type Skip struct {
	Format string
	Label  string
	Count  int
	Reason string
}

type Summary struct {
	Inputs        int
	Succeeded     map[string]int
	Outputs       []string
	Failures      []Failure
	Skipped       []Skip
	ProviderError string
	Duration      time.Duration
}

// Failed reports the number of failed jobs.
func (s Summary) Failed() int {
	return len(s.Failures)
}

// SucceededTotal sums successful jobs across formats.
func (s Summary) SucceededTotal() int {
	total := 0
	for _, n := range s.Succeeded {
		total += n
	}
	return total
}

// ProgressUpdate is sent once per completed input file. Total is absolute so
// the first update is enough to size a progress bar.
type ProgressUpdate struct {
	Total          int
	ProcessedDelta int
	ErrorDelta     int
	OutputDelta    int
	File           string
}
