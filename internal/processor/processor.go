package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"recast/internal/atomicfile"
	"recast/internal/catalog"
	"recast/internal/codec"
)

const (
	minWorkers = 2
	maxWorkers = 8
)

var ErrNoFormats = errors.New("no output formats selected")

// DefaultConcurrency derives the worker count from the CPU count, clamped to
// [2, 8].
func DefaultConcurrency() int {
	n := runtime.NumCPU()
	if n < minWorkers {
		return minWorkers
	}
	if n > maxWorkers {
		return maxWorkers
	}
	return n
}

type unit struct {
	input string
	jobs  []Job
}

type fileResult struct {
	input    string
	outcomes []Outcome
}

type runner struct {
	provider codec.Provider
	quality  catalog.QualityConfig
	timeout  time.Duration
}

// Run converts every file into every selected format and returns the batch
// summary. Per-job failures land in the summary; the returned error is only
// set for invalid requests or when ctx is cancelled.
func Run(ctx context.Context, req Request, log zerolog.Logger, updates chan<- ProgressUpdate) (Summary, error) {
	start := time.Now()
	summary := Summary{Inputs: len(req.Files), Succeeded: map[string]int{}}

	if len(req.Files) == 0 {
		return summary, ErrNoImages
	}
	if len(req.Formats) == 0 {
		return summary, ErrNoFormats
	}
	if err := req.Quality.Validate(); err != nil {
		return summary, fmt.Errorf("quality: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	limit := req.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency()
	}

	active := make([]catalog.Entry, 0, len(req.Formats))
	for _, entry := range req.Formats {
		if s, ok := entry.Strategy.(catalog.Unsupported); ok {
			summary.Skipped = append(summary.Skipped, skipAll(entry, len(req.Files), s.Reason))
			continue
		}
		active = append(active, entry)
	}

	var provider codec.Provider
	if lo.ContainsBy(active, isAdvanced) {
		p, err := codec.Open(req.Loader, limit)
		if err != nil {
			summary.ProviderError = err.Error()
			log.Warn().Err(err).Msg("advanced codec provider failed to start, skipping advanced formats")
			for _, entry := range lo.Filter(active, func(e catalog.Entry, _ int) bool { return isAdvanced(e) }) {
				summary.Skipped = append(summary.Skipped, skipAll(entry, len(req.Files), "advanced codec provider unavailable"))
			}
			active = lo.Reject(active, func(e catalog.Entry, _ int) bool { return isAdvanced(e) })
		} else {
			provider = p
		}
	}

	for _, entry := range active {
		summary.Succeeded[entry.Spec.ID] = 0
	}

	plan := planJobs(req.Files, active, req.InputRoot, req.OutputRoot, req.Batch)
	r := &runner{provider: provider, quality: req.Quality, timeout: req.JobTimeout}

	log.Debug().
		Int("files", len(req.Files)).
		Int("formats", len(active)).
		Int("workers", limit).
		Msg("starting batch")

	units := make(chan unit)
	results := make(chan fileResult)

	var wg sync.WaitGroup
	wg.Add(limit)
	for i := 0; i < limit; i++ {
		go func() {
			defer wg.Done()
			r.worker(ctx, units, results)
		}()
	}

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range results {
			var outputs, errs int
			for _, o := range res.outcomes {
				id := o.Job.Entry.Spec.ID
				if o.Err == nil {
					summary.Succeeded[id]++
					summary.Outputs = append(summary.Outputs, o.Job.Output)
					outputs++
					continue
				}
				errs++
				summary.Failures = append(summary.Failures, Failure{
					Input:    o.Job.Input,
					FormatID: id,
					Format:   o.Job.Entry.Label,
					Reason:   o.Err.Error(),
				})
				log.Debug().Str("input", o.Job.Input).Str("format", id).Err(o.Err).Msg("job failed")
			}
			if updates != nil {
				updates <- ProgressUpdate{
					Total:          len(req.Files),
					ProcessedDelta: 1,
					ErrorDelta:     errs,
					OutputDelta:    outputs,
					File:           displayName(res.input, req.InputRoot, req.Batch),
				}
			}
		}
	}()

	go func() {
		defer close(units)
		for i, input := range req.Files {
			select {
			case units <- unit{input: input, jobs: plan[i]}:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	if provider != nil {
		if err := provider.Close(); err != nil {
			log.Debug().Err(err).Msg("close advanced codec provider")
		}
	}
	close(results)
	<-collectorDone

	order := formatOrder(req.Formats)
	sortSummary(&summary, order)
	summary.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (r *runner) worker(ctx context.Context, units <-chan unit, results chan<- fileResult) {
	for u := range units {
		if err := ctx.Err(); err != nil {
			return
		}

		src := &source{path: u.input}
		res := fileResult{input: u.input, outcomes: make([]Outcome, 0, len(u.jobs))}
		for _, job := range u.jobs {
			res.outcomes = append(res.outcomes, Outcome{Job: job, Err: r.runJob(ctx, job, src)})
		}
		results <- res
	}
}

func (r *runner) runJob(ctx context.Context, job Job, src *source) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	switch s := job.Entry.Strategy.(type) {
	case catalog.Advanced:
		data, err := src.bytes()
		if err != nil {
			return fmt.Errorf("read source: %w", err)
		}
		param := codec.MapQuality(s.Codec, r.quality.Effective(job.Entry.Spec.ID))
		out, err := r.encode(ctx, func(ctx context.Context) ([]byte, error) {
			return r.provider.Encode(ctx, s.Codec, data, param)
		})
		if err != nil {
			return err
		}
		return atomicfile.WriteAtomic(job.Output, out)
	case catalog.Fallback:
		quality := r.quality.Effective(job.Entry.Spec.ID)
		out, err := r.encode(ctx, func(context.Context) ([]byte, error) {
			return codec.EncodeFallback(job.Input, s.Format, quality)
		})
		if err != nil {
			return err
		}
		return atomicfile.WriteAtomic(job.Output, out)
	case catalog.RawCopy:
		return atomicfile.CopyAtomic(job.Input, job.Output)
	case catalog.Unsupported:
		return fmt.Errorf("unsupported: %s", s.Reason)
	default:
		panic(fmt.Sprintf("processor: unhandled strategy %T", s))
	}
}

// encode runs fn, bounded by the job timeout when one is set. A call that
// outlives the timeout is abandoned; its result is discarded.
func (r *runner) encode(ctx context.Context, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	if r.timeout <= 0 {
		return callSafely(ctx, fn)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := callSafely(ctx, fn)
		done <- result{out: out, err: err}
	}()

	select {
	case res := <-done:
		return res.out, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("timed out after %s", r.timeout)
		}
		return nil, ctx.Err()
	}
}

func callSafely(ctx context.Context, fn func(context.Context) ([]byte, error)) (out []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn(ctx)
}

// source reads an input file on first use and hands the same buffer to every
// later caller. Each unit owns its source, so no locking is needed.
type source struct {
	path   string
	loaded bool
	data   []byte
	err    error
}

func (s *source) bytes() ([]byte, error) {
	if !s.loaded {
		s.data, s.err = os.ReadFile(s.path)
		s.loaded = true
	}
	return s.data, s.err
}

func isAdvanced(e catalog.Entry) bool {
	_, ok := e.Strategy.(catalog.Advanced)
	return ok
}

func skipAll(entry catalog.Entry, count int, reason string) Skip {
	return Skip{Format: entry.Spec.ID, Label: entry.Label, Count: count, Reason: reason}
}

func formatOrder(entries []catalog.Entry) map[string]int {
	order := make(map[string]int, len(entries))
	for i, e := range entries {
		order[e.Spec.ID] = i
	}
	return order
}

func sortSummary(s *Summary, order map[string]int) {
	sort.Strings(s.Outputs)
	sort.SliceStable(s.Failures, func(i, j int) bool {
		a, b := s.Failures[i], s.Failures[j]
		if a.Input != b.Input {
			return a.Input < b.Input
		}
		return order[a.FormatID] < order[b.FormatID]
	})
	sort.SliceStable(s.Skipped, func(i, j int) bool {
		return order[s.Skipped[i].Format] < order[s.Skipped[j].Format]
	})
}

func displayName(input, root string, batch bool) string {
	if batch {
		if rel, err := filepath.Rel(root, input); err == nil {
			return rel
		}
	}
	return filepath.Base(input)
}
