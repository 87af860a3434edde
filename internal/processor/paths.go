package processor

import (
	"fmt"
	"path/filepath"
	"strings"

	"recast/internal/catalog"
)

// Suffix marks generated files so they are never mistaken for originals.
const Suffix = "converted"

// ResolvePath returns the destination for input encoded with extension ext
// (no leading dot). Batch runs mirror the input's directory relative to
// inputRoot under outputRoot; single-file runs write straight into
// outputRoot.
func ResolvePath(input, inputRoot, outputRoot string, batch bool, ext string) string {
	return filepath.Join(outputDir(input, inputRoot, outputRoot, batch), outputName(stem(input), ext))
}

func outputDir(input, inputRoot, outputRoot string, batch bool) string {
	if !batch {
		return outputRoot
	}
	rel, err := filepath.Rel(inputRoot, filepath.Dir(input))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return outputRoot
	}
	return filepath.Join(outputRoot, rel)
}

func outputName(stem, ext string) string {
	name := stem + "-" + Suffix
	if ext == "" {
		return name
	}
	return name + "." + ext
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func sourceExt(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// extFor picks the output extension. The identity entry keeps the source's
// own extension.
func extFor(entry catalog.Entry, input string) string {
	if _, ok := entry.Strategy.(catalog.RawCopy); ok {
		return sourceExt(input)
	}
	return entry.Spec.Ext
}

// planJobs computes every destination before any work starts, so the mapping
// does not depend on scheduling. Files are visited in order and formats in
// the given order; the first claimant of a path keeps the plain name and
// later ones get the source extension, then the format id, then a counter
// inserted into the stem.
func planJobs(files []string, entries []catalog.Entry, inputRoot, outputRoot string, batch bool) [][]Job {
	taken := make(map[string]bool, len(files)*(len(entries)+1))
	for _, f := range files {
		taken[pathKey(f)] = true
	}

	plan := make([][]Job, len(files))
	for i, input := range files {
		dir := outputDir(input, inputRoot, outputRoot, batch)
		jobs := make([]Job, 0, len(entries))
		for _, entry := range entries {
			out := claimPath(taken, dir, input, entry)
			jobs = append(jobs, Job{Input: input, Output: out, Entry: entry})
		}
		plan[i] = jobs
	}
	return plan
}

func claimPath(taken map[string]bool, dir, input string, entry catalog.Entry) string {
	s := stem(input)
	ext := extFor(entry, input)

	candidates := []string{s}
	if src := sourceExt(input); src != "" {
		candidates = append(candidates, s+"-"+strings.ToLower(src))
	}
	candidates = append(candidates, s+"-"+entry.Spec.ID)

	for _, c := range candidates {
		if p := filepath.Join(dir, outputName(c, ext)); !taken[pathKey(p)] {
			taken[pathKey(p)] = true
			return p
		}
	}
	for n := 2; ; n++ {
		p := filepath.Join(dir, outputName(fmt.Sprintf("%s-%d", s, n), ext))
		if !taken[pathKey(p)] {
			taken[pathKey(p)] = true
			return p
		}
	}
}

// Case-folded so names that differ only by case stay distinct on
// case-insensitive filesystems.
func pathKey(p string) string {
	return strings.ToLower(filepath.Clean(p))
}
