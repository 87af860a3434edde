package processor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	"recast/pkg/imgutil"
)

var ErrNoImages = errors.New("no supported images found")

// Input is the set of files one run works on.
type Input struct {
	// Root is the directory that batch outputs are mirrored relative to. For
	// a single file it is the file's parent.
	Root  string
	Files []string
	Batch bool
}

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// Discover resolves path into absolute input files. A directory is walked
// recursively, skipping hidden directories and outputRoot when it is nested
// inside path. Files must carry a known image extension and a recognizable
// signature.
func Discover(path, outputRoot string) (Input, error) {
	absRoot, err := filepath.Abs(path)
	if err != nil {
		return Input{}, err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return Input{}, fmt.Errorf("input %s: %w", path, err)
	}

	if !info.IsDir() {
		if !isImage(absRoot) {
			return Input{}, fmt.Errorf("%s: %w", path, ErrNoImages)
		}
		return Input{Root: filepath.Dir(absRoot), Files: []string{absRoot}}, nil
	}

	var outputAbs string
	var outputInsideRoot bool
	if outputRoot != "" {
		if absOut, outErr := filepath.Abs(outputRoot); outErr == nil {
			outputAbs = filepath.Clean(absOut)
			if outputAbs != filepath.Clean(absRoot) && isWithin(outputAbs, absRoot) {
				outputInsideRoot = true
			}
		}
	}

	var files []string
	err = fs.WalkDir(os.DirFS(absRoot), ".", func(rel string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if rel != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			if outputInsideRoot && isWithin(filepath.Join(absRoot, rel), outputAbs) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		full := filepath.Join(absRoot, filepath.FromSlash(rel))
		if isImage(full) {
			files = append(files, full)
		}
		return nil
	})
	if err != nil {
		return Input{}, fmt.Errorf("walk %s: %w", path, err)
	}

	files = lo.Uniq(files)
	sort.Strings(files)
	if len(files) == 0 {
		return Input{}, fmt.Errorf("%s: %w", path, ErrNoImages)
	}

	return Input{Root: absRoot, Files: files, Batch: true}, nil
}

func isImage(path string) bool {
	if !imageExts[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	kind, err := imgutil.SniffFile(path)
	return err == nil && kind != imgutil.KindUnknown
}

func isWithin(path string, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
