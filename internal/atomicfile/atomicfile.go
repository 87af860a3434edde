package atomicfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const tempPattern = ".recast-*.tmp"

// WriteAtomic writes data to path so that path is either absent, holds its
// previous content, or holds all of data. Never a prefix of it.
func WriteAtomic(path string, data []byte) error {
	return write(path, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	})
}

// CopyAtomic copies src to path with the same guarantee as WriteAtomic.
func CopyAtomic(src, path string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	return write(path, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}

func write(path string, fill func(io.Writer) error) error {
	destDir := filepath.Dir(path)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create parent for %s: %w", path, err)
	}

	// Same directory as the destination so the rename never crosses volumes.
	tmpFile, err := os.CreateTemp(destDir, tempPattern)
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpPath := tmpFile.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := fill(tmpFile); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write temp file for %s: %w", path, err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("chmod temp file for %s: %w", path, err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("sync temp file for %s: %w", path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}

	if err := replaceFile(tmpPath, path); err != nil {
		return fmt.Errorf("atomic rename for %s: %w", path, err)
	}
	committed = true
	return nil
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	// Windows refuses to rename over an existing file.
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}
