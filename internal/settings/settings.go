// Package settings persists the last-used format selection and quality so a
// later run can skip choosing them again.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"recast/internal/atomicfile"
	"recast/internal/catalog"
)

// Version is bumped whenever Record changes shape. Records with any other
// version are ignored.
const Version = 1

type Record struct {
	Version int                   `json:"version"`
	Formats []string              `json:"formats"`
	Quality catalog.QualityConfig `json:"quality"`
}

// DefaultPath is <user config dir>/recast/last.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "recast", "last.json"), nil
}

// Load reads the record at path. Anything short of a valid current record is
// treated as absent.
func Load(path string, log zerolog.Logger) (Record, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug().Err(err).Str("path", path).Msg("read saved settings")
		}
		return Record{}, false
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("saved settings unreadable, ignoring")
		return Record{}, false
	}
	if err := rec.validate(); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("saved settings invalid, ignoring")
		return Record{}, false
	}
	return rec, true
}

// Save writes rec atomically, stamping the current version.
func Save(path string, rec Record) error {
	rec.Version = Version
	if err := rec.validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.WriteAtomic(path, append(data, '\n'))
}

func (r Record) validate() error {
	if r.Version != Version {
		return fmt.Errorf("settings version %d, want %d", r.Version, Version)
	}
	if len(r.Formats) == 0 {
		return fmt.Errorf("no formats saved")
	}
	for _, id := range r.Formats {
		if !catalog.Known(id) {
			return fmt.Errorf("unknown format %q", id)
		}
	}
	return r.Quality.Validate()
}
