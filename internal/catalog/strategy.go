package catalog

import (
	"fmt"

	"github.com/disintegration/imaging"

	"recast/internal/codec"
)

// Strategy is the execution path bound to a format for one run. The set of
// variants is closed: Advanced, Fallback, RawCopy and Unsupported.
type Strategy interface {
	fmt.Stringer
	strategy()
}

// Advanced encodes through the in-process codec provider.
type Advanced struct {
	Codec codec.Codec
}

// Fallback encodes with the native imaging library.
type Fallback struct {
	Format imaging.Format
}

// RawCopy copies the source bytes unchanged.
type RawCopy struct{}

// Unsupported formats produce no jobs; every input counts as skipped.
type Unsupported struct {
	Reason string
}

func (Advanced) strategy()    {}
func (Fallback) strategy()    {}
func (RawCopy) strategy()     {}
func (Unsupported) strategy() {}

func (s Advanced) String() string { return "advanced (" + string(s.Codec) + ")" }
func (s Fallback) String() string { return "fallback (" + s.Format.String() + ")" }
func (RawCopy) String() string    { return "raw copy" }

func (s Unsupported) String() string {
	if s.Reason == "" {
		return "unsupported"
	}
	return "unsupported: " + s.Reason
}
