// Package catalog holds the static table of output formats and resolves each
// one to a concrete Strategy for the current runtime.
package catalog

import (
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/samber/lo"

	"recast/internal/codec"
)

// OriginalID is the identity entry that copies the source file unchanged.
const OriginalID = "original"

// FormatSpec describes one output format. Specs are never mutated after the
// table is built.
type FormatSpec struct {
	ID    string
	Label string
	// Ext is the output extension without the dot. Empty for the identity
	// entry, which keeps the source extension.
	Ext     string
	Lossy   bool
	Quality bool

	Advanced      codec.Codec
	AdvancedLabel string
	HasFallback   bool
	Fallback      imaging.Format
	FallbackLabel string

	Identity bool
	// Primary marks the JPEG-family encoder that must always resolve to a
	// usable strategy.
	Primary bool
}

// Entry is a FormatSpec bound to its Strategy for this run.
type Entry struct {
	Spec     FormatSpec
	Strategy Strategy
	// Label is the user-facing name, which for the primary entry names the
	// strategy that was picked.
	Label string
}

var table = []FormatSpec{
	{
		ID: "jpeg", Label: "JPEG", Ext: "jpg", Lossy: true, Quality: true,
		Advanced: codec.Jpegli, AdvancedLabel: "JPEG (jpegli)",
		HasFallback: true, Fallback: imaging.JPEG, FallbackLabel: "JPEG (standard)",
		Primary: true,
	},
	{ID: "webp", Label: "WebP", Ext: "webp", Lossy: true, Quality: true, Advanced: codec.WebP},
	{ID: "webp-lossless", Label: "WebP (lossless)", Ext: "webp", Advanced: codec.WebPLossless},
	{ID: "avif", Label: "AVIF", Ext: "avif", Lossy: true, Quality: true, Advanced: codec.AVIF},
	{ID: "png", Label: "PNG", Ext: "png", HasFallback: true, Fallback: imaging.PNG},
	{ID: "tiff", Label: "TIFF", Ext: "tiff", HasFallback: true, Fallback: imaging.TIFF},
	{ID: "bmp", Label: "BMP", Ext: "bmp", HasFallback: true, Fallback: imaging.BMP},
	{ID: OriginalID, Label: "Original (copy)", Identity: true},
}

// Specs returns a copy of the format table in menu order.
func Specs() []FormatSpec {
	out := make([]FormatSpec, len(table))
	copy(out, table)
	return out
}

// IDs returns every format identifier in menu order.
func IDs() []string {
	return lo.Map(table, func(s FormatSpec, _ int) string { return s.ID })
}

// Known reports whether id names a format in the table.
func Known(id string) bool {
	return lo.ContainsBy(table, func(s FormatSpec) bool { return s.ID == id })
}

// Resolve binds every format to a strategy. It depends only on caps, so two
// calls with equal capabilities return identical entries in identical order.
func Resolve(caps codec.Capabilities) []Entry {
	entries := make([]Entry, 0, len(table))
	for _, spec := range table {
		entries = append(entries, resolveOne(spec, caps))
	}
	return entries
}

func resolveOne(spec FormatSpec, caps codec.Capabilities) Entry {
	entry := Entry{Spec: spec, Label: spec.Label}

	switch {
	case spec.Identity:
		entry.Strategy = RawCopy{}
	case spec.Advanced != "" && caps.Usable(spec.Advanced):
		entry.Strategy = Advanced{Codec: spec.Advanced}
		if spec.AdvancedLabel != "" {
			entry.Label = spec.AdvancedLabel
		}
	case spec.HasFallback:
		entry.Strategy = Fallback{Format: spec.Fallback}
		if spec.FallbackLabel != "" {
			entry.Label = spec.FallbackLabel
		}
	default:
		entry.Strategy = Unsupported{Reason: unsupportedReason(spec, caps)}
	}
	return entry
}

func unsupportedReason(spec FormatSpec, caps codec.Capabilities) string {
	if spec.Advanced == "" {
		return "no encoder available"
	}
	if caps.LoadErr != "" {
		return "advanced codecs unavailable"
	}
	return fmt.Sprintf("%s codec unusable in this runtime", spec.Advanced)
}

// Lookup selects the entries named by ids. The result follows catalog order,
// not the order of ids, and contains each format once.
func Lookup(entries []Entry, ids []string) ([]Entry, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range lo.Uniq(ids) {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if !Known(id) {
			return nil, fmt.Errorf("unknown format %q (known: %s)", id, strings.Join(IDs(), ", "))
		}
		wanted[id] = true
	}

	return lo.Filter(entries, func(e Entry, _ int) bool { return wanted[e.Spec.ID] }), nil
}
