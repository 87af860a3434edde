// Package codec holds the encoding backends: the advanced in-process codec
// pool, the native fallback encoder, runtime capability detection and the
// quality mapping into each codec's native parameter space.
package codec

import (
	"context"
	"errors"
	"fmt"
)

// Codec identifies one advanced encoder served by a Provider.
type Codec string

const (
	Jpegli       Codec = "jpegli"
	WebP         Codec = "webp"
	WebPLossless Codec = "webp-lossless"
	AVIF         Codec = "avif"
)

// AdvancedCodecs lists every codec the provider may serve, in probe order.
var AdvancedCodecs = []Codec{Jpegli, WebP, WebPLossless, AVIF}

var (
	ErrProviderDisabled = errors.New("advanced codec provider disabled")
	ErrPoolClosed       = errors.New("codec pool closed")
	ErrEmptyOutput      = errors.New("encoder produced no output")
	ErrUnknownCodec     = errors.New("unknown codec")
)

// Provider encodes source image bytes through an advanced codec. param is
// already in the codec's native space (see MapQuality). Implementations must
// be safe for concurrent use.
type Provider interface {
	Encode(ctx context.Context, c Codec, src []byte, param int) ([]byte, error)
	Close() error
}

// Loader constructs a Provider able to serve size concurrent encodes.
type Loader func(size int) (Provider, error)

// Open runs load and turns a panic into an error. The advanced provider is an
// all-or-nothing dependency, so any failure here disables every codec.
func Open(load Loader, size int) (p Provider, err error) {
	if load == nil {
		return nil, fmt.Errorf("no advanced codec provider configured")
	}
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = fmt.Errorf("load advanced codec provider: panic: %v", r)
		}
	}()

	p, err = load(size)
	if err != nil {
		return nil, fmt.Errorf("load advanced codec provider: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("load advanced codec provider: loader returned nil")
	}
	return p, nil
}
