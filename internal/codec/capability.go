package codec

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"

	"github.com/rs/zerolog"
)

const (
	probeSize    = 8
	probeQuality = 75
	probeTimeout = 30 * time.Second
)

// Capabilities records which advanced codecs produced real output in this
// runtime. It is built once by Detect and never mutated afterwards.
type Capabilities struct {
	usable map[Codec]bool
	// LoadErr is set when the provider itself could not be constructed.
	LoadErr string
}

// NewCapabilities builds a capability set from explicit results. Codecs not
// mentioned are unusable.
func NewCapabilities(usable map[Codec]bool) Capabilities {
	caps := Capabilities{usable: make(map[Codec]bool, len(AdvancedCodecs))}
	for _, c := range AdvancedCodecs {
		caps.usable[c] = usable[c]
	}
	return caps
}

func (c Capabilities) Usable(codec Codec) bool {
	return c.usable[codec]
}

// Codecs returns every probed codec in probe order.
func (c Capabilities) Codecs() []Codec {
	out := make([]Codec, len(AdvancedCodecs))
	copy(out, AdvancedCodecs)
	return out
}

// Detect loads the provider once and encodes a synthetic image through every
// advanced codec. A load failure disables all codecs; a probe failure only
// disables that codec. Nothing escapes as an error.
func Detect(load Loader, log zerolog.Logger) Capabilities {
	caps := NewCapabilities(nil)

	provider, err := Open(load, 1)
	if err != nil {
		caps.LoadErr = err.Error()
		log.Info().Err(err).Msg("advanced codecs unavailable, using fallback encoders")
		return caps
	}
	defer func() {
		if err := provider.Close(); err != nil {
			log.Debug().Err(err).Msg("close probe provider")
		}
	}()

	sample, err := probeImage()
	if err != nil {
		caps.LoadErr = err.Error()
		log.Info().Err(err).Msg("build probe image")
		return caps
	}

	for _, c := range AdvancedCodecs {
		err := probe(provider, c, sample)
		caps.usable[c] = err == nil
		if err != nil {
			log.Info().Str("codec", string(c)).Err(err).Msg("codec probe failed")
			continue
		}
		log.Debug().Str("codec", string(c)).Msg("codec usable")
	}
	return caps
}

func probe(provider Provider, c Codec, sample []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	out, err := provider.Encode(ctx, c, sample, MapQuality(c, probeQuality))
	if err != nil {
		return err
	}
	if len(out) == 0 {
		return ErrEmptyOutput
	}
	return nil
}

func probeImage() ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, probeSize, probeSize))
	for y := 0; y < probeSize; y++ {
		for x := 0; x < probeSize; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 32), G: uint8(y * 32), B: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
