package codec

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/avif"
	"github.com/gen2brain/jpegli"
	"github.com/gen2brain/webp"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/semaphore"
)

const avifSpeed = 6

// Pool serves advanced encodes through gen2brain's WebAssembly codecs. At
// most size encodes run at once; callers beyond that wait on the semaphore.
type Pool struct {
	sem       *semaphore.Weighted
	closed    atomic.Bool
	closeOnce sync.Once
	encodes   atomic.Int64
}

// NewPool returns a pool bounded to size concurrent encodes.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// NewPoolLoader returns the default Loader. A disabled loader always fails,
// which downgrades every advanced format for the run.
func NewPoolLoader(enabled bool) Loader {
	return func(size int) (Provider, error) {
		if !enabled {
			return nil, ErrProviderDisabled
		}
		return NewPool(size), nil
	}
}

func (p *Pool) Encode(ctx context.Context, c Codec, src []byte, param int) ([]byte, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)

	img, err := decodeOriented(src)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch c {
	case Jpegli:
		err = jpegli.Encode(&buf, img, &jpegli.EncodingOptions{Quality: clampQuality(param)})
	case WebP:
		err = webp.Encode(&buf, img, webp.Options{Quality: clampQuality(param)})
	case WebPLossless:
		err = webp.Encode(&buf, img, webp.Options{Lossless: true})
	case AVIF:
		err = avif.Encode(&buf, img, avif.Options{
			Quality:      quantizerToQuality(param),
			QualityAlpha: quantizerToQuality(param),
			Speed:        avifSpeed,
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, c)
	}
	if err != nil {
		return nil, fmt.Errorf("%s encode: %w", c, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", c, ErrEmptyOutput)
	}

	p.encodes.Add(1)
	return buf.Bytes(), nil
}

// Close releases the pool. Only the first call does anything; later calls and
// encodes report ErrPoolClosed.
func (p *Pool) Close() error {
	err := ErrPoolClosed
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		err = nil
	})
	return err
}

// Encodes reports how many encodes completed successfully.
func (p *Pool) Encodes() int64 {
	return p.encodes.Load()
}

func decodeOriented(src []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode source: %w", err)
	}
	return applyOrientation(img, exifOrientation(src)), nil
}
