package codec

import (
	"context"
	"errors"
	"testing"
)

func TestPoolCloseIsIdempotent(t *testing.T) {
	p := NewPool(2)
	if err := p.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := p.Close(); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("second close should report ErrPoolClosed, got %v", err)
	}
}

func TestPoolRejectsEncodeAfterClose(t *testing.T) {
	p := NewPool(1)
	_ = p.Close()

	sample, err := probeImage()
	if err != nil {
		t.Fatalf("probe image: %v", err)
	}
	if _, err := p.Encode(context.Background(), WebP, sample, 80); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func TestPoolRejectsUnknownCodec(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	sample, err := probeImage()
	if err != nil {
		t.Fatalf("probe image: %v", err)
	}
	if _, err := p.Encode(context.Background(), Codec("jxl"), sample, 80); !errors.Is(err, ErrUnknownCodec) {
		t.Fatalf("expected ErrUnknownCodec, got %v", err)
	}
}

func TestPoolRejectsUndecodableSource(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	if _, err := p.Encode(context.Background(), WebP, []byte("nope"), 80); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestPoolHonorsCancelledContext(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	// Hold the only slot so the next Acquire has to wait on ctx.
	if err := p.sem.Acquire(context.Background(), 1); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer p.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Encode(ctx, WebP, nil, 80); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPoolEncodesWebP(t *testing.T) {
	if testing.Short() {
		t.Skip("wasm codec initialisation is slow")
	}
	p := NewPool(1)
	defer p.Close()

	sample, err := probeImage()
	if err != nil {
		t.Fatalf("probe image: %v", err)
	}
	out, err := p.Encode(context.Background(), WebP, sample, 80)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(out) < 12 || string(out[:4]) != "RIFF" || string(out[8:12]) != "WEBP" {
		t.Fatalf("output is not a WebP container")
	}
	if p.Encodes() != 1 {
		t.Fatalf("expected 1 encode, got %d", p.Encodes())
	}
}
