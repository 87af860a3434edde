package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"recast/internal/catalog"
	"recast/internal/codec"
)

// fakeProvider stands in for the wasm pool. Behaviour is keyed by codec.
type fakeProvider struct {
	mu      sync.Mutex
	calls   map[codec.Codec]int
	params  map[codec.Codec][]int
	buffers []*byte
	closes  int

	fail   map[codec.Codec]bool
	panics map[codec.Codec]bool
	block  map[codec.Codec]chan struct{}
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		calls:  map[codec.Codec]int{},
		params: map[codec.Codec][]int{},
		fail:   map[codec.Codec]bool{},
		panics: map[codec.Codec]bool{},
		block:  map[codec.Codec]chan struct{}{},
	}
}

func (p *fakeProvider) Encode(_ context.Context, c codec.Codec, src []byte, param int) ([]byte, error) {
	p.mu.Lock()
	p.calls[c]++
	p.params[c] = append(p.params[c], param)
	if len(src) > 0 {
		p.buffers = append(p.buffers, &src[0])
	}
	fail, panics, block := p.fail[c], p.panics[c], p.block[c]
	p.mu.Unlock()

	if block != nil {
		<-block
	}
	if panics {
		panic("encoder crashed")
	}
	if fail {
		return nil, errors.New("encoder rejected input")
	}
	return []byte(fmt.Sprintf("%s:%d:%d", c, param, len(src))), nil
}

func (p *fakeProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closes++
	return nil
}

func (p *fakeProvider) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

// countingLoader hands out p and records every requested size.
type countingLoader struct {
	mu    sync.Mutex
	sizes []int
	p     codec.Provider
	err   error
}

func (l *countingLoader) load(size int) (codec.Provider, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sizes = append(l.sizes, size)
	if l.err != nil {
		return nil, l.err
	}
	return l.p, nil
}

func usableCaps() codec.Capabilities {
	usable := map[codec.Codec]bool{}
	for _, c := range codec.AdvancedCodecs {
		usable[c] = true
	}
	return codec.NewCapabilities(usable)
}

func selectFormats(t *testing.T, caps codec.Capabilities, ids ...string) []catalog.Entry {
	t.Helper()
	entries, err := catalog.Lookup(catalog.Resolve(caps), ids)
	if err != nil {
		t.Fatalf("lookup %v: %v", ids, err)
	}
	if len(entries) != len(ids) {
		t.Fatalf("lookup %v returned %d entries", ids, len(entries))
	}
	return entries
}

func testImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: 0x60, A: 0xff})
		}
	}
	return img
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(8, 8)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	writeFile(t, path, buf.Bytes())
}

func writeJPEG(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(8, 8), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	writeFile(t, path, buf.Bytes())
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mustExist(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected %s: %v", path, err)
	}
	if info.Size() == 0 {
		t.Fatalf("%s is empty", path)
	}
}
