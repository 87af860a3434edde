package codec

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func TestApplyOrientationRotates(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))

	for _, o := range []int{5, 6, 7, 8} {
		b := applyOrientation(img, o).Bounds()
		if b.Dx() != 2 || b.Dy() != 4 {
			t.Fatalf("orientation %d: expected 2x4, got %dx%d", o, b.Dx(), b.Dy())
		}
	}
	for _, o := range []int{1, 2, 3, 4, 0, 42} {
		b := applyOrientation(img, o).Bounds()
		if b.Dx() != 4 || b.Dy() != 2 {
			t.Fatalf("orientation %d: expected 4x2, got %dx%d", o, b.Dx(), b.Dy())
		}
	}
}

func TestExifOrientationWithoutExif(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := exifOrientation(buf.Bytes()); got != 1 {
		t.Fatalf("expected orientation 1, got %d", got)
	}
	if got := exifOrientation([]byte("garbage")); got != 1 {
		t.Fatalf("expected orientation 1 for garbage, got %d", got)
	}
}

func TestOrientationValue(t *testing.T) {
	if v, ok := orientationValue([]uint16{6}); !ok || v != 6 {
		t.Fatalf("expected 6, got %d %v", v, ok)
	}
	if _, ok := orientationValue([]uint16{9}); ok {
		t.Fatalf("out-of-range orientation accepted")
	}
	if _, ok := orientationValue("6"); ok {
		t.Fatalf("string value accepted")
	}
}
