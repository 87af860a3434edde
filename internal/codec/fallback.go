package codec

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/disintegration/imaging"
)

// EncodeFallback decodes path with the native imaging library and re-encodes
// it as format. quality only affects JPEG.
func EncodeFallback(path string, format imaging.Format, quality int) ([]byte, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	var opts []imaging.EncodeOption
	switch format {
	case imaging.JPEG:
		opts = append(opts, imaging.JPEGQuality(clampQuality(quality)))
	case imaging.PNG:
		opts = append(opts, imaging.PNGCompressionLevel(png.BestCompression))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, opts...); err != nil {
		return nil, fmt.Errorf("%s encode: %w", format, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", format, ErrEmptyOutput)
	}
	return buf.Bytes(), nil
}
