package codec

import (
	"bytes"
	"image"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	exif "github.com/dsoprea/go-exif/v3"
)

const orientationNormal = 1

// exifOrientation returns the EXIF Orientation tag of src, or 1 when the
// image has no EXIF block or the tag is missing or malformed.
func exifOrientation(src []byte) int {
	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(bytes.NewReader(src), nil, true)
	if err != nil {
		return orientationNormal
	}

	for _, tag := range tags {
		if tag.TagName != "Orientation" || strings.Contains(tag.IfdPath, "Thumbnail") {
			continue
		}
		if v, ok := orientationValue(tag.Value); ok {
			return v
		}
		if v, err := strconv.Atoi(strings.TrimSpace(tag.FormattedFirst)); err == nil && v >= 1 && v <= 8 {
			return v
		}
	}
	return orientationNormal
}

func orientationValue(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case []uint16:
		if len(v) > 0 && v[0] >= 1 && v[0] <= 8 {
			return int(v[0]), true
		}
	case uint16:
		if v >= 1 && v <= 8 {
			return int(v), true
		}
	}
	return 0, false
}

func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
