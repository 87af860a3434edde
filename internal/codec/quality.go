package codec

import "math"

const (
	QualityMin = 1
	QualityMax = 100

	// AVIF quantizer, lower is better.
	AVIFQuantizerMin = 0
	AVIFQuantizerMax = 63
)

type breakpoint struct {
	quality float64
	native  float64
}

// Visually tuned; flatter in the high range where quantizer steps are cheap.
var avifCurve = []breakpoint{
	{quality: 1, native: 63},
	{quality: 25, native: 45},
	{quality: 50, native: 33},
	{quality: 75, native: 24},
	{quality: 100, native: 0},
}

// MapQuality translates a 1..100 user quality into c's native parameter.
// AVIF maps onto the inverse quantizer scale; every other codec passes the
// quality through, clamped to 1..100.
func MapQuality(c Codec, quality int) int {
	quality = clampQuality(quality)
	switch c {
	case AVIF:
		native := int(math.Round(interpolate(avifCurve, float64(quality))))
		return clamp(native, AVIFQuantizerMin, AVIFQuantizerMax)
	default:
		return quality
	}
}

// NativeRange reports the inclusive range MapQuality can return for c.
func NativeRange(c Codec) (lo, hi int) {
	if c == AVIF {
		return AVIFQuantizerMin, AVIFQuantizerMax
	}
	return QualityMin, QualityMax
}

func interpolate(curve []breakpoint, x float64) float64 {
	if x <= curve[0].quality {
		return curve[0].native
	}
	for i := 1; i < len(curve); i++ {
		a, b := curve[i-1], curve[i]
		if x <= b.quality {
			t := (x - a.quality) / (b.quality - a.quality)
			return a.native + t*(b.native-a.native)
		}
	}
	return curve[len(curve)-1].native
}

// quantizerToQuality converts an AVIF quantizer back to the 0..100 quality
// scale the encoder library accepts.
func quantizerToQuality(q int) int {
	q = clamp(q, AVIFQuantizerMin, AVIFQuantizerMax)
	return clamp(int(math.Round(100-float64(q)*100/AVIFQuantizerMax)), 0, 100)
}

func clampQuality(q int) int {
	return clamp(q, QualityMin, QualityMax)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
