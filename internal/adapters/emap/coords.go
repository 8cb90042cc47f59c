package emap

import (
	"math"
	"strconv"
	"strings"
)

const (
	coordScale = 1_000_000
	// magnitudes above this are not degrees and get rescaled
	plausibleDegrees = 1000
)

// NormalizeCoordinate decodes one X/Y field into decimal degrees.
//
// The upstream mixes plain degrees and degrees*1e6 with nothing marking which one
// it sent, so this is a best-effort rescale rather than a unit conversion: values
// already in degree range are kept, larger ones are divided by 1e6, and a result
// that is still out of range is divided by 1e6 once more. Unparseable input
// decodes to 0; it never fails.
func NormalizeCoordinate(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if math.Abs(v) <= plausibleDegrees {
		return v
	}
	v /= coordScale
	if math.Abs(v) > plausibleDegrees {
		v /= coordScale
	}
	return v
}
