package filter

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"center-directory-service/internal/models"
)

// ErrInvalidRange is returned for a distance range that is neither a named
// bucket nor "<N>miles".
var ErrInvalidRange = errors.New("invalid distance range")

var customRange = regexp.MustCompile(`^(\d+(?:\.\d+)?)miles$`)

// Range is a distance bucket in miles: (Min, Max], or [0, Max] when Min is negative.
type Range struct {
	Name string
	Min  float64
	Max  float64
}

// Contains reports whether d miles falls in the bucket.
func (r Range) Contains(d float64) bool {
	return (r.Min < 0 || d > r.Min) && d <= r.Max
}

var namedRanges = map[string]Range{
	"5miles":   {Name: "5miles", Min: -1, Max: 5},
	"10miles":  {Name: "10miles", Min: 5, Max: 10},
	"25miles":  {Name: "25miles", Min: 10, Max: 25},
	"25+miles": {Name: "25+miles", Min: 25, Max: math.Inf(1)},
}

// ParseRange parses a named bucket or a custom "<N>miles" upper bound.
func ParseRange(s string) (Range, error) {
	if r, ok := namedRanges[s]; ok {
		return r, nil
	}
	m := customRange.FindStringSubmatch(s)
	if m == nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return Range{Name: s, Min: -1, Max: n}, nil
}

// ParseRanges parses every entry, failing on the first invalid one.
func ParseRanges(values []string) ([]Range, error) {
	out := make([]Range, 0, len(values))
	for _, v := range values {
		r, err := ParseRange(v)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ByDistance keeps centers whose distance falls in any of the ranges. Centers
// with no known distance are dropped. No ranges keeps everything.
func ByDistance(centers []models.Center, distances map[int]*float64, ranges []Range) []models.Center {
	if len(ranges) == 0 {
		return centers
	}

	out := make([]models.Center, 0, len(centers))
	for _, c := range centers {
		d := distances[c.ID]
		if d == nil {
			continue
		}
		for _, r := range ranges {
			if r.Contains(*d) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
