// Package similarity scores how alike two centers are on tags, location, rating and hours.
// Every score is in [0, 1]; higher is more similar. Absent or malformed data scores 0.
package similarity

import (
	"math"
	"time"

	"center-directory-service/internal/models"
	"center-directory-service/internal/schedule"
)

const (
	earthRadiusMiles = 3959.0

	// DistanceHorizonMiles is the distance at which distance similarity reaches 0.
	DistanceHorizonMiles = 25.0

	maxRatingSpread = 4.0
)

// Tags is the Jaccard index over tag names.
func Tags(a, b []models.Tag) float64 {
	setA := tagNames(a)
	setB := tagNames(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for name := range setA {
		if setB[name] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tagNames(tags []models.Tag) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t.Name] = true
	}
	return set
}

// ValidCoordinate reports whether a coordinate is present, non-zero and in range.
func ValidCoordinate(lat, lon *float64) bool {
	if lat == nil || lon == nil {
		return false
	}
	if *lat == 0 || *lon == 0 {
		return false
	}
	return math.Abs(*lat) <= 90 && math.Abs(*lon) <= 180
}

// HaversineMiles is the great-circle distance between two points in miles.
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance decays linearly from 1 at zero miles to 0 at DistanceHorizonMiles.
func Distance(a, b models.Center) float64 {
	if !ValidCoordinate(a.Latitude, a.Longitude) || !ValidCoordinate(b.Latitude, b.Longitude) {
		return 0
	}
	d := HaversineMiles(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
	return math.Max(0, 1-d/DistanceHorizonMiles)
}

// Rating compares two 1-5 ratings; a missing side scores 0.
func Rating(r1, r2 *float64) float64 {
	if r1 == nil || r2 == nil {
		return 0
	}
	if *r1 == *r2 {
		return 1
	}
	return clamp(1 - math.Abs(*r1-*r2)/maxRatingSpread)
}

// Hours is the mean per-day overlap ratio over days present in both
// schedules. A day listed twice counts once, using its first entry on either
// side, so Hours(a, b) == Hours(b, a).
func Hours(a, b []models.DayHours) float64 {
	da, db := byDay(a), byDay(b)

	var total float64
	processed := 0
	for d := time.Sunday; d <= time.Saturday; d++ {
		ha, okA := da[d]
		hb, okB := db[d]
		if !okA || !okB {
			continue
		}
		total += dayOverlap(ha, hb)
		processed++
	}

	if processed == 0 {
		return 0
	}
	return total / float64(processed)
}

func byDay(hours []models.DayHours) map[time.Weekday]models.DayHours {
	out := make(map[time.Weekday]models.DayHours, len(hours))
	for _, h := range hours {
		d, ok := schedule.ParseDay(h.Day)
		if !ok {
			continue
		}
		if _, seen := out[d]; !seen {
			out[d] = h
		}
	}
	return out
}

func dayOverlap(a, b models.DayHours) float64 {
	switch {
	case a.Closed() && b.Closed():
		return 1
	case a.Closed() || b.Closed():
		return 0
	}

	openA, err1 := schedule.TimeToMinutes(a.OpenTime)
	closeA, err2 := schedule.TimeToMinutes(a.CloseTime)
	openB, err3 := schedule.TimeToMinutes(b.OpenTime)
	closeB, err4 := schedule.TimeToMinutes(b.CloseTime)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return 0
	}

	overlap := math.Max(0, float64(min(closeA, closeB)-max(openA, openB)))
	span := float64(max(closeA, closeB) - min(openA, openB))
	if span <= 0 {
		return 0
	}
	return clamp(overlap / span)
}

func clamp(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
