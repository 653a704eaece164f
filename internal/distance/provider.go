// Package distance resolves road or straight-line distances from a user's
// location to a set of centers.
package distance

import (
	"context"
	"log/slog"

	"center-directory-service/internal/models"
	"center-directory-service/internal/similarity"
)

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Result is one origin-to-destination element. Miles is nil when the provider
// could not compute that element.
type Result struct {
	Miles    *float64
	Duration string
}

// Provider computes one-to-many distances. The returned slice is aligned with
// destinations.
type Provider interface {
	Name() string
	Distances(ctx context.Context, origin Point, destinations []Point) ([]Result, error)
}

// Resolve computes the distance from origin to every center with a valid
// coordinate, keyed by center id. Centers with invalid coordinates, and every
// center when the provider fails, have no entry, which callers read as
// "distance unknown".
func Resolve(ctx context.Context, p Provider, origin Point, centers []models.Center) map[int]*float64 {
	out := make(map[int]*float64, len(centers))

	ids := make([]int, 0, len(centers))
	dests := make([]Point, 0, len(centers))
	for _, c := range centers {
		if !similarity.ValidCoordinate(c.Latitude, c.Longitude) {
			continue
		}
		ids = append(ids, c.ID)
		dests = append(dests, Point{Lat: *c.Latitude, Lng: *c.Longitude})
	}
	if len(dests) == 0 {
		return out
	}

	results, err := p.Distances(ctx, origin, dests)
	if err != nil {
		slog.Warn("distance provider failed, treating distances as unknown",
			"provider", p.Name(), "destinations", len(dests), "error", err)
		return out
	}

	for i, id := range ids {
		if i >= len(results) {
			break
		}
		out[id] = results[i].Miles
	}
	return out
}
