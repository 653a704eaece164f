package filter

import (
	"math"
	"time"

	"center-directory-service/internal/models"
	"center-directory-service/internal/schedule"
)

// Enrich converts centers to their presentation shape, attaching rating,
// distance and live status. Reviews are not carried over.
func Enrich(centers []models.Center, distances map[int]*float64, engine *schedule.Engine, now time.Time) []models.CenterSummary {
	out := make([]models.CenterSummary, len(centers))
	for i, c := range centers {
		out[i] = Summarize(c, distances[c.ID], engine, now)
	}
	return out
}

// Summarize enriches a single center. distance may be nil.
func Summarize(c models.Center, distance *float64, engine *schedule.Engine, now time.Time) models.CenterSummary {
	status := engine.StatusAt(c.Hours, c.Timezone, now)

	tags := c.Tags
	if tags == nil {
		tags = []models.Tag{}
	}
	hours := c.Hours
	if hours == nil {
		hours = []models.DayHours{}
	}

	return models.CenterSummary{
		ID:            c.ID,
		Name:          c.Name,
		Address:       c.Address,
		Description:   c.Description,
		Phone:         c.Phone,
		Website:       c.Website,
		Latitude:      c.Latitude,
		Longitude:     c.Longitude,
		Timezone:      c.Timezone,
		Hours:         hours,
		Tags:          tags,
		AverageRating: round1(c.AverageRating()),
		ReviewCount:   len(c.Reviews),
		Distance:      round1(distance),
		Status:        status.Status,
		IsOpen:        status.IsOpen,
		StatusMessage: status.Message,
	}
}

func round1(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*10) / 10
	return &r
}
