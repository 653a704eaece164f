package models

import "time"

// Center is a community internet/resource center with its nested schedule, tags and reviews.
type Center struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	Description string     `json:"description"`
	Phone       string     `json:"phone"`
	Website     string     `json:"website"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	Timezone    string     `json:"timezone"`
	Hours       []DayHours `json:"hours"`
	Tags        []Tag      `json:"tags"`
	Reviews     []Review   `json:"reviews,omitempty"`
}

// DayHours is one entry of a weekly schedule. Day is a lowercase weekday name.
type DayHours struct {
	Day       string `json:"day"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	IsClosed  bool   `json:"is_closed"`
}

// Closed reports whether the entry has no usable open interval.
func (h DayHours) Closed() bool {
	return h.IsClosed || h.OpenTime == "" || h.CloseTime == ""
}

// Tag is a named center category.
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Review is a user rating of a center.
type Review struct {
	ID        int       `json:"id"`
	CenterID  int       `json:"center_id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// HasTag reports whether the center carries the tag id.
func (c Center) HasTag(tagID int) bool {
	for _, t := range c.Tags {
		if t.ID == tagID {
			return true
		}
	}
	return false
}

// CenterSummary is the enriched presentation shape of a center.
type CenterSummary struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	Address       string     `json:"address"`
	Description   string     `json:"description"`
	Phone         string     `json:"phone"`
	Website       string     `json:"website"`
	Latitude      *float64   `json:"latitude"`
	Longitude     *float64   `json:"longitude"`
	Timezone      string     `json:"timezone"`
	Hours         []DayHours `json:"hours"`
	Tags          []Tag      `json:"tags"`
	AverageRating *float64   `json:"average_rating"`
	ReviewCount   int        `json:"review_count"`
	Distance      *float64   `json:"distance"`
	Status        string     `json:"status"`
	IsOpen        bool       `json:"is_open"`
	StatusMessage string     `json:"status_message"`
}

// CenterListResponse wraps a browse/search result.
type CenterListResponse struct {
	Total   int             `json:"total"`
	Centers []CenterSummary `json:"centers"`
}

// AverageRating is the mean review rating, or nil when there are no reviews.
func (c Center) AverageRating() *float64 {
	if len(c.Reviews) == 0 {
		return nil
	}
	sum := 0
	for _, r := range c.Reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(c.Reviews))
	return &avg
}

// LatestReview is the creation time of the most recent review, or nil.
func (c Center) LatestReview() *time.Time {
	var latest *time.Time
	for i := range c.Reviews {
		if latest == nil || c.Reviews[i].CreatedAt.After(*latest) {
			latest = &c.Reviews[i].CreatedAt
		}
	}
	return latest
}

// SearchRequest is the body of a filtered center search.
type SearchRequest struct {
	Tags     []int    `json:"tags"`
	Distance []string `json:"distance"`
	Lat      *float64 `json:"lat" validate:"required_with=Lng,omitempty,min=-90,max=90"`
	Lng      *float64 `json:"lng" validate:"required_with=Lat,omitempty,min=-180,max=180"`
	Hours    []string `json:"hours"`
	Sort     string   `json:"sort"`
}
