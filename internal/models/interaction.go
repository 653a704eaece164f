package models

import (
	"fmt"
	"time"
)

// Reaction is a user's like/dislike state for a center.
type Reaction string

const (
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
	ReactionNone    Reaction = "none"
)

// ParseReaction validates a reaction string.
func ParseReaction(s string) (Reaction, error) {
	switch Reaction(s) {
	case ReactionLike, ReactionDislike, ReactionNone:
		return Reaction(s), nil
	}
	return "", fmt.Errorf("invalid reaction: %q", s)
}

// UserReactions lists the centers a user liked and disliked.
type UserReactions struct {
	UserID   int   `json:"user_id"`
	Liked    []int `json:"liked"`
	Disliked []int `json:"disliked"`
}

// SetReactionRequest is the request body for setting a reaction.
type SetReactionRequest struct {
	Reaction string `json:"reaction" validate:"required,oneof=like dislike none"`
}

// FilterInteraction counts how often a user applied a tag as a search filter.
type FilterInteraction struct {
	UserID     int       `json:"user_id"`
	TagID      int       `json:"tag_id"`
	TagName    string    `json:"tag_name"`
	ClickCount int       `json:"click_count"`
	LastUsed   time.Time `json:"last_used"`
}

// FilterClickRequest is the request body for recording a filter click.
type FilterClickRequest struct {
	TagID int `json:"tag_id" validate:"required,gt=0"`
}

// PageInteraction aggregates engagement signals for a (user, center) pair.
type PageInteraction struct {
	UserID        int       `json:"user_id"`
	CenterID      int       `json:"center_id"`
	VisitCount    int       `json:"visit_count"`
	ScrollDepth   int       `json:"scroll_depth"`
	MapClicks     int       `json:"map_clicks"`
	ReviewClicks  int       `json:"review_clicks"`
	SimilarClicks int       `json:"similar_clicks"`
	LastVisited   time.Time `json:"last_visited"`
}

// PageSignals is a partial engagement update. Nil fields are left unchanged.
type PageSignals struct {
	ScrollDepth   *int `json:"scroll_depth" validate:"omitempty,min=0,max=100"`
	MapClicks     *int `json:"map_clicks" validate:"omitempty,min=0"`
	ReviewClicks  *int `json:"review_clicks" validate:"omitempty,min=0"`
	SimilarClicks *int `json:"similar_clicks" validate:"omitempty,min=0"`
}
