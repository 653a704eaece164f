package service

import (
	"context"
	"fmt"
	"log/slog"

	"center-directory-service/internal/metrics"
	"center-directory-service/internal/models"
	"center-directory-service/internal/validation"
)

type InteractionService struct {
	interactions InteractionStore
	centers      CenterStore
	lists        *Lists
}

func NewInteractionService(interactions InteractionStore, centers CenterStore, lists *Lists) *InteractionService {
	return &InteractionService{interactions: interactions, centers: centers, lists: lists}
}

// SetReaction sets the user's like/dislike state for a center and drops the
// cached lists it could affect.
func (s *InteractionService) SetReaction(ctx context.Context, userID, centerID int, req models.SetReactionRequest) (*models.UserReactions, error) {
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	reaction, err := models.ParseReaction(req.Reaction)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	if _, err := s.centers.GetCenter(ctx, centerID); err != nil {
		return nil, err
	}

	if err := s.interactions.SetReaction(ctx, userID, centerID, reaction); err != nil {
		return nil, fmt.Errorf("set reaction: %w", err)
	}
	metrics.ReactionChanges.WithLabelValues(string(reaction)).Inc()

	cleared := s.lists.Invalidate(recommendationPrefix(userID)) + s.lists.Invalidate(similarPrefix(centerID))
	slog.Info("reaction updated",
		"user_id", userID, "center_id", centerID, "reaction", reaction, "cache_entries_cleared", cleared)

	return s.interactions.GetReactions(ctx, userID)
}

// GetReactions lists the user's liked and disliked center ids.
func (s *InteractionService) GetReactions(ctx context.Context, userID int) (*models.UserReactions, error) {
	return s.interactions.GetReactions(ctx, userID)
}

// RecordFilterClick counts one use of a tag as a search filter.
func (s *InteractionService) RecordFilterClick(ctx context.Context, userID int, req models.FilterClickRequest) (*models.FilterInteraction, error) {
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if _, err := s.centers.GetTag(ctx, req.TagID); err != nil {
		return nil, err
	}
	fi, err := s.interactions.RecordFilterInteraction(ctx, userID, req.TagID)
	if err != nil {
		return nil, fmt.Errorf("record filter click: %w", err)
	}
	return fi, nil
}

// RecordPageInteraction merges one visit's engagement signals.
func (s *InteractionService) RecordPageInteraction(ctx context.Context, userID, centerID int, signals models.PageSignals) (*models.PageInteraction, error) {
	if err := validation.Struct(signals); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if _, err := s.centers.GetCenter(ctx, centerID); err != nil {
		return nil, err
	}
	pi, err := s.interactions.RecordPageInteraction(ctx, userID, centerID, signals)
	if err != nil {
		return nil, fmt.Errorf("record page interaction: %w", err)
	}
	return pi, nil
}

// MostClickedFilters returns the user's top tags by click count.
func (s *InteractionService) MostClickedFilters(ctx context.Context, userID, limit int) ([]models.FilterInteraction, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}
	return s.interactions.MostClickedFilters(ctx, userID, limit)
}
