package services

import (
	"context"
	"fmt"
	"time"

	"cfpboard/internal/domain"
)

const (
	defaultTopTalks = 10
	maxTopTalks     = 50
)

type ratingService struct {
	ratingRepo     domain.RatingRepository
	talkRepo       domain.TalkRepository
	contextTimeout time.Duration
}

// NewRatingService creates a RatingService.
func NewRatingService(ratingRepo domain.RatingRepository, talkRepo domain.TalkRepository, timeout time.Duration) domain.RatingService {
	return &ratingService{
		ratingRepo:     ratingRepo,
		talkRepo:       talkRepo,
		contextTimeout: timeout,
	}
}

func (s *ratingService) Rate(ctx context.Context, actor domain.Actor, talkID string, score int, notes *string) (*domain.Rating, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return nil, domain.ErrForbidden
	}
	if score < domain.MinScore || score > domain.MaxScore {
		return nil, domain.ErrInvalidInput
	}

	talk, err := s.talkRepo.GetByID(ctx, talkID)
	if err != nil {
		return nil, err
	}
	if talk.SpeakerID == actor.UserID {
		// Reviewers never score their own submissions.
		return nil, domain.ErrForbidden
	}

	rating := &domain.Rating{
		TalkID:     talkID,
		ReviewerID: actor.UserID,
		Score:      score,
		Notes:      notes,
	}
	if err := s.ratingRepo.Upsert(ctx, rating); err != nil {
		return nil, fmt.Errorf("upsert rating: %w", err)
	}
	return rating, nil
}

func (s *ratingService) DeleteRating(ctx context.Context, actor domain.Actor, talkID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return domain.ErrForbidden
	}
	if _, err := s.talkRepo.GetByID(ctx, talkID); err != nil {
		return err
	}
	// Deleting an absent rating succeeds; the end state is the same.
	return s.ratingRepo.Delete(ctx, talkID, actor.UserID)
}

func (s *ratingService) GetMyRating(ctx context.Context, actor domain.Actor, talkID string) (*domain.Rating, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return nil, domain.ErrForbidden
	}
	return s.ratingRepo.GetByTalkAndReviewer(ctx, talkID, actor.UserID)
}

func (s *ratingService) ListTalkRatings(ctx context.Context, actor domain.Actor, talkID string) ([]*domain.Rating, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return nil, domain.ErrForbidden
	}
	if _, err := s.talkRepo.GetByID(ctx, talkID); err != nil {
		return nil, err
	}
	return s.ratingRepo.ListByTalkID(ctx, talkID)
}

func (s *ratingService) Average(ctx context.Context, actor domain.Actor, talkID string) (*domain.TalkAverage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return nil, domain.ErrForbidden
	}
	if _, err := s.talkRepo.GetByID(ctx, talkID); err != nil {
		return nil, err
	}
	return s.ratingRepo.Average(ctx, talkID)
}

func (s *ratingService) Statistics(ctx context.Context, actor domain.Actor, topN int) (*domain.RatingStatistics, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return nil, domain.ErrForbidden
	}
	if topN <= 0 {
		topN = defaultTopTalks
	}
	if topN > maxTopTalks {
		topN = maxTopTalks
	}
	return s.ratingRepo.Statistics(ctx, topN)
}
