package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"cfpboard/internal/domain"
)

var slugRegexp = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type conferenceService struct {
	conferenceRepo domain.ConferenceRepository
	contextTimeout time.Duration
}

// NewConferenceService creates a ConferenceService.
func NewConferenceService(conferenceRepo domain.ConferenceRepository, timeout time.Duration) domain.ConferenceService {
	return &conferenceService{
		conferenceRepo: conferenceRepo,
		contextTimeout: timeout,
	}
}

func (s *conferenceService) CreateConference(ctx context.Context, actor domain.Actor, conference *domain.Conference) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return domain.ErrForbidden
	}
	conference.Name = strings.TrimSpace(conference.Name)
	conference.Slug = strings.TrimSpace(strings.ToLower(conference.Slug))
	if conference.Name == "" || !slugRegexp.MatchString(conference.Slug) {
		return domain.ErrInvalidInput
	}
	if conference.EndDate.Before(conference.StartDate) {
		return domain.ErrInvalidInput
	}

	now := time.Now()
	conference.CreatedAt = now
	conference.UpdatedAt = now
	return s.conferenceRepo.Create(ctx, conference)
}

func (s *conferenceService) GetConference(ctx context.Context, id string) (*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.conferenceRepo.GetByID(ctx, id)
}

func (s *conferenceService) ListConferences(ctx context.Context) ([]*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.conferenceRepo.List(ctx)
}
