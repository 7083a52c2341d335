package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"cfpboard/internal/domain"
)

// slotTimeRegexp matches zero-padded 24h "HH:MM" times. The padding matters:
// it keeps string comparison consistent with chronological order.
var slotTimeRegexp = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type scheduleService struct {
	scheduleRepo   domain.ScheduleRepository
	conferenceRepo domain.ConferenceRepository
	contextTimeout time.Duration
}

// NewScheduleService creates a ScheduleService.
func NewScheduleService(scheduleRepo domain.ScheduleRepository, conferenceRepo domain.ConferenceRepository, timeout time.Duration) domain.ScheduleService {
	return &scheduleService{
		scheduleRepo:   scheduleRepo,
		conferenceRepo: conferenceRepo,
		contextTimeout: timeout,
	}
}

func (s *scheduleService) CreateTrack(ctx context.Context, actor domain.Actor, track *domain.Track) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return domain.ErrForbidden
	}
	track.Name = strings.TrimSpace(track.Name)
	if track.Name == "" {
		return domain.ErrInvalidInput
	}
	if track.Capacity != nil && *track.Capacity <= 0 {
		return domain.ErrInvalidInput
	}
	if _, err := s.conferenceRepo.GetByID(ctx, track.ConferenceID); err != nil {
		return err
	}
	return s.scheduleRepo.CreateTrack(ctx, track)
}

func (s *scheduleService) ListTracks(ctx context.Context, conferenceID string) ([]*domain.Track, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.conferenceRepo.GetByID(ctx, conferenceID); err != nil {
		return nil, err
	}
	return s.scheduleRepo.ListTracksByConferenceID(ctx, conferenceID)
}

func (s *scheduleService) UpdateTrack(ctx context.Context, actor domain.Actor, id string, update domain.TrackUpdate) (*domain.Track, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return nil, domain.ErrForbidden
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	if update.Capacity != nil && *update.Capacity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return s.scheduleRepo.UpdateTrack(ctx, id, update)
}

func (s *scheduleService) DeleteTrack(ctx context.Context, actor domain.Actor, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return domain.ErrForbidden
	}
	return s.scheduleRepo.DeleteTrack(ctx, id)
}

func (s *scheduleService) CreateSlot(ctx context.Context, actor domain.Actor, slot *domain.ScheduleSlot) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return domain.ErrForbidden
	}
	if !slotTimeRegexp.MatchString(slot.StartTime) || !slotTimeRegexp.MatchString(slot.EndTime) {
		return domain.ErrInvalidInput
	}
	if slot.StartTime >= slot.EndTime {
		return domain.ErrInvalidInput
	}
	if _, err := s.conferenceRepo.GetByID(ctx, slot.ConferenceID); err != nil {
		return err
	}
	track, err := s.scheduleRepo.GetTrackByID(ctx, slot.TrackID)
	if err != nil {
		return err
	}
	if track.ConferenceID != slot.ConferenceID {
		return domain.ErrInvalidInput
	}
	return s.scheduleRepo.CreateSlot(ctx, slot)
}

func (s *scheduleService) ListSlots(ctx context.Context, conferenceID string) ([]*domain.ScheduleSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.conferenceRepo.GetByID(ctx, conferenceID); err != nil {
		return nil, err
	}
	return s.scheduleRepo.ListSlots(ctx, conferenceID)
}

func (s *scheduleService) UpdateSlot(ctx context.Context, actor domain.Actor, id string, update domain.SlotUpdate) (*domain.ScheduleSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return nil, domain.ErrForbidden
	}
	if update.StartTime != nil && !slotTimeRegexp.MatchString(*update.StartTime) {
		return nil, domain.ErrInvalidInput
	}
	if update.EndTime != nil && !slotTimeRegexp.MatchString(*update.EndTime) {
		return nil, domain.ErrInvalidInput
	}
	if update.TrackID != nil {
		slot, err := s.scheduleRepo.GetSlotByID(ctx, id)
		if err != nil {
			return nil, err
		}
		track, err := s.scheduleRepo.GetTrackByID(ctx, *update.TrackID)
		if err != nil {
			return nil, err
		}
		// A slot never moves across conferences: the new track must belong
		// to the same conference as the slot.
		if track.ConferenceID != slot.ConferenceID {
			return nil, domain.ErrInvalidInput
		}
	}
	return s.scheduleRepo.UpdateSlot(ctx, id, update)
}

func (s *scheduleService) DeleteSlot(ctx context.Context, actor domain.Actor, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return domain.ErrForbidden
	}
	return s.scheduleRepo.DeleteSlot(ctx, id)
}

func (s *scheduleService) Assign(ctx context.Context, actor domain.Actor, slotID, talkID string) (*domain.ScheduleSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return nil, domain.ErrForbidden
	}
	return s.scheduleRepo.Assign(ctx, slotID, talkID)
}

func (s *scheduleService) Unassign(ctx context.Context, actor domain.Actor, slotID string) (*domain.ScheduleSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return nil, domain.ErrForbidden
	}
	return s.scheduleRepo.Unassign(ctx, slotID)
}

func (s *scheduleService) PublicSchedule(ctx context.Context) ([]*domain.PublicScheduleEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.scheduleRepo.PublicSchedule(ctx)
}
