package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cfpboard/internal/domain"
)

type talkService struct {
	talkRepo       domain.TalkRepository
	publisher      domain.TransitionPublisher
	contextTimeout time.Duration
}

// NewTalkService creates a TalkService. The publisher receives an event after
// every applied transition; it may be nil when notifications are disabled.
func NewTalkService(talkRepo domain.TalkRepository, publisher domain.TransitionPublisher, timeout time.Duration) domain.TalkService {
	return &talkService{
		talkRepo:       talkRepo,
		publisher:      publisher,
		contextTimeout: timeout,
	}
}

func (s *talkService) CreateTalk(ctx context.Context, actor domain.Actor, talk *domain.Talk) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	talk.Title = strings.TrimSpace(talk.Title)
	talk.ShortSummary = strings.TrimSpace(talk.ShortSummary)
	if talk.Title == "" || talk.ShortSummary == "" {
		return domain.ErrInvalidInput
	}

	talk.SpeakerID = actor.UserID
	talk.State = domain.StateSubmitted
	now := time.Now()
	talk.SubmittedAt = now
	talk.UpdatedAt = now

	if err := s.talkRepo.Create(ctx, talk); err != nil {
		return fmt.Errorf("create talk: %w", err)
	}
	return nil
}

func (s *talkService) GetTalk(ctx context.Context, actor domain.Actor, id string) (*domain.Talk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	talk, err := s.talkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsOrganizer() && talk.SpeakerID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	return talk, nil
}

func (s *talkService) ListMyTalks(ctx context.Context, actor domain.Actor) ([]*domain.Talk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.talkRepo.ListBySpeakerID(ctx, actor.UserID)
}

func (s *talkService) ListTalks(ctx context.Context, actor domain.Actor, state *domain.TalkState, params domain.PaginationParams) ([]*domain.Talk, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return nil, 0, domain.ErrForbidden
	}
	return s.talkRepo.List(ctx, state, params)
}

func (s *talkService) UpdateTalk(ctx context.Context, actor domain.Actor, id string, update domain.TalkUpdate) (*domain.Talk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	talk, err := s.talkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if talk.SpeakerID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	if talk.State.IsTerminal() {
		// Accepted and rejected talks are frozen.
		return nil, domain.ErrConflict
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, domain.ErrInvalidInput
		}
		talk.Title = title
	}
	if update.ShortSummary != nil {
		summary := strings.TrimSpace(*update.ShortSummary)
		if summary == "" {
			return nil, domain.ErrInvalidInput
		}
		talk.ShortSummary = summary
	}
	if update.LongDescription != nil {
		talk.LongDescription = update.LongDescription
	}
	if update.SlidesURL != nil {
		talk.SlidesURL = update.SlidesURL
	}
	talk.UpdatedAt = time.Now()

	if err := s.talkRepo.Update(ctx, talk); err != nil {
		return nil, fmt.Errorf("update talk: %w", err)
	}
	return talk, nil
}

func (s *talkService) DeleteTalk(ctx context.Context, actor domain.Actor, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	talk, err := s.talkRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsOrganizer() && talk.SpeakerID != actor.UserID {
		return domain.ErrForbidden
	}
	// Talks leave the system only from outside the review pipeline; pending
	// and accepted talks must be rejected first, for organizers too. An
	// accepted talk may still occupy a schedule slot.
	if talk.State != domain.StateSubmitted && talk.State != domain.StateRejected {
		return domain.ErrConflict
	}
	return s.talkRepo.Delete(ctx, id)
}

// ApplyTransition checks the lifecycle edge and the actor's capability, then
// delegates the state write to the repository. Error precedence: missing talk
// first, then unknown edge, then permission.
func (s *talkService) ApplyTransition(ctx context.Context, actor domain.Actor, id string, target domain.TalkState) (*domain.Talk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	talk, err := s.talkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if talk.State == target {
		// Retried request that already took effect.
		return talk, nil
	}
	if !domain.CanTransition(talk.State, target) {
		return nil, domain.ErrInvalidTransition
	}
	if !domain.CanActorTransition(actor, talk, target) {
		return nil, domain.ErrForbidden
	}

	updated, err := s.talkRepo.UpdateState(ctx, id, talk.State, target)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("apply transition: %w", err)
	}

	if s.publisher != nil && updated.State != talk.State {
		event := &domain.TalkTransitionEvent{
			ID:         uuid.NewString(),
			TalkID:     updated.ID,
			OldState:   talk.State,
			NewState:   updated.State,
			OccurredAt: time.Now(),
		}
		go s.publisher.Publish(context.WithoutCancel(ctx), event)
	}
	return updated, nil
}
