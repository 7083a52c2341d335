package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cfpboard/internal/domain"
)

type labelService struct {
	labelRepo      domain.LabelRepository
	talkRepo       domain.TalkRepository
	contextTimeout time.Duration
}

// NewLabelService creates a LabelService.
func NewLabelService(labelRepo domain.LabelRepository, talkRepo domain.TalkRepository, timeout time.Duration) domain.LabelService {
	return &labelService{
		labelRepo:      labelRepo,
		talkRepo:       talkRepo,
		contextTimeout: timeout,
	}
}

func (s *labelService) CreateLabel(ctx context.Context, actor domain.Actor, label *domain.Label) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return domain.ErrForbidden
	}
	label.Name = strings.TrimSpace(label.Name)
	if label.Name == "" {
		return domain.ErrInvalidInput
	}
	return s.labelRepo.Create(ctx, label)
}

func (s *labelService) ListLabels(ctx context.Context) ([]*domain.Label, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.labelRepo.List(ctx)
}

func (s *labelService) UpdateLabel(ctx context.Context, actor domain.Actor, id string, update domain.LabelUpdate) (*domain.Label, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return nil, domain.ErrForbidden
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.labelRepo.Update(ctx, id, update)
}

func (s *labelService) DeleteLabel(ctx context.Context, actor domain.Actor, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return domain.ErrForbidden
	}
	return s.labelRepo.Delete(ctx, id)
}

func (s *labelService) AddLabels(ctx context.Context, actor domain.Actor, talkID string, labelIDs []string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return domain.ErrForbidden
	}
	if len(labelIDs) == 0 {
		return domain.ErrInvalidInput
	}
	if _, err := s.talkRepo.GetByID(ctx, talkID); err != nil {
		return err
	}
	for _, labelID := range labelIDs {
		if _, err := s.labelRepo.GetByID(ctx, labelID); err != nil {
			return fmt.Errorf("label %s: %w", labelID, err)
		}
	}
	return s.labelRepo.AddToTalk(ctx, talkID, labelIDs, actor.UserID)
}

func (s *labelService) RemoveLabel(ctx context.Context, actor domain.Actor, talkID, labelID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.IsOrganizer() {
		return domain.ErrForbidden
	}
	if _, err := s.talkRepo.GetByID(ctx, talkID); err != nil {
		return err
	}
	return s.labelRepo.RemoveFromTalk(ctx, talkID, labelID)
}

func (s *labelService) ListTalkLabels(ctx context.Context, actor domain.Actor, talkID string) ([]*domain.Label, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	talk, err := s.talkRepo.GetByID(ctx, talkID)
	if err != nil {
		return nil, err
	}
	if !actor.IsOrganizer() && talk.SpeakerID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	return s.labelRepo.ListByTalkID(ctx, talkID)
}
