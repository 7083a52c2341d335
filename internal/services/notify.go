package services

import (
	"context"
	"log/slog"
	"time"

	"cfpboard/internal/domain"
)

// stateTemplates maps a transition's new state to the email template sent to
// the talk's speaker. States without an entry produce no email.
var stateTemplates = map[domain.TalkState]string{
	domain.StatePending:  "talk_pending",
	domain.StateAccepted: "talk_accepted",
	domain.StateRejected: "talk_rejected",
}

type transitionDispatcher struct {
	talkRepo domain.TalkRepository
	userRepo domain.UserRepository
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	webhook  domain.TransitionWebhook
	timeout  time.Duration
}

// NewTransitionDispatcher returns a TransitionPublisher that fans a transition
// event out to the speaker (email) and an optional webhook. Delivery failures
// are logged and swallowed: the transition itself has already committed.
func NewTransitionDispatcher(talkRepo domain.TalkRepository, userRepo domain.UserRepository, mailer domain.Mailer, renderer domain.EmailTemplateRenderer, webhook domain.TransitionWebhook, timeout time.Duration) domain.TransitionPublisher {
	return &transitionDispatcher{
		talkRepo: talkRepo,
		userRepo: userRepo,
		mailer:   mailer,
		renderer: renderer,
		webhook:  webhook,
		timeout:  timeout,
	}
}

func (d *transitionDispatcher) Publish(ctx context.Context, event *domain.TalkTransitionEvent) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	logger := slog.With(
		"event_id", event.ID,
		"talk_id", event.TalkID,
		"old_state", string(event.OldState),
		"new_state", string(event.NewState),
	)

	d.sendEmail(ctx, logger, event)

	if d.webhook != nil {
		if err := d.webhook.Notify(ctx, event); err != nil {
			logger.Warn("transition webhook delivery failed", "error", err)
		}
	}
}

func (d *transitionDispatcher) sendEmail(ctx context.Context, logger *slog.Logger, event *domain.TalkTransitionEvent) {
	templateName, ok := stateTemplates[event.NewState]
	if !ok {
		return
	}

	talk, err := d.talkRepo.GetByID(ctx, event.TalkID)
	if err != nil {
		logger.Warn("transition email skipped, talk lookup failed", "error", err)
		return
	}
	speaker, err := d.userRepo.GetByID(ctx, talk.SpeakerID)
	if err != nil {
		logger.Warn("transition email skipped, speaker lookup failed", "error", err)
		return
	}

	data := &domain.TalkStateEmailData{
		SpeakerName: speaker.FullName,
		TalkTitle:   talk.Title,
		TalkID:      talk.ID,
	}
	subject, htmlBody, textBody, err := d.renderer.Render(templateName, data)
	if err != nil {
		logger.Warn("transition email skipped, template render failed", "template", templateName, "error", err)
		return
	}
	if err := d.mailer.Send(speaker.Email, subject, htmlBody, textBody); err != nil {
		logger.Warn("transition email delivery failed", "template", templateName, "error", err)
		return
	}
	logger.Info("transition email sent", "template", templateName)
}
