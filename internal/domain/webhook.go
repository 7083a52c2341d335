package domain

import "context"

// TransitionWebhook delivers a transition event to an external HTTP consumer.
type TransitionWebhook interface {
	Notify(ctx context.Context, event *TalkTransitionEvent) error
}
