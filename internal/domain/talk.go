package domain

import (
	"context"
	"time"
)

// TalkState is a talk's lifecycle state.
type TalkState string

const (
	StateSubmitted TalkState = "submitted"
	StatePending   TalkState = "pending"
	StateAccepted  TalkState = "accepted"
	StateRejected  TalkState = "rejected"
)

// ParseTalkState converts a string into a TalkState. Returns ErrInvalidInput
// for unknown values.
func ParseTalkState(s string) (TalkState, error) {
	switch TalkState(s) {
	case StateSubmitted, StatePending, StateAccepted, StateRejected:
		return TalkState(s), nil
	}
	return "", ErrInvalidInput
}

// IsTerminal reports whether the state admits no further speaker edits.
func (s TalkState) IsTerminal() bool {
	return s == StateAccepted || s == StateRejected
}

// transitionRule is one edge of the lifecycle graph: who may move a talk
// from one state to another. Speaker edges additionally require ownership.
type transitionRule struct {
	From        TalkState
	To          TalkState
	BySpeaker   bool
	ByOrganizer bool
}

// transitionTable enumerates every permitted transition. Kept as data rather
// than per-state dispatch so edges and permissions can be audited and tested
// exhaustively.
var transitionTable = []transitionRule{
	{From: StateSubmitted, To: StatePending, ByOrganizer: true},
	{From: StateSubmitted, To: StateRejected, ByOrganizer: true},
	{From: StatePending, To: StateAccepted, BySpeaker: true},
	{From: StatePending, To: StateRejected, BySpeaker: true, ByOrganizer: true},
	{From: StateAccepted, To: StateRejected, ByOrganizer: true},
}

// CanTransition reports whether (from, to) is an edge of the lifecycle graph.
func CanTransition(from, to TalkState) bool {
	for _, r := range transitionTable {
		if r.From == from && r.To == to {
			return true
		}
	}
	return false
}

// CanActorTransition is the capability predicate for a transition: the edge
// must exist and the actor must match its allowed roles. Speaker edges are
// restricted to the talk's own speaker.
func CanActorTransition(actor Actor, talk *Talk, to TalkState) bool {
	for _, r := range transitionTable {
		if r.From != talk.State || r.To != to {
			continue
		}
		if r.ByOrganizer && actor.IsOrganizer() {
			return true
		}
		if r.BySpeaker && actor.UserID == talk.SpeakerID {
			return true
		}
	}
	return false
}

// Talk represents a talk submission owned by a speaker.
// swagger:model Talk
type Talk struct {
	ID              string    `json:"id"`
	SpeakerID       string    `json:"speaker_id"`
	Title           string    `json:"title"`
	ShortSummary    string    `json:"short_summary"`
	LongDescription *string   `json:"long_description,omitempty"`
	SlidesURL       *string   `json:"slides_url,omitempty"`
	State           TalkState `json:"state"`
	SubmittedAt     time.Time `json:"submitted_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewTalk returns a new Talk in the submitted state. ID is set by the
// repository on create.
func NewTalk(speakerID, title, shortSummary string, longDescription *string, submittedAt time.Time) *Talk {
	return &Talk{
		SpeakerID:       speakerID,
		Title:           title,
		ShortSummary:    shortSummary,
		LongDescription: longDescription,
		State:           StateSubmitted,
		SubmittedAt:     submittedAt,
		UpdatedAt:       submittedAt,
	}
}

// TalkUpdate carries the optional speaker-editable fields for an update.
type TalkUpdate struct {
	Title           *string
	ShortSummary    *string
	LongDescription *string
	SlidesURL       *string
}

// TalkTransitionEvent records one successful lifecycle transition. It is
// handed to a TransitionPublisher for asynchronous consumption; the core
// never dispatches notifications itself.
type TalkTransitionEvent struct {
	ID         string    `json:"id"`
	TalkID     string    `json:"talk_id"`
	OldState   TalkState `json:"old_state"`
	NewState   TalkState `json:"new_state"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TransitionPublisher receives transition events after commit. Publish errors
// are logged by the caller but never fail the transition.
type TransitionPublisher interface {
	Publish(ctx context.Context, event *TalkTransitionEvent)
}

// TalkRepository defines the interface for talk storage.
type TalkRepository interface {
	Create(ctx context.Context, talk *Talk) error
	GetByID(ctx context.Context, id string) (*Talk, error)
	ListBySpeakerID(ctx context.Context, speakerID string) ([]*Talk, error)
	List(ctx context.Context, state *TalkState, params PaginationParams) ([]*Talk, int, error)
	Update(ctx context.Context, talk *Talk) error
	// UpdateState applies from->to inside one transaction, holding a row
	// lock on the talk. On accepted->rejected it also clears any schedule
	// slot referencing the talk within the same transaction. Returns the
	// updated talk; a talk already in the target state is a no-op success.
	UpdateState(ctx context.Context, id string, from, to TalkState) (*Talk, error)
	Delete(ctx context.Context, id string) error
}

// TalkService defines the business logic for the talk lifecycle.
type TalkService interface {
	CreateTalk(ctx context.Context, actor Actor, talk *Talk) error
	GetTalk(ctx context.Context, actor Actor, id string) (*Talk, error)
	ListMyTalks(ctx context.Context, actor Actor) ([]*Talk, error)
	ListTalks(ctx context.Context, actor Actor, state *TalkState, params PaginationParams) ([]*Talk, int, error)
	UpdateTalk(ctx context.Context, actor Actor, id string, update TalkUpdate) (*Talk, error)
	DeleteTalk(ctx context.Context, actor Actor, id string) error
	ApplyTransition(ctx context.Context, actor Actor, id string, target TalkState) (*Talk, error)
}
