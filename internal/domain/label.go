package domain

import (
	"context"
	"time"
)

// Label is a named tag attachable to talks. Name is unique. AutoGenerated
// records provenance: whether an automated collaborator created it rather
// than a human.
// swagger:model Label
type Label struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	Color         *string   `json:"color,omitempty"`
	AutoGenerated bool      `json:"auto_generated"`
	CreatedAt     time.Time `json:"created_at"`
}

// TalkLabel is the talk/label junction, recording who attached the label and
// when.
type TalkLabel struct {
	TalkID  string    `json:"talk_id"`
	LabelID string    `json:"label_id"`
	AddedBy *string   `json:"added_by,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// LabelUpdate carries optional fields for a label update.
type LabelUpdate struct {
	Name        *string
	Description *string
	Color       *string
}

// LabelRepository defines storage for labels and talk-label links.
type LabelRepository interface {
	Create(ctx context.Context, label *Label) error
	GetByID(ctx context.Context, id string) (*Label, error)
	List(ctx context.Context) ([]*Label, error)
	Update(ctx context.Context, id string, update LabelUpdate) (*Label, error)
	// Delete removes the label and every talk-label junction row for it.
	Delete(ctx context.Context, id string) error
	// AddToTalk links labels to a talk; already-present links are skipped.
	AddToTalk(ctx context.Context, talkID string, labelIDs []string, addedBy string) error
	// RemoveFromTalk unlinks one label; unlinking an absent link is not an
	// error.
	RemoveFromTalk(ctx context.Context, talkID, labelID string) error
	ListByTalkID(ctx context.Context, talkID string) ([]*Label, error)
}

// LabelService defines the business logic for tagging talks.
type LabelService interface {
	CreateLabel(ctx context.Context, actor Actor, label *Label) error
	ListLabels(ctx context.Context) ([]*Label, error)
	UpdateLabel(ctx context.Context, actor Actor, id string, update LabelUpdate) (*Label, error)
	DeleteLabel(ctx context.Context, actor Actor, id string) error
	AddLabels(ctx context.Context, actor Actor, talkID string, labelIDs []string) error
	RemoveLabel(ctx context.Context, actor Actor, talkID, labelID string) error
	ListTalkLabels(ctx context.Context, actor Actor, talkID string) ([]*Label, error)
}
