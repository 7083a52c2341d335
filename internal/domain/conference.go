package domain

import (
	"context"
	"time"
)

// Conference represents a conference edition that tracks and schedule slots
// belong to.
// swagger:model Conference
type Conference struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConference returns a new Conference. ID is set by the repository on
// create.
func NewConference(name, slug string, startDate, endDate time.Time, now time.Time) *Conference {
	return &Conference{
		Name:      name,
		Slug:      slug,
		StartDate: startDate,
		EndDate:   endDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ConferenceRepository defines the interface for conference storage.
type ConferenceRepository interface {
	Create(ctx context.Context, conference *Conference) error
	GetByID(ctx context.Context, id string) (*Conference, error)
	GetBySlug(ctx context.Context, slug string) (*Conference, error)
	List(ctx context.Context) ([]*Conference, error)
}

// ConferenceService defines the business logic for conferences.
type ConferenceService interface {
	CreateConference(ctx context.Context, actor Actor, conference *Conference) error
	GetConference(ctx context.Context, id string) (*Conference, error)
	ListConferences(ctx context.Context) ([]*Conference, error)
}
