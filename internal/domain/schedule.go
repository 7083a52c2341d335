package domain

import (
	"context"
	"time"
)

// Track represents a room or parallel session channel within a conference.
// swagger:model Track
type Track struct {
	ID           string    `json:"id"`
	ConferenceID string    `json:"conference_id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Capacity     *int      `json:"capacity,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TrackUpdate carries optional fields for a track update.
type TrackUpdate struct {
	Name        *string
	Description *string
	Capacity    *int
}

// ScheduleSlot is a bounded [start, end) interval on a date, belonging to one
// track and optionally holding one accepted talk. Times are "HH:MM" strings;
// zero-padded, so string comparison matches chronological order.
// swagger:model ScheduleSlot
type ScheduleSlot struct {
	ID           string    `json:"id"`
	ConferenceID string    `json:"conference_id"`
	TrackID      string    `json:"track_id"`
	TalkID       *string   `json:"talk_id,omitempty"`
	SlotDate     time.Time `json:"slot_date"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SlotUpdate carries optional fields for a slot update. Talk assignment is
// not part of it; use Assign/Unassign.
type SlotUpdate struct {
	TrackID   *string
	SlotDate  *time.Time
	StartTime *string
	EndTime   *string
}

// PublicScheduleTalk is the talk detail embedded in the public schedule.
type PublicScheduleTalk struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ShortSummary string `json:"short_summary"`
	SpeakerName  string `json:"speaker_name"`
}

// PublicScheduleEntry is one slot of the public schedule, joined with its
// track and, if assigned, its talk.
type PublicScheduleEntry struct {
	SlotID    string              `json:"slot_id"`
	TrackID   string              `json:"track_id"`
	TrackName string              `json:"track_name"`
	SlotDate  time.Time           `json:"slot_date"`
	StartTime string              `json:"start_time"`
	EndTime   string              `json:"end_time"`
	Talk      *PublicScheduleTalk `json:"talk,omitempty"`
}

// ScheduleRepository defines storage for tracks and schedule slots.
type ScheduleRepository interface {
	CreateTrack(ctx context.Context, track *Track) error
	GetTrackByID(ctx context.Context, id string) (*Track, error)
	ListTracksByConferenceID(ctx context.Context, conferenceID string) ([]*Track, error)
	UpdateTrack(ctx context.Context, id string, update TrackUpdate) (*Track, error)
	// DeleteTrack removes the track and its slots; it fails with ErrConflict
	// while any slot under the track still references a talk.
	DeleteTrack(ctx context.Context, id string) error

	// CreateSlot inserts the slot, failing with ErrConflict when its
	// interval overlaps an existing slot in the same track and date.
	CreateSlot(ctx context.Context, slot *ScheduleSlot) error
	GetSlotByID(ctx context.Context, id string) (*ScheduleSlot, error)
	ListSlots(ctx context.Context, conferenceID string) ([]*ScheduleSlot, error)
	UpdateSlot(ctx context.Context, id string, update SlotUpdate) (*ScheduleSlot, error)
	DeleteSlot(ctx context.Context, id string) error

	// Assign binds an accepted talk to a slot under mutual exclusion: the
	// slot must be empty or already hold this talk, and the talk must not
	// occupy a different slot. Reassigning the same talk to the same slot
	// is a no-op success.
	Assign(ctx context.Context, slotID, talkID string) (*ScheduleSlot, error)
	// Unassign clears the slot's talk reference; clearing an empty slot is
	// a no-op success.
	Unassign(ctx context.Context, slotID string) (*ScheduleSlot, error)

	PublicSchedule(ctx context.Context) ([]*PublicScheduleEntry, error)
}

// ScheduleService defines the business logic for building a conflict-free
// schedule grid.
type ScheduleService interface {
	CreateTrack(ctx context.Context, actor Actor, track *Track) error
	ListTracks(ctx context.Context, conferenceID string) ([]*Track, error)
	UpdateTrack(ctx context.Context, actor Actor, id string, update TrackUpdate) (*Track, error)
	DeleteTrack(ctx context.Context, actor Actor, id string) error

	CreateSlot(ctx context.Context, actor Actor, slot *ScheduleSlot) error
	ListSlots(ctx context.Context, conferenceID string) ([]*ScheduleSlot, error)
	UpdateSlot(ctx context.Context, actor Actor, id string, update SlotUpdate) (*ScheduleSlot, error)
	DeleteSlot(ctx context.Context, actor Actor, id string) error

	Assign(ctx context.Context, actor Actor, slotID, talkID string) (*ScheduleSlot, error)
	Unassign(ctx context.Context, actor Actor, slotID string) (*ScheduleSlot, error)

	PublicSchedule(ctx context.Context) ([]*PublicScheduleEntry, error)
}
