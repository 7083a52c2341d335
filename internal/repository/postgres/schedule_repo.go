package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cfpboard/internal/domain"
)

type scheduleRepository struct {
	DB *sql.DB
}

// NewScheduleRepository returns a domain.ScheduleRepository implemented with
// Postgres.
func NewScheduleRepository(db *sql.DB) domain.ScheduleRepository {
	return &scheduleRepository{DB: db}
}

const trackColumns = `id, conference_id, name, description, capacity, created_at, updated_at`
const slotColumns = `id, conference_id, track_id, talk_id, slot_date, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), created_at, updated_at`

func scanTrack(row interface{ Scan(...any) error }) (*domain.Track, error) {
	t := &domain.Track{}
	var desc sql.NullString
	var capacity sql.NullInt64
	err := row.Scan(&t.ID, &t.ConferenceID, &t.Name, &desc, &capacity, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	if capacity.Valid {
		c := int(capacity.Int64)
		t.Capacity = &c
	}
	return t, nil
}

func scanSlot(row interface{ Scan(...any) error }) (*domain.ScheduleSlot, error) {
	s := &domain.ScheduleSlot{}
	var talkID sql.NullString
	err := row.Scan(&s.ID, &s.ConferenceID, &s.TrackID, &talkID, &s.SlotDate, &s.StartTime, &s.EndTime, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if talkID.Valid {
		s.TalkID = &talkID.String
	}
	return s, nil
}

func (r *scheduleRepository) CreateTrack(ctx context.Context, t *domain.Track) error {
	query := `
		INSERT INTO tracks (conference_id, name, description, capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, query, t.ConferenceID, t.Name, t.Description, t.Capacity).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return mapConflict(err)
}

func (r *scheduleRepository) GetTrackByID(ctx context.Context, id string) (*domain.Track, error) {
	t, err := scanTrack(r.DB.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *scheduleRepository) ListTracksByConferenceID(ctx context.Context, conferenceID string) ([]*domain.Track, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE conference_id = $1 ORDER BY name ASC`, conferenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tracks := make([]*domain.Track, 0)
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

func (r *scheduleRepository) UpdateTrack(ctx context.Context, id string, update domain.TrackUpdate) (*domain.Track, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	if update.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", n))
		args = append(args, *update.Name)
		n++
	}
	if update.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *update.Description)
		n++
	}
	if update.Capacity != nil {
		setClauses = append(setClauses, fmt.Sprintf("capacity = $%d", n))
		args = append(args, *update.Capacity)
		n++
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tracks SET %s WHERE id = $%d RETURNING `+trackColumns,
		strings.Join(setClauses, ", "), n)
	t, err := scanTrack(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// DeleteTrack refuses to delete while any slot under the track still holds a
// talk: the caller must unassign first, so a scheduled talk is never silently
// orphaned.
func (r *scheduleRepository) DeleteTrack(ctx context.Context, id string) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		var occupied bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM schedule_slots WHERE track_id = $1 AND talk_id IS NOT NULL)
		`, id).Scan(&occupied)
		if err != nil {
			return err
		}
		if occupied {
			return domain.ErrConflict
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_slots WHERE track_id = $1`, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// CreateSlot checks the interval against existing slots in the same track and
// date inside the insert transaction; the per-track exclusion constraint
// turns a concurrent overlapping insert into a conflict as well.
func (r *scheduleRepository) CreateSlot(ctx context.Context, s *domain.ScheduleSlot) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		var overlaps bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM schedule_slots
				WHERE track_id = $1 AND slot_date = $2
				AND $3::time < end_time AND start_time < $4::time
			)
		`, s.TrackID, s.SlotDate, s.StartTime, s.EndTime).Scan(&overlaps)
		if err != nil {
			return err
		}
		if overlaps {
			return domain.ErrConflict
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO schedule_slots (conference_id, track_id, slot_date, start_time, end_time)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`, s.ConferenceID, s.TrackID, s.SlotDate, s.StartTime, s.EndTime).
			Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
		return mapConflict(err)
	})
}

func (r *scheduleRepository) GetSlotByID(ctx context.Context, id string) (*domain.ScheduleSlot, error) {
	s, err := scanSlot(r.DB.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM schedule_slots WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *scheduleRepository) ListSlots(ctx context.Context, conferenceID string) ([]*domain.ScheduleSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM schedule_slots WHERE conference_id = $1 ORDER BY slot_date ASC, start_time ASC`
	rows, err := r.DB.QueryContext(ctx, query, conferenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]*domain.ScheduleSlot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *scheduleRepository) UpdateSlot(ctx context.Context, id string, update domain.SlotUpdate) (*domain.ScheduleSlot, error) {
	var slot *domain.ScheduleSlot
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		current, err := scanSlot(tx.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM schedule_slots WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		trackID := current.TrackID
		if update.TrackID != nil {
			trackID = *update.TrackID
		}
		slotDate := current.SlotDate
		if update.SlotDate != nil {
			slotDate = *update.SlotDate
		}
		startTime := current.StartTime
		if update.StartTime != nil {
			startTime = *update.StartTime
		}
		endTime := current.EndTime
		if update.EndTime != nil {
			endTime = *update.EndTime
		}
		if startTime >= endTime {
			return domain.ErrInvalidInput
		}
		var overlaps bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM schedule_slots
				WHERE track_id = $1 AND slot_date = $2 AND id <> $3
				AND $4::time < end_time AND start_time < $5::time
			)
		`, trackID, slotDate, id, startTime, endTime).Scan(&overlaps)
		if err != nil {
			return err
		}
		if overlaps {
			return domain.ErrConflict
		}
		updated, err := scanSlot(tx.QueryRowContext(ctx, `
			UPDATE schedule_slots
			SET track_id = $2, slot_date = $3, start_time = $4, end_time = $5, updated_at = NOW()
			WHERE id = $1
			RETURNING `+slotColumns, id, trackID, slotDate, startTime, endTime))
		if err != nil {
			return mapConflict(err)
		}
		slot = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (r *scheduleRepository) DeleteSlot(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM schedule_slots WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Assign enforces the mutual-exclusion invariants inside one transaction,
// locking slot and talk rows. The partial unique index on talk_id converts a
// racing assign of the same talk into a conflict for the loser.
func (r *scheduleRepository) Assign(ctx context.Context, slotID, talkID string) (*domain.ScheduleSlot, error) {
	var slot *domain.ScheduleSlot
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		current, err := scanSlot(tx.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM schedule_slots WHERE id = $1 FOR UPDATE`, slotID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		var state string
		err = tx.QueryRowContext(ctx, `SELECT state FROM talks WHERE id = $1 FOR UPDATE`, talkID).Scan(&state)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		if domain.TalkState(state) != domain.StateAccepted {
			return domain.ErrTalkNotAccepted
		}
		if current.TalkID != nil {
			if *current.TalkID == talkID {
				// Same talk, same slot: idempotent.
				slot = current
				return nil
			}
			return domain.ErrConflict
		}
		var elsewhere bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM schedule_slots WHERE talk_id = $1 AND id <> $2)
		`, talkID, slotID).Scan(&elsewhere)
		if err != nil {
			return err
		}
		if elsewhere {
			return domain.ErrConflict
		}
		updated, err := scanSlot(tx.QueryRowContext(ctx, `
			UPDATE schedule_slots SET talk_id = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING `+slotColumns, slotID, talkID))
		if err != nil {
			return mapConflict(err)
		}
		slot = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (r *scheduleRepository) Unassign(ctx context.Context, slotID string) (*domain.ScheduleSlot, error) {
	s, err := scanSlot(r.DB.QueryRowContext(ctx, `
		UPDATE schedule_slots SET talk_id = NULL, updated_at = NOW()
		WHERE id = $1
		RETURNING `+slotColumns, slotID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *scheduleRepository) PublicSchedule(ctx context.Context) ([]*domain.PublicScheduleEntry, error) {
	query := `
		SELECT
			ss.id, ss.track_id, tr.name,
			ss.slot_date, to_char(ss.start_time, 'HH24:MI'), to_char(ss.end_time, 'HH24:MI'),
			tk.id, tk.title, tk.short_summary, u.full_name
		FROM schedule_slots ss
		JOIN tracks tr ON tr.id = ss.track_id
		LEFT JOIN talks tk ON tk.id = ss.talk_id
		LEFT JOIN users u ON u.id = tk.speaker_id
		ORDER BY ss.slot_date ASC, ss.start_time ASC, tr.name ASC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]*domain.PublicScheduleEntry, 0)
	for rows.Next() {
		e := &domain.PublicScheduleEntry{}
		var talkID, title, summary, speaker sql.NullString
		var slotDate time.Time
		if err := rows.Scan(&e.SlotID, &e.TrackID, &e.TrackName, &slotDate, &e.StartTime, &e.EndTime,
			&talkID, &title, &summary, &speaker); err != nil {
			return nil, err
		}
		e.SlotDate = slotDate
		if talkID.Valid {
			e.Talk = &domain.PublicScheduleTalk{
				ID:           talkID.String,
				Title:        title.String,
				ShortSummary: summary.String,
				SpeakerName:  speaker.String,
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
