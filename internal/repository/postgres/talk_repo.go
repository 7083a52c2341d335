package postgres

import (
	"context"
	"database/sql"
	"errors"

	"cfpboard/internal/domain"
)

type talkRepository struct {
	DB *sql.DB
}

// NewTalkRepository returns a domain.TalkRepository implemented with Postgres.
func NewTalkRepository(db *sql.DB) domain.TalkRepository {
	return &talkRepository{DB: db}
}

const talkColumns = `id, speaker_id, title, short_summary, long_description, slides_url, state, submitted_at, updated_at`

func scanTalk(row interface{ Scan(...any) error }) (*domain.Talk, error) {
	t := &domain.Talk{}
	var longDesc, slidesURL sql.NullString
	var state string
	err := row.Scan(&t.ID, &t.SpeakerID, &t.Title, &t.ShortSummary, &longDesc, &slidesURL, &state, &t.SubmittedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.State = domain.TalkState(state)
	if longDesc.Valid {
		t.LongDescription = &longDesc.String
	}
	if slidesURL.Valid {
		t.SlidesURL = &slidesURL.String
	}
	return t, nil
}

func (r *talkRepository) Create(ctx context.Context, t *domain.Talk) error {
	query := `
		INSERT INTO talks (speaker_id, title, short_summary, long_description, slides_url, state, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		t.SpeakerID, t.Title, t.ShortSummary, t.LongDescription, t.SlidesURL, string(t.State), t.SubmittedAt, t.UpdatedAt,
	).Scan(&t.ID)
}

func (r *talkRepository) GetByID(ctx context.Context, id string) (*domain.Talk, error) {
	query := `SELECT ` + talkColumns + ` FROM talks WHERE id = $1`
	t, err := scanTalk(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *talkRepository) ListBySpeakerID(ctx context.Context, speakerID string) ([]*domain.Talk, error) {
	query := `SELECT ` + talkColumns + ` FROM talks WHERE speaker_id = $1 ORDER BY submitted_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, speakerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	talks := make([]*domain.Talk, 0)
	for rows.Next() {
		t, err := scanTalk(rows)
		if err != nil {
			return nil, err
		}
		talks = append(talks, t)
	}
	return talks, rows.Err()
}

func (r *talkRepository) List(ctx context.Context, state *domain.TalkState, params domain.PaginationParams) ([]*domain.Talk, int, error) {
	var total int
	var rows *sql.Rows
	var err error
	if state != nil {
		if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM talks WHERE state = $1`, string(*state)).Scan(&total); err != nil {
			return nil, 0, err
		}
		query := `SELECT ` + talkColumns + ` FROM talks WHERE state = $1 ORDER BY submitted_at DESC LIMIT $2 OFFSET $3`
		rows, err = r.DB.QueryContext(ctx, query, string(*state), params.PageSize, params.Offset())
	} else {
		if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM talks`).Scan(&total); err != nil {
			return nil, 0, err
		}
		query := `SELECT ` + talkColumns + ` FROM talks ORDER BY submitted_at DESC LIMIT $1 OFFSET $2`
		rows, err = r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	talks := make([]*domain.Talk, 0)
	for rows.Next() {
		t, err := scanTalk(rows)
		if err != nil {
			return nil, 0, err
		}
		talks = append(talks, t)
	}
	return talks, total, rows.Err()
}

func (r *talkRepository) Update(ctx context.Context, t *domain.Talk) error {
	query := `
		UPDATE talks
		SET title = $2, short_summary = $3, long_description = $4, slides_url = $5, updated_at = $6
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		t.ID, t.Title, t.ShortSummary, t.LongDescription, t.SlidesURL, t.UpdatedAt,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// UpdateState applies the transition inside one transaction. The talk row is
// locked for the duration, so a concurrent assign cannot interleave between
// the state write and the slot-clearing write.
func (r *talkRepository) UpdateState(ctx context.Context, id string, from, to domain.TalkState) (*domain.Talk, error) {
	var talk *domain.Talk
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT state FROM talks WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		if domain.TalkState(current) == to {
			// Retried or already-applied transition: same final state,
			// no duplicate side effects.
			t, err := scanTalk(tx.QueryRowContext(ctx, `SELECT `+talkColumns+` FROM talks WHERE id = $1`, id))
			if err != nil {
				return err
			}
			talk = t
			return nil
		}
		if domain.TalkState(current) != from || !domain.CanTransition(from, to) {
			return domain.ErrInvalidTransition
		}
		t, err := scanTalk(tx.QueryRowContext(ctx, `
			UPDATE talks SET state = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING `+talkColumns, id, string(to)))
		if err != nil {
			return err
		}
		if from == domain.StateAccepted && to == domain.StateRejected {
			// The talk may occupy a schedule slot; clear it in the same
			// transaction so no reader observes a rejected talk on the grid.
			if _, err := tx.ExecContext(ctx, `
				UPDATE schedule_slots SET talk_id = NULL, updated_at = NOW()
				WHERE talk_id = $1`, id); err != nil {
				return err
			}
		}
		talk = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return talk, nil
}

func (r *talkRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		// Ratings and label junctions cascade with the talk.
		if _, err := tx.ExecContext(ctx, `DELETE FROM ratings WHERE talk_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM talk_labels WHERE talk_id = $1`, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM talks WHERE id = $1`, id)
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
