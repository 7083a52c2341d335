package postgres

import (
	"context"
	"database/sql"
	"errors"

	"cfpboard/internal/domain"
)

type conferenceRepository struct {
	DB *sql.DB
}

func NewConferenceRepository(db *sql.DB) domain.ConferenceRepository {
	return &conferenceRepository{DB: db}
}

const conferenceColumns = `id, name, slug, start_date, end_date, created_at, updated_at`

func scanConference(row interface{ Scan(...any) error }) (*domain.Conference, error) {
	c := &domain.Conference{}
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *conferenceRepository) Create(ctx context.Context, c *domain.Conference) error {
	query := `
		INSERT INTO conferences (name, slug, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, c.Name, c.Slug, c.StartDate, c.EndDate, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
	return mapConflict(err)
}

func (r *conferenceRepository) GetByID(ctx context.Context, id string) (*domain.Conference, error) {
	c, err := scanConference(r.DB.QueryRowContext(ctx, `SELECT `+conferenceColumns+` FROM conferences WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *conferenceRepository) GetBySlug(ctx context.Context, slug string) (*domain.Conference, error) {
	c, err := scanConference(r.DB.QueryRowContext(ctx, `SELECT `+conferenceColumns+` FROM conferences WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *conferenceRepository) List(ctx context.Context) ([]*domain.Conference, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+conferenceColumns+` FROM conferences ORDER BY start_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	conferences := make([]*domain.Conference, 0)
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, err
		}
		conferences = append(conferences, c)
	}
	return conferences, rows.Err()
}
