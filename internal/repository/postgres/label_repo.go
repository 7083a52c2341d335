package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cfpboard/internal/domain"
)

type labelRepository struct {
	DB *sql.DB
}

// NewLabelRepository returns a domain.LabelRepository implemented with Postgres.
func NewLabelRepository(db *sql.DB) domain.LabelRepository {
	return &labelRepository{DB: db}
}

const labelColumns = `id, name, description, color, auto_generated, created_at`

func scanLabel(row interface{ Scan(...any) error }) (*domain.Label, error) {
	l := &domain.Label{}
	var desc, color sql.NullString
	err := row.Scan(&l.ID, &l.Name, &desc, &color, &l.AutoGenerated, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		l.Description = &desc.String
	}
	if color.Valid {
		l.Color = &color.String
	}
	return l, nil
}

func (r *labelRepository) Create(ctx context.Context, l *domain.Label) error {
	query := `
		INSERT INTO labels (name, description, color, auto_generated)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query, l.Name, l.Description, l.Color, l.AutoGenerated).Scan(&l.ID, &l.CreatedAt)
	return mapConflict(err)
}

func (r *labelRepository) GetByID(ctx context.Context, id string) (*domain.Label, error) {
	l, err := scanLabel(r.DB.QueryRowContext(ctx, `SELECT `+labelColumns+` FROM labels WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *labelRepository) List(ctx context.Context) ([]*domain.Label, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+labelColumns+` FROM labels ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	labels := make([]*domain.Label, 0)
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

func (r *labelRepository) Update(ctx context.Context, id string, update domain.LabelUpdate) (*domain.Label, error) {
	setClauses := []string{}
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
	if update.Color != nil {
		setClauses = append(setClauses, fmt.Sprintf("color = $%d", n))
		args = append(args, *update.Color)
		n++
	}
	if n == 1 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE labels SET %s WHERE id = $%d RETURNING `+labelColumns,
		strings.Join(setClauses, ", "), n)
	l, err := scanLabel(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapConflict(err)
	}
	return l, nil
}

// Delete removes the label together with all its talk junctions, so no talk
// keeps a dangling reference.
func (r *labelRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM talk_labels WHERE label_id = $1`, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM labels WHERE id = $1`, id)
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

func (r *labelRepository) AddToTalk(ctx context.Context, talkID string, labelIDs []string, addedBy string) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		for _, labelID := range labelIDs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO talk_labels (talk_id, label_id, added_by)
				VALUES ($1, $2, $3)
				ON CONFLICT (talk_id, label_id) DO NOTHING
			`, talkID, labelID, addedBy)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *labelRepository) RemoveFromTalk(ctx context.Context, talkID, labelID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM talk_labels WHERE talk_id = $1 AND label_id = $2`, talkID, labelID)
	return err
}

func (r *labelRepository) ListByTalkID(ctx context.Context, talkID string) ([]*domain.Label, error) {
	query := `
		SELECT l.id, l.name, l.description, l.color, l.auto_generated, l.created_at
		FROM labels l
		JOIN talk_labels tl ON tl.label_id = l.id
		WHERE tl.talk_id = $1
		ORDER BY l.name ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, talkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	labels := make([]*domain.Label, 0)
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}
