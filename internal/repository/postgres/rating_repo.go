package postgres

import (
	"context"
	"database/sql"
	"errors"

	"cfpboard/internal/domain"
)

type ratingRepository struct {
	DB *sql.DB
}

// NewRatingRepository returns a domain.RatingRepository implemented with Postgres.
func NewRatingRepository(db *sql.DB) domain.RatingRepository {
	return &ratingRepository{DB: db}
}

const ratingColumns = `id, talk_id, reviewer_id, score, notes, created_at, updated_at`

func scanRating(row interface{ Scan(...any) error }) (*domain.Rating, error) {
	rt := &domain.Rating{}
	var notes sql.NullString
	err := row.Scan(&rt.ID, &rt.TalkID, &rt.ReviewerID, &rt.Score, &notes, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		rt.Notes = &notes.String
	}
	return rt, nil
}

// Upsert relies on the (talk_id, reviewer_id) unique constraint: a second
// rating from the same reviewer updates the row in place, never duplicates.
func (r *ratingRepository) Upsert(ctx context.Context, rating *domain.Rating) error {
	query := `
		INSERT INTO ratings (talk_id, reviewer_id, score, notes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (talk_id, reviewer_id) DO UPDATE
		SET score = EXCLUDED.score, notes = EXCLUDED.notes, updated_at = NOW()
		RETURNING ` + ratingColumns
	got, err := scanRating(r.DB.QueryRowContext(ctx, query, rating.TalkID, rating.ReviewerID, rating.Score, rating.Notes))
	if err != nil {
		return err
	}
	*rating = *got
	return nil
}

func (r *ratingRepository) Delete(ctx context.Context, talkID, reviewerID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM ratings WHERE talk_id = $1 AND reviewer_id = $2`, talkID, reviewerID)
	return err
}

func (r *ratingRepository) GetByTalkAndReviewer(ctx context.Context, talkID, reviewerID string) (*domain.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE talk_id = $1 AND reviewer_id = $2`
	rt, err := scanRating(r.DB.QueryRowContext(ctx, query, talkID, reviewerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rt, nil
}

func (r *ratingRepository) ListByTalkID(ctx context.Context, talkID string) ([]*domain.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE talk_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, talkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ratings := make([]*domain.Rating, 0)
	for rows.Next() {
		rt, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}

func (r *ratingRepository) Average(ctx context.Context, talkID string) (*domain.TalkAverage, error) {
	query := `SELECT COUNT(*), AVG(score) FROM ratings WHERE talk_id = $1`
	avg := &domain.TalkAverage{TalkID: talkID}
	var mean sql.NullFloat64
	if err := r.DB.QueryRowContext(ctx, query, talkID).Scan(&avg.Count, &mean); err != nil {
		return nil, err
	}
	if mean.Valid {
		avg.Average = &mean.Float64
	}
	return avg, nil
}

func (r *ratingRepository) Statistics(ctx context.Context, topN int) (*domain.RatingStatistics, error) {
	stats := &domain.RatingStatistics{}

	var globalAvg sql.NullFloat64
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT talk_id), AVG(score) FROM ratings
	`).Scan(&stats.TotalRatings, &stats.RatedTalks, &globalAvg)
	if err != nil {
		return nil, err
	}
	if globalAvg.Valid {
		stats.GlobalAverage = &globalAvg.Float64
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT score, COUNT(*) FROM ratings GROUP BY score ORDER BY score
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var score int
		var count int64
		if err := rows.Scan(&score, &count); err != nil {
			return nil, err
		}
		switch score {
		case 1:
			stats.Distribution.One = count
		case 2:
			stats.Distribution.Two = count
		case 3:
			stats.Distribution.Three = count
		case 4:
			stats.Distribution.Four = count
		case 5:
			stats.Distribution.Five = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	topRows, err := r.DB.QueryContext(ctx, `
		SELECT t.id, t.title, t.state, t.submitted_at, COUNT(r.id) AS rating_count, AVG(r.score) AS average
		FROM talks t
		JOIN ratings r ON r.talk_id = t.id
		GROUP BY t.id, t.title, t.state, t.submitted_at
		ORDER BY average DESC, rating_count DESC, t.submitted_at ASC
		LIMIT $1
	`, topN)
	if err != nil {
		return nil, err
	}
	defer topRows.Close()
	stats.TopTalks = make([]domain.TalkRatingRank, 0)
	for topRows.Next() {
		var rank domain.TalkRatingRank
		var state string
		if err := topRows.Scan(&rank.TalkID, &rank.Title, &state, &rank.SubmittedAt, &rank.RatingCount, &rank.Average); err != nil {
			return nil, err
		}
		rank.State = domain.TalkState(state)
		stats.TopTalks = append(stats.TopTalks, rank)
	}
	return stats, topRows.Err()
}
