package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"cfpboard/internal/domain"
)

var ratingTestColumns = []string{
	"id", "talk_id", "reviewer_id", "score", "notes", "created_at", "updated_at",
}

func TestRatingRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("insert returns the stored row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`INSERT INTO ratings`).
			WithArgs("talk-1", "rev-1", 4, nil).
			WillReturnRows(sqlmock.NewRows(ratingTestColumns).
				AddRow("rating-1", "talk-1", "rev-1", 4, nil, now, now))
		repo := NewRatingRepository(db)
		rating := &domain.Rating{TalkID: "talk-1", ReviewerID: "rev-1", Score: 4}
		require.NoError(t, repo.Upsert(ctx, rating))
		require.Equal(t, "rating-1", rating.ID)
		require.Equal(t, 4, rating.Score)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second rating from same reviewer updates in place", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		notes := "changed my mind"
		mock.ExpectQuery(`INSERT INTO ratings`).
			WithArgs("talk-1", "rev-1", 2, &notes).
			WillReturnRows(sqlmock.NewRows(ratingTestColumns).
				AddRow("rating-1", "talk-1", "rev-1", 2, notes, now, now.Add(time.Minute)))
		repo := NewRatingRepository(db)
		rating := &domain.Rating{TalkID: "talk-1", ReviewerID: "rev-1", Score: 2, Notes: &notes}
		require.NoError(t, repo.Upsert(ctx, rating))
		// Same row id as the original insert, updated score.
		require.Equal(t, "rating-1", rating.ID)
		require.Equal(t, 2, rating.Score)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRatingRepository_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		rows int64
	}{
		{name: "deletes existing rating", rows: 1},
		{name: "missing rating is a no-op", rows: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			mock.ExpectExec(`DELETE FROM ratings WHERE talk_id = \$1 AND reviewer_id = \$2`).
				WithArgs("talk-1", "rev-1").
				WillReturnResult(sqlmock.NewResult(0, tt.rows))
			repo := NewRatingRepository(db)
			require.NoError(t, repo.Delete(ctx, "talk-1", "rev-1"))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRatingRepository_Average(t *testing.T) {
	ctx := context.Background()

	t.Run("unrated talk has nil average", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`SELECT COUNT\(\*\), AVG\(score\) FROM ratings WHERE talk_id = \$1`).
			WithArgs("talk-1").
			WillReturnRows(sqlmock.NewRows([]string{"count", "avg"}).AddRow(0, nil))
		repo := NewRatingRepository(db)
		got, err := repo.Average(ctx, "talk-1")
		require.NoError(t, err)
		require.Equal(t, 0, got.Count)
		require.Nil(t, got.Average)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rated talk reports count and mean", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`SELECT COUNT\(\*\), AVG\(score\) FROM ratings WHERE talk_id = \$1`).
			WithArgs("talk-1").
			WillReturnRows(sqlmock.NewRows([]string{"count", "avg"}).AddRow(3, 4.5))
		repo := NewRatingRepository(db)
		got, err := repo.Average(ctx, "talk-1")
		require.NoError(t, err)
		require.Equal(t, 3, got.Count)
		require.NotNil(t, got.Average)
		require.InDelta(t, 4.5, *got.Average, 1e-9)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRatingRepository_GetByTalkAndReviewer(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`SELECT id, talk_id, reviewer_id`).
			WithArgs("talk-1", "rev-1").
			WillReturnError(sql.ErrNoRows)
		repo := NewRatingRepository(db)
		_, err = repo.GetByTalkAndReviewer(ctx, "talk-1", "rev-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRatingRepository_Statistics(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("empty system keeps nil global average", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`SELECT COUNT\(\*\), COUNT\(DISTINCT talk_id\), AVG\(score\) FROM ratings`).
			WillReturnRows(sqlmock.NewRows([]string{"total", "talks", "avg"}).AddRow(0, 0, nil))
		mock.ExpectQuery(`SELECT score, COUNT\(\*\) FROM ratings GROUP BY score`).
			WillReturnRows(sqlmock.NewRows([]string{"score", "count"}))
		mock.ExpectQuery(`ORDER BY average DESC, rating_count DESC, t.submitted_at ASC`).
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "state", "submitted_at", "rating_count", "average"}))
		repo := NewRatingRepository(db)
		got, err := repo.Statistics(ctx, 10)
		require.NoError(t, err)
		require.Equal(t, int64(0), got.TotalRatings)
		require.Nil(t, got.GlobalAverage)
		require.Empty(t, got.TopTalks)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("distribution and top talks", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`SELECT COUNT\(\*\), COUNT\(DISTINCT talk_id\), AVG\(score\) FROM ratings`).
			WillReturnRows(sqlmock.NewRows([]string{"total", "talks", "avg"}).AddRow(5, 2, 3.8))
		mock.ExpectQuery(`SELECT score, COUNT\(\*\) FROM ratings GROUP BY score`).
			WillReturnRows(sqlmock.NewRows([]string{"score", "count"}).
				AddRow(3, 2).
				AddRow(4, 2).
				AddRow(5, 1))
		mock.ExpectQuery(`ORDER BY average DESC, rating_count DESC, t.submitted_at ASC`).
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "state", "submitted_at", "rating_count", "average"}).
				AddRow("talk-2", "B", "accepted", now, 3, 4.33).
				AddRow("talk-1", "A", "pending", now, 2, 3.0))
		repo := NewRatingRepository(db)
		got, err := repo.Statistics(ctx, 10)
		require.NoError(t, err)
		require.Equal(t, int64(5), got.TotalRatings)
		require.Equal(t, int64(2), got.RatedTalks)
		require.Equal(t, int64(2), got.Distribution.Three)
		require.Equal(t, int64(2), got.Distribution.Four)
		require.Equal(t, int64(1), got.Distribution.Five)
		require.Len(t, got.TopTalks, 2)
		require.Equal(t, "talk-2", got.TopTalks[0].TalkID)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
