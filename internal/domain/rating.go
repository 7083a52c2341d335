package domain

import (
	"context"
	"time"
)

// Rating score bounds.
const (
	MinScore = 1
	MaxScore = 5
)

// Rating is one reviewer's score for one talk. Exactly one row exists per
// (talk, reviewer) pair; rating the same talk again updates in place.
// swagger:model Rating
type Rating struct {
	ID         string    `json:"id"`
	TalkID     string    `json:"talk_id"`
	ReviewerID string    `json:"reviewer_id"`
	Score      int       `json:"score"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TalkAverage is the aggregate for one talk. Average is nil when Count is 0:
// "no rating" is distinct from a zero score.
type TalkAverage struct {
	TalkID  string   `json:"talk_id"`
	Count   int      `json:"count"`
	Average *float64 `json:"average"`
}

// ScoreDistribution is a 1-5 histogram of all stored scores.
type ScoreDistribution struct {
	One   int64 `json:"one"`
	Two   int64 `json:"two"`
	Three int64 `json:"three"`
	Four  int64 `json:"four"`
	Five  int64 `json:"five"`
}

// TalkRatingRank is one entry of the ranked top list: talks ordered by
// average descending, ties broken by rating count descending, then by
// submission time ascending.
type TalkRatingRank struct {
	TalkID      string    `json:"talk_id"`
	Title       string    `json:"title"`
	State       TalkState `json:"state"`
	SubmittedAt time.Time `json:"submitted_at"`
	RatingCount int       `json:"rating_count"`
	Average     float64   `json:"average"`
}

// RatingStatistics is the cross-talk aggregate view.
type RatingStatistics struct {
	RatedTalks    int64             `json:"rated_talks"`
	TotalRatings  int64             `json:"total_ratings"`
	GlobalAverage *float64          `json:"global_average"`
	Distribution  ScoreDistribution `json:"distribution"`
	TopTalks      []TalkRatingRank  `json:"top_talks"`
}

// RatingRepository defines the interface for rating storage.
type RatingRepository interface {
	// Upsert inserts or updates the (talk, reviewer) row in place.
	Upsert(ctx context.Context, rating *Rating) error
	// Delete removes the reviewer's rating; removing an absent rating is
	// not an error.
	Delete(ctx context.Context, talkID, reviewerID string) error
	GetByTalkAndReviewer(ctx context.Context, talkID, reviewerID string) (*Rating, error)
	ListByTalkID(ctx context.Context, talkID string) ([]*Rating, error)
	Average(ctx context.Context, talkID string) (*TalkAverage, error)
	Statistics(ctx context.Context, topN int) (*RatingStatistics, error)
}

// RatingService defines the business logic for reviewer scoring.
type RatingService interface {
	Rate(ctx context.Context, actor Actor, talkID string, score int, notes *string) (*Rating, error)
	DeleteRating(ctx context.Context, actor Actor, talkID string) error
	GetMyRating(ctx context.Context, actor Actor, talkID string) (*Rating, error)
	ListTalkRatings(ctx context.Context, actor Actor, talkID string) ([]*Rating, error)
	Average(ctx context.Context, actor Actor, talkID string) (*TalkAverage, error)
	Statistics(ctx context.Context, actor Actor, topN int) (*RatingStatistics, error)
}
