package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"cfpboard/internal/delivery/http/helpers"
	"cfpboard/internal/domain"
)

// RateRequest is the request body for PUT /talks/{talkID}/rating.
type RateRequest struct {
	Score int     `json:"score"`
	Notes *string `json:"notes"`
}

// Validate implements Validator.
func (rr RateRequest) Validate() []string {
	if rr.Score < domain.MinScore || rr.Score > domain.MaxScore {
		return []string{"score must be between 1 and 5"}
	}
	return nil
}

// RatingSuccessResponse is the success response envelope for rating endpoints.
type RatingSuccessResponse struct {
	Data  *domain.Rating    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// StatisticsSuccessResponse is the success response envelope for GET /ratings/statistics (200).
type StatisticsSuccessResponse struct {
	Data  *domain.RatingStatistics `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// RatingController handles reviewer scoring of talks.
type RatingController struct {
	Logger  *slog.Logger
	Service domain.RatingService
}

func NewRatingController(logger *slog.Logger, svc domain.RatingService) *RatingController {
	return &RatingController{
		Logger:  logger,
		Service: svc,
	}
}

// Rate godoc
// @Summary Rate a talk
// @Description Organizer-only: record a 1-5 score (with optional notes) for a talk. Rating the same talk again updates the existing rating in place. Organizers cannot rate their own talks.
// @Tags ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Param body body RateRequest true "Score and optional notes"
// @Success 200 {object} controllers.RatingSuccessResponse "data contains the stored rating"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (score out of range)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer, or own talk)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /talks/{talkID}/rating [put]
func (c *RatingController) Rate(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req RateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rating, err := c.Service.Rate(r.Context(), actor, r.PathValue("talkID"), req.Score, req.Notes)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rating)
}

// Delete godoc
// @Summary Delete my rating
// @Description Organizer-only: remove the caller's rating for a talk. Deleting an absent rating succeeds.
// @Tags ratings
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains {deleted: true}"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (talk does not exist)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /talks/{talkID}/rating [delete]
func (c *RatingController) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteRating(r.Context(), actor, r.PathValue("talkID")); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

// GetMine godoc
// @Summary Get my rating for a talk
// @Description Organizer-only: returns the caller's rating for the talk, 404 if none exists.
// @Tags ratings
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Success 200 {object} controllers.RatingSuccessResponse "data contains the rating"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /talks/{talkID}/rating [get]
func (c *RatingController) GetMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	rating, err := c.Service.GetMyRating(r.Context(), actor, r.PathValue("talkID"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rating)
}

// List godoc
// @Summary List all ratings for a talk
// @Description Organizer-only: returns every reviewer's rating for the talk.
// @Tags ratings
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the ratings"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /talks/{talkID}/ratings [get]
func (c *RatingController) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	ratings, err := c.Service.ListTalkRatings(r.Context(), actor, r.PathValue("talkID"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ratings)
}

// Average godoc
// @Summary Get a talk's average rating
// @Description Organizer-only: returns the talk's rating count and mean score. Average is null when the talk has no ratings.
// @Tags ratings
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains talk_id, count, and average"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /talks/{talkID}/rating/average [get]
func (c *RatingController) Average(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	avg, err := c.Service.Average(r.Context(), actor, r.PathValue("talkID"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, avg)
}

// Statistics godoc
// @Summary Rating statistics
// @Description Organizer-only: cross-talk aggregates (rated talk count, total ratings, global average, 1-5 score distribution, and the top-rated talks). Optional top query parameter bounds the ranked list (default 10, max 50).
// @Tags ratings
// @Produce json
// @Security BearerAuth
// @Param top query int false "Number of top talks to return (default 10, max 50)"
// @Success 200 {object} controllers.StatisticsSuccessResponse "data contains the aggregate statistics"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /ratings/statistics [get]
func (c *RatingController) Statistics(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	topN := 0
	if s := r.URL.Query().Get("top"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "top must be an integer")
			return
		}
		topN = v
	}
	stats, err := c.Service.Statistics(r.Context(), actor, topN)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}
