package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cfpboard/internal/delivery/http/helpers"
	"cfpboard/internal/domain"
)

// CreateTalkRequest is the request body for POST /talks.
type CreateTalkRequest struct {
	Title           string  `json:"title"`
	ShortSummary    string  `json:"short_summary"`
	LongDescription *string `json:"long_description"`
	SlidesURL       *string `json:"slides_url"`
}

// Validate implements Validator.
func (c CreateTalkRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(c.ShortSummary) == "" {
		errs = append(errs, "short_summary is required")
	}
	return errs
}

// UpdateTalkRequest is the request body for PATCH /talks/{talkID}. All fields
// optional; omitted fields are unchanged.
type UpdateTalkRequest struct {
	Title           *string `json:"title"`
	ShortSummary    *string `json:"short_summary"`
	LongDescription *string `json:"long_description"`
	SlidesURL       *string `json:"slides_url"`
}

// Validate implements Validator.
func (u UpdateTalkRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if u.ShortSummary != nil && strings.TrimSpace(*u.ShortSummary) == "" {
		errs = append(errs, "short_summary cannot be empty")
	}
	return errs
}

// TransitionRequest is the request body for POST /talks/{talkID}/transition.
type TransitionRequest struct {
	Target string `json:"target"`
}

// Validate implements Validator.
func (t TransitionRequest) Validate() []string {
	if strings.TrimSpace(t.Target) == "" {
		return []string{"target is required"}
	}
	return nil
}

// TalkListResponse is the response body for GET /talks.
type TalkListResponse struct {
	Talks      []*domain.Talk         `json:"talks"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// TalkSuccessResponse is the success response envelope for single-talk endpoints.
type TalkSuccessResponse struct {
	Data  *domain.Talk      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// TalkListSuccessResponse is the success response envelope for GET /talks (200).
type TalkListSuccessResponse struct {
	Data  TalkListResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// TalkController handles talk submission, editing, and lifecycle transitions.
type TalkController struct {
	Logger  *slog.Logger
	Service domain.TalkService
}

func NewTalkController(logger *slog.Logger, svc domain.TalkService) *TalkController {
	return &TalkController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Submit a new talk
// @Description Submit a talk proposal. The authenticated user becomes the speaker and the talk starts in the "submitted" state.
// @Tags talks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTalkRequest true "Talk data"
// @Success 201 {object} controllers.TalkSuccessResponse "data contains the created talk"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /talks [post]
func (c *TalkController) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req CreateTalkRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	talk := domain.NewTalk(actor.UserID, strings.TrimSpace(req.Title), strings.TrimSpace(req.ShortSummary), req.LongDescription, time.Now())
	talk.SlidesURL = req.SlidesURL
	if err := c.Service.CreateTalk(r.Context(), actor, talk); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, talk)
}

// ListMine godoc
// @Summary List my talks
// @Description Returns every talk submitted by the authenticated speaker, newest first.
// @Tags talks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the talks"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /talks/me [get]
func (c *TalkController) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	talks, err := c.Service.ListMyTalks(r.Context(), actor)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, talks)
}

// List godoc
// @Summary List all talks
// @Description Organizer-only: lists talks across all speakers, optionally filtered by state, paginated.
// @Tags talks
// @Produce json
// @Security BearerAuth
// @Param state query string false "Filter by state (submitted, pending, accepted, rejected)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.TalkListSuccessResponse "data contains talks and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /talks [get]
func (c *TalkController) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var state *domain.TalkState
	if s := r.URL.Query().Get("state"); s != "" {
		parsed, err := domain.ParseTalkState(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown state: "+s)
			return
		}
		state = &parsed
	}
	params := helpers.ParsePagination(r)
	talks, total, err := c.Service.ListTalks(r.Context(), actor, state, params)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, TalkListResponse{
		Talks:      talks,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// Get godoc
// @Summary Get a talk
// @Description Returns one talk. Speakers see only their own talks; organizers see any.
// @Tags talks
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Success 200 {object} controllers.TalkSuccessResponse "data contains the talk"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /talks/{talkID} [get]
func (c *TalkController) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	talk, err := c.Service.GetTalk(r.Context(), actor, r.PathValue("talkID"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, talk)
}

// Update godoc
// @Summary Update a talk
// @Description Update a talk's editable fields. Only the owning speaker may edit, and only while the talk is not in a terminal state (accepted/rejected).
// @Tags talks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Param body body UpdateTalkRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.TalkSuccessResponse "data contains the updated talk"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (talk is in a terminal state)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /talks/{talkID} [patch]
func (c *TalkController) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req UpdateTalkRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	talk, err := c.Service.UpdateTalk(r.Context(), actor, r.PathValue("talkID"), domain.TalkUpdate{
		Title:           req.Title,
		ShortSummary:    req.ShortSummary,
		LongDescription: req.LongDescription,
		SlidesURL:       req.SlidesURL,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, talk)
}

// Delete godoc
// @Summary Delete a talk
// @Description Delete a talk and its ratings and label links. Allowed for the owning speaker or an organizer, and only while the talk is submitted or rejected.
// @Tags talks
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains {deleted: true}"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /talks/{talkID} [delete]
func (c *TalkController) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteTalk(r.Context(), actor, r.PathValue("talkID")); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Transition godoc
// @Summary Apply a lifecycle transition
// @Description Move a talk to a new state along the lifecycle graph. Organizers screen (submitted->pending) and reject; speakers confirm their own pending talks (pending->accepted) or withdraw them (pending->rejected). Re-applying the current state is a no-op success.
// @Tags talks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Param body body TransitionRequest true "Target state"
// @Success 200 {object} controllers.TalkSuccessResponse "data contains the talk in its new state"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unknown state)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (actor may not take this edge)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition (no such edge)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /talks/{talkID}/transition [post]
func (c *TalkController) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req TransitionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	target, err := domain.ParseTalkState(strings.TrimSpace(strings.ToLower(req.Target)))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown target state: "+req.Target)
		return
	}
	talk, err := c.Service.ApplyTransition(r.Context(), actor, r.PathValue("talkID"), target)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, talk)
}
