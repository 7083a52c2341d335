package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cfpboard/internal/delivery/http/helpers"
	"cfpboard/internal/domain"
)

// CreateLabelRequest is the request body for POST /labels.
type CreateLabelRequest struct {
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	Color         *string `json:"color"`
	AutoGenerated bool    `json:"auto_generated"`
}

// Validate implements Validator.
func (c CreateLabelRequest) Validate() []string {
	if strings.TrimSpace(c.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

// UpdateLabelRequest is the request body for PATCH /labels/{labelID}. All
// fields optional; omitted fields are unchanged.
type UpdateLabelRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// Validate implements Validator.
func (u UpdateLabelRequest) Validate() []string {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return []string{"name cannot be empty"}
	}
	return nil
}

// AddLabelsRequest is the request body for POST /talks/{talkID}/labels.
type AddLabelsRequest struct {
	LabelIDs []string `json:"label_ids"`
}

// Validate implements Validator.
func (a AddLabelsRequest) Validate() []string {
	if len(a.LabelIDs) == 0 {
		return []string{"label_ids must not be empty"}
	}
	return nil
}

// LabelSuccessResponse is the success response envelope for single-label endpoints.
type LabelSuccessResponse struct {
	Data  *domain.Label     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// LabelController handles label management and talk tagging.
type LabelController struct {
	Logger  *slog.Logger
	Service domain.LabelService
}

func NewLabelController(logger *slog.Logger, svc domain.LabelService) *LabelController {
	return &LabelController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Create a label
// @Description Organizer-only: create a label with a unique name. auto_generated marks labels created by automated tooling rather than a human.
// @Tags labels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateLabelRequest true "Label data"
// @Success 201 {object} controllers.LabelSuccessResponse "data contains the created label"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (name already exists)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /labels [post]
func (c *LabelController) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req CreateLabelRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	label := &domain.Label{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Color:         req.Color,
		AutoGenerated: req.AutoGenerated,
		CreatedAt:     time.Now(),
	}
	if err := c.Service.CreateLabel(r.Context(), actor, label); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, label)
}

// List godoc
// @Summary List labels
// @Description Returns every label, ordered by name.
// @Tags labels
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the labels"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /labels [get]
func (c *LabelController) List(w http.ResponseWriter, r *http.Request) {
	labels, err := c.Service.ListLabels(r.Context())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, labels)
}

// Update godoc
// @Summary Update a label
// @Description Organizer-only: update a label's name, description, or color.
// @Tags labels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param labelID path string true "Label ID (UUID)"
// @Param body body UpdateLabelRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.LabelSuccessResponse "data contains the updated label"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (name already exists)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /labels/{labelID} [patch]
func (c *LabelController) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req UpdateLabelRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	label, err := c.Service.UpdateLabel(r.Context(), actor, r.PathValue("labelID"), domain.LabelUpdate{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, label)
}

// Delete godoc
// @Summary Delete a label
// @Description Organizer-only: delete a label and detach it from every talk.
// @Tags labels
// @Produce json
// @Security BearerAuth
// @Param labelID path string true "Label ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains {deleted: true}"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /labels/{labelID} [delete]
func (c *LabelController) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteLabel(r.Context(), actor, r.PathValue("labelID")); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

// AddToTalk godoc
// @Summary Attach labels to a talk
// @Description Organizer-only: attach one or more labels to a talk. Labels already attached are skipped.
// @Tags labels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Param body body AddLabelsRequest true "Label IDs to attach"
// @Success 200 {object} helpers.APIResponse "data contains the talk's labels after the change"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (talk or label missing)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /talks/{talkID}/labels [post]
func (c *LabelController) AddToTalk(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req AddLabelsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	talkID := r.PathValue("talkID")
	if err := c.Service.AddLabels(r.Context(), actor, talkID, req.LabelIDs); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	labels, err := c.Service.ListTalkLabels(r.Context(), actor, talkID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, labels)
}

// RemoveFromTalk godoc
// @Summary Detach a label from a talk
// @Description Organizer-only: detach one label from a talk. Detaching an absent link succeeds.
// @Tags labels
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Param labelID path string true "Label ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains {removed: true}"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /talks/{talkID}/labels/{labelID} [delete]
func (c *LabelController) RemoveFromTalk(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := c.Service.RemoveLabel(r.Context(), actor, r.PathValue("talkID"), r.PathValue("labelID")); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"removed": true})
}

// ListForTalk godoc
// @Summary List a talk's labels
// @Description Returns the labels attached to a talk. Speakers see only their own talks; organizers see any.
// @Tags labels
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the labels"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /talks/{talkID}/labels [get]
func (c *LabelController) ListForTalk(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	labels, err := c.Service.ListTalkLabels(r.Context(), actor, r.PathValue("talkID"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, labels)
}
