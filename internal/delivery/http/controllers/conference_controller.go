package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cfpboard/internal/delivery/http/helpers"
	"cfpboard/internal/domain"
)

// dateLayout is the wire format for calendar dates (conference and slot dates).
const dateLayout = "2006-01-02"

// CreateConferenceRequest is the request body for POST /conferences.
type CreateConferenceRequest struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// Validate implements Validator.
func (c CreateConferenceRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(c.Slug) == "" {
		errs = append(errs, "slug is required")
	}
	if _, err := time.Parse(dateLayout, c.StartDate); err != nil {
		errs = append(errs, "start_date must be YYYY-MM-DD")
	}
	if _, err := time.Parse(dateLayout, c.EndDate); err != nil {
		errs = append(errs, "end_date must be YYYY-MM-DD")
	}
	return errs
}

// ConferenceSuccessResponse is the success response envelope for single-conference endpoints.
type ConferenceSuccessResponse struct {
	Data  *domain.Conference `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ConferenceController handles conference editions.
type ConferenceController struct {
	Logger  *slog.Logger
	Service domain.ConferenceService
}

func NewConferenceController(logger *slog.Logger, svc domain.ConferenceService) *ConferenceController {
	return &ConferenceController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Create a conference
// @Description Organizer-only: create a conference edition with a unique slug and a date range.
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateConferenceRequest true "Conference data"
// @Success 201 {object} controllers.ConferenceSuccessResponse "data contains the created conference"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (slug already exists)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences [post]
func (c *ConferenceController) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req CreateConferenceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	start, _ := time.Parse(dateLayout, req.StartDate)
	end, _ := time.Parse(dateLayout, req.EndDate)
	conference := domain.NewConference(strings.TrimSpace(req.Name), strings.TrimSpace(strings.ToLower(req.Slug)), start, end, time.Now())
	if err := c.Service.CreateConference(r.Context(), actor, conference); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, conference)
}

// Get godoc
// @Summary Get a conference
// @Description Returns one conference edition by ID.
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Param conferenceID path string true "Conference ID (UUID)"
// @Success 200 {object} controllers.ConferenceSuccessResponse "data contains the conference"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceID} [get]
func (c *ConferenceController) Get(w http.ResponseWriter, r *http.Request) {
	conference, err := c.Service.GetConference(r.Context(), r.PathValue("conferenceID"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, conference)
}

// List godoc
// @Summary List conferences
// @Description Returns every conference edition, newest first.
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the conferences"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences [get]
func (c *ConferenceController) List(w http.ResponseWriter, r *http.Request) {
	conferences, err := c.Service.ListConferences(r.Context())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, conferences)
}
