package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cfpboard/internal/delivery/http/helpers"
	"cfpboard/internal/domain"
)

// CreateTrackRequest is the request body for POST /conferences/{conferenceID}/tracks.
type CreateTrackRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Capacity    *int    `json:"capacity"`
}

// Validate implements Validator.
func (c CreateTrackRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.Capacity != nil && *c.Capacity <= 0 {
		errs = append(errs, "capacity must be positive")
	}
	return errs
}

// UpdateTrackRequest is the request body for PATCH /tracks/{trackID}. All
// fields optional; omitted fields are unchanged.
type UpdateTrackRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Capacity    *int    `json:"capacity"`
}

// Validate implements Validator.
func (u UpdateTrackRequest) Validate() []string {
	var errs []string
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name cannot be empty")
	}
	if u.Capacity != nil && *u.Capacity <= 0 {
		errs = append(errs, "capacity must be positive")
	}
	return errs
}

// CreateSlotRequest is the request body for POST /conferences/{conferenceID}/slots.
// Times are zero-padded "HH:MM" strings; the slot interval is [start, end).
type CreateSlotRequest struct {
	TrackID   string `json:"track_id"`
	SlotDate  string `json:"slot_date"` // YYYY-MM-DD
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Validate implements Validator.
func (c CreateSlotRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.TrackID) == "" {
		errs = append(errs, "track_id is required")
	}
	if _, err := time.Parse(dateLayout, c.SlotDate); err != nil {
		errs = append(errs, "slot_date must be YYYY-MM-DD")
	}
	if c.StartTime == "" {
		errs = append(errs, "start_time is required")
	}
	if c.EndTime == "" {
		errs = append(errs, "end_time is required")
	}
	return errs
}

// UpdateSlotRequest is the request body for PATCH /slots/{slotID}. All fields
// optional; omitted fields are unchanged. Talk assignment is a separate
// endpoint.
type UpdateSlotRequest struct {
	TrackID   *string `json:"track_id"`
	SlotDate  *string `json:"slot_date"` // YYYY-MM-DD
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

// Validate implements Validator.
func (u UpdateSlotRequest) Validate() []string {
	var errs []string
	if u.TrackID != nil && strings.TrimSpace(*u.TrackID) == "" {
		errs = append(errs, "track_id cannot be empty")
	}
	if u.SlotDate != nil {
		if _, err := time.Parse(dateLayout, *u.SlotDate); err != nil {
			errs = append(errs, "slot_date must be YYYY-MM-DD")
		}
	}
	return errs
}

// AssignTalkRequest is the request body for POST /slots/{slotID}/assign.
type AssignTalkRequest struct {
	TalkID string `json:"talk_id"`
}

// Validate implements Validator.
func (a AssignTalkRequest) Validate() []string {
	if strings.TrimSpace(a.TalkID) == "" {
		return []string{"talk_id is required"}
	}
	return nil
}

// TrackSuccessResponse is the success response envelope for single-track endpoints.
type TrackSuccessResponse struct {
	Data  *domain.Track     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SlotSuccessResponse is the success response envelope for single-slot endpoints.
type SlotSuccessResponse struct {
	Data  *domain.ScheduleSlot `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ScheduleController handles tracks, slots, talk assignment, and the public
// schedule.
type ScheduleController struct {
	Logger  *slog.Logger
	Service domain.ScheduleService
}

func NewScheduleController(logger *slog.Logger, svc domain.ScheduleService) *ScheduleController {
	return &ScheduleController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateTrack godoc
// @Summary Create a track
// @Description Organizer-only: create a track (room or parallel channel) under a conference.
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conferenceID path string true "Conference ID (UUID)"
// @Param body body CreateTrackRequest true "Track data"
// @Success 201 {object} controllers.TrackSuccessResponse "data contains the created track"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (conference missing)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceID}/tracks [post]
func (c *ScheduleController) CreateTrack(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req CreateTrackRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	now := time.Now()
	track := &domain.Track{
		ConferenceID: r.PathValue("conferenceID"),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Capacity:     req.Capacity,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := c.Service.CreateTrack(r.Context(), actor, track); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, track)
}

// ListTracks godoc
// @Summary List a conference's tracks
// @Description Returns the conference's tracks ordered by name.
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param conferenceID path string true "Conference ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the tracks"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceID}/tracks [get]
func (c *ScheduleController) ListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := c.Service.ListTracks(r.Context(), r.PathValue("conferenceID"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tracks)
}

// UpdateTrack godoc
// @Summary Update a track
// @Description Organizer-only: update a track's name, description, or capacity.
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param trackID path string true "Track ID (UUID)"
// @Param body body UpdateTrackRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.TrackSuccessResponse "data contains the updated track"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tracks/{trackID} [patch]
func (c *ScheduleController) UpdateTrack(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req UpdateTrackRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	track, err := c.Service.UpdateTrack(r.Context(), actor, r.PathValue("trackID"), domain.TrackUpdate{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, track)
}

// DeleteTrack godoc
// @Summary Delete a track
// @Description Organizer-only: delete a track and its slots. Fails while any slot under the track still holds a talk.
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param trackID path string true "Track ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains {deleted: true}"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (a slot still holds a talk)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tracks/{trackID} [delete]
func (c *ScheduleController) DeleteTrack(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteTrack(r.Context(), actor, r.PathValue("trackID")); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

// CreateSlot godoc
// @Summary Create a schedule slot
// @Description Organizer-only: create a [start, end) slot on a date within a track. Times are zero-padded "HH:MM". Overlapping an existing slot in the same track and date is rejected.
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conferenceID path string true "Conference ID (UUID)"
// @Param body body CreateSlotRequest true "Slot data"
// @Success 201 {object} controllers.SlotSuccessResponse "data contains the created slot"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (bad times)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (conference or track missing)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (overlaps an existing slot)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceID}/slots [post]
func (c *ScheduleController) CreateSlot(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req CreateSlotRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	slotDate, _ := time.Parse(dateLayout, req.SlotDate)
	now := time.Now()
	slot := &domain.ScheduleSlot{
		ConferenceID: r.PathValue("conferenceID"),
		TrackID:      req.TrackID,
		SlotDate:     slotDate,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := c.Service.CreateSlot(r.Context(), actor, slot); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, slot)
}

// ListSlots godoc
// @Summary List a conference's slots
// @Description Returns the conference's slots ordered by date and start time.
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param conferenceID path string true "Conference ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the slots"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceID}/slots [get]
func (c *ScheduleController) ListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := c.Service.ListSlots(r.Context(), r.PathValue("conferenceID"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, slots)
}

// UpdateSlot godoc
// @Summary Update a schedule slot
// @Description Organizer-only: move a slot to a different track, date, or time range. The updated interval must not overlap another slot in its track and date.
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slotID path string true "Slot ID (UUID)"
// @Param body body UpdateSlotRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.SlotSuccessResponse "data contains the updated slot"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (bad times)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (overlaps an existing slot)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /slots/{slotID} [patch]
func (c *ScheduleController) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req UpdateSlotRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	update := domain.SlotUpdate{
		TrackID:   req.TrackID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if req.SlotDate != nil {
		slotDate, _ := time.Parse(dateLayout, *req.SlotDate)
		update.SlotDate = &slotDate
	}
	slot, err := c.Service.UpdateSlot(r.Context(), actor, r.PathValue("slotID"), update)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, slot)
}

// DeleteSlot godoc
// @Summary Delete a schedule slot
// @Description Organizer-only: delete a slot. Any talk assignment on it is released with it.
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param slotID path string true "Slot ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains {deleted: true}"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /slots/{slotID} [delete]
func (c *ScheduleController) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteSlot(r.Context(), actor, r.PathValue("slotID")); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

// AssignTalk godoc
// @Summary Assign a talk to a slot
// @Description Organizer-only: place an accepted talk into a slot. The slot must be empty (or already hold this talk) and the talk must not occupy another slot. Re-assigning the same talk to the same slot is a no-op success.
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slotID path string true "Slot ID (UUID)"
// @Param body body AssignTalkRequest true "Talk to assign"
// @Success 200 {object} controllers.SlotSuccessResponse "data contains the slot with the talk assigned"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (slot or talk missing)"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state (talk not accepted) or conflict (slot or talk already taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /slots/{slotID}/assign [post]
func (c *ScheduleController) AssignTalk(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req AssignTalkRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	slot, err := c.Service.Assign(r.Context(), actor, r.PathValue("slotID"), req.TalkID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, slot)
}

// UnassignTalk godoc
// @Summary Clear a slot's talk
// @Description Organizer-only: remove whatever talk the slot holds. Clearing an empty slot succeeds.
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param slotID path string true "Slot ID (UUID)"
// @Success 200 {object} controllers.SlotSuccessResponse "data contains the cleared slot"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /slots/{slotID}/unassign [post]
func (c *ScheduleController) UnassignTalk(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	slot, err := c.Service.Unassign(r.Context(), actor, r.PathValue("slotID"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, slot)
}

// PublicSchedule godoc
// @Summary Public schedule
// @Description Returns the full schedule grid (every slot with its track and, where assigned, its talk and speaker), ordered by date, start time, and track name. No authentication required.
// @Tags schedule
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains the schedule entries"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /schedule [get]
func (c *ScheduleController) PublicSchedule(w http.ResponseWriter, r *http.Request) {
	entries, err := c.Service.PublicSchedule(r.Context())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}
