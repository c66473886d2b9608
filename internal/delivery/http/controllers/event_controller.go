package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"guestbook/internal/delivery/http/helpers"
	"guestbook/internal/delivery/http/middleware"
	"guestbook/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title           string              `json:"title"`
	StartsAt        *time.Time          `json:"starts_at"`
	Location        *string             `json:"location"`
	Message         *string             `json:"message"`
	CoverImageURL   *string             `json:"cover_image_url"`
	PrimaryMediaURL *string             `json:"primary_media_url"`
	Theme           *domain.Theme       `json:"theme"`
	DetailBlocks    domain.DetailBlocks `json:"detail_blocks" swaggertype:"array,object"`
	Questions       domain.FormSchema   `json:"custom_questions" swaggertype:"array,object"`
	RSVPOpen        *bool               `json:"rsvp_open"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	return errs
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All fields optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Title           *string              `json:"title"`
	StartsAt        *time.Time           `json:"starts_at"`
	Location        *string              `json:"location"`
	Message         *string              `json:"message"`
	CoverImageURL   *string              `json:"cover_image_url"`
	PrimaryMediaURL *string              `json:"primary_media_url"`
	Theme           *domain.Theme        `json:"theme"`
	DetailBlocks    *domain.DetailBlocks `json:"detail_blocks" swaggertype:"array,object"`
	Questions       *domain.FormSchema   `json:"custom_questions" swaggertype:"array,object"`
	RSVPOpen        *bool                `json:"rsvp_open"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	return errs
}

func (u UpdateEventRequest) patch() domain.EventPatch {
	return domain.EventPatch{
		Title:           u.Title,
		StartsAt:        u.StartsAt,
		Location:        u.Location,
		Message:         u.Message,
		CoverImageURL:   u.CoverImageURL,
		PrimaryMediaURL: u.PrimaryMediaURL,
		Theme:           u.Theme,
		DetailBlocks:    u.DetailBlocks,
		Questions:       u.Questions,
		RSVPOpen:        u.RSVPOpen,
	}
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success response envelope for GET /events (200).
type EventListSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// PublicEventSuccessResponse is the success response envelope for GET /public/events/{slug} (200).
type PublicEventSuccessResponse struct {
	Data  *domain.PublicEventView `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// EventController handles the organizer's event pages and their public view.
type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Create an invitation page. Costs one credit; the slug is generated from the title. The authenticated user becomes the owner.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 402 {object} helpers.APIResponse "error.code: insufficient_credits"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	now := time.Now()
	event := domain.NewEvent(userID, req.Title, now, now)
	event.StartsAt = req.StartsAt
	event.Location = req.Location
	event.Message = req.Message
	event.CoverImageURL = req.CoverImageURL
	event.PrimaryMediaURL = req.PrimaryMediaURL
	if req.Theme != nil {
		event.Theme = *req.Theme
	}
	if req.DetailBlocks != nil {
		event.DetailBlocks = req.DetailBlocks
	}
	if req.Questions != nil {
		event.Questions = req.Questions
	}
	if req.RSVPOpen != nil {
		event.RSVPOpen = *req.RSVPOpen
	}
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListMyEvents godoc
// @Summary List my events
// @Description Returns every event owned by the authenticated user, newest first.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventListSuccessResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListMyEvents(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get one of my events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partially update an event owned by the authenticated user. Omitted fields are unchanged.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, userID, req.patch())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event with its guests, invitations and photos. The spent credit is not refunded.
// @Tags events
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, userID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPublicEvent godoc
// @Summary Get a public event page
// @Description Returns the event by slug (or id) and what the visitor may do. The host is recognized by an optional bearer token; a returning guest by X-Guest-Token.
// @Tags public
// @Produce json
// @Param slug path string true "Event slug or ID"
// @Param X-Guest-Token header string false "Guest token from a previous RSVP"
// @Success 200 {object} controllers.PublicEventSuccessResponse "data contains event and access"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /public/events/{slug} [get]
func (c *EventController) GetPublicEvent(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	if slug == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing slug")
		return
	}
	view, err := c.Service.GetPublicEvent(r.Context(), slug, middleware.ViewerFromRequest(r))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}
