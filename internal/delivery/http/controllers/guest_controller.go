package controllers

import (
	"log/slog"
	"net/http"

	"guestbook/internal/delivery/http/helpers"
	"guestbook/internal/domain"
)

// GuestListSuccessResponse is the success response envelope for GET /events/{eventID}/guests (200).
type GuestListSuccessResponse struct {
	Data  Page[*domain.Guest] `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// GuestSummarySuccessResponse is the success response envelope for GET /events/{eventID}/guests/summary (200).
type GuestSummarySuccessResponse struct {
	Data  *domain.GuestSummary `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// GuestController handles the organizer's guest list.
type GuestController struct {
	Logger  *slog.Logger
	Service domain.GuestService
}

func NewGuestController(logger *slog.Logger, svc domain.GuestService) *GuestController {
	return &GuestController{
		Logger:  logger,
		Service: svc,
	}
}

// ListGuests godoc
// @Summary List guests
// @Description Paginated guest list of an event owned by the authenticated user, optionally filtered by status.
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param status query string false "attending, maybe, not_attending or unset"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.GuestListSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/guests [get]
func (c *GuestController) ListGuests(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var filter domain.GuestFilter
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := domain.ParseRSVPStatus(s)
		if err != nil {
			writeServiceError(w, r, c.Logger, err)
			return
		}
		filter.Status = status
	}
	page := helpers.ParsePagination(r)
	guests, total, err := c.Service.ListGuests(r.Context(), eventID, userID, filter, page)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newPage(guests, page, total))
}

// Summary godoc
// @Summary Guest summary
// @Description Counts per status and the attending headcount (party sizes summed).
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GuestSummarySuccessResponse "data contains the summary"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/guests/summary [get]
func (c *GuestController) Summary(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	summary, err := c.Service.Summary(r.Context(), eventID, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}

// DeleteGuest godoc
// @Summary Remove a guest
// @Tags guests
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param guestID path string true "Guest ID (UUID)"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/guests/{guestID} [delete]
func (c *GuestController) DeleteGuest(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	guestID, ok := pathID(w, r, "guestID")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteGuest(r.Context(), eventID, userID, guestID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
