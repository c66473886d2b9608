package controllers

import (
	"log/slog"
	"net/http"

	"guestbook/internal/delivery/http/helpers"
	"guestbook/internal/delivery/http/middleware"
	"guestbook/internal/domain"
)

// SubmitRSVPRequest is the request body for POST /events/{eventID}/rsvp.
type SubmitRSVPRequest struct {
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Status           string            `json:"status"`
	AdditionalGuests *int              `json:"additional_guests"`
	Note             string            `json:"note"`
	Answers          map[string]string `json:"answers"`
	InviteMethod     string            `json:"invite_method"`
}

func (s SubmitRSVPRequest) submission() domain.RSVPSubmission {
	return domain.RSVPSubmission{
		Name:             s.Name,
		Email:            s.Email,
		Status:           s.Status,
		AdditionalGuests: s.AdditionalGuests,
		Note:             s.Note,
		Answers:          s.Answers,
		InviteMethod:     s.InviteMethod,
	}
}

// RSVPSuccessResponse is the success response envelope for POST /events/{eventID}/rsvp.
type RSVPSuccessResponse struct {
	Data  *domain.RSVPResult `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// GuestSuccessResponse is the success response envelope for a single guest record.
type GuestSuccessResponse struct {
	Data  *domain.Guest     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RSVPController handles the public RSVP form.
type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{
		Logger:  logger,
		Service: svc,
	}
}

// Submit godoc
// @Summary Submit or update an RSVP
// @Description Records the visitor's answer. A second submission with the same email updates the existing guest. The response carries a guest token that unlocks the gallery and later edits.
// @Tags rsvp
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param X-Guest-Token header string false "Guest token from a previous RSVP"
// @Param body body SubmitRSVPRequest true "RSVP form"
// @Success 201 {object} controllers.RSVPSuccessResponse "new guest"
// @Success 200 {object} controllers.RSVPSuccessResponse "existing guest updated"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: rsvp_closed"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/rsvp [post]
func (c *RSVPController) Submit(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	var req SubmitRSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.Submit(r.Context(), eventID, req.submission(), middleware.GuestTokenFromRequest(r))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	helpers.WriteJSONSuccess(w, status, result)
}

// GetMine godoc
// @Summary Get my RSVP
// @Description Returns the guest record the X-Guest-Token was issued for, to pre-fill the form.
// @Tags rsvp
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param X-Guest-Token header string true "Guest token from a previous RSVP"
// @Success 200 {object} controllers.GuestSuccessResponse "data contains the guest"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/rsvp/me [get]
func (c *RSVPController) GetMine(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	guest, err := c.Service.GetMine(r.Context(), eventID, middleware.GuestTokenFromRequest(r))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, guest)
}
