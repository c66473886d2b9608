package controllers

import (
	"log/slog"
	"net/http"

	"guestbook/internal/delivery/http/helpers"
	"guestbook/internal/domain"
)

// SendInvitationsRequest is the request body for POST /events/{eventID}/invitations.
type SendInvitationsRequest struct {
	Emails []string `json:"emails"`
}

// Validate implements Validator.
func (s SendInvitationsRequest) Validate() []string {
	var errs []string
	if len(s.Emails) == 0 {
		errs = append(errs, "emails is required")
	}
	return errs
}

// InvitationBatchSuccessResponse is the success response envelope for POST /events/{eventID}/invitations (200).
type InvitationBatchSuccessResponse struct {
	Data  *domain.InvitationBatchResult `json:"data"`
	Error *helpers.APIError             `json:"error"`
}

// InvitationListSuccessResponse is the success response envelope for GET /events/{eventID}/invitations (200).
type InvitationListSuccessResponse struct {
	Data  Page[*domain.EventInvitation] `json:"data"`
	Error *helpers.APIError             `json:"error"`
}

// InvitationController sends and lists invitation emails.
type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{
		Logger:  logger,
		Service: svc,
	}
}

// SendInvitations godoc
// @Summary Send invitations
// @Description Queues an invitation email per address. Invalid addresses and addresses that could not be queued are reported instead of failing the batch.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body SendInvitationsRequest true "Addresses to invite"
// @Success 200 {object} controllers.InvitationBatchSuccessResponse "data contains sent, invalid and failed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/invitations [post]
func (c *InvitationController) SendInvitations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req SendInvitationsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.SendInvitations(r.Context(), eventID, userID, req.Emails)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ListInvitations godoc
// @Summary List invitations
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.InvitationListSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/invitations [get]
func (c *InvitationController) ListInvitations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	page := helpers.ParsePagination(r)
	items, total, err := c.Service.ListInvitations(r.Context(), eventID, userID, page)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newPage(items, page, total))
}
