package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"guestbook/internal/delivery/http/helpers"
	"guestbook/internal/domain"
)

// DeliveryIDHeader identifies one webhook delivery when the body has no purchase_id.
const DeliveryIDHeader = "X-Delivery-ID"

// ListingID accepts a marketplace listing id sent either as a JSON string or a JSON number.
type ListingID string

// UnmarshalJSON implements json.Unmarshaler.
func (l *ListingID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = ListingID(strings.TrimSpace(s))
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return errors.New("listing_id must be a string or a number")
	}
	*l = ListingID(n.String())
	return nil
}

// PurchaseWebhookRequest is the request body for POST /webhooks/purchases.
type PurchaseWebhookRequest struct {
	Email      string    `json:"email"`
	ListingID  ListingID `json:"listing_id" swaggertype:"string"`
	PurchaseID string    `json:"purchase_id"`
	Source     string    `json:"source"`
}

// Validate implements Validator.
func (p PurchaseWebhookRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(p.Email) == "" {
		errs = append(errs, "email is required")
	}
	if p.ListingID == "" {
		errs = append(errs, "listing_id is required")
	}
	return errs
}

// PurchaseSuccessResponse is the success response envelope for POST /webhooks/purchases (200).
type PurchaseSuccessResponse struct {
	Data  *domain.PurchaseResult `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// PurchaseController receives marketplace purchase notifications.
type PurchaseController struct {
	Logger  *slog.Logger
	Service domain.PurchaseService
}

func NewPurchaseController(logger *slog.Logger, svc domain.PurchaseService) *PurchaseController {
	return &PurchaseController{
		Logger:  logger,
		Service: svc,
	}
}

// HandleWebhook godoc
// @Summary Marketplace purchase webhook
// @Description Credits the buyer's account, or parks the credits as pending until an account with that email exists. A repeated purchase_id (or X-Delivery-ID) is acknowledged without crediting twice. When a webhook secret is configured the raw body must be signed with X-Signature: sha256=<hex HMAC>.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-Signature header string false "sha256=<hex HMAC-SHA256 of the body>"
// @Param X-Delivery-ID header string false "Delivery id used when purchase_id is absent"
// @Param body body PurchaseWebhookRequest true "Purchase notification"
// @Success 200 {object} controllers.PurchaseSuccessResponse "data.outcome: resolved, pending or duplicate"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or unknown_package"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /webhooks/purchases [post]
func (c *PurchaseController) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var req PurchaseWebhookRequest
	if !helpers.DecodeAndValidateAllowUnknown(w, r, &req) {
		return
	}
	deliveryID := strings.TrimSpace(req.PurchaseID)
	if deliveryID == "" {
		deliveryID = strings.TrimSpace(r.Header.Get(DeliveryIDHeader))
	}
	result, err := c.Service.Reconcile(r.Context(), domain.PurchaseNotification{
		Email:      req.Email,
		ListingID:  string(req.ListingID),
		DeliveryID: deliveryID,
		Source:     req.Source,
	})
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	c.Logger.InfoContext(r.Context(), "purchase reconciled",
		"outcome", result.Outcome, "listing_id", string(req.ListingID), "credits", result.Credits)
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
