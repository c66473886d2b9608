package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"guestbook/internal/delivery/http/helpers"
	"guestbook/internal/domain"
)

// SaveCreditPackageRequest is the request body for PUT /admin/credit-packages/{listingID}.
type SaveCreditPackageRequest struct {
	Name    string `json:"name"`
	Credits int    `json:"credits"`
	Active  *bool  `json:"active"`
}

// Validate implements Validator.
func (s SaveCreditPackageRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "name is required")
	}
	if s.Credits <= 0 {
		errs = append(errs, "credits must be positive")
	}
	return errs
}

// CreditPackageSuccessResponse is the success response envelope for a saved package (200).
type CreditPackageSuccessResponse struct {
	Data  *domain.CreditPackage `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// CreditPackageListSuccessResponse is the success response envelope for GET /admin/credit-packages (200).
type CreditPackageListSuccessResponse struct {
	Data  []*domain.CreditPackage `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// PendingCreditListSuccessResponse is the success response envelope for GET /admin/pending-credits (200).
type PendingCreditListSuccessResponse struct {
	Data  Page[*domain.PendingCredit] `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// CreditAdminController manages credit packages and inspects pending credits. Admin only.
type CreditAdminController struct {
	Logger  *slog.Logger
	Service domain.CreditAdminService
}

func NewCreditAdminController(logger *slog.Logger, svc domain.CreditAdminService) *CreditAdminController {
	return &CreditAdminController{
		Logger:  logger,
		Service: svc,
	}
}

// ListPackages godoc
// @Summary List credit packages
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.CreditPackageListSuccessResponse "data contains the packages"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/credit-packages [get]
func (c *CreditAdminController) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := c.Service.ListPackages(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, packages)
}

// SavePackage godoc
// @Summary Create or update a credit package
// @Description Maps a marketplace listing id to the credits one purchase grants. Omitting active keeps the package active.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param listingID path string true "Marketplace listing id"
// @Param body body SaveCreditPackageRequest true "Package"
// @Success 200 {object} controllers.CreditPackageSuccessResponse "data contains the package"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/credit-packages/{listingID} [put]
func (c *CreditAdminController) SavePackage(w http.ResponseWriter, r *http.Request) {
	listingID := strings.TrimSpace(r.PathValue("listingID"))
	if listingID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing listingID")
		return
	}
	var req SaveCreditPackageRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	pkg := &domain.CreditPackage{ListingID: listingID, Name: req.Name, Credits: req.Credits, Active: true}
	if req.Active != nil {
		pkg.Active = *req.Active
	}
	if err := c.Service.SavePackage(r.Context(), pkg); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, pkg)
}

// DeactivatePackage godoc
// @Summary Deactivate a credit package
// @Description Purchases of a deactivated listing are rejected as unknown.
// @Tags admin
// @Security BearerAuth
// @Param listingID path string true "Marketplace listing id"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/credit-packages/{listingID} [delete]
func (c *CreditAdminController) DeactivatePackage(w http.ResponseWriter, r *http.Request) {
	listingID := strings.TrimSpace(r.PathValue("listingID"))
	if listingID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing listingID")
		return
	}
	if err := c.Service.DeactivatePackage(r.Context(), listingID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPending godoc
// @Summary List pending credits
// @Description Credits bought with an email that had no account at the time, newest first.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.PendingCreditListSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/pending-credits [get]
func (c *CreditAdminController) ListPending(w http.ResponseWriter, r *http.Request) {
	page := helpers.ParsePagination(r)
	items, total, err := c.Service.ListPending(r.Context(), page)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newPage(items, page, total))
}
