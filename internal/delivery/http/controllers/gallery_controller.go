package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"guestbook/internal/delivery/http/helpers"
	"guestbook/internal/delivery/http/middleware"
	"guestbook/internal/domain"
)

const (
	// multipart overhead allowed on top of the photo itself
	uploadEnvelopeBytes = 1 << 20
	uploadMemoryBytes   = 2 << 20
)

// CommentRequest is the request body for POST /events/{eventID}/photos/{photoID}/comments.
type CommentRequest struct {
	Body string `json:"body"`
}

// Validate implements Validator.
func (c CommentRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Body) == "" {
		errs = append(errs, "body is required")
	}
	return errs
}

// PhotoSuccessResponse is the success response envelope for POST /events/{eventID}/photos (201).
type PhotoSuccessResponse struct {
	Data  *domain.Photo     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// PhotoListSuccessResponse is the success response envelope for GET /events/{eventID}/photos (200).
type PhotoListSuccessResponse struct {
	Data  Page[*domain.Photo] `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// CommentSuccessResponse is the success response envelope for a created comment (201).
type CommentSuccessResponse struct {
	Data  *domain.PhotoComment `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// CommentListSuccessResponse is the success response envelope for a photo's comments (200).
type CommentListSuccessResponse struct {
	Data  Page[*domain.PhotoComment] `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// GalleryController handles the event photo gallery. Every route accepts either the
// host's bearer token or a guest token.
type GalleryController struct {
	Logger  *slog.Logger
	Service domain.GalleryService
}

func NewGalleryController(logger *slog.Logger, svc domain.GalleryService) *GalleryController {
	return &GalleryController{
		Logger:  logger,
		Service: svc,
	}
}

func eventAndPhotoIDs(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return "", "", false
	}
	photoID, ok := pathID(w, r, "photoID")
	if !ok {
		return "", "", false
	}
	return eventID, photoID, true
}

// Upload godoc
// @Summary Upload a photo
// @Description Multipart upload with a "file" part (image/*, at most 10 MiB) and an optional "caption" field.
// @Tags gallery
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param X-Guest-Token header string false "Guest token from a previous RSVP"
// @Param file formData file true "Image"
// @Param caption formData string false "Caption"
// @Success 201 {object} controllers.PhotoSuccessResponse "data contains the photo"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: gallery_locked"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 413 {object} helpers.APIResponse "error.code: payload_too_large"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/photos [post]
func (c *GalleryController) Upload(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxPhotoBytes+uploadEnvelopeBytes)
	if err := r.ParseMultipartForm(uploadMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			helpers.WriteJSONError(w, http.StatusRequestEntityTooLarge, helpers.ErrCodePayloadTooLarge, "photo too large")
			return
		}
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "expected multipart/form-data")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		helpers.WriteJSONFieldError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "file", "file is required")
		return
	}
	defer file.Close()

	photo, err := c.Service.Upload(r.Context(), eventID, middleware.ViewerFromRequest(r), domain.PhotoUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Caption:     r.FormValue("caption"),
		Body:        file,
	})
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, photo)
}

// ListPhotos godoc
// @Summary List photos
// @Tags gallery
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param X-Guest-Token header string false "Guest token from a previous RSVP"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.PhotoListSuccessResponse "data contains items and pagination"
// @Failure 403 {object} helpers.APIResponse "error.code: gallery_locked"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/photos [get]
func (c *GalleryController) ListPhotos(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	page := helpers.ParsePagination(r)
	photos, total, err := c.Service.ListPhotos(r.Context(), eventID, middleware.ViewerFromRequest(r), page)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newPage(photos, page, total))
}

// DeletePhoto godoc
// @Summary Delete a photo
// @Description The host may delete any photo; a guest only their own.
// @Tags gallery
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param photoID path string true "Photo ID (UUID)"
// @Param X-Guest-Token header string false "Guest token from a previous RSVP"
// @Success 204 "No Content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/photos/{photoID} [delete]
func (c *GalleryController) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	eventID, photoID, ok := eventAndPhotoIDs(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeletePhoto(r.Context(), eventID, photoID, middleware.ViewerFromRequest(r)); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Like godoc
// @Summary Like a photo
// @Description Idempotent.
// @Tags gallery
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param photoID path string true "Photo ID (UUID)"
// @Param X-Guest-Token header string false "Guest token from a previous RSVP"
// @Success 204 "No Content"
// @Failure 403 {object} helpers.APIResponse "error.code: gallery_locked"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/photos/{photoID}/like [put]
func (c *GalleryController) Like(w http.ResponseWriter, r *http.Request) {
	eventID, photoID, ok := eventAndPhotoIDs(w, r)
	if !ok {
		return
	}
	if err := c.Service.Like(r.Context(), eventID, photoID, middleware.ViewerFromRequest(r)); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unlike godoc
// @Summary Remove a like
// @Tags gallery
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param photoID path string true "Photo ID (UUID)"
// @Param X-Guest-Token header string false "Guest token from a previous RSVP"
// @Success 204 "No Content"
// @Failure 403 {object} helpers.APIResponse "error.code: gallery_locked"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/photos/{photoID}/like [delete]
func (c *GalleryController) Unlike(w http.ResponseWriter, r *http.Request) {
	eventID, photoID, ok := eventAndPhotoIDs(w, r)
	if !ok {
		return
	}
	if err := c.Service.Unlike(r.Context(), eventID, photoID, middleware.ViewerFromRequest(r)); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Comment godoc
// @Summary Comment on a photo
// @Tags gallery
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param photoID path string true "Photo ID (UUID)"
// @Param X-Guest-Token header string false "Guest token from a previous RSVP"
// @Param body body CommentRequest true "Comment"
// @Success 201 {object} controllers.CommentSuccessResponse "data contains the comment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: gallery_locked"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/photos/{photoID}/comments [post]
func (c *GalleryController) Comment(w http.ResponseWriter, r *http.Request) {
	eventID, photoID, ok := eventAndPhotoIDs(w, r)
	if !ok {
		return
	}
	var req CommentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	comment, err := c.Service.Comment(r.Context(), eventID, photoID, middleware.ViewerFromRequest(r), req.Body)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, comment)
}

// ListComments godoc
// @Summary List comments on a photo
// @Tags gallery
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param photoID path string true "Photo ID (UUID)"
// @Param X-Guest-Token header string false "Guest token from a previous RSVP"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.CommentListSuccessResponse "data contains items and pagination"
// @Failure 403 {object} helpers.APIResponse "error.code: gallery_locked"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/photos/{photoID}/comments [get]
func (c *GalleryController) ListComments(w http.ResponseWriter, r *http.Request) {
	eventID, photoID, ok := eventAndPhotoIDs(w, r)
	if !ok {
		return
	}
	page := helpers.ParsePagination(r)
	comments, total, err := c.Service.ListComments(r.Context(), eventID, photoID, middleware.ViewerFromRequest(r), page)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newPage(comments, page, total))
}
