package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"guestbook/internal/delivery/http/helpers"
	"guestbook/internal/delivery/http/middleware"
	"guestbook/internal/domain"
)

// writeServiceError maps a service error to its status code and envelope. Unexpected
// errors are logged and answered with a generic message so storage details never leak.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var fieldErr *domain.FieldError
	switch {
	case errors.As(err, &fieldErr):
		helpers.WriteJSONFieldError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, fieldErr.Field, fieldErr.Message)
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnknownPackage):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeUnknownPackage, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrInsufficientCredits):
		helpers.WriteJSONError(w, http.StatusPaymentRequired, helpers.ErrCodeInsufficientCredits, "not enough credits to create an event")
	case errors.Is(err, domain.ErrGalleryLocked):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeGalleryLocked, domain.ErrGalleryLocked.Error())
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrUserNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrRSVPClosed):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeRSVPClosed, domain.ErrRSVPClosed.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "email already in use")
	default:
		logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path, "method", r.Method, "request_id", middleware.RequestIDFromContext(r.Context()), "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
	}
}

// requireUserID writes 401 and returns false when no authenticated user is in the context.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	}
	return userID, ok
}

// pathID reads a UUID path value and writes 400 when it is missing or malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.PathValue(name)
	if v == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing "+name)
		return "", false
	}
	// uuid.Parse also takes urn and braced forms; path ids must be the 36-character form.
	id, err := uuid.Parse(v)
	if err != nil || len(v) != 36 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid "+name)
		return "", false
	}
	return id.String(), true
}

// Page is the data payload of paginated list endpoints.
type Page[T any] struct {
	Items      []T                    `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

func newPage[T any](items []T, page domain.PaginationParams, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Pagination: helpers.NewPaginationMeta(page, total)}
}
