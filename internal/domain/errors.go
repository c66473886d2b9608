package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services and mapped to HTTP statuses by controllers.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnknownPackage      = errors.New("unknown credit package")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrRSVPClosed          = errors.New("rsvp is closed for this event")
	ErrGalleryLocked       = errors.New("gallery is only visible to the host and guests who responded")
	ErrDuplicateDelivery   = errors.New("purchase delivery already processed")
	ErrSlugTaken           = errors.New("slug already taken")
)

// FieldError is a validation failure tied to one input field. It unwraps to ErrInvalidInput.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error { return ErrInvalidInput }

// NewFieldError returns a *FieldError for field with a formatted message.
func NewFieldError(field, format string, args ...any) error {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}
