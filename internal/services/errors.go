package services

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/media"
)

// Error kinds. Every error returned by a service matches exactly one of
// these through errors.Is; handlers map them to HTTP status codes.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrUpload          = errors.New("upload failed")
	ErrStore           = errors.New("store failure")
)

// ServiceError carries a kind, a stable machine-readable code and a short
// human message. Cause, when set, is the underlying error.
type ServiceError struct {
	Kind    error
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func newError(kind error, code, message string) *ServiceError {
	return &ServiceError{Kind: kind, Code: code, Message: message}
}

var (
	ErrAuthRequired          = newError(ErrUnauthorized, "unauthorized", "authentication required")
	ErrAnonymousNotAllowed   = newError(ErrUnauthorized, "anonymous_not_allowed", "sign in to post a report")
	ErrReportNotFound        = newError(ErrNotFound, "report_not_found", "report not found")
	ErrClaimNotFound         = newError(ErrNotFound, "claim_not_found", "claim not found")
	ErrNotReportOwner        = newError(ErrForbidden, "not_report_owner", "only the report owner can do this")
	ErrCannotClaimOwnReport  = newError(ErrForbidden, "own_report", "cannot claim own report")
	ErrReportAlreadyClaimed  = newError(ErrConflict, "report_already_claimed", "report already claimed")
	ErrClaimAlreadyDecided   = newError(ErrConflict, "claim_already_decided", "claim has already been decided")
	ErrDuplicateClaim        = newError(ErrConflict, "duplicate_claim", "you already have an active claim on this report")
	ErrDailyClaimLimit       = newError(ErrRateLimited, "daily_claim_limit", "You have reached the daily claim limit. Please try again tomorrow.")
	ErrImageTooLarge         = newError(ErrPayloadTooLarge, "image_too_large", "image exceeds the maximum allowed size")
	ErrInvalidDecisionAction = newError(ErrValidation, "invalid_action", "action must be approve or reject")
)

func validationError(message string) *ServiceError {
	return newError(ErrValidation, "validation_error", message)
}

func storeError(op string, err error) *ServiceError {
	return &ServiceError{Kind: ErrStore, Code: "internal_error", Message: op, Cause: err}
}

func uploadError(err error) *ServiceError {
	code := "upload_failed"
	if errors.Is(err, media.ErrNotConfigured) {
		code = "upload_unavailable"
	}
	return &ServiceError{Kind: ErrUpload, Code: code, Message: "image upload failed", Cause: err}
}

// asServiceError passes ServiceErrors through and wraps anything else as a store failure.
func asServiceError(op string, err error) error {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return storeError(op, err)
}

// CodeOf returns the stable code for err, or "internal_error".
func CodeOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) && se.Code != "" {
		return se.Code
	}
	return "internal_error"
}

// MessageOf returns the user-facing message for err. Store failures and
// unknown errors never leak their cause.
func MessageOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) && !errors.Is(se.Kind, ErrStore) {
		return se.Message
	}
	return "an unexpected error occurred"
}
